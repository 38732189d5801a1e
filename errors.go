package tradekg

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("tradekg: invalid configuration")

	// ErrEmptyLexicon is returned when the lexicon has no entity
	// dictionaries to match against.
	ErrEmptyLexicon = errors.New("tradekg: lexicon has no dictionaries")

	// ErrBadPattern is returned when a lexicon rule fails to compile.
	ErrBadPattern = errors.New("tradekg: lexicon rule does not compile")

	// ErrEmptyConnectors is returned when a relation pattern has no
	// connector expressions.
	ErrEmptyConnectors = errors.New("tradekg: relation pattern has no connectors")

	// ErrUnsupportedFormat is returned for unrecognized dataset formats.
	ErrUnsupportedFormat = errors.New("tradekg: unsupported dataset format")

	// ErrNoPosts is returned when a batch contains nothing to process.
	ErrNoPosts = errors.New("tradekg: no posts to process")

	// ErrStoreClosed is returned when operating on a closed engine.
	ErrStoreClosed = errors.New("tradekg: engine is closed")
)
