package lexicon

// Default returns the built-in rule configuration for tariff and trade-policy
// posts. The tables are the product of manual curation against the r/Tariffs
// corpus; callers needing different domains should Load a JSON file of the
// same shape instead of editing these.
func Default() *Lexicon {
	return &Lexicon{
		Dictionaries: []Dictionary{
			{
				Type: EntityPerson,
				Phrases: []string{
					// Political figures
					"trump", "donald trump", "biden", "joe biden", "xi jinping",
					"modi", "narendra modi", "trudeau", "justin trudeau",
					"macron", "emmanuel macron", "johnson", "boris johnson",
					"putin", "vladimir putin", "obama", "barack obama",
					// Economists and central bankers
					"yellen", "janet yellen", "powell", "jerome powell",
				},
			},
			{
				Type: EntityLocation,
				Phrases: []string{
					// Countries
					"usa", "united states", "america", "us", "china", "india",
					"canada", "mexico", "japan", "germany", "france", "uk",
					"united kingdom", "britain", "russia", "australia", "brazil",
					"south korea", "italy", "spain", "eu", "european union",
					// Regions
					"asia", "europe", "north america", "africa", "middle east",
					// Cities
					"washington", "beijing", "new delhi", "london", "tokyo",
					"brussels", "moscow", "ottawa",
				},
			},
			{
				Type: EntityOrg,
				Phrases: []string{
					// News organizations
					"bbc", "cnn", "fox news", "reuters", "bloomberg", "wsj",
					"wall street journal", "new york times", "nyt", "washington post",
					"financial times", "economist", "al jazeera", "abc news",
					"nbc", "msnbc", "cnbc", "forbes", "politico",
					// International organizations
					"wto", "world trade organization", "imf", "world bank",
					"un", "united nations", "nato", "oecd",
					// Companies
					"apple", "google", "amazon", "microsoft", "tesla", "walmart",
					"general motors", "gm", "ford", "boeing", "caterpillar",
					"harley davidson", "samsung", "huawei", "alibaba",
					// Government bodies
					"congress", "senate", "house", "white house", "treasury",
					"commerce department", "state department",
				},
			},
			{
				Type: EntityPolicy,
				Phrases: []string{
					"maga", "make america great again", "america first",
					"nafta", "usmca", "trade war", "section 232", "section 301",
					"reciprocal tariff", "national security tariff", "steel tariff",
					"aluminum tariff", "auto tariff", "trade deal", "trade agreement",
					"free trade", "protectionism", "tariff policy",
				},
			},
			{
				Type: EntitySector,
				Phrases: []string{
					"agriculture", "manufacturing", "automotive", "steel", "aluminum",
					"technology", "tech", "energy", "oil", "gas", "solar",
					"semiconductor", "electronics", "textile", "aerospace",
					"pharmaceuticals", "chemicals",
				},
			},
		},

		Patterns: []EntityPattern{
			{Type: EntityMoney, Expr: `(?i)\$\s*\d+(?:,\d{3})*(?:\.\d+)?\s*(?:billion|million|thousand|trillion|bn|mn|k|m|b)?`},
			{Type: EntityMoney, Expr: `(?i)\d+(?:,\d{3})*(?:\.\d+)?\s*(?:dollars|usd|yuan|euros?|pounds?)`},

			{Type: EntityPercent, Expr: `\d+(?:\.\d+)?\s*%`},
			{Type: EntityPercent, Expr: `(?i)\d+(?:\.\d+)?\s*percent`},

			{Type: EntityDate, Expr: `(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`},
			{Type: EntityDate, Expr: `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`},
			{Type: EntityDate, Expr: `(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2},?\s+\d{4}\b`},
			// Bare years are only dates in a tariff/trade context. RE2 has no
			// lookahead, so the context words are matched and the span is
			// narrowed to the year via the capture group.
			{Type: EntityDate, Expr: `(?i)\b(\d{4})\b\s+(?:tariff|trade|deal)`, Group: 1},

			{Type: EntityTariff, Expr: `(?i)\d+(?:\.\d+)?\s*%\s*tariff`},
			{Type: EntityTariff, Expr: `(?i)tariff\s+of\s+\d+(?:\.\d+)?\s*%`},

			{Type: EntityProduct, Expr: `(?i)\b(?:steel|aluminum|cars?|automobile|solar panels?|washing machines?|electronics?|semiconductors?|chips?|soybeans?|pork|beef|wheat|corn)\b`},
		},

		Relations: []RelationPattern{
			{
				SubjectTypes: []string{EntityPerson, EntityOrg, EntityLocation},
				Predicate:    RelAnnounces,
				ObjectTypes:  []string{EntityPolicy, EntityTariff, EntityMoney, EntityPercent},
				Connectors: []string{
					`announce[sd]?`, `propose[sd]?`, `introduce[sd]?`,
					`implement[sd]?`, `impose[sd]?`, `declare[sd]?`,
				},
			},
			{
				SubjectTypes: []string{EntityPerson, EntityOrg, EntityLocation},
				Predicate:    RelIncreases,
				ObjectTypes:  []string{EntityTariff, EntityPercent, EntityMoney},
				Connectors: []string{
					`increase[sd]?`, `raise[sd]?`, `boost[sd]?`, `hike[sd]?`, `up`,
				},
			},
			{
				SubjectTypes: []string{EntityPerson, EntityOrg, EntityLocation},
				Predicate:    RelDecreases,
				ObjectTypes:  []string{EntityTariff, EntityPercent, EntityMoney},
				Connectors: []string{
					`decrease[sd]?`, `reduce[sd]?`, `lower[sd]?`, `cut[s]?`,
					`slash(?:es)?`, `drop[s]?`,
				},
			},
			{
				SubjectTypes: []string{EntityOrg},
				Predicate:    RelReports,
				ObjectTypes:  []string{EntityPolicy, EntityPerson, EntityLocation, EntityOrg},
				Connectors: []string{
					`report[sd]?`, `state[sd]?`, `announce[sd]?`, `say[s]?`,
					`claim[sd]?`, `indicate[sd]?`,
				},
			},
			{
				SubjectTypes: []string{EntityLocation, EntityOrg},
				Predicate:    RelTradesWith,
				ObjectTypes:  []string{EntityLocation, EntityOrg},
				Connectors: []string{
					`trade[sd]?\s+with`, `trading\s+with`, `export[sd]?\s+to`,
					`import[sd]?\s+from`, `deal[s]?\s+with`,
				},
			},
			{
				SubjectTypes: []string{EntityPolicy, EntityTariff, EntityPerson},
				Predicate:    RelImpacts,
				ObjectTypes:  []string{EntitySector, EntityLocation, EntityOrg, EntityProduct},
				Connectors: []string{
					`impact[sd]?`, `affect[sd]?`, `influence[sd]?`, `hurt[s]?`,
					`harm[s]?`, `damage[sd]?`, `benefit[s]?`, `help[s]?`,
				},
			},
			{
				SubjectTypes: []string{EntityPerson, EntityOrg, EntityLocation},
				Predicate:    RelSupports,
				ObjectTypes:  []string{EntityPolicy, EntityPerson},
				Connectors: []string{
					`support[s]?`, `back[s]?`, `endorse[sd]?`, `favor[s]?`,
					`promote[sd]?`, `champion[s]?`,
				},
			},
			{
				SubjectTypes: []string{EntityPerson, EntityOrg, EntityLocation},
				Predicate:    RelOpposes,
				ObjectTypes:  []string{EntityPolicy, EntityPerson},
				Connectors: []string{
					`oppose[sd]?`, `against`, `reject[sd]?`, `resist[s]?`,
					`fight[s]?`, `criticize[sd]?`, `condemn[s]?`,
				},
			},
			{
				SubjectTypes: []string{EntityPerson, EntityLocation, EntityOrg},
				Predicate:    RelNegotiates,
				ObjectTypes:  []string{EntityPolicy, EntityPerson, EntityLocation},
				Connectors: []string{
					`negotiate[sd]?`, `discuss(?:es)?`, `talk[s]?\s+with`,
					`meet[s]?\s+with`, `negotiating\s+with`,
				},
			},
			{
				SubjectTypes: []string{EntityPolicy, EntityTariff, EntityPerson},
				Predicate:    RelTargets,
				ObjectTypes:  []string{EntityLocation, EntityProduct, EntitySector, EntityOrg},
				Connectors: []string{
					`target[s]?`, `aim[s]?\s+at`, `focus(?:es)?\s+on`,
					`directed\s+at`, `against`,
				},
			},
			{
				SubjectTypes: []string{EntityPerson},
				Predicate:    RelLeads,
				ObjectTypes:  []string{EntityOrg, EntityLocation},
				Connectors: []string{
					`lead[s]?`, `head[s]?`, `run[s]?`, `president\s+of`,
					`leader\s+of`, `prime\s+minister\s+of`,
				},
			},
			{
				SubjectTypes: []string{EntityLocation, EntityOrg},
				Predicate:    RelExports,
				ObjectTypes:  []string{EntityProduct, EntitySector, EntityMoney},
				Connectors:   []string{`export[s]?`, `sell[s]?`, `ship[s]?`, `send[s]?`},
			},
			{
				SubjectTypes: []string{EntityLocation, EntityOrg},
				Predicate:    RelImports,
				ObjectTypes:  []string{EntityProduct, EntitySector, EntityMoney},
				Connectors:   []string{`import[s]?`, `buy[s]?`, `purchase[s]?`, `receive[s]?`},
			},
		},

		Fallbacks: []FallbackRule{
			{SubjectType: EntityPerson, ObjectType: EntityPolicy, Predicate: RelAssociatedWith},
			{SubjectType: EntityPerson, ObjectType: EntityLocation, Predicate: RelAssociatedWith},
			{SubjectType: EntityPerson, ObjectType: EntityOrg, Predicate: RelAssociatedWith},
			{SubjectType: EntityLocation, ObjectType: EntityLocation, Predicate: RelRelatedTo},
			{SubjectType: EntityLocation, ObjectType: EntityPolicy, Predicate: RelRelatedTo},
			{SubjectType: EntityLocation, ObjectType: EntitySector, Predicate: RelHasSector},
			{SubjectType: EntityLocation, ObjectType: EntityProduct, Predicate: RelProduces},
			{SubjectType: EntityOrg, ObjectType: EntityPolicy, Predicate: RelRelatedTo},
			{SubjectType: EntityOrg, ObjectType: EntityLocation, Predicate: RelOperatesIn},
			{SubjectType: EntityPolicy, ObjectType: EntitySector, Predicate: RelAffects},
			{SubjectType: EntityPolicy, ObjectType: EntityProduct, Predicate: RelAffects},
			{SubjectType: EntityTariff, ObjectType: EntityProduct, Predicate: RelAppliesTo},
			{SubjectType: EntityTariff, ObjectType: EntityLocation, Predicate: RelAppliesTo},
			{SubjectType: EntityPercent, ObjectType: EntityProduct, Predicate: RelAppliesTo},
			{SubjectType: EntityMoney, ObjectType: EntityLocation, Predicate: RelRelatedTo},
		},

		DefaultPredicate: RelMentionedWith,

		Aliases: map[string]string{
			"united states":            "USA",
			"america":                  "USA",
			"us":                       "USA",
			"united kingdom":           "UK",
			"britain":                  "UK",
			"european union":           "EU",
			"world trade organization": "WTO",
			"united nations":           "UN",
			"wall street journal":      "WSJ",
			"new york times":           "NYT",
			"general motors":           "GM",
			"make america great again": "MAGA",
		},

		Acronyms: []string{
			"USA", "UK", "EU", "UN", "WTO", "IMF", "NATO", "OECD",
			"CNN", "BBC", "ABC", "NBC", "NYT", "WSJ", "MSNBC", "CNBC",
			"USMCA", "NAFTA", "GM", "MAGA",
		},
	}
}
