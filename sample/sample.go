// Package sample generates synthetic tariff posts for demos, benchmarks
// and tests. Posts are filled from a fixed set of templates and entity
// tables, so every surface form the generator emits is recognizable by
// the default lexicon.
package sample

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brunobiangulo/tradekg/pipeline"
)

var templates = []string{
	"Trump announces {rate}% tariff on {country} imports worth ${amount} billion",
	"Biden and {leader} discuss trade deal in {city}",
	"BBC reports that {product} tariffs impact {sector} sector",
	"{country} exports {product} to USA",
	"The White House opposes the {policy} trade agreement",
	"{leader} increases tariffs on {product} from {country}",
	"CNN reports: {country} threatens retaliation against American tariffs",
	"{organization} warns that tariff policy will harm {sector}",
	"Steel and aluminum tariffs announced for imports from {country}",
	"Manufacturing sector concerned about {policy} impact on {product}",
	"{leader} negotiates with {country} over trade disputes",
	"Trade war escalates as {country} imposes {rate}% tariff on US goods",
	"{organization} supports MAGA tariff policy against {country}",
	"Farmers worry about {product} exports to {country}",
	"WTO rules against {country} tariff measures",
	"{leader} at {event}: America First trade policy will create jobs",
	"Al Jazeera: {country} and USA reach temporary trade agreement",
	"Automotive industry faces uncertainty over {rate}% car tariffs",
	"{country} accuses USA of unfair trade practices",
	"Wall Street Journal: Tariffs on {product} raise consumer prices",
	"USMCA replaces NAFTA with stricter manufacturing requirements",
	"{organization} analysis shows tariffs cost ${amount} billion annually",
	"{leader} threatens {country} with additional {rate}% tariffs",
	"Small businesses struggle with increased costs from {product} tariffs",
	"China retaliates with tariffs on American {product}",
}

var (
	leaders       = []string{"Trump", "Biden", "Modi", "Xi Jinping", "Trudeau", "Macron", "Johnson"}
	countries     = []string{"China", "India", "Mexico", "Canada", "EU", "Japan", "Germany", "UK"}
	products      = []string{"steel", "aluminum", "cars", "agricultural products", "soybeans", "solar panels", "electronics"}
	sectors       = []string{"manufacturing", "agriculture", "automotive", "technology", "energy"}
	organizations = []string{"WTO", "IMF", "World Bank", "Bloomberg", "Reuters", "Forbes"}
	policies      = []string{"NAFTA", "USMCA", "Section 232", "Section 301", "MAGA"}
	cities        = []string{"Washington", "Beijing", "New Delhi", "Brussels", "Tokyo", "Ottawa"}
	events        = []string{"G20 Summit", "Trade Conference", "Press Conference", "White House Meeting"}
	rates         = []int{10, 15, 20, 25, 30, 35}
	amounts       = []int{50, 100, 150, 200, 250, 300}

	usernames = []string{
		"trade_policy_wonk", "economic_observer", "tariff_analyst", "global_trader",
		"policy_watcher", "economic_news", "trade_expert", "political_junkie",
		"retroanduwu24", "Opioid-Connoisseur", "Professional-Kale216",
		"market_analyst", "trade_monitor", "policy_researcher", "econ_student",
	}
)

var baseDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generate produces n synthetic posts. The same n and seed always
// produce the same posts.
func Generate(n int, seed int64) []pipeline.Post {
	rng := rand.New(rand.NewSource(seed))
	posts := make([]pipeline.Post, 0, n)
	for i := 0; i < n; i++ {
		template := pick(rng, templates)

		// Every placeholder is drawn per post whether the template
		// uses it or not, so the stream stays aligned across templates.
		filler := strings.NewReplacer(
			"{rate}", strconv.Itoa(pickInt(rng, rates)),
			"{country}", pick(rng, countries),
			"{amount}", strconv.Itoa(pickInt(rng, amounts)),
			"{leader}", pick(rng, leaders),
			"{product}", pick(rng, products),
			"{sector}", pick(rng, sectors),
			"{organization}", pick(rng, organizations),
			"{policy}", pick(rng, policies),
			"{city}", pick(rng, cities),
			"{event}", pick(rng, events),
		)
		text := filler.Replace(template)

		postDate := baseDate.AddDate(0, 0, rng.Intn(301))
		link := fmt.Sprintf("https://reddit.com/r/Tariffs/comments/post%d", i)

		posts = append(posts, pipeline.Post{
			ID:        link,
			Text:      text,
			Author:    pick(rng, usernames),
			Link:      link,
			CreatedAt: postDate.Format("2006-01-02 15:04:05"),
			Relevance: math.Round((0.6+rng.Float64()*0.4)*100) / 100,
			Upvotes:   10 + rng.Intn(491),
			Comments:  5 + rng.Intn(96),
		})
	}
	return posts
}

// WriteCSV saves posts in the dataset layout the CSV loader reads,
// creating parent directories as needed.
func WriteCSV(path string, posts []pipeline.Post) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sample: creating output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sample: creating CSV: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"datetime_utc", "username", "post_link", "text_content",
		"relevance_score", "upvotes", "comments_count",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("sample: writing CSV header: %w", err)
	}
	for _, p := range posts {
		row := []string{
			p.CreatedAt,
			p.Author,
			p.Link,
			p.Text,
			strconv.FormatFloat(p.Relevance, 'g', -1, 64),
			strconv.Itoa(p.Upvotes),
			strconv.Itoa(p.Comments),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("sample: writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("sample: flushing CSV: %w", err)
	}
	return nil
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func pickInt(rng *rand.Rand, options []int) int {
	return options[rng.Intn(len(options))]
}
