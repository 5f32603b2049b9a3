package debatewire

import "strings"

// Feed categories, in inference priority order.
const (
	CategoryBreaking   = "breaking"
	CategoryConspiracy = "conspiracy"
	CategoryTechnical  = "technical"
	CategoryStrategy   = "strategy"
	CategoryPrediction = "prediction"
	CategoryHistorical = "historical"
	CategoryDefault    = "default"
)

// Categories lists every category InferCategory can return.
var Categories = []string{
	CategoryBreaking,
	CategoryConspiracy,
	CategoryTechnical,
	CategoryStrategy,
	CategoryPrediction,
	CategoryHistorical,
	CategoryDefault,
}

// news-driven topics are prefixed "Breaking: <headline>"
const breakingMarker = "breaking:"

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryConspiracy, []string{
		"conspiracy", "sandbag", "illegal", "secret", "covering up", "cover-up", "loophole", "preferential",
		"manipulat", "suspicious", "gamed", "gaming", "exploit", "selectively", "violation", "cheat",
	}},
	{CategoryTechnical, []string{
		"floor", "aero", "front wing", "rear wing", "beam wing", "diffuser", "downforce", "power unit", "suspension", "cfd",
		"upgrade", "porpoising", "drs", "cooling", "chassis", "thermal", "b-spec", "technical",
	}},
	{CategoryStrategy, []string{
		"strategy", "undercut", "overcut", "pit stop", "1-stop", "2-stop", "3-stop", "safety car",
		"tyre allocation", "sacrifice", "prioritise", "prioritize", "defensive",
	}},
	{CategoryPrediction, []string{
		"will ", "who wins", "predict", "forecast", "future", "by season end", "by the end of", "win?",
	}},
	{CategoryHistorical, []string{
		"histor", "compare", " era", "was ", "legacy", "dominance", "senna", "schumacher",
	}},
}

// InferCategory classifies a topic by keyword membership. Categories are
// tried in priority order and the first match wins.
func InferCategory(topic string) string {
	t := strings.ToLower(strings.TrimSpace(topic))
	if t == "" {
		return CategoryDefault
	}
	if strings.HasPrefix(t, breakingMarker) {
		return CategoryBreaking
	}
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(t, kw) {
				return c.category
			}
		}
	}
	return CategoryDefault
}
