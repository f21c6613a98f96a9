package badge

import (
	"strings"

	"github.com/dm/statusbadge/internal/model"
)

// Badge palette.
const (
	ColorGreen  model.Color = "#4c1"
	ColorOrange model.Color = "#fe7d37"
	ColorRed    model.Color = "#e05d44"
	ColorBlue   model.Color = "#007ec6"
	ColorAmber  model.Color = "#f1a33c"
	ColorGrey   model.Color = "#9f9f9f"
)

// colorRule maps any of its keywords, matched as a substring of the
// lower-cased status, to a color.
type colorRule struct {
	keywords []string
	color    model.Color
}

// colorRules is evaluated top to bottom; the first matching rule wins.
var colorRules = []colorRule{
	{[]string{"healthy", "operational", "ok"}, ColorGreen},
	{[]string{"degraded", "performance", "minor"}, ColorOrange},
	{[]string{"outage", "down", "major", "unavailable", "failed"}, ColorRed},
	{[]string{"maintenance", "scheduled"}, ColorBlue},
	{[]string{"investigating", "monitoring"}, ColorAmber},
}

// ColorFor returns the badge color for a free-text status. Unknown statuses
// are grey.
func ColorFor(status string) model.Color {
	s := strings.ToLower(status)
	for _, rule := range colorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.color
			}
		}
	}
	return ColorGrey
}
