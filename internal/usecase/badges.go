package usecase

import "strings"

// FallbackBadge labels agents missing from the table.
const FallbackBadge = "ALPHA MODEL"

var defaultBadges = map[string]string{
	"Buffett":       "ALPHA | VALUE",
	"Wood":          "ALPHA | GROWTH",
	"Munger":        "ALPHA | QUALITY",
	"Fisher":        "ALPHA | GROWTH",
	"Ackman":        "ALPHA | ACTIVIST",
	"Burry":         "ALPHA | CONTRARIAN",
	"Graham":        "ALPHA | VALUE",
	"Lynch":         "ALPHA | GARP",
	"Druckenmiller": "ALPHA | MACRO",
	"Damodaran":     "ALPHA | VALUATION",
	"Pabrai":        "ALPHA | CLONER",
	"Jhunjhunwala":  "ALPHA | MOMENTUM",

	"PortfolioManager":   "PCM | MVO",
	"RiskManager":        "RMM | GATE",
	"TechnicalAnalyst":   "INDICATOR | SWEEP",
	"FundamentalAnalyst": "DATA | AUDIT",
	"SentimentAnalyst":   "SOCIAL | AGG",
}

// BadgeTable maps agent identifiers to their role label. It is read-only
// after construction.
type BadgeTable struct {
	badges map[string]string
}

// NewBadgeTable starts from the built-in roles; extra entries override them.
func NewBadgeTable(extra map[string]string) *BadgeTable {
	b := make(map[string]string, len(defaultBadges)+len(extra))
	for k, v := range defaultBadges {
		b[k] = v
	}
	for k, v := range extra {
		if k = strings.TrimSpace(k); k != "" && v != "" {
			b[k] = v
		}
	}
	return &BadgeTable{badges: b}
}

// Lookup returns the badge for agent or FallbackBadge.
func (t *BadgeTable) Lookup(agent string) string {
	if badge, ok := t.badges[agent]; ok {
		return badge
	}
	return FallbackBadge
}
