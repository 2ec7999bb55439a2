// Package report renders inventories, comparison results and column
// mapping documents as text tables, markdown, CSV and JSON.
package report

import (
	"fmt"
	"strings"

	"github.com/modelparity/modelparity/pkg/catalog"
)

// DefaultTeam is the owner recorded for domains without a mapping entry.
const DefaultTeam = "Data Platform Team"

// TeamMapping resolves owning teams from model domains.
type TeamMapping map[string]string

// Owner returns the team for a domain, falling back to DefaultTeam.
func (tm TeamMapping) Owner(domain string) string {
	if team, ok := tm[strings.ToLower(domain)]; ok {
		return team
	}
	return DefaultTeam
}

// ruleLabel tags a column as pass-through (R3) or transformed (R3+).
func ruleLabel(c catalog.Column) string {
	if c.Transformed {
		return "R3+"
	}
	return "R3"
}

// logicalName turns a snake_case identifier into a spaced title label.
func logicalName(column string) string {
	words := strings.Split(column, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

const conditionDisplayLimit = 50

// displayLogic shortens WHEN conditions inside reconstructed
// conditional expressions for display. The stored expression is never
// truncated.
func displayLogic(expr string) string {
	if !strings.Contains(expr, "CASE ") || !strings.Contains(expr, "WHEN ") {
		return expr
	}
	segments := strings.Split(expr, " | ")
	for i, seg := range segments {
		idx := strings.Index(seg, "WHEN ")
		if idx < 0 {
			continue
		}
		rest := seg[idx+len("WHEN "):]
		thenIdx := strings.Index(rest, " THEN ")
		if thenIdx < 0 {
			continue
		}
		cond := rest[:thenIdx]
		if len(cond) > conditionDisplayLimit {
			cond = cond[:conditionDisplayLimit-3] + "..."
			segments[i] = seg[:idx] + "WHEN " + cond + rest[thenIdx:]
		}
	}
	return strings.Join(segments, " | ")
}

const enumDisplayLimit = 10

// enumDisplay renders enum values, capped for readability.
func enumDisplay(values []string) string {
	if len(values) == 0 {
		return ""
	}
	shown := values
	if len(shown) > enumDisplayLimit {
		shown = shown[:enumDisplayLimit]
	}
	out := strings.Join(shown, ", ")
	if len(values) > enumDisplayLimit {
		out += fmt.Sprintf(" ... (%d total)", len(values))
	}
	return out
}

// modelFlags summarizes a record's parse state for listings.
func modelFlags(m catalog.Model) string {
	var flags []string
	if m.Degraded {
		flags = append(flags, "degraded")
	}
	if m.BestEffort {
		flags = append(flags, "best-effort")
	}
	return strings.Join(flags, ", ")
}
