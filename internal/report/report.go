// Package report renders plans for people and for other tools.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/semplan/pkg/semplan"
	"github.com/cognicore/semplan/pkg/semplan/campaign"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// WriteJSON writes the plan as indented JSON.
func WriteJSON(w io.Writer, plan *semplan.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// Priorities phrases the plan's recommendations, most urgent first.
// Empty lists produce no line.
func Priorities(rec campaign.Recommendations) []string {
	var out []string
	if n := len(rec.InvalidBids); n > 0 {
		out = append(out, fmt.Sprintf("Review business constraints: %d %s could not be bid", n, plural(n, "keyword", "keywords")))
	}
	if n := len(rec.HighVolumeLowScore); n > 0 {
		out = append(out, fmt.Sprintf("Optimize %d high-volume, low-performing %s", n, plural(n, "keyword", "keywords")))
	}
	if n := len(rec.HighBid); n > 0 {
		out = append(out, fmt.Sprintf("Monitor %d high-CPC %s for efficiency", n, plural(n, "keyword", "keywords")))
	}
	if n := len(rec.Opportunities); n > 0 {
		out = append(out, fmt.Sprintf("Capitalize on %d low-competition, high-performance %s", n, plural(n, "opportunity", "opportunities")))
	}
	return out
}

// WriteSummary writes a plain-text overview of the plan.
func WriteSummary(w io.Writer, plan *semplan.Plan) error {
	p := &printer{w: w}

	title := plan.ID
	if plan.Name != "" {
		title += " (" + plan.Name + ")"
	}
	p.printf("Plan %s, created %s\n", title, plan.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	p.printf("Candidates: %d  Keywords: %d  Bids computed: %d  Flagged: %d\n",
		plan.Candidates, len(plan.Keywords), plan.Bids.Computed, plan.Bids.Invalid)
	if plan.Bids.Invalid == 0 {
		p.printf("Bid ceiling: %s\n", money(plan.Bids.Ceiling))
	}

	p.printf("\nBudget allocation (%s/month)\n", money(plan.Budget.Total))
	for _, c := range plan.Campaigns {
		share := 0.0
		if plan.Budget.Total > 0 {
			share = c.Budget / plan.Budget.Total * 100
		}
		p.printf("  %-16s %12s  %5.1f%%  daily %s\n", c.Type, money(c.Budget), share, money(c.DailyBudget))
	}

	p.printf("\nCampaigns\n")
	for _, c := range plan.Campaigns {
		unit := "ad groups"
		if len(c.AdGroups) > 0 && c.AdGroups[0].Kind == campaign.KindAssetTheme {
			unit = "asset themes"
		}
		p.printf("  %-16s %d %s, %d keywords, %s\n", c.Type, len(c.AdGroups), unit, c.KeywordCount(), projection(c.Projection))
	}
	p.printf("  %-16s %s\n", "TOTAL", projection(plan.Totals))
	writeAdGroups(p, plan.Campaigns)

	d := plan.Distribution
	p.printf("\nPerformance: %d high (70+), %d medium (40-69), %d low (<40)\n", d.High, d.Medium, d.Low)
	p.printf("Intent: %s\n", intentMix(plan.Keywords))

	if priorities := Priorities(plan.Recommendations); len(priorities) > 0 {
		p.printf("\nRecommendations\n")
		for _, line := range priorities {
			p.printf("  - %s\n", line)
		}
	}

	c := plan.Constraints
	p.printf("\nTargets: ROAS %s, conversion rate %.1f%%, average order value %s\n",
		strconv.FormatFloat(c.TargetROAS*100, 'f', -1, 64)+"%", c.TargetConversionRate*100, money(c.AverageOrderValue))
	return p.err
}

var csvHeader = []string{
	"campaign", "ad_group", "intent", "keyword", "match_types",
	"estimated_volume", "estimated_cpc", "performance_score", "recommended_bid", "bid_strategy",
}

// WriteKeywordsCSV writes one row per keyword placement, in campaign and
// ad group order.
func WriteKeywordsCSV(w io.Writer, plan *semplan.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range plan.Campaigns {
		for _, g := range c.AdGroups {
			for _, m := range g.Keywords {
				matches := make([]string, len(m.MatchTypes))
				for i, mt := range m.MatchTypes {
					matches[i] = string(mt)
				}
				row := []string{
					string(c.Type), g.Name, g.Intent.String(), m.Text, strings.Join(matches, "|"),
					strconv.FormatInt(m.Volume, 10),
					strconv.FormatFloat(m.CPC, 'f', 2, 64),
					strconv.Itoa(m.Score),
					strconv.FormatFloat(m.Bid, 'f', 2, 64),
					string(m.Strategy),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func projection(pr campaign.Projection) string {
	cpa := "n/a"
	if pr.CPA != nil {
		cpa = money(*pr.CPA)
	}
	return fmt.Sprintf("%.0f clicks, %.0f conversions, CPA %s", pr.Clicks, pr.Conversions, cpa)
}

func intentMix(records []*keyword.Record) string {
	counts := make(map[keyword.Intent]int)
	for _, r := range records {
		counts[r.Intent]++
	}
	var parts []string
	for _, in := range keyword.Intents() {
		if n := counts[in]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", in, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
