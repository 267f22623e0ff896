package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cognicore/semplan/pkg/semplan/campaign"
)

// Ad is the wording of a responsive search ad.
type Ad struct {
	Headline1   string `json:"headline_1"`
	Headline2   string `json:"headline_2"`
	Description string `json:"description"`
}

// AdCopy words an ad suggestion around its featured keyword.
func AdCopy(s campaign.AdSuggestion) Ad {
	kw := cases.Title(language.English).String(s.Keyword)
	switch s.Template {
	case campaign.AdBestOf:
		return Ad{"Best " + kw, "Compare Prices & Save", "Find the perfect solution for your needs. Free quotes available."}
	case campaign.AdProfessional:
		return Ad{"Professional " + kw, "Get Started Today", "Trusted by thousands. See why customers choose us."}
	case campaign.AdLearnAbout:
		return Ad{"Learn About " + kw, "Free Expert Guide", "Everything you need to know. Download our comprehensive guide."}
	case campaign.AdLocal:
		return Ad{"Local " + kw, "Near You", "Serving your area with professional service. Call now for quote."}
	default:
		return Ad{kw, "Quality Service", "Professional solutions tailored to your needs."}
	}
}

var signalLabels = map[campaign.AudienceSignal]string{
	campaign.SignalProductSearchers:      "Users who searched for similar products",
	campaign.SignalWebsiteVisitors:       "Previous website visitors",
	campaign.SignalSimilarToConverters:   "Similar to your converters",
	campaign.SignalInMarket:              "In-market for related products",
	campaign.SignalContentEngagement:     "Content engagement audiences",
	campaign.SignalCustomIntent:          "Custom intent audiences",
	campaign.SignalLocalArea:             "Local area targeting",
	campaign.SignalNearBusiness:          "Users near business locations",
	campaign.SignalLocalServiceSearchers: "Local service searchers",
	campaign.SignalSimilarAudiences:      "Similar audiences",
	campaign.SignalDemographic:           "Demographic targeting",
}

// SignalLabels words audience signals in order. Unknown signals fall back
// to their identifier.
func SignalLabels(signals []campaign.AudienceSignal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		if label, ok := signalLabels[s]; ok {
			out[i] = label
		} else {
			out[i] = string(s)
		}
	}
	return out
}

// FocusLabel words an optimization focus.
func FocusLabel(f campaign.OptimizationFocus) string {
	switch f {
	case campaign.FocusConversionValue:
		return "Conversion value optimization"
	case campaign.FocusConversionVolume:
		return "Conversion volume optimization"
	case campaign.FocusLocalActions:
		return "Local action optimization"
	case campaign.FocusBrandAwareness:
		return "Brand awareness and conversions"
	}
	return "Conversion optimization"
}

func writeAdGroups(p *printer, campaigns []campaign.Campaign) {
	header := false
	for _, c := range campaigns {
		for _, g := range c.AdGroups {
			if len(g.Ads) == 0 && g.Kind != campaign.KindAssetTheme {
				continue
			}
			if !header {
				p.printf("\nAd groups\n")
				header = true
			}
			p.printf("  %s / %s\n", c.Type, g.Name)
			for _, s := range g.Ads {
				ad := AdCopy(s)
				p.printf("    ad: %s | %s | %s\n", ad.Headline1, ad.Headline2, ad.Description)
			}
			if g.Kind == campaign.KindAssetTheme {
				p.printf("    budget %s, %s\n", money(g.AllocatedBudget), FocusLabel(g.OptimizationFocus))
				if len(g.AudienceSignals) > 0 {
					p.printf("    signals: %s\n", strings.Join(SignalLabels(g.AudienceSignals), "; "))
				}
			}
		}
	}
}
