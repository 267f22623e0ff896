package campaign

import (
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// assign picks the single campaign type of a group. A catalog hint wins;
// confident COMMERCIAL, LOCAL and NAVIGATIONAL groups go to SEARCH; the rest
// become Performance Max asset themes.
func (b *Builder) assign(g *group) Type {
	if b.catalog(g) {
		return TypeShopping
	}
	if g.intent != keyword.IntentInformational && g.meanConfidence() >= b.policy.MinSearchConfidence {
		return TypeSearch
	}
	return TypePerformanceMax
}

// catalog reports whether any member was seen in a product listing or
// contains a configured catalog term.
func (b *Builder) catalog(g *group) bool {
	for _, m := range g.members {
		if m.Catalog {
			return true
		}
		for _, w := range m.Words() {
			if _, ok := b.catalogTerms[w]; ok {
				return true
			}
		}
	}
	return false
}

func themeType(in keyword.Intent) ThemeType {
	switch in {
	case keyword.IntentCommercial:
		return ThemeProductCategory
	case keyword.IntentLocal:
		return ThemeGeographic
	case keyword.IntentNavigational:
		return ThemeBrand
	default:
		return ThemeUseCase
	}
}

func audienceSignals(t ThemeType) []AudienceSignal {
	switch t {
	case ThemeProductCategory:
		return []AudienceSignal{SignalProductSearchers, SignalWebsiteVisitors, SignalSimilarToConverters}
	case ThemeUseCase:
		return []AudienceSignal{SignalInMarket, SignalContentEngagement, SignalCustomIntent}
	case ThemeGeographic:
		return []AudienceSignal{SignalLocalArea, SignalNearBusiness, SignalLocalServiceSearchers}
	default:
		return []AudienceSignal{SignalWebsiteVisitors, SignalSimilarAudiences, SignalDemographic}
	}
}

func optimizationFocus(t ThemeType) OptimizationFocus {
	switch t {
	case ThemeProductCategory:
		return FocusConversionValue
	case ThemeUseCase:
		return FocusConversionVolume
	case ThemeGeographic:
		return FocusLocalActions
	default:
		return FocusBrandAwareness
	}
}

// adSuggestions features the group's best-scoring keyword; the first of
// equal scores wins.
func adSuggestions(in keyword.Intent, members []*keyword.Record) []AdSuggestion {
	if len(members) == 0 {
		return nil
	}
	top := members[0]
	for _, m := range members[1:] {
		if m.Score > top.Score {
			top = m
		}
	}

	var templates []AdTemplate
	switch in {
	case keyword.IntentCommercial:
		templates = []AdTemplate{AdBestOf, AdProfessional}
	case keyword.IntentInformational:
		templates = []AdTemplate{AdLearnAbout}
	case keyword.IntentLocal:
		templates = []AdTemplate{AdLocal}
	default:
		templates = []AdTemplate{AdGeneric}
	}
	out := make([]AdSuggestion, len(templates))
	for i, t := range templates {
		out[i] = AdSuggestion{Template: t, Keyword: top.Text}
	}
	return out
}
