// Package campaign groups scored keywords into ad groups, assigns each group
// to exactly one campaign type, splits the budget and projects performance.
package campaign

import (
	"fmt"
	"strings"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Type is a campaign type.
type Type string

const (
	TypeSearch         Type = "SEARCH"
	TypeShopping       Type = "SHOPPING"
	TypePerformanceMax Type = "PERFORMANCE_MAX"
)

// Types lists campaign types in emission order.
func Types() []Type {
	return []Type{TypeSearch, TypeShopping, TypePerformanceMax}
}

// ParseType converts a campaign type name (case-insensitive) to a Type.
// "pmax" is accepted as a short form.
func ParseType(name string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SEARCH":
		return TypeSearch, nil
	case "SHOPPING":
		return TypeShopping, nil
	case "PERFORMANCE_MAX", "PMAX":
		return TypePerformanceMax, nil
	}
	return "", fmt.Errorf("unknown campaign type %q", name)
}

// Kind distinguishes keyword ad groups from Performance Max asset themes.
type Kind string

const (
	KindKeywords   Kind = "KEYWORDS"
	KindAssetTheme Kind = "ASSET_THEME"
)

// MatchType is a keyword match type.
type MatchType string

const (
	MatchExact  MatchType = "EXACT"
	MatchPhrase MatchType = "PHRASE"
	MatchBroad  MatchType = "BROAD"
)

// ThemeType categorizes a Performance Max asset theme.
type ThemeType string

const (
	ThemeProductCategory ThemeType = "PRODUCT_CATEGORY"
	ThemeUseCase         ThemeType = "USE_CASE"
	ThemeGeographic      ThemeType = "GEOGRAPHIC"
	ThemeBrand           ThemeType = "BRAND"
)

// AudienceSignal is an audience hint attached to a Performance Max asset theme.
type AudienceSignal string

const (
	SignalProductSearchers      AudienceSignal = "SIMILAR_PRODUCT_SEARCHERS"
	SignalWebsiteVisitors       AudienceSignal = "WEBSITE_VISITORS"
	SignalSimilarToConverters   AudienceSignal = "SIMILAR_TO_CONVERTERS"
	SignalInMarket              AudienceSignal = "IN_MARKET"
	SignalContentEngagement     AudienceSignal = "CONTENT_ENGAGEMENT"
	SignalCustomIntent          AudienceSignal = "CUSTOM_INTENT"
	SignalLocalArea             AudienceSignal = "LOCAL_AREA"
	SignalNearBusiness          AudienceSignal = "NEAR_BUSINESS_LOCATIONS"
	SignalLocalServiceSearchers AudienceSignal = "LOCAL_SERVICE_SEARCHERS"
	SignalSimilarAudiences      AudienceSignal = "SIMILAR_AUDIENCES"
	SignalDemographic           AudienceSignal = "DEMOGRAPHIC"
)

// OptimizationFocus is the goal an asset theme is optimized toward.
type OptimizationFocus string

const (
	FocusConversionValue  OptimizationFocus = "CONVERSION_VALUE"
	FocusConversionVolume OptimizationFocus = "CONVERSION_VOLUME"
	FocusLocalActions     OptimizationFocus = "LOCAL_ACTIONS"
	FocusBrandAwareness   OptimizationFocus = "BRAND_AWARENESS"
)

// AdTemplate names a responsive search ad pattern. Wording is rendered by
// the presentation layer.
type AdTemplate string

const (
	AdBestOf       AdTemplate = "BEST_OF"
	AdProfessional AdTemplate = "PROFESSIONAL"
	AdLearnAbout   AdTemplate = "LEARN_ABOUT"
	AdLocal        AdTemplate = "LOCAL"
	AdGeneric      AdTemplate = "GENERIC"
)

// AdSuggestion pairs an ad pattern with the keyword it should feature.
type AdSuggestion struct {
	Template AdTemplate `json:"template"`
	Keyword  string     `json:"keyword"`
}

// Member is a keyword inside an ad group.
type Member struct {
	*keyword.Record
	MatchTypes []MatchType `json:"match_types,omitempty"`
}

// AdGroup is a named cluster of keywords sharing an intent and head term.
// Performance Max asset themes use Kind ASSET_THEME, carry no match types and
// get audience signals, an optimization focus and an equal slice of the
// campaign budget. Search ad groups get ad suggestions.
type AdGroup struct {
	Name              string            `json:"name"`
	Intent            keyword.Intent    `json:"intent"`
	Theme             string            `json:"theme"`
	Kind              Kind              `json:"kind"`
	ThemeType         ThemeType         `json:"theme_type,omitempty"`
	Catalog           bool              `json:"catalog,omitempty"`
	Confidence        float64           `json:"mean_confidence"`
	Volume            int64             `json:"total_volume"`
	AllocatedBudget   float64           `json:"allocated_budget,omitempty"`
	AudienceSignals   []AudienceSignal  `json:"audience_signals,omitempty"`
	OptimizationFocus OptimizationFocus `json:"optimization_focus,omitempty"`
	Ads               []AdSuggestion    `json:"ads,omitempty"`
	Keywords          []Member          `json:"keywords"`
}

// Projection is the estimated monthly performance of a campaign or plan.
// CPA is nil when conversions round to zero.
type Projection struct {
	Clicks      float64  `json:"clicks"`
	Conversions float64  `json:"conversions"`
	Cost        float64  `json:"cost"`
	CPA         *float64 `json:"cpa"`
}

// Campaign is one campaign of the plan.
type Campaign struct {
	Type          Type       `json:"type"`
	Budget        float64    `json:"budget"`
	DailyBudget   float64    `json:"daily_budget"`
	AdGroups      []AdGroup  `json:"ad_groups"`
	Projection    Projection `json:"projection"`
	ProductGroups []string   `json:"product_groups,omitempty"`
}

// KeywordCount returns the number of keywords across all ad groups.
func (c *Campaign) KeywordCount() int {
	n := 0
	for _, g := range c.AdGroups {
		n += len(g.Keywords)
	}
	return n
}

// Recommendations lists keywords that need attention. Phrasing is left to
// the presentation layer.
type Recommendations struct {
	HighVolumeLowScore []string `json:"high_volume_low_score"`
	HighBid            []string `json:"high_bid"`
	Opportunities      []string `json:"opportunities"`
	InvalidBids        []string `json:"invalid_bids"`
}

// Distribution counts keywords per performance band.
type Distribution struct {
	High   int `json:"high"`   // score >= 70
	Medium int `json:"medium"` // 40..69
	Low    int `json:"low"`    // < 40
}

// Result is the terminal output of the builder.
type Result struct {
	Campaigns       []Campaign      `json:"campaigns"`
	Totals          Projection      `json:"totals"`
	Recommendations Recommendations `json:"recommendations"`
	Distribution    Distribution    `json:"distribution"`
}

// Campaign returns the campaign of type t, or nil.
func (r *Result) Campaign(t Type) *Campaign {
	for i := range r.Campaigns {
		if r.Campaigns[i].Type == t {
			return &r.Campaigns[i]
		}
	}
	return nil
}
