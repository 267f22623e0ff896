package campaign

import (
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

func (b *Builder) recommend(records []*keyword.Record) Recommendations {
	recs := Recommendations{
		HighVolumeLowScore: []string{},
		HighBid:            []string{},
		Opportunities:      []string{},
		InvalidBids:        []string{},
	}
	p := b.policy
	for _, r := range records {
		if r.Volume > p.HighVolumeThreshold && r.Score < p.LowScoreThreshold {
			recs.HighVolumeLowScore = append(recs.HighVolumeLowScore, r.Text)
		}
		if r.Bid >= p.HighBidThreshold {
			recs.HighBid = append(recs.HighBid, r.Text)
		}
		if r.Competition <= p.OpportunityCompetition && r.Score >= p.OpportunityScore {
			recs.Opportunities = append(recs.Opportunities, r.Text)
		}
		if r.BidInvalid {
			recs.InvalidBids = append(recs.InvalidBids, r.Text)
		}
	}
	return recs
}

func distribution(records []*keyword.Record) Distribution {
	var d Distribution
	for _, r := range records {
		switch {
		case r.Score >= 70:
			d.High++
		case r.Score >= 40:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}
