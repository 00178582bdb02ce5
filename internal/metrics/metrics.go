package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"adsight/internal/domain"
)

var (
	// ErrNoData is returned when a selection is attempted over an empty set.
	ErrNoData = errors.New("no aggregates to select from")

	// ErrAllUndefined is returned when every candidate ratio is undefined,
	// so no maximum exists.
	ErrAllUndefined = errors.New("ratio is undefined for every channel")

	// ErrUnknownRatio is returned for a ratio name outside the known set.
	ErrUnknownRatio = errors.New("unknown ratio")
)

// Ratio names accepted by BestChannel.
const (
	RatioCostPerConversion = "cost_per_conversion"
	RatioReturnOnSpend     = "return_on_spend"
	RatioClickThroughRate  = "click_through_rate"
)

// SafeDiv returns num/den, or NaN when den is not positive. Zero and
// negative denominators never raise; the NaN sentinel propagates instead.
func SafeDiv(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return math.NaN()
}

// IsUndefined reports whether v is the undefined-ratio sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

func derive(spend, revenue, impressions, clicks, conversions float64) domain.DerivedMetrics {
	return domain.DerivedMetrics{
		CostPerConversion: SafeDiv(spend, conversions),
		ReturnOnSpend:     SafeDiv(revenue, spend),
		ClickThroughRate:  SafeDiv(clicks, impressions),
	}
}

// Derive augments every record with its derived ratios. The input is not
// modified; a row with a zero denominator gets the sentinel without
// affecting any other row.
func Derive(records []domain.CampaignRecord) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, domain.EnrichedRecord{
			CampaignRecord: r,
			Metrics:        derive(r.Spend, r.Revenue, r.Impressions, r.Clicks, r.Conversions),
		})
	}
	return out
}

// AggregateByChannel groups records by channel label, sums the raw counters
// per group and recomputes the ratios on the summed totals. Averaging
// per-row ratios would weight channels wrong, so ratios are always derived
// from sums. The result is sorted by channel label ascending.
func AggregateByChannel(records []domain.CampaignRecord) []domain.ChannelAggregate {
	byChannel := make(map[string]*domain.ChannelAggregate)
	for _, r := range records {
		agg, ok := byChannel[r.Channel]
		if !ok {
			agg = &domain.ChannelAggregate{Channel: r.Channel}
			byChannel[r.Channel] = agg
		}
		agg.Spend += r.Spend
		agg.Revenue += r.Revenue
		agg.Impressions += r.Impressions
		agg.Clicks += r.Clicks
		agg.Conversions += r.Conversions
	}
	out := make([]domain.ChannelAggregate, 0, len(byChannel))
	for _, agg := range byChannel {
		agg.Metrics = derive(agg.Spend, agg.Revenue, agg.Impressions, agg.Clicks, agg.Conversions)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

func ratioOf(agg domain.ChannelAggregate, ratio string) (float64, error) {
	switch ratio {
	case RatioCostPerConversion:
		return agg.Metrics.CostPerConversion, nil
	case RatioReturnOnSpend:
		return agg.Metrics.ReturnOnSpend, nil
	case RatioClickThroughRate:
		return agg.Metrics.ClickThroughRate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRatio, ratio)
	}
}

// BestChannel returns the channel with the maximum value of the named ratio,
// ignoring channels where the ratio is undefined. Aggregates are scanned in
// the order given and only a strictly greater value replaces the current
// best, so with the sorted output of AggregateByChannel ties resolve to the
// lexicographically smallest channel label.
func BestChannel(aggs []domain.ChannelAggregate, ratio string) (string, float64, error) {
	if len(aggs) == 0 {
		return "", 0, ErrNoData
	}
	var (
		bestChannel string
		bestValue   float64
		found       bool
	)
	for _, agg := range aggs {
		v, err := ratioOf(agg, ratio)
		if err != nil {
			return "", 0, err
		}
		if IsUndefined(v) {
			continue
		}
		if !found || v > bestValue {
			bestChannel, bestValue, found = agg.Channel, v, true
		}
	}
	if !found {
		return "", 0, fmt.Errorf("%w: %s", ErrAllUndefined, ratio)
	}
	return bestChannel, bestValue, nil
}
