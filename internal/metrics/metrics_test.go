package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/internal/domain"
)

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 2.5, SafeDiv(5, 2))
	assert.True(t, IsUndefined(SafeDiv(5, 0)))
	assert.True(t, IsUndefined(SafeDiv(0, 0)))
	assert.True(t, IsUndefined(SafeDiv(5, -1)))
}

func TestDeriveZeroConversions(t *testing.T) {
	rows := Derive([]domain.CampaignRecord{
		{Channel: "Google", Spend: 100, Revenue: 400, Impressions: 1000, Clicks: 50, Conversions: 0},
		{Channel: "Meta", Spend: 50, Revenue: 100, Impressions: 500, Clicks: 10, Conversions: 2},
	})
	require.Len(t, rows, 2)

	// Zero conversions yields the sentinel, not Inf and not a panic, and the
	// neighbouring row stays fully defined.
	assert.True(t, IsUndefined(rows[0].Metrics.CostPerConversion))
	assert.Equal(t, 4.0, rows[0].Metrics.ReturnOnSpend)
	assert.Equal(t, 0.05, rows[0].Metrics.ClickThroughRate)
	assert.Equal(t, 25.0, rows[1].Metrics.CostPerConversion)
}

func TestAggregateRecomputesRatiosFromSums(t *testing.T) {
	// Per-row ROAS values are 4.0 and 0.5; their mean is 2.25, but the
	// correct pooled ROAS is (40+50)/(10+100) ≈ 0.818.
	records := []domain.CampaignRecord{
		{Channel: "Email", Spend: 10, Revenue: 40},
		{Channel: "Email", Spend: 100, Revenue: 50},
	}
	aggs := AggregateByChannel(records)
	require.Len(t, aggs, 1)
	assert.Equal(t, "Email", aggs[0].Channel)
	assert.InDelta(t, 90.0/110.0, aggs[0].Metrics.ReturnOnSpend, 1e-12)
	assert.Less(t, aggs[0].Metrics.ReturnOnSpend, 1.0) // nowhere near the 2.25 mean of per-row ratios
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.Empty(t, AggregateByChannel(nil))
}

func TestAggregateSortedByChannel(t *testing.T) {
	aggs := AggregateByChannel([]domain.CampaignRecord{
		{Channel: "Meta", Spend: 1},
		{Channel: "Google", Spend: 1},
		{Channel: "Email", Spend: 1},
	})
	require.Len(t, aggs, 3)
	assert.Equal(t, []string{"Email", "Google", "Meta"}, []string{aggs[0].Channel, aggs[1].Channel, aggs[2].Channel})
}

func TestBestChannel(t *testing.T) {
	records := []domain.CampaignRecord{
		{Channel: "Google", Spend: 100, Revenue: 400, Conversions: 10, Impressions: 1000, Clicks: 50},
		{Channel: "Meta", Spend: 100, Revenue: 150, Conversions: 5, Impressions: 2000, Clicks: 40},
	}
	aggs := AggregateByChannel(records)

	channel, value, err := BestChannel(aggs, RatioReturnOnSpend)
	require.NoError(t, err)
	assert.Equal(t, "Google", channel)
	assert.Equal(t, 4.0, value)

	// Idempotent: the same input yields the same pair.
	again, v2, err := BestChannel(aggs, RatioReturnOnSpend)
	require.NoError(t, err)
	assert.Equal(t, channel, again)
	assert.Equal(t, value, v2)
}

func TestBestChannelTieBreak(t *testing.T) {
	aggs := AggregateByChannel([]domain.CampaignRecord{
		{Channel: "Meta", Spend: 10, Revenue: 30},
		{Channel: "Google", Spend: 20, Revenue: 60},
	})
	// Equal ROAS of 3.0 resolves to the lexicographically smallest channel.
	channel, value, err := BestChannel(aggs, RatioReturnOnSpend)
	require.NoError(t, err)
	assert.Equal(t, "Google", channel)
	assert.Equal(t, 3.0, value)
}

func TestBestChannelErrors(t *testing.T) {
	_, _, err := BestChannel(nil, RatioReturnOnSpend)
	assert.ErrorIs(t, err, ErrNoData)

	// Spend is zero everywhere, so ROAS is undefined for every channel.
	aggs := AggregateByChannel([]domain.CampaignRecord{
		{Channel: "Google", Revenue: 10},
		{Channel: "Meta", Revenue: 20},
	})
	_, _, err = BestChannel(aggs, RatioReturnOnSpend)
	assert.ErrorIs(t, err, ErrAllUndefined)

	_, _, err = BestChannel(aggs, "profit")
	assert.ErrorIs(t, err, ErrUnknownRatio)
}
