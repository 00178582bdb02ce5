package domain

import "time"

// CampaignRecord is a single row of the campaigns table. All counters are
// non-negative; records are immutable once loaded.
type CampaignRecord struct {
	Date        time.Time
	Channel     string
	Spend       float64
	Revenue     float64
	Impressions float64
	Clicks      float64
	Conversions float64
}

// DerivedMetrics holds the ratios computed from raw counters. A ratio whose
// denominator is zero is NaN rather than an error; callers test with
// math.IsNaN before using a value.
type DerivedMetrics struct {
	CostPerConversion float64 // CPA: spend / conversions
	ReturnOnSpend     float64 // ROAS: revenue / spend
	ClickThroughRate  float64 // CTR: clicks / impressions
}

// EnrichedRecord is a CampaignRecord augmented with its derived ratios.
type EnrichedRecord struct {
	CampaignRecord
	Metrics DerivedMetrics
}

// ChannelAggregate is one row per distinct channel: summed counters plus
// ratios recomputed from those sums (never averaged from per-row ratios).
type ChannelAggregate struct {
	Channel     string
	Spend       float64
	Revenue     float64
	Impressions float64
	Clicks      float64
	Conversions float64
	Metrics     DerivedMetrics
}

// Document is the unit of knowledge submitted for indexing.
type Document struct {
	ID       string
	Path     string
	Text     string
	Metadata map[string]string
}

// Chunk is a bounded substring of a document, the atomic unit for embedding
// and retrieval. Metadata is inherited from the parent document.
type Chunk struct {
	DocumentID string            `json:"document_id"`
	ChunkID    string            `json:"chunk_id"`
	Text       string            `json:"text"`
	Index      int               `json:"index"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a matching chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}
