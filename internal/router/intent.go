// Package router maps a free-text question to a supported action and runs
// it. Detection stays a fixed keyword match by contract; what used to be
// inline string tests in the entry point is an explicit tagged dispatch so
// each intent can be routed and tested on its own.
package router

import (
	"encoding/json"
	"fmt"
	"strings"

	"adsight/internal/domain"
	"adsight/internal/metrics"
	"adsight/internal/service"
)

// Intent tags the action a question maps to.
type Intent int

const (
	// IntentUnknown means no supported intent matched.
	IntentUnknown Intent = iota

	// IntentBestROAS asks which channel had the best return on spend.
	IntentBestROAS

	// IntentKnowledge falls through to retrieval over the knowledge base.
	IntentKnowledge
)

// String returns the intent tag name.
func (i Intent) String() string {
	switch i {
	case IntentBestROAS:
		return "best_roas"
	case IntentKnowledge:
		return "knowledge"
	default:
		return "unknown"
	}
}

// Detect classifies a question. A question naming both ROAS and a channel
// routes to analytics; any other non-empty question routes to retrieval.
func Detect(question string) Intent {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return IntentUnknown
	}
	if strings.Contains(q, "roas") && strings.Contains(q, "channel") {
		return IntentBestROAS
	}
	return IntentKnowledge
}

// MarshalJSON renders the intent as its tag name.
func (i Intent) MarshalJSON() ([]byte, error) { return json.Marshal(i.String()) }

// Answer is the routed reply: which intent ran and its payload. Retrieval
// answers carry the composed context response; analytics answers carry the
// formatted sentence only.
type Answer struct {
	Intent    Intent            `json:"intent"`
	Text      string            `json:"text"`
	Retrieval *service.Response `json:"retrieval,omitempty"`
}

// Dispatcher runs a detected intent against the analytics and retrieval
// paths. Either path may be nil when a deployment only serves the other.
type Dispatcher struct {
	records []domain.CampaignRecord
	engine  *service.Engine
}

// NewDispatcher creates a dispatcher over the loaded campaign records and
// the retrieval engine.
func NewDispatcher(records []domain.CampaignRecord, engine *service.Engine) *Dispatcher {
	return &Dispatcher{records: records, engine: engine}
}

// Ask routes a question and executes the matching action. Failures are
// labeled with the stage that produced them so the caller can tell an
// aggregation failure from a retrieval one.
func (d *Dispatcher) Ask(question string, k int) (Answer, error) {
	intent := Detect(question)
	switch intent {
	case IntentBestROAS:
		aggs := metrics.AggregateByChannel(d.records)
		channel, roas, err := metrics.BestChannel(aggs, metrics.RatioReturnOnSpend)
		if err != nil {
			return Answer{}, fmt.Errorf("aggregation: %w", err)
		}
		return Answer{
			Intent: intent,
			Text:   fmt.Sprintf("The channel with the best ROAS was: %s (ROAS = %.2f).", channel, roas),
		}, nil
	case IntentKnowledge:
		if d.engine == nil {
			return Answer{}, fmt.Errorf("retrieval: no knowledge base configured")
		}
		resp, err := d.engine.Answer(question, k)
		if err != nil {
			return Answer{}, fmt.Errorf("retrieval: %w", err)
		}
		return Answer{Intent: intent, Text: resp.Context, Retrieval: &resp}, nil
	default:
		return Answer{
			Intent: intent,
			Text:   `Question not supported yet. Try: "Which channel had the best ROAS?"`,
		}, nil
	}
}
