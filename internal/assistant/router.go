package assistant

import (
	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/metrics"
	"github.com/duhenri9/solo-in-public/internal/model"
)

const (
	// knowledgeDepthThreshold upgrades to the premium model when at
	// least this many snippets back the answer.
	knowledgeDepthThreshold = 2
	// longMessageThreshold upgrades long questions to the premium model.
	longMessageThreshold = 400
)

// RoutingInput feeds the model selection rule.
type RoutingInput struct {
	Context       Context
	Knowledge     []knowledge.Snippet
	MessageLength int
}

// Router picks a generator per message and feeds usage back into the
// performance collector. Either hosted slot may be nil when the
// corresponding provider is not configured; the offline model is the
// final fallback and is always present.
type Router struct {
	premium   model.Generator
	secondary model.Generator
	offline   model.Generator
	collector *metrics.Collector
}

func NewRouter(premium, secondary, offline model.Generator, collector *metrics.Collector) *Router {
	return &Router{
		premium:   premium,
		secondary: secondary,
		offline:   offline,
		collector: collector,
	}
}

// SelectModel applies the routing rule: premium sessions, answers
// backed by deep knowledge, or long messages go to the premium model.
// Everything else takes the secondary model when available.
func (r *Router) SelectModel(in RoutingInput) model.Generator {
	premiumWorthy := in.Context.UserTier == TierPremium ||
		len(in.Knowledge) >= knowledgeDepthThreshold ||
		in.MessageLength > longMessageThreshold

	if premiumWorthy && r.premium != nil {
		return r.premium
	}
	if r.secondary != nil {
		return r.secondary
	}
	return r.offline
}

// RecordUsage forwards per-message stats to the collector.
func (r *Router) RecordUsage(modelName string, usage metrics.Usage) {
	r.collector.RecordUsage(modelName, usage)
}

// RecordHandover counts an escalation against the model that produced
// the exchange.
func (r *Router) RecordHandover(modelName string) {
	r.collector.RecordHandover(modelName)
}
