// Package assistant implements the orchestration core of the Solo in
// Public chat: per-request context, prompt construction, model
// routing, handover escalation and the orchestrator tying them to the
// memory, knowledge and telemetry collaborators.
package assistant

import (
	"strings"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
)

// Tier is the service level of the current session.
type Tier string

const (
	TierTrial   Tier = "trial"
	TierPremium Tier = "premium"
	TierPublic  Tier = "public"
)

// LeadInformation carries the caller-supplied lead state. A lead whose
// status is "synced" upgrades the session to premium.
type LeadInformation struct {
	ID          string `json:"id,omitempty"`
	SubmittedAt string `json:"submittedAt,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Context is the per-request derived value handed to the prompt
// builder and the router. It is computed fresh on every call and never
// persisted.
type Context struct {
	SessionID string           `json:"sessionId"`
	Locale    string           `json:"locale"`
	UserTier  Tier             `json:"userTier"`
	Lead      *LeadInformation `json:"leadInformation,omitempty"`
}

// NewContext derives the request context: the locale is reduced to its
// primary subtag (default "pt") and the tier is a pure function of the
// lead status.
func NewContext(sessionID, locale string, lead *LeadInformation) Context {
	normalized := strings.Split(locale, "-")[0]
	if normalized == "" {
		normalized = "pt"
	}

	tier := TierTrial
	if lead != nil && lead.Status == "synced" {
		tier = TierPremium
	}

	return Context{
		SessionID: sessionID,
		Locale:    normalized,
		UserTier:  tier,
		Lead:      lead,
	}
}

// Response is the transient result of one processed message.
type Response struct {
	Message           string              `json:"message"`
	Model             string              `json:"model"`
	KnowledgeApplied  []knowledge.Snippet `json:"knowledgeApplied"`
	HandoverTriggered bool                `json:"handoverTriggered"`
}
