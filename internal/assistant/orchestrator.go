package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/duhenri9/solo-in-public/internal/knowledge"
	"github.com/duhenri9/solo-in-public/internal/memory"
	"github.com/duhenri9/solo-in-public/internal/metrics"
	"github.com/duhenri9/solo-in-public/internal/model"
	"github.com/duhenri9/solo-in-public/internal/telemetry"
)

// Input is one inbound chat message.
type Input struct {
	SessionID string
	Message   string
	Locale    string
	Lead      *LeadInformation
}

// Orchestrator runs the per-message pipeline: persist the user turn,
// retrieve knowledge, build the prompt, route and call a model,
// persist the reply, evaluate handover and report telemetry.
//
// Messages for the same session are serialized with a per-session
// mutex so that the memory window and handover evaluation always see a
// consistent history. Different sessions proceed concurrently.
type Orchestrator struct {
	memory         memory.Store
	knowledge      knowledge.Searcher
	router         *Router
	notifier       *Notifier
	telemetry      *telemetry.Recorder
	logger         *slog.Logger
	knowledgeLimit int

	sessionLocks sync.Map // session id -> *sync.Mutex
}

func NewOrchestrator(
	mem memory.Store,
	searcher knowledge.Searcher,
	router *Router,
	notifier *Notifier,
	recorder *telemetry.Recorder,
	knowledgeLimit int,
	logger *slog.Logger,
) *Orchestrator {
	if knowledgeLimit < 1 {
		knowledgeLimit = knowledge.DefaultLimit
	}
	return &Orchestrator{
		memory:         mem,
		knowledge:      searcher,
		router:         router,
		notifier:       notifier,
		telemetry:      recorder,
		logger:         logger,
		knowledgeLimit: knowledgeLimit,
	}
}

// ProcessMessage runs the full pipeline for one message. Collaborator
// failures degrade rather than abort: memory errors fall back to an
// empty history, a failing generator yields the apology reply, and
// handover or telemetry problems are logged and swallowed. The user
// always receives a reply.
func (o *Orchestrator) ProcessMessage(ctx context.Context, in Input) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	unlock := o.lockSession(in.SessionID)
	defer unlock()

	reqCtx := NewContext(in.SessionID, in.Locale, in.Lead)

	if err := o.memory.Append(ctx, in.SessionID, memory.NewMessage(memory.RoleUser, in.Message)); err != nil {
		o.logger.Warn("appending user message failed", "session_id", in.SessionID, "error", err)
	}

	snippets := o.knowledge.Search(ctx, in.Message, reqCtx.Locale, o.knowledgeLimit)

	history, err := o.memory.Context(ctx, in.SessionID)
	if err != nil {
		o.logger.Warn("loading conversation history failed", "session_id", in.SessionID, "error", err)
		history = nil
	}

	prompt := BuildPrompt(PromptInput{
		UserMessage: in.Message,
		History:     history,
		Knowledge:   snippets,
		Context:     reqCtx,
	})

	generator := o.router.SelectModel(RoutingInput{
		Context:       reqCtx,
		Knowledge:     snippets,
		MessageLength: len(in.Message),
	})
	modelName := generator.Name()

	start := time.Now()
	reply, err := generator.Generate(ctx, prompt, model.Options{Locale: reqCtx.Locale})
	elapsed := time.Since(start)
	if err != nil {
		o.logger.Error("model generation failed", "model", modelName, "session_id", in.SessionID, "error", err)
		reply = model.FallbackReply
	}

	if err := o.memory.Append(ctx, in.SessionID, memory.NewMessage(memory.RoleAssistant, reply)); err != nil {
		o.logger.Warn("appending assistant reply failed", "session_id", in.SessionID, "error", err)
	}

	accuracy := 0.9
	if len(snippets) > 0 {
		accuracy = 0.95
	}
	o.router.RecordUsage(modelName, metrics.Usage{
		TokenCost:    0,
		ResponseTime: elapsed,
		Accuracy:     accuracy,
	})

	escalate := ShouldHandover(in.Message, reply)
	if escalate {
		o.router.RecordHandover(modelName)
		if err := o.notifier.TriggerHandover(ctx, HandoverPayload{
			SessionID:      in.SessionID,
			UserMessage:    in.Message,
			AssistantReply: reply,
			Context:        reqCtx,
		}); err != nil {
			o.logger.Warn("chatwood handover failed", "session_id", in.SessionID, "error", err)
		}
	}

	o.telemetry.RecordUsage(ctx, telemetry.Usage{
		SessionID:         in.SessionID,
		Model:             modelName,
		ResponseTimeMs:    float64(elapsed.Milliseconds()),
		TokenCost:         0,
		HandoverTriggered: escalate,
		KnowledgeApplied:  snippets,
	})

	return Response{
		Message:           reply,
		Model:             modelName,
		KnowledgeApplied:  snippets,
		HandoverTriggered: escalate,
	}, nil
}

// ResetSession discards the conversation memory of a session.
func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) error {
	return o.memory.Clear(ctx, sessionID)
}

func (o *Orchestrator) lockSession(sessionID string) func() {
	lock, _ := o.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
