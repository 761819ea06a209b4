package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
)

// SystemInstruction is the fixed prompt preamble. It forbids speculation
// beyond the retrieved context.
const SystemInstruction = "You are a documentation assistant. Answer the question using only the " +
	"context passages provided below. If the passages do not contain the " +
	"information needed, say that you could not find relevant information. " +
	"Never speculate beyond the provided context."

// NoContextAnswer is returned without calling the model when retrieval
// produces no passage above the relevance floor.
const NoContextAnswer = "I could not find relevant information in the ingested documents to answer that question."

// Prompt message roles understood by chat-completion backends.
const (
	PromptRoleSystem    = "system"
	PromptRoleUser      = "user"
	PromptRoleAssistant = "assistant"
)

// PromptMessage is one message of the assembled prompt.
type PromptMessage struct {
	Role    string
	Content string
}

// Retriever defines the interface for retrieval-augmented context lookup
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error)
}

// ChatClient defines the interface for the generative model boundary
type ChatClient interface {
	Complete(ctx context.Context, messages []PromptMessage) (string, error)
}

// EngineConfig controls per-session conversation behavior.
type EngineConfig struct {
	// TopK is the number of nearest entries requested per question.
	TopK int
	// HistoryWindow bounds how many of the most recent turns enter the
	// prompt. Older turns stay stored for export but drop out of active
	// context. <= 0 means no bound.
	HistoryWindow int
	// GenerationTimeout bounds the model call so a cancelled or hung
	// generation cannot leave the session awaiting forever. <= 0 disables
	// the engine-side deadline.
	GenerationTimeout time.Duration
	// RejectConcurrent makes a second concurrent Ask on the same session
	// fail with domain.ErrSessionBusy instead of queueing behind the
	// first. Queueing is the default.
	RejectConcurrent bool
}

// Engine drives one session's conversation: it owns the session history,
// assembles a retrieval-grounded prompt per turn and dispatches it to the
// generative model. Ask calls on the same engine are serialized; engines
// for different sessions are fully independent.
type Engine struct {
	askMu sync.Mutex // serializes Ask; held across the model call

	mu      sync.RWMutex // guards session and state
	session *domain.Session
	state   domain.SessionState

	retriever Retriever
	chat      ChatClient
	cfg       EngineConfig
}

// NewEngine creates an engine for the given session id.
func NewEngine(sessionID string, retriever Retriever, chat ChatClient, cfg EngineConfig) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Engine{
		session:   domain.NewSession(sessionID),
		state:     domain.SessionIdle,
		retriever: retriever,
		chat:      chat,
		cfg:       cfg,
	}
}

// SessionID returns the opaque id of the owned session.
func (e *Engine) SessionID() string {
	return e.session.ID
}

// State returns the current engine state. Readable while an Ask is in
// flight, so a transport layer can poll it.
func (e *Engine) State() domain.SessionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// LastAccess returns the time of the most recent Ask or Reset.
func (e *Engine) LastAccess() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.LastAccess
}

// History returns a copy of the session's turns in append order.
func (e *Engine) History() []domain.Turn {
	e.mu.RLock()
	defer e.mu.RUnlock()
	turns := make([]domain.Turn, len(e.session.Turns))
	copy(turns, e.session.Turns)
	return turns
}

// Ask answers a question against the indexed corpus in the context of
// this session. The asker turn is appended before retrieval and is kept
// on failure, so the session history stays consistent and the same
// question can be retried; a responder turn is appended only on success.
func (e *Engine) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	if e.cfg.RejectConcurrent {
		if !e.askMu.TryLock() {
			return "", domain.ErrSessionBusy
		}
	} else {
		e.askMu.Lock()
	}
	defer e.askMu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "Engine.Ask", telemetry.SpanAttributes{
		SessionID: e.session.ID,
		Operation: "ask",
	})
	defer span.End()

	prior := e.beginAsk(question)

	result, err := e.retriever.Retrieve(ctx, question, e.cfg.TopK)
	if err != nil {
		e.fail()
		span.SetError(err)
		return "", err
	}

	if result.Empty() {
		e.succeed(NoContextAnswer)
		return NoContextAnswer, nil
	}

	messages := AssemblePrompt(result, prior, question)

	genCtx := ctx
	if e.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, e.cfg.GenerationTimeout)
		defer cancel()
	}

	answer, err := e.chat.Complete(genCtx, messages)
	if err != nil {
		e.fail()
		span.SetError(err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return "", domain.GenerationTimeout(err)
		}
		return "", domain.GenerationFailed(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		e.fail()
		err := domain.GenerationFailed(errors.New("model returned an empty response"))
		span.SetError(err)
		return "", err
	}

	e.succeed(answer)
	return answer, nil
}

// Reset clears all turns and returns the session to Idle. The vector
// index is untouched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Clear()
	e.session.LastAccess = time.Now().UTC()
	e.state = domain.SessionIdle
}

// beginAsk records the asker turn and returns the prior turns that are
// in the active history window.
func (e *Engine) beginAsk(question string) []domain.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()

	window := e.session.Recent(e.cfg.HistoryWindow)
	prior := make([]domain.Turn, len(window))
	copy(prior, window)

	e.session.Append(domain.NewTurn(domain.RoleAsker, question))
	e.session.LastAccess = time.Now().UTC()
	e.state = domain.SessionAwaitingGeneration
	return prior
}

func (e *Engine) succeed(answer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Append(domain.NewTurn(domain.RoleResponder, answer))
	e.state = domain.SessionReady
}

// fail marks the session Failed without appending a responder turn.
// Failed is a signal to the caller, not a tarpit: the next Ask proceeds
// normally.
func (e *Engine) fail() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domain.SessionFailed
}

// AssemblePrompt builds the prompt for one turn: the fixed system
// instruction with the retrieved passages in descending relevance order,
// the prior turns in chronological order, then the new question.
func AssemblePrompt(result *domain.RetrievalResult, prior []domain.Turn, question string) []PromptMessage {
	var sb strings.Builder
	sb.WriteString(SystemInstruction)
	sb.WriteString("\n\nContext passages, most relevant first:")
	for i, c := range result.Chunks {
		sb.WriteString(fmt.Sprintf("\n\n[%d] (%s)\n%s", i+1, c.Source, c.Text))
	}

	messages := make([]PromptMessage, 0, len(prior)+2)
	messages = append(messages, PromptMessage{Role: PromptRoleSystem, Content: sb.String()})

	for _, t := range prior {
		role := PromptRoleUser
		if t.Role == domain.RoleResponder {
			role = PromptRoleAssistant
		}
		messages = append(messages, PromptMessage{Role: role, Content: t.Text})
	}

	messages = append(messages, PromptMessage{Role: PromptRoleUser, Content: question})
	return messages
}
