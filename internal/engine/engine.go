// Package engine produces NPC replies: it classifies the inbound
// message, attempts the configured external model, and degrades to
// deterministic persona-driven selection when generation is unavailable
// or fails. Generate never returns an empty reply.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/nidhogg/hearthvale/internal/analysis"
	"github.com/nidhogg/hearthvale/internal/memory"
	"github.com/nidhogg/hearthvale/internal/provider"
	"go.uber.org/zap"
)

// Inbound is a player message handed to the engine.
type Inbound struct {
	Sender    memory.Participant
	Text      string
	WorldInfo string // optional context blob from the world collaborator
}

// Exchange is the classified view of an inbound message, shared with
// persona hooks so progress heuristics and scripted fallbacks see the
// same analysis.
type Exchange struct {
	Sender       memory.Participant
	Text         string
	WorldInfo    string
	Class        analysis.Classification
	FirstMeeting bool
}

// Hooks is the persona-specific layer above the generic engine. Observe
// always runs on inbound messages, whichever path produces the reply;
// Fallback may claim the response before the generic pools are tried.
type Hooks interface {
	Observe(ex *Exchange)
	Fallback(ex *Exchange) (string, bool)
}

// State holds the serializable engine tunables.
type State struct {
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
	ResponseStyle string  `json:"response_style"`
	HistoryWindow int     `json:"history_window"`
}

// Engine generates replies for a single NPC. One instance per agent;
// the caller guarantees at most one in-flight Generate per engine.
type Engine struct {
	name         string
	systemPrompt string
	pools        Pools
	hooks        Hooks
	mem          *memory.Store
	client       *provider.Client
	state        State
	rng          *rand.Rand
	logger       *zap.Logger
}

// New creates an engine bound to one agent's memory store. A nil rng
// falls back to a time-seeded source.
func New(name, systemPrompt string, pools Pools, hooks Hooks, mem *memory.Store, rng *rand.Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		name:         name,
		systemPrompt: systemPrompt,
		pools:        pools,
		hooks:        hooks,
		mem:          mem,
		state: State{
			Temperature:   0.8,
			MaxTokens:     150,
			ResponseStyle: "conversational",
			HistoryWindow: 6,
		},
		rng:    rng,
		logger: logger,
	}
}

// SetProvider configures the external generation endpoint. A zero-value
// config disables external generation entirely.
func (e *Engine) SetProvider(cfg provider.Config) {
	if !cfg.Configured() {
		e.client = nil
		return
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = e.state.Temperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = e.state.MaxTokens
	}
	e.client = provider.NewClient(cfg, e.logger)
}

// State returns the current tunables.
func (e *Engine) State() State { return e.state }

// SetState replaces the tunables, defaulting zero fields.
func (e *Engine) SetState(st State) {
	if st.Temperature == 0 {
		st.Temperature = 0.8
	}
	if st.MaxTokens == 0 {
		st.MaxTokens = 150
	}
	if st.ResponseStyle == "" {
		st.ResponseStyle = "conversational"
	}
	if st.HistoryWindow == 0 {
		st.HistoryWindow = 6
	}
	e.state = st
}

// Generate produces a reply for the inbound message. It records both
// sides of the exchange in the memory store and never fails: any
// external-generation problem routes to the deterministic fallback.
func (e *Engine) Generate(ctx context.Context, in Inbound) string {
	ex := &Exchange{
		Sender:       in.Sender,
		Text:         in.Text,
		WorldInfo:    in.WorldInfo,
		Class:        analysis.Classify(in.Text),
		FirstMeeting: e.mem.GetRelationship(in.Sender.Name) == nil,
	}

	if e.hooks != nil {
		e.hooks.Observe(ex)
	}

	reply := e.tryExternal(ctx, ex)
	if reply == "" {
		reply = e.fallback(ex)
	}

	e.mem.AddConversation(ex.Sender, ex.Text, memory.DirectionReceived)
	e.mem.AddConversation(ex.Sender, reply, memory.DirectionSent)
	return reply
}

// tryExternal attempts one external generation call. Empty string means
// the fallback path should run; failures are logged, never surfaced.
func (e *Engine) tryExternal(ctx context.Context, ex *Exchange) string {
	if e.client == nil {
		return ""
	}

	req := &provider.ChatRequest{
		Model:            e.client.Config().Model,
		Messages:         e.buildMessages(ex),
		MaxTokens:        e.state.MaxTokens,
		Temperature:      e.state.Temperature,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.3,
	}

	resp, err := e.client.Chat(ctx, req)
	if err != nil {
		e.logger.Warn("external generation failed, using fallback",
			zap.String("agent", e.name),
			zap.Error(err))
		return ""
	}
	return resp.Content
}

// buildMessages assembles the bounded conversational context: persona
// prompt, optional world info, the recent exchange window, and the new
// message.
func (e *Engine) buildMessages(ex *Exchange) []provider.Message {
	msgs := []provider.Message{{Role: "system", Content: e.systemPrompt}}
	if ex.WorldInfo != "" {
		msgs = append(msgs, provider.Message{Role: "system", Content: "World context: " + ex.WorldInfo})
	}

	for _, entry := range e.mem.GetConversationsWith(ex.Sender.Name, e.state.HistoryWindow) {
		role := "assistant"
		if entry.Direction == memory.DirectionReceived {
			role = "user"
		}
		msgs = append(msgs, provider.Message{Role: role, Content: entry.Message})
	}

	msgs = append(msgs, provider.Message{Role: "user", Content: ex.Text})
	return msgs
}
