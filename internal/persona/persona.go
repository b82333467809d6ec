// Package persona defines the three Hearthvale NPCs. Each persona is a
// fixed configuration (traits, knowledge, goals, response tables)
// composed with its own memory store and response engine. Progress
// heuristics run on every inbound message, whichever path produced the
// reply.
package persona

import (
	"context"
	"strings"
	"sync"

	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/engine"
	"github.com/nidhogg/hearthvale/internal/memory"
	"github.com/nidhogg/hearthvale/internal/provider"
	"go.uber.org/zap"
)

// Traits is the closed set of personality weights, each in [0,1].
type Traits struct {
	Friendliness float64 `json:"friendliness"`
	Curiosity    float64 `json:"curiosity"`
	Patience     float64 `json:"patience"`
	Humor        float64 `json:"humor"`
	Caution      float64 `json:"caution"`
	Pride        float64 `json:"pride"`
}

// Get looks up a trait by name, returning 0.5 for unknown names so
// callers never special-case an unset trait.
func (t Traits) Get(name string) float64 {
	switch strings.ToLower(name) {
	case "friendliness":
		return t.Friendliness
	case "curiosity":
		return t.Curiosity
	case "patience":
		return t.Patience
	case "humor":
		return t.Humor
	case "caution":
		return t.Caution
	case "pride":
		return t.Pride
	default:
		return 0.5
	}
}

// trust bands relative to an NPC's threshold.
type band int

const (
	bandSuspicious band = iota
	bandCautious
	bandHelpful
)

// helpfulMargin is how far above the threshold trust must climb before
// the NPC shares freely.
const helpfulMargin = 20

// NPC is one villager: fixed persona plus its memory store and engine.
// The persona-specific layer lives in the hooks each character installs.
type NPC struct {
	Name           string
	Color          string
	Traits         Traits
	Goals          []string
	Knowledge      map[string]string
	TrustThreshold float64
	Mood           string
	Energy         float64 // 0-100

	Progress map[string]float64 // persona-specific counters
	shared   map[string]bool    // knowledge/scripted lines already used

	statusMu sync.Mutex // guards Mood and Energy for readers outside the busy guard
	mem      *memory.Store
	eng      *engine.Engine
	logger   *zap.Logger
}

// newNPC wires the shared plumbing; each character constructor fills in
// persona specifics and installs its hooks.
func newNPC(name string, app *appctx.Context, logger *zap.Logger) *NPC {
	n := &NPC{
		Name:     name,
		Mood:     "content",
		Energy:   80,
		Progress: make(map[string]float64),
		shared:   make(map[string]bool),
		logger:   logger,
	}
	n.mem = memory.NewStore(name, memory.DefaultConfig(), app.Clock, logger)
	return n
}

// Memory exposes the NPC's store to the persistence collaborator.
func (n *NPC) Memory() *memory.Store { return n.mem }

// Engine exposes the NPC's response engine.
func (n *NPC) Engine() *engine.Engine { return n.eng }

// SetProvider configures external generation for this NPC.
func (n *NPC) SetProvider(cfg provider.Config) { n.eng.SetProvider(cfg) }

// Respond produces a reply to the player message. Never errors and
// never returns empty text.
func (n *NPC) Respond(ctx context.Context, sender memory.Participant, text, worldInfo string) string {
	return n.eng.Generate(ctx, engine.Inbound{Sender: sender, Text: text, WorldInfo: worldInfo})
}

// Trust returns current trust with the named participant, 50 if unknown.
func (n *NPC) Trust(name string) float64 {
	if rel := n.mem.GetRelationship(name); rel != nil {
		return rel.TrustLevel
	}
	return 50
}

func (n *NPC) trustBand(sender string) band {
	trust := n.Trust(sender)
	switch {
	case trust < n.TrustThreshold:
		return bandSuspicious
	case trust < n.TrustThreshold+helpfulMargin:
		return bandCautious
	default:
		return bandHelpful
	}
}

// markShared records that a scripted line or fact was used this session.
// Reports whether it was already shared.
func (n *NPC) markShared(key string) bool {
	if n.shared[key] {
		return true
	}
	n.shared[key] = true
	return false
}

// observeCommon applies the trust heuristics every persona shares:
// polite greetings and scholarly interest raise trust, hostility lowers
// it, and probing for secrets while trust is low is penalized.
func (n *NPC) observeCommon(ex *engine.Exchange) {
	name := ex.Sender.Name

	if ex.Class.Sentiment > 0.3 {
		n.mem.AdjustTrust(name, 1)
	} else if ex.Class.Sentiment < -0.3 {
		n.mem.AdjustTrust(name, -2)
	}

	// A question about a topic the NPC knows reads as genuine interest.
	if ex.Class.Questions > 0 {
		for _, topic := range ex.Class.Topics {
			if _, ok := n.Knowledge[topic]; ok {
				n.mem.AdjustTrust(name, 1)
				break
			}
		}
	}

	if strings.Contains(strings.ToLower(ex.Text), "secret") && n.Trust(name) < n.TrustThreshold {
		n.mem.AdjustTrust(name, -1.5)
		n.mem.AddNote(name, "pried about secrets too early")
	}

	n.statusMu.Lock()
	n.Energy -= 0.5
	if n.Energy < 10 {
		n.Energy = 10
	}
	// Mood follows the conversation: exhaustion wins, then the tone of
	// the latest message.
	switch {
	case n.Energy <= 25:
		n.Mood = "weary"
	case ex.Class.Sentiment < -0.3:
		n.Mood = "annoyed"
	case ex.Class.Sentiment > 0.3:
		n.Mood = "cheerful"
	default:
		n.Mood = "content"
	}
	n.statusMu.Unlock()
}

// Status returns the current mood and energy. Safe to call while a
// response is in flight.
func (n *NPC) Status() (string, float64) {
	n.statusMu.Lock()
	defer n.statusMu.Unlock()
	return n.Mood, n.Energy
}

// knowledgeReply answers from the knowledge base when trust allows,
// marking the fact shared to avoid verbatim repetition.
func (n *NPC) knowledgeReply(ex *engine.Exchange) (string, bool) {
	if n.trustBand(ex.Sender.Name) != bandHelpful {
		return "", false
	}
	for _, topic := range ex.Class.Topics {
		fact, ok := n.Knowledge[topic]
		if !ok {
			continue
		}
		if n.markShared("fact:" + topic) {
			continue
		}
		return fact, true
	}
	return "", false
}

// Snapshot is the serialized aggregate state of one NPC.
type Snapshot struct {
	Name     string             `json:"name"`
	Mood     string             `json:"mood"`
	Energy   float64            `json:"energy"`
	Progress map[string]float64 `json:"progress"`
	Shared   []string           `json:"shared"`
	Engine   engine.State       `json:"engine"`
	Memory   *memory.Snapshot   `json:"memory"`
}

// Serialize captures the NPC's mutable state, memory included.
func (n *NPC) Serialize() *Snapshot {
	mood, energy := n.Status()
	snap := &Snapshot{
		Name:     n.Name,
		Mood:     mood,
		Energy:   energy,
		Progress: make(map[string]float64, len(n.Progress)),
		Engine:   n.eng.State(),
		Memory:   n.mem.Serialize(),
	}
	for k, v := range n.Progress {
		snap.Progress[k] = v
	}
	for k := range n.shared {
		snap.Shared = append(snap.Shared, k)
	}
	return snap
}

// Restore applies a snapshot, defaulting missing fields. A nil snapshot
// is a no-op.
func (n *NPC) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	n.statusMu.Lock()
	if snap.Mood != "" {
		n.Mood = snap.Mood
	}
	if snap.Energy > 0 {
		n.Energy = snap.Energy
	}
	n.statusMu.Unlock()
	if snap.Progress != nil {
		n.Progress = snap.Progress
	}
	n.shared = make(map[string]bool, len(snap.Shared))
	for _, k := range snap.Shared {
		n.shared[k] = true
	}
	n.eng.SetState(snap.Engine)
	n.mem.Restore(snap.Memory)
}
