package world

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/memory"
	"github.com/nidhogg/hearthvale/internal/persona"
	"github.com/nidhogg/hearthvale/internal/provider"
	"go.uber.org/zap"
)

var (
	// ErrUnknownNPC is returned for a name nobody in the village answers to.
	ErrUnknownNPC = errors.New("unknown npc")
	// ErrBusy is returned while an NPC already has a response in flight.
	ErrBusy = errors.New("npc is busy")
)

// Village owns the three NPCs and enforces the conversation contract:
// one in-flight response per NPC, and neither decay ticks nor
// snapshots interleave with an in-flight response for the same NPC.
type Village struct {
	npcs       map[string]*persona.NPC
	busy       map[string]bool
	lastUpdate map[string]time.Time
	mu         sync.Mutex
	idle       *sync.Cond // signaled whenever a busy flag clears
	logger     *zap.Logger
}

// NewVillage creates the village with its three residents.
func NewVillage(app *appctx.Context, logger *zap.Logger) *Village {
	v := &Village{
		npcs:       make(map[string]*persona.NPC),
		busy:       make(map[string]bool),
		lastUpdate: make(map[string]time.Time),
		logger:     logger,
	}
	v.idle = sync.NewCond(&v.mu)
	now := app.Clock()
	for _, n := range []*persona.NPC{
		persona.NewTrader(app, logger),
		persona.NewInnkeeper(app, logger),
		persona.NewTinkerer(app, logger),
	} {
		v.npcs[n.Name] = n
		v.lastUpdate[n.Name] = now
	}
	return v
}

// Get returns an NPC by name.
func (v *Village) Get(name string) (*persona.NPC, bool) {
	n, ok := v.npcs[name]
	return n, ok
}

// List returns the residents sorted by name.
func (v *Village) List() []*persona.NPC {
	out := make([]*persona.NPC, 0, len(v.npcs))
	for _, n := range v.npcs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetProviders configures external generation on every NPC.
func (v *Village) SetProviders(cfg provider.Config) {
	for _, n := range v.npcs {
		n.SetProvider(cfg)
	}
}

// Converse routes one player message to an NPC. While the response is
// in flight the NPC is marked busy and further messages are rejected
// with ErrBusy; the UI disables input on that signal.
func (v *Village) Converse(ctx context.Context, npcName string, sender memory.Participant, text, worldInfo string) (string, error) {
	v.mu.Lock()
	n, ok := v.npcs[npcName]
	if !ok {
		v.mu.Unlock()
		return "", ErrUnknownNPC
	}
	if v.busy[npcName] {
		v.mu.Unlock()
		return "", ErrBusy
	}
	v.busy[npcName] = true
	v.mu.Unlock()

	defer v.release(npcName)

	return n.Respond(ctx, sender, text, worldInfo), nil
}

// acquire marks an NPC busy, waiting out any in-flight response or
// snapshot first. Reports false for unknown names.
func (v *Village) acquire(name string) (*persona.NPC, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n, ok := v.npcs[name]
	if !ok {
		return nil, false
	}
	for v.busy[name] {
		v.idle.Wait()
	}
	v.busy[name] = true
	return n, true
}

func (v *Village) release(name string) {
	v.mu.Lock()
	v.busy[name] = false
	v.idle.Broadcast()
	v.mu.Unlock()
}

// IsBusy reports whether an NPC has a response in flight.
func (v *Village) IsBusy(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy[name]
}

// OnTick implements TickListener. Applies memory decay for every idle
// NPC; a busy NPC keeps accumulating elapsed time and catches up on the
// next tick after its response lands.
func (v *Village) OnTick(worldTime time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for name, n := range v.npcs {
		if v.busy[name] {
			continue
		}
		last, ok := v.lastUpdate[name]
		if !ok {
			v.lastUpdate[name] = worldTime
			continue
		}
		if elapsed := worldTime.Sub(last); elapsed > 0 {
			n.Memory().Update(elapsed)
		}
		v.lastUpdate[name] = worldTime
	}
}

// Serialize snapshots every resident, keyed by name. Each NPC is
// marked busy for the duration of its snapshot, so serialization waits
// out an in-flight response rather than interleaving with it.
func (v *Village) Serialize() map[string]*persona.Snapshot {
	out := make(map[string]*persona.Snapshot, len(v.npcs))
	for name := range v.npcs {
		n, ok := v.acquire(name)
		if !ok {
			continue
		}
		out[name] = n.Serialize()
		v.release(name)
	}
	return out
}

// Restore applies snapshots to matching residents; unknown names are
// ignored, missing ones keep their current state. Like Serialize, each
// resident is restored under its busy flag.
func (v *Village) Restore(snaps map[string]*persona.Snapshot) {
	for name, snap := range snaps {
		n, ok := v.acquire(name)
		if !ok {
			v.logger.Warn("snapshot for unknown npc ignored", zap.String("npc", name))
			continue
		}
		n.Restore(snap)
		v.release(name)
	}
}
