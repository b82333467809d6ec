package engine

import (
	"strings"

	"github.com/nidhogg/hearthvale/internal/analysis"
	"go.uber.org/zap"
)

// WeightedPool couples a set of candidate lines with a personality-trait
// weight used for pool selection.
type WeightedPool struct {
	Weight float64
	Lines  []string
}

// Pools holds the deterministic response tables for one NPC.
type Pools struct {
	Greetings  []string
	Farewells  []string
	Confused   []string
	Busy       []string
	BusyChance float64
	Weighted   []WeightedPool // trait-weighted generic pools, tried last
}

var greetingWords = []string{"hello", "hi", "hey", "greetings", "good morning", "good evening", "howdy"}

var farewellWords = []string{"bye", "goodbye", "farewell", "see you", "later", "good night"}

// fallback walks the ordered intent checks: persona hook first, then
// greeting, farewell, confusion, busy roll, and finally the
// trait-weighted generic pools. Always returns a non-empty line.
func (e *Engine) fallback(ex *Exchange) string {
	if e.hooks != nil {
		if reply, ok := e.hooks.Fallback(ex); ok && reply != "" {
			return reply
		}
	}

	lower := strings.ToLower(ex.Text)

	if matchesAny(lower, greetingWords) && len(e.pools.Greetings) > 0 {
		return e.pick(e.pools.Greetings)
	}
	if matchesAny(lower, farewellWords) && len(e.pools.Farewells) > 0 {
		return e.pick(e.pools.Farewells)
	}
	if (len(ex.Text) < 3 || !analysis.HasLetters(ex.Text)) && len(e.pools.Confused) > 0 {
		return e.pick(e.pools.Confused)
	}
	if e.pools.BusyChance > 0 && e.rng.Float64() < e.pools.BusyChance && len(e.pools.Busy) > 0 {
		return e.pick(e.pools.Busy)
	}

	if line := e.pickWeighted(); line != "" {
		return line
	}

	e.logger.Warn("no fallback pool matched", zap.String("agent", e.name))
	return "Hm. Let me think on that."
}

// pick selects uniformly at random among candidates.
func (e *Engine) pick(candidates []string) string {
	return candidates[e.rng.Intn(len(candidates))]
}

// pickWeighted selects a pool with probability proportional to its
// trait weight, then a line uniformly within it.
func (e *Engine) pickWeighted() string {
	var eligible []WeightedPool
	var total float64
	for _, p := range e.pools.Weighted {
		if len(p.Lines) > 0 && p.Weight > 0 {
			eligible = append(eligible, p)
			total += p.Weight
		}
	}
	if total == 0 {
		return ""
	}
	roll := e.rng.Float64() * total
	for _, p := range eligible {
		roll -= p.Weight
		if roll <= 0 {
			return e.pick(p.Lines)
		}
	}
	return e.pick(eligible[len(eligible)-1].Lines)
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
