package memory

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Update advances the store by elapsed wall-clock time: short-term
// strengths decay, qualifying records are promoted to the long-term
// tier, and the periodic cleanup runs when its interval has elapsed.
func (s *Store) Update(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}

	loss := s.cfg.DecayPerMinute * elapsed.Minutes()
	for _, rec := range s.shortTerm {
		rec.Strength = clamp(rec.Strength-loss, 0, 1)
	}

	s.promote()

	if s.now().Sub(s.lastCleanup) >= s.cfg.CleanupInterval {
		s.cleanup()
	}
}

// promote moves short-term records that have been accessed often enough
// into the durable tier.
func (s *Store) promote() {
	promoted := 0
	for key, rec := range s.shortTerm {
		if rec.AccessCount > s.cfg.PromoteAccesses && rec.Importance >= Normal {
			delete(s.shortTerm, key)
			s.longTerm[key] = rec
			promoted++
		}
	}
	if promoted > 0 {
		s.logger.Debug("memories promoted",
			zap.String("agent", s.agent),
			zap.Int("count", promoted))
	}
}

// cleanup drops faded records and, when the short-term tier is over
// capacity, evicts the lowest-scoring records until it fits.
func (s *Store) cleanup() {
	s.lastCleanup = s.now()
	removed := 0

	for key, rec := range s.shortTerm {
		if rec.Strength < s.cfg.MinStrength {
			delete(s.shortTerm, key)
			removed++
		}
	}

	if over := len(s.shortTerm) - s.cfg.ShortTermCap; over > 0 {
		type scored struct {
			key   string
			score float64
		}
		candidates := make([]scored, 0, len(s.shortTerm))
		for key, rec := range s.shortTerm {
			candidates = append(candidates, scored{key, s.relevance(rec)})
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].score < candidates[j].score
		})
		for i := 0; i < over; i++ {
			delete(s.shortTerm, candidates[i].key)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("memory cleanup",
			zap.String("agent", s.agent),
			zap.Int("removed", removed),
			zap.Int("short_term", len(s.shortTerm)))
	}
}
