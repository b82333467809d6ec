package memory

import (
	"sort"
	"strings"
	"time"
)

// recencyWindow is the horizon over which recency contributes to
// relevance; older records score on access alone.
const recencyWindow = 7 * 24 * time.Hour

// relevance scores a record as importance x strength x (recency + access
// bonus). Recency decays linearly to zero over one week; the access
// bonus saturates at 1 after 10 retrievals.
func (s *Store) relevance(rec *Record) float64 {
	age := s.now().Sub(rec.LastAccessedAt)
	recency := 1 - age.Seconds()/recencyWindow.Seconds()
	if recency < 0 {
		recency = 0
	}
	accessBonus := float64(rec.AccessCount) / 10
	if accessBonus > 1 {
		accessBonus = 1
	}
	return float64(rec.Importance) * rec.Strength * (recency + accessBonus)
}

// SearchMemories returns records from both tiers whose key or data
// contains the query, ranked by descending relevance. An empty category
// matches everything.
func (s *Store) SearchMemories(query string, category Category) []*Record {
	q := strings.ToLower(query)
	var hits []*Record
	collect := func(tier map[string]*Record) {
		for _, rec := range tier {
			if category != "" && rec.Category != category {
				continue
			}
			if q == "" ||
				strings.Contains(strings.ToLower(rec.Key), q) ||
				strings.Contains(strings.ToLower(rec.Data), q) {
				hits = append(hits, rec)
			}
		}
	}
	collect(s.shortTerm)
	collect(s.longTerm)

	sort.Slice(hits, func(i, j int) bool {
		return s.relevance(hits[i]) > s.relevance(hits[j])
	})
	return hits
}

// GetMemoriesByCategory returns all records in the given category,
// ranked by descending relevance.
func (s *Store) GetMemoriesByCategory(category Category) []*Record {
	return s.SearchMemories("", category)
}
