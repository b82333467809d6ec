package memory

import (
	"time"
)

// Snapshot is the flat, JSON-friendly form of a store. Maps are
// flattened to slices so the encoding is stable and enumerable; Restore
// rebuilds the keyed lookups.
type Snapshot struct {
	Agent         string              `json:"agent"`
	ShortTerm     []*Record           `json:"short_term"`
	LongTerm      []*Record           `json:"long_term"`
	Conversations []ConversationEntry `json:"conversations"`
	Relationships []*Relationship     `json:"relationships"`
	SavedAt       time.Time           `json:"saved_at"`
}

// Serialize captures the whole store: both tiers, the conversation log,
// and the relationship map.
func (s *Store) Serialize() *Snapshot {
	snap := &Snapshot{
		Agent:   s.agent,
		SavedAt: s.now(),
	}
	for _, rec := range s.shortTerm {
		snap.ShortTerm = append(snap.ShortTerm, rec)
	}
	for _, rec := range s.longTerm {
		snap.LongTerm = append(snap.LongTerm, rec)
	}
	snap.Conversations = append(snap.Conversations, s.conversations...)
	for _, rel := range s.relationships {
		snap.Relationships = append(snap.Relationships, rel)
	}
	return snap
}

// Restore replaces the store's contents with the snapshot. Missing or
// malformed fields fall back to empty defaults field by field; a nil
// snapshot resets the store.
func (s *Store) Restore(snap *Snapshot) {
	s.shortTerm = make(map[string]*Record)
	s.longTerm = make(map[string]*Record)
	s.conversations = nil
	s.relationships = make(map[string]*Relationship)
	if snap == nil {
		return
	}

	for _, rec := range snap.ShortTerm {
		if rec == nil || rec.Key == "" {
			continue
		}
		normalizeRecord(rec, s.now())
		s.shortTerm[rec.Key] = rec
	}
	for _, rec := range snap.LongTerm {
		if rec == nil || rec.Key == "" {
			continue
		}
		normalizeRecord(rec, s.now())
		s.longTerm[rec.Key] = rec
	}

	for _, e := range snap.Conversations {
		if e.Message == "" && e.ParticipantName == "" {
			continue
		}
		s.conversations = append(s.conversations, e)
	}
	if len(s.conversations) > s.cfg.ConversationCap {
		s.conversations = s.conversations[len(s.conversations)-s.cfg.ConversationCap:]
	}

	for _, rel := range snap.Relationships {
		if rel == nil || rel.Name == "" {
			continue
		}
		rel.TrustLevel = clamp(rel.TrustLevel, 0, 100)
		rel.Familiarity = clamp(rel.Familiarity, 0, 100)
		if len(rel.SentimentHistory) > s.cfg.SentimentWindow {
			rel.SentimentHistory = rel.SentimentHistory[len(rel.SentimentHistory)-s.cfg.SentimentWindow:]
		}
		s.relationships[rel.Name] = rel
	}
}

// normalizeRecord backfills defaults on a record loaded from a snapshot.
func normalizeRecord(rec *Record, now time.Time) {
	if rec.Importance < Trivial || rec.Importance > Critical {
		rec.Importance = Normal
	}
	rec.Strength = clamp(rec.Strength, 0, 1)
	if rec.Strength == 0 {
		rec.Strength = 0.5
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.LastAccessedAt.IsZero() {
		rec.LastAccessedAt = rec.CreatedAt
	}
}
