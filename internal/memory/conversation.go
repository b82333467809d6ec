package memory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nidhogg/hearthvale/internal/analysis"
	"go.uber.org/zap"
)

// Participant identifies the other side of a conversation.
type Participant struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// AddConversation appends one entry to the bounded log, classifying the
// message at append time. The relationship with the participant is
// updated, and exchanges of Normal importance or above leave a derived
// memory record behind. Returns the entry id.
func (s *Store) AddConversation(p Participant, message string, direction Direction) string {
	c := analysis.Classify(message)

	entry := ConversationEntry{
		ID:              uuid.New().String(),
		ParticipantName: p.Name,
		ParticipantID:   p.ID,
		Message:         message,
		Direction:       direction,
		Timestamp:       s.now(),
		Importance:      Importance(c.Importance),
		Sentiment:       c.Sentiment,
		Topics:          c.Topics,
	}

	s.conversations = append(s.conversations, entry)
	if len(s.conversations) > s.cfg.ConversationCap {
		s.conversations = s.conversations[len(s.conversations)-s.cfg.ConversationCap:]
	}

	s.updateRelationship(p, entry)

	if entry.Importance >= Normal {
		key := fmt.Sprintf("conv:%s:%s", p.Name, entry.ID)
		s.Store(key, message, entry.Importance, CategoryConversation)
	}

	for _, o := range s.observers {
		o.OnConversationAdded(s.agent, entry)
	}
	s.logger.Debug("conversation added",
		zap.String("agent", s.agent),
		zap.String("participant", p.Name),
		zap.String("direction", string(direction)),
		zap.Float64("sentiment", entry.Sentiment))
	return entry.ID
}

// GetConversationsWith returns up to limit most recent entries exchanged
// with the named participant, oldest first.
func (s *Store) GetConversationsWith(name string, limit int) []ConversationEntry {
	var out []ConversationEntry
	for _, e := range s.conversations {
		if e.ParticipantName == name {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// GetRecentConversations returns up to limit most recent entries, oldest first.
func (s *Store) GetRecentConversations(limit int) []ConversationEntry {
	out := s.conversations
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	result := make([]ConversationEntry, len(out))
	copy(result, out)
	return result
}

// updateRelationship folds one exchange into the participant's standing:
// interaction counters, bounded sentiment history, trust nudges when the
// recent average crosses a threshold, and topic merging.
func (s *Store) updateRelationship(p Participant, entry ConversationEntry) {
	rel, ok := s.relationships[p.Name]
	if !ok {
		rel = &Relationship{
			Name:          p.Name,
			ParticipantID: p.ID,
			TrustLevel:    50,
		}
		s.relationships[p.Name] = rel
	}

	rel.TotalInteractions++
	rel.LastInteractionAt = entry.Timestamp
	rel.Familiarity = clamp(rel.Familiarity+s.cfg.FamiliarityStep, 0, 100)

	rel.SentimentHistory = append(rel.SentimentHistory, entry.Sentiment)
	if len(rel.SentimentHistory) > s.cfg.SentimentWindow {
		rel.SentimentHistory = rel.SentimentHistory[len(rel.SentimentHistory)-s.cfg.SentimentWindow:]
	}

	avg := rel.AverageSentiment()
	switch {
	case avg > s.cfg.TrustThreshold:
		rel.TrustLevel = clamp(rel.TrustLevel+s.cfg.TrustStep, 0, 100)
	case avg < -s.cfg.TrustThreshold:
		rel.TrustLevel = clamp(rel.TrustLevel-s.cfg.TrustStep, 0, 100)
	}

	for _, topic := range entry.Topics {
		if !containsString(rel.SharedTopics, topic) {
			rel.SharedTopics = append(rel.SharedTopics, topic)
		}
	}

	for _, o := range s.observers {
		o.OnRelationshipUpdated(s.agent, rel)
	}
}

// AdjustTrust nudges trust with a participant by delta, clamped to
// [0,100]. Used by persona heuristics; creates the relationship if the
// participant is unknown.
func (s *Store) AdjustTrust(name string, delta float64) float64 {
	rel, ok := s.relationships[name]
	if !ok {
		rel = &Relationship{Name: name, TrustLevel: 50}
		s.relationships[name] = rel
	}
	rel.TrustLevel = clamp(rel.TrustLevel+delta, 0, 100)
	return rel.TrustLevel
}

// AddNote appends a free-form note to a participant's relationship.
func (s *Store) AddNote(name, note string) {
	rel, ok := s.relationships[name]
	if !ok {
		return
	}
	rel.Notes = append(rel.Notes, note)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
