package memory

import (
	"time"
)

// Importance is a 1-5 ordinal priority, independent of strength.
type Importance int

const (
	Trivial  Importance = 1
	Low      Importance = 2
	Normal   Importance = 3
	High     Importance = 4
	Critical Importance = 5
)

// Category classifies what kind of experience a record captures.
type Category string

const (
	CategoryConversation Category = "conversation"
	CategoryEvent        Category = "event"
	CategoryFact         Category = "fact"
	CategoryEmotion      Category = "emotion"
	CategoryGoal         Category = "goal"
	CategoryRelationship Category = "relationship"
)

// Record is a single stored memory. Strength decays over time and is
// reinforced by access; importance never changes after creation.
type Record struct {
	ID             string    `json:"id"`
	Key            string    `json:"key"`
	Data           string    `json:"data"`
	Category       Category  `json:"category"`
	Importance     Importance `json:"importance"`
	CreatedAt      time.Time `json:"created_at"`
	AccessCount    int       `json:"access_count"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Strength       float64   `json:"strength"`
	Connections    []string  `json:"connections,omitempty"`
}

// Direction marks whether a conversation entry was heard or spoken.
type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// ConversationEntry is one half of an exchange in the bounded log.
type ConversationEntry struct {
	ID              string     `json:"id"`
	ParticipantName string     `json:"participant_name"`
	ParticipantID   string     `json:"participant_id"`
	Message         string     `json:"message"`
	Direction       Direction  `json:"direction"`
	Timestamp       time.Time  `json:"timestamp"`
	Importance      Importance `json:"importance"`
	Sentiment       float64    `json:"sentiment"`
	Topics          []string   `json:"topics,omitempty"`
}

// Relationship tracks an agent's standing with one participant.
// Created on first conversation, never deleted during a session.
type Relationship struct {
	Name              string    `json:"name"`
	ParticipantID     string    `json:"participant_id"`
	TrustLevel        float64   `json:"trust_level"` // 0-100
	Familiarity       float64   `json:"familiarity"` // 0-100
	LastInteractionAt time.Time `json:"last_interaction_at"`
	TotalInteractions int       `json:"total_interactions"`
	SentimentHistory  []float64 `json:"sentiment_history"`
	SharedTopics      []string  `json:"shared_topics,omitempty"`
	Notes             []string  `json:"notes,omitempty"`
}

// AverageSentiment returns the mean of the recent sentiment window.
func (r *Relationship) AverageSentiment() float64 {
	if len(r.SentimentHistory) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.SentimentHistory {
		sum += s
	}
	return sum / float64(len(r.SentimentHistory))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
