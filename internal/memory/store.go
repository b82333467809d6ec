package memory

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds the tunables for one agent's memory store.
type Config struct {
	ShortTermCap    int           // max short-term records before eviction
	ConversationCap int           // conversation log ring size
	DecayPerMinute  float64       // strength lost per minute without access
	MinStrength     float64       // records below this are cleaned up
	AccessBoost     float64       // strength gained per retrieval
	PromoteAccesses int           // access count threshold for promotion
	CleanupInterval time.Duration // lazy cleanup cadence
	SentimentWindow int           // bounded sentiment history length
	TrustStep       float64       // trust delta when sentiment crosses a threshold
	TrustThreshold  float64       // |average sentiment| that moves trust
	FamiliarityStep float64       // familiarity gained per exchange
}

// DefaultConfig returns the tunables used by the village NPCs.
func DefaultConfig() Config {
	return Config{
		ShortTermCap:    200,
		ConversationCap: 100,
		DecayPerMinute:  0.004,
		MinStrength:     0.05,
		AccessBoost:     0.1,
		PromoteAccesses: 3,
		CleanupInterval: 5 * time.Minute,
		SentimentWindow: 10,
		TrustStep:       2,
		TrustThreshold:  0.3,
		FamiliarityStep: 1.5,
	}
}

// Observer receives memory lifecycle events. Downstream collaborators
// (persistence, UI) depend on this granularity.
type Observer interface {
	OnMemoryStored(agent string, rec *Record)
	OnMemoryRetrieved(agent string, rec *Record)
	OnMemoryForgotten(agent string, key string)
	OnConversationAdded(agent string, entry ConversationEntry)
	OnRelationshipUpdated(agent string, rel *Relationship)
}

// Store is one agent's decaying, queryable memory: two record tiers, a
// bounded conversation log, and a relationship map. Not safe for
// concurrent use; each agent has at most one open conversation at a time.
type Store struct {
	agent         string
	cfg           Config
	now           func() time.Time
	shortTerm     map[string]*Record
	longTerm      map[string]*Record
	conversations []ConversationEntry
	relationships map[string]*Relationship
	lastCleanup   time.Time
	observers     []Observer
	logger        *zap.Logger
}

// NewStore creates an empty store for the named agent. A nil clock
// defaults to time.Now.
func NewStore(agent string, cfg Config, clock func() time.Time, logger *zap.Logger) *Store {
	if clock == nil {
		clock = time.Now
	}
	if cfg.ShortTermCap == 0 {
		cfg = DefaultConfig()
	}
	return &Store{
		agent:         agent,
		cfg:           cfg,
		now:           clock,
		shortTerm:     make(map[string]*Record),
		longTerm:      make(map[string]*Record),
		relationships: make(map[string]*Relationship),
		lastCleanup:   clock(),
		logger:        logger,
	}
}

// Subscribe registers an observer for lifecycle events.
func (s *Store) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Store creates a record under key. Importance High and above goes
// straight to the long-term tier. Returns the record id.
func (s *Store) Store(key, data string, importance Importance, category Category) string {
	now := s.now()
	rec := &Record{
		ID:             uuid.New().String(),
		Key:            key,
		Data:           data,
		Category:       category,
		Importance:     importance,
		CreatedAt:      now,
		LastAccessedAt: now,
		Strength:       1.0,
	}

	if importance >= High {
		s.longTerm[key] = rec
	} else {
		s.shortTerm[key] = rec
	}

	s.maybeCleanup()

	for _, o := range s.observers {
		o.OnMemoryStored(s.agent, rec)
	}
	s.logger.Debug("memory stored",
		zap.String("agent", s.agent),
		zap.String("key", key),
		zap.Int("importance", int(importance)))
	return rec.ID
}

// Retrieve looks up a record by key, short-term tier first. With
// strengthen, access reinforces the record. Returns empty string and
// false when the key is unknown.
func (s *Store) Retrieve(key string, strengthen bool) (string, bool) {
	rec, ok := s.shortTerm[key]
	if !ok {
		rec, ok = s.longTerm[key]
	}
	if !ok {
		return "", false
	}

	if strengthen {
		rec.AccessCount++
		rec.LastAccessedAt = s.now()
		rec.Strength = clamp(rec.Strength+s.cfg.AccessBoost, 0, 1)
	}

	for _, o := range s.observers {
		o.OnMemoryRetrieved(s.agent, rec)
	}
	return rec.Data, true
}

// Forget removes a key from both tiers. Reports whether anything was removed.
func (s *Store) Forget(key string) bool {
	_, inShort := s.shortTerm[key]
	_, inLong := s.longTerm[key]
	if !inShort && !inLong {
		return false
	}
	delete(s.shortTerm, key)
	delete(s.longTerm, key)
	for _, o := range s.observers {
		o.OnMemoryForgotten(s.agent, key)
	}
	return true
}

// GetRelationship returns the relationship with the named participant,
// or nil if they have never spoken.
func (s *Store) GetRelationship(name string) *Relationship {
	return s.relationships[name]
}

// GetAllRelationships returns every tracked relationship.
func (s *Store) GetAllRelationships() []*Relationship {
	out := make([]*Relationship, 0, len(s.relationships))
	for _, r := range s.relationships {
		out = append(out, r)
	}
	return out
}

// ShortTermLen reports the short-term tier size.
func (s *Store) ShortTermLen() int { return len(s.shortTerm) }

// LongTermLen reports the long-term tier size.
func (s *Store) LongTermLen() int { return len(s.longTerm) }

func (s *Store) maybeCleanup() {
	if s.now().Sub(s.lastCleanup) < s.cfg.CleanupInterval {
		return
	}
	s.cleanup()
}
