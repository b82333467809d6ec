package memory

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

// testClock returns a mutable clock; advance by reassigning *now.
func testClock() (*time.Time, func() time.Time) {
	now := time.Unix(1700000000, 0)
	return &now, func() time.Time { return now }
}

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now, clock := testClock()
	return NewStore("TestNPC", DefaultConfig(), clock, zap.NewNop()), now
}

func TestStoreAndRetrieve(t *testing.T) {
	s, _ := newTestStore(t)

	id := s.Store("favorite_color", "blue", Normal, CategoryFact)
	if id == "" {
		t.Fatal("expected a memory id")
	}

	data, ok := s.Retrieve("favorite_color", true)
	if !ok {
		t.Fatal("expected a hit")
	}
	if data != "blue" {
		t.Errorf("got %q, want %q", data, "blue")
	}

	if _, ok := s.Retrieve("never_stored", true); ok {
		t.Error("expected a miss for unknown key")
	}
}

func TestStoreRoutesByImportance(t *testing.T) {
	s, _ := newTestStore(t)

	s.Store("small_talk", "weather chat", Low, CategoryConversation)
	s.Store("life_debt", "saved from the river", High, CategoryEvent)

	if s.ShortTermLen() != 1 {
		t.Errorf("short-term size = %d, want 1", s.ShortTermLen())
	}
	if s.LongTermLen() != 1 {
		t.Errorf("long-term size = %d, want 1", s.LongTermLen())
	}
}

func TestRetrieveStrengthensCapped(t *testing.T) {
	s, _ := newTestStore(t)
	s.Store("k", "v", Normal, CategoryFact)

	for i := 0; i < 20; i++ {
		s.Retrieve("k", true)
	}

	recs := s.SearchMemories("k", "")
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Strength > 1 {
		t.Errorf("strength %v exceeds 1", recs[0].Strength)
	}
	if recs[0].AccessCount != 20 {
		t.Errorf("access count = %d, want 20", recs[0].AccessCount)
	}
}

func TestForget(t *testing.T) {
	s, _ := newTestStore(t)
	s.Store("grudge", "stepped on my foot", High, CategoryEmotion)

	if !s.Forget("grudge") {
		t.Error("expected Forget to report removal")
	}
	if s.Forget("grudge") {
		t.Error("second Forget should report nothing removed")
	}
	if _, ok := s.Retrieve("grudge", false); ok {
		t.Error("forgotten key should not resolve")
	}
}

func TestFirstConversationCreatesRelationship(t *testing.T) {
	s, _ := newTestStore(t)
	p := Participant{Name: "Wanderer", ID: "p1"}

	if s.GetRelationship("Wanderer") != nil {
		t.Fatal("relationship should not exist before first conversation")
	}

	s.AddConversation(p, "hello there", DirectionReceived)

	rel := s.GetRelationship("Wanderer")
	if rel == nil {
		t.Fatal("expected relationship after first conversation")
	}
	if rel.TotalInteractions != 1 {
		t.Errorf("total interactions = %d, want 1", rel.TotalInteractions)
	}
	if len(s.GetAllRelationships()) != 1 {
		t.Errorf("got %d relationships, want 1", len(s.GetAllRelationships()))
	}
}

func TestImportantConversationLeavesMemory(t *testing.T) {
	s, _ := newTestStore(t)
	p := Participant{Name: "Wanderer", ID: "p1"}

	s.AddConversation(p, "Hello there, tell me about your history?", DirectionReceived)

	hits := s.SearchMemories("history", CategoryConversation)
	if len(hits) == 0 {
		t.Fatal("expected a derived memory record for an important exchange")
	}
	if hits[0].Importance < Normal {
		t.Errorf("importance = %d, want >= %d", hits[0].Importance, Normal)
	}
}

func TestConversationLogBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConversationCap = 5
	_, clock := testClock()
	s := NewStore("TestNPC", cfg, clock, zap.NewNop())
	p := Participant{Name: "Wanderer", ID: "p1"}

	for i := 0; i < 12; i++ {
		s.AddConversation(p, "chatter", DirectionReceived)
	}

	if got := len(s.GetRecentConversations(0)); got != 5 {
		t.Errorf("log size = %d, want 5", got)
	}
}

func TestTrustClamped(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 100; i++ {
		s.AdjustTrust("Wanderer", 10)
	}
	if trust := s.GetRelationship("Wanderer").TrustLevel; trust != 100 {
		t.Errorf("trust = %v, want 100", trust)
	}

	for i := 0; i < 100; i++ {
		s.AdjustTrust("Wanderer", -10)
	}
	if trust := s.GetRelationship("Wanderer").TrustLevel; trust != 0 {
		t.Errorf("trust = %v, want 0", trust)
	}
}

func TestSentimentHistoryBoundedAndTrustMoves(t *testing.T) {
	s, _ := newTestStore(t)
	p := Participant{Name: "Wanderer", ID: "p1"}

	before := 50.0
	for i := 0; i < 20; i++ {
		s.AddConversation(p, "thanks, you are a wonderful friend, I love this place", DirectionReceived)
	}

	rel := s.GetRelationship("Wanderer")
	if len(rel.SentimentHistory) > DefaultConfig().SentimentWindow {
		t.Errorf("sentiment history len = %d, want <= %d",
			len(rel.SentimentHistory), DefaultConfig().SentimentWindow)
	}
	if rel.TrustLevel <= before {
		t.Errorf("trust = %v, want > %v after sustained positive sentiment", rel.TrustLevel, before)
	}
}

func TestObserverEvents(t *testing.T) {
	s, _ := newTestStore(t)

	var stored, retrieved, forgotten, conversations, relationships int
	s.Subscribe(ObserverFuncs{
		MemoryStored:        func(string, *Record) { stored++ },
		MemoryRetrieved:     func(string, *Record) { retrieved++ },
		MemoryForgotten:     func(string, string) { forgotten++ },
		ConversationAdded:   func(string, ConversationEntry) { conversations++ },
		RelationshipUpdated: func(string, *Relationship) { relationships++ },
	})

	s.Store("k", "v", Low, CategoryFact)
	s.Retrieve("k", true)
	s.Forget("k")
	s.AddConversation(Participant{Name: "W", ID: "1"}, "hi there friend", DirectionReceived)

	if stored == 0 || retrieved != 1 || forgotten != 1 || conversations != 1 || relationships != 1 {
		t.Errorf("events: stored=%d retrieved=%d forgotten=%d conv=%d rel=%d",
			stored, retrieved, forgotten, conversations, relationships)
	}
}
