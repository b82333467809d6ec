package engine

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nidhogg/hearthvale/internal/memory"
	"github.com/nidhogg/hearthvale/internal/provider"
	"go.uber.org/zap"
)

func testPools() Pools {
	return Pools{
		Greetings:  []string{"Hello yourself."},
		Farewells:  []string{"Off with you."},
		Confused:   []string{"What?"},
		Busy:       []string{"Not now."},
		BusyChance: 0,
		Weighted: []WeightedPool{
			{Weight: 0.8, Lines: []string{"Fine weather for it.", "So they say."}},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	now := time.Unix(1700000000, 0)
	mem := memory.NewStore("TestNPC", memory.DefaultConfig(),
		func() time.Time { return now }, zap.NewNop())
	rng := rand.New(rand.NewSource(7))
	return New("TestNPC", "You are a test NPC.", testPools(), nil, mem, rng, zap.NewNop()), mem
}

func TestGenerateWithoutProviderNeverEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	sender := memory.Participant{Name: "Wanderer", ID: "p1"}

	for _, text := range []string{"hello", "goodbye", "?", "tell me something", ""} {
		reply := e.Generate(context.Background(), Inbound{Sender: sender, Text: text})
		if reply == "" {
			t.Errorf("Generate(%q) returned empty reply", text)
		}
	}
}

func TestGenerateRecordsBothDirections(t *testing.T) {
	e, mem := newTestEngine(t)
	sender := memory.Participant{Name: "Wanderer", ID: "p1"}

	e.Generate(context.Background(), Inbound{Sender: sender, Text: "hello there"})

	log := mem.GetRecentConversations(0)
	if len(log) != 2 {
		t.Fatalf("got %d log entries, want 2", len(log))
	}
	if log[0].Direction != memory.DirectionReceived {
		t.Errorf("first entry direction = %q, want received", log[0].Direction)
	}
	if log[1].Direction != memory.DirectionSent {
		t.Errorf("second entry direction = %q, want sent", log[1].Direction)
	}
}

func TestFallbackIntentOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	sender := memory.Participant{Name: "Wanderer", ID: "p1"}

	tests := []struct {
		text string
		want string
	}{
		{"hello friend", "Hello yourself."},
		{"goodbye then", "Off with you."},
		{"??", "What?"},
		{"12345", "What?"},
	}
	for _, tt := range tests {
		got := e.Generate(context.Background(), Inbound{Sender: sender, Text: tt.text})
		if got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestBusyRollUsesSeededRand(t *testing.T) {
	pools := testPools()
	pools.BusyChance = 1.0
	now := time.Unix(1700000000, 0)
	mem := memory.NewStore("TestNPC", memory.DefaultConfig(),
		func() time.Time { return now }, zap.NewNop())
	e := New("TestNPC", "prompt", pools, nil, mem, rand.New(rand.NewSource(1)), zap.NewNop())

	got := e.Generate(context.Background(), Inbound{
		Sender: memory.Participant{Name: "W", ID: "1"},
		Text:   "how is the stall doing today",
	})
	if got != "Not now." {
		t.Errorf("got %q, want the busy line with BusyChance=1", got)
	}
}

func TestExternalSuccessUsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer credential, got %q", r.Header.Get("Authorization"))
		}
		var req provider.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) == 0 || req.Messages[0].Role != "system" {
			t.Errorf("expected system prompt first, got %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Well met, traveler."}},
			},
		})
	}))
	defer srv.Close()

	e, _ := newTestEngine(t)
	e.SetProvider(provider.Config{Endpoint: srv.URL, APIKey: "test-key", Model: "test"})

	got := e.Generate(context.Background(), Inbound{
		Sender: memory.Participant{Name: "Wanderer", ID: "p1"},
		Text:   "well met",
	})
	if got != "Well met, traveler." {
		t.Errorf("got %q, want the external candidate text", got)
	}
}

func TestServerErrorFallsBackWithoutRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, _ := newTestEngine(t)
	e.SetProvider(provider.Config{Endpoint: srv.URL, APIKey: "test-key", Model: "test"})

	got := e.Generate(context.Background(), Inbound{
		Sender: memory.Participant{Name: "Wanderer", ID: "p1"},
		Text:   "tell me of the village",
	})
	if got == "" {
		t.Fatal("expected a fallback reply")
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want 1 (no retry)", calls)
	}
}

func TestMalformedPayloadFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	e, _ := newTestEngine(t)
	e.SetProvider(provider.Config{Endpoint: srv.URL, APIKey: "test-key", Model: "test"})

	got := e.Generate(context.Background(), Inbound{
		Sender: memory.Participant{Name: "Wanderer", ID: "p1"},
		Text:   "tell me of the village",
	})
	if got == "" {
		t.Fatal("expected a fallback reply for empty candidate list")
	}
}

func TestSetStateDefaults(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetState(State{})

	st := e.State()
	if st.Temperature == 0 || st.MaxTokens == 0 || st.HistoryWindow == 0 || st.ResponseStyle == "" {
		t.Errorf("zero fields not defaulted: %+v", st)
	}
}
