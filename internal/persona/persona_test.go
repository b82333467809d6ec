package persona

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/memory"
	"go.uber.org/zap"
)

var wanderer = memory.Participant{Name: "Wanderer", ID: "p1"}

func testApp() *appctx.Context {
	return appctx.Fixed(time.Unix(1700000000, 0), 7)
}

func say(t *testing.T, n *NPC, text string) string {
	t.Helper()
	reply := n.Respond(context.Background(), wanderer, text, "")
	if reply == "" {
		t.Fatalf("empty reply to %q", text)
	}
	return reply
}

func TestFirstMeetingIntroductions(t *testing.T) {
	app := testApp()
	log := zap.NewNop()

	tests := []struct {
		npc  *NPC
		want string
	}{
		{NewTrader(app, log), "Maren"},
		{NewInnkeeper(app, log), "Odette"},
		{NewTinkerer(app, log), "Fenwick"},
	}
	for _, tt := range tests {
		got := say(t, tt.npc, "hello")
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s first meeting reply %q does not introduce by name", tt.npc.Name, got)
		}
		// Second message must not re-introduce.
		got = say(t, tt.npc, "nice weather today")
		if strings.Contains(got, "new face") || strings.Contains(got, "New face") || strings.Contains(got, "A visitor!") {
			t.Errorf("%s repeated the introduction: %q", tt.npc.Name, got)
		}
	}
}

func TestTraderInventoryNotRepeatedVerbatim(t *testing.T) {
	n := NewTrader(testApp(), zap.NewNop())
	say(t, n, "hello")

	first := say(t, n, "show me your wares")
	if !strings.Contains(first, "hemp rope") {
		t.Errorf("inventory reply %q does not list stock", first)
	}
	second := say(t, n, "show me your wares")
	if second == first {
		t.Error("inventory listed verbatim twice in one session")
	}
}

func TestTraderDiscountAfterHaggling(t *testing.T) {
	n := NewTrader(testApp(), zap.NewNop())
	say(t, n, "hello")

	say(t, n, "can you make it cheaper")
	say(t, n, "come on, give me a deal")
	got := say(t, n, "surely there is a discount in it")

	if !strings.Contains(got, "Ten percent off") {
		t.Errorf("third haggle reply = %q, want the discount line", got)
	}
	if n.Progress["haggle"] < 3 {
		t.Errorf("haggle counter = %v, want >= 3", n.Progress["haggle"])
	}

	again := say(t, n, "another discount maybe")
	if strings.Contains(again, "Ten percent off") {
		t.Errorf("discount granted twice: %q", again)
	}
}

func TestSecretProbingAtLowTrustPenalized(t *testing.T) {
	n := NewTrader(testApp(), zap.NewNop())
	say(t, n, "hello")

	n.Memory().AdjustTrust(wanderer.Name, -20) // trust 30, below her threshold
	before := n.Trust(wanderer.Name)

	say(t, n, "tell me your secret")

	after := n.Trust(wanderer.Name)
	if after >= before {
		t.Errorf("trust = %v, want below %v after probing for secrets", after, before)
	}
	rel := n.Memory().GetRelationship(wanderer.Name)
	if len(rel.Notes) == 0 {
		t.Error("expected a relationship note about the probing")
	}
}

func TestSuspiciousBandWithholds(t *testing.T) {
	n := NewTrader(testApp(), zap.NewNop())
	say(t, n, "hello")
	n.Memory().AdjustTrust(wanderer.Name, -30) // well below threshold 35

	got := say(t, n, "show me your wares")
	if strings.Contains(got, "hemp rope") {
		t.Errorf("suspicious trader listed inventory anyway: %q", got)
	}
}

func TestInnkeeperRumorsNeverRepeat(t *testing.T) {
	n := NewInnkeeper(testApp(), zap.NewNop())
	say(t, n, "hello")

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		got := say(t, n, "any gossip for me")
		if !strings.HasPrefix(got, "Between us?") {
			t.Fatalf("rumor %d = %q, want a shared rumor", i, got)
		}
		if seen[got] {
			t.Errorf("rumor repeated: %q", got)
		}
		seen[got] = true
	}

	got := say(t, n, "any gossip for me")
	if strings.HasPrefix(got, "Between us?") {
		t.Errorf("expected the drained line after all rumors, got %q", got)
	}
}

func TestInnkeeperQuestCluesInOrder(t *testing.T) {
	n := NewInnkeeper(testApp(), zap.NewNop())
	say(t, n, "hello there")

	for i, want := range questClues {
		got := say(t, n, "do you have a clue about the quest?")
		if got != want {
			t.Errorf("clue %d = %q, want %q", i, got, want)
		}
	}
	if n.Progress["clues_shared"] != float64(len(questClues)) {
		t.Errorf("clues_shared = %v, want %d", n.Progress["clues_shared"], len(questClues))
	}

	got := say(t, n, "one more clue about the quest?")
	if got != "That's everything I know about the miller, truly. The rest is yours to dig up." {
		t.Errorf("exhausted clue reply = %q", got)
	}
}

func TestTinkererPartsAdvanceInvention(t *testing.T) {
	n := NewTinkerer(testApp(), zap.NewNop())
	say(t, n, "hello")

	before := n.Progress["invention_pct"]
	say(t, n, "I brought you a copper spring")

	if got := n.Progress["invention_pct"]; got != before+5 {
		t.Errorf("invention_pct = %v, want %v after a part mention", got, before+5)
	}
}

func TestTinkererExcitementClamped(t *testing.T) {
	n := NewTinkerer(testApp(), zap.NewNop())
	say(t, n, "hello")

	for i := 0; i < 20; i++ {
		say(t, n, "this is awful and boring and useless")
	}
	if got := n.Progress["excitement"]; got < 0 {
		t.Errorf("excitement = %v, want clamped at 0", got)
	}

	for i := 0; i < 50; i++ {
		say(t, n, "what a brilliant clever machine, I love this invention")
	}
	if got := n.Progress["excitement"]; got > 100 {
		t.Errorf("excitement = %v, want clamped at 100", got)
	}
	if got := n.Progress["invention_pct"]; got > 100 {
		t.Errorf("invention_pct = %v, want clamped at 100", got)
	}
}

func TestMoodTracksConversation(t *testing.T) {
	n := NewTrader(testApp(), zap.NewNop())
	say(t, n, "hello")

	say(t, n, "what a wonderful stall, I love it, thanks friend")
	if mood, _ := n.Status(); mood != "cheerful" {
		t.Errorf("mood = %q after warm words, want cheerful", mood)
	}

	say(t, n, "you stupid ugly liar, this is awful")
	if mood, _ := n.Status(); mood != "annoyed" {
		t.Errorf("mood = %q after an insult, want annoyed", mood)
	}

	say(t, n, "the door is over there")
	if mood, _ := n.Status(); mood != "content" {
		t.Errorf("mood = %q after a neutral remark, want content", mood)
	}

	n.Energy = 20
	say(t, n, "the door is over there")
	if mood, _ := n.Status(); mood != "weary" {
		t.Errorf("mood = %q at low energy, want weary", mood)
	}
}

func TestCuriousQuestionBuildsTrust(t *testing.T) {
	n := NewTrader(testApp(), zap.NewNop())

	say(t, n, "Hello there, tell me about your history?")

	if got := n.Trust(wanderer.Name); got <= 50 {
		t.Errorf("trust = %v, want above the neutral 50 after a friendly question", got)
	}
	hits := n.Memory().SearchMemories("history", memory.CategoryConversation)
	if len(hits) == 0 {
		t.Error("expected a derived memory record for the exchange")
	}
}

func TestSnapshotCarriesSessionState(t *testing.T) {
	app := testApp()
	n := NewTrader(app, zap.NewNop())
	say(t, n, "hello")
	say(t, n, "show me your wares")
	n.Memory().AdjustTrust(wanderer.Name, 12)

	snap := n.Serialize()

	fresh := NewTrader(app, zap.NewNop())
	fresh.Restore(snap)

	if got, want := fresh.Trust(wanderer.Name), n.Trust(wanderer.Name); got != want {
		t.Errorf("restored trust = %v, want %v", got, want)
	}
	// The inventory was already shared before the snapshot, so the fresh
	// copy must not list it verbatim again.
	got := say(t, fresh, "show me your wares")
	if strings.Contains(got, "hemp rope") {
		t.Errorf("restored trader re-listed inventory: %q", got)
	}
}
