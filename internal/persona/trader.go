package persona

import (
	"strings"

	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/engine"
	"go.uber.org/zap"
)

// NewTrader creates Maren, the village trader. Shrewd but warm once she
// trusts you; tracks a haggling counter that eventually earns a discount.
func NewTrader(app *appctx.Context, logger *zap.Logger) *NPC {
	n := newNPC("Maren", app, logger)
	n.Color = "#c96f2b"
	n.Traits = Traits{
		Friendliness: 0.7,
		Curiosity:    0.4,
		Patience:     0.5,
		Humor:        0.6,
		Caution:      0.7,
		Pride:        0.6,
	}
	n.TrustThreshold = 35
	n.Goals = []string{
		"sell the autumn stock before the frost",
		"find a buyer for the dented copper kettle",
	}
	n.Knowledge = map[string]string{
		"trade":   "Prices double when the mountain pass floods. Buy rope in summer, sell it in autumn.",
		"history": "My grandmother set up the first stall on this square, back when Hearthvale was three houses and a well.",
		"weather": "Storm's coming when the geese fly low over the mill. Never failed me yet.",
	}

	h := &traderHooks{
		NPC: n,
		inventory: []string{
			"a coil of good hemp rope",
			"two jars of clover honey",
			"a dented copper kettle",
			"wool mittens, slightly mismatched",
		},
	}

	pools := engine.Pools{
		Greetings: []string{
			"Back again? The honey's still for sale.",
			"Welcome to the stall. Look with your eyes, not your hands.",
		},
		Farewells: []string{
			"Off with you then. Coin's always welcome back.",
			"Safe roads. Mind the mud past the mill.",
		},
		Confused: []string{
			"Speak up, I can't sell to mumbling.",
			"That's not a word I trade in.",
		},
		Busy: []string{
			"Hold on, I'm counting stock.",
			"One moment, this ledger won't balance itself.",
		},
		BusyChance: 0.15,
		Weighted: []engine.WeightedPool{
			{Weight: n.Traits.Friendliness, Lines: []string{
				"Market's been kind this week. You look like you could use some honey.",
				"You're better company than most who stop by.",
			}},
			{Weight: n.Traits.Pride, Lines: []string{
				"Finest stall in Hearthvale, and I'll hear no argument.",
				"Quality costs. Cheap rope snaps, remember that.",
			}},
			{Weight: n.Traits.Humor, Lines: []string{
				"I'd sell you the weather if I could bottle it.",
			}},
		},
	}

	prompt := "You are Maren, the trader of Hearthvale, a small village in a 2D sandbox world. " +
		"You are shrewd, proud of your stall, and warm to people you trust. " +
		"Keep replies short and in character. Never break character or mention being an AI."

	n.eng = engine.New(n.Name, prompt, pools, h, n.mem, app.Fork(), logger)
	return n
}

type traderHooks struct {
	*NPC
	inventory []string
}

// Observe advances trader state on every inbound message, regardless of
// which path produces the reply.
func (t *traderHooks) Observe(ex *engine.Exchange) {
	t.observeCommon(ex)

	lower := strings.ToLower(ex.Text)
	if strings.Contains(lower, "cheaper") || strings.Contains(lower, "discount") || strings.Contains(lower, "deal") {
		t.Progress["haggle"]++
	}
	if hasTopic(ex.Class.Topics, "trade") {
		t.mem.AdjustTrust(ex.Sender.Name, 0.5) // talking shop warms her up
	}
}

// Fallback handles trader-specific scripted replies before the generic
// engine pools run.
func (t *traderHooks) Fallback(ex *engine.Exchange) (string, bool) {
	if ex.FirstMeeting {
		return "New face! Maren's the name, trading's the game. Everything you see is for sale, mostly.", true
	}

	if t.trustBand(ex.Sender.Name) == bandSuspicious {
		return t.suspiciousLine(), true
	}

	lower := strings.ToLower(ex.Text)
	if strings.Contains(lower, "inventory") || strings.Contains(lower, "wares") ||
		strings.Contains(lower, "what do you sell") || strings.Contains(lower, "buy") {
		if t.markShared("inventory") {
			return "Same stock as before. The kettle's still waiting for someone with taste.", true
		}
		return "Today I've got " + strings.Join(t.inventory, ", ") + ". Fair prices, firm but fair.", true
	}

	if t.Progress["haggle"] >= 3 && !t.markShared("discount") {
		return "Oh, fine. You've worn me down. Ten percent off, and not a copper more.", true
	}

	return t.knowledgeReply(ex)
}

func (t *traderHooks) suspiciousLine() string {
	lines := []string{
		"Hmm. I keep my good stock for people I know.",
		"You browse, I'll watch. Nothing personal.",
	}
	return lines[int(t.Progress["haggle"])%len(lines)]
}

func hasTopic(topics []string, want string) bool {
	for _, t := range topics {
		if t == want {
			return true
		}
	}
	return false
}
