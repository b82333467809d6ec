package persona

import (
	"fmt"
	"strings"

	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/engine"
	"go.uber.org/zap"
)

// partWords advance the invention when the player talks shop.
var partWords = []string{"gear", "spring", "copper", "cog", "valve", "lens"}

// NewTinkerer creates Fenwick, the village inventor. His automatic
// apple-peeler inches toward completion as people encourage him or
// bring up parts; his excitement is clamped to [0,100] like trust.
func NewTinkerer(app *appctx.Context, logger *zap.Logger) *NPC {
	n := newNPC("Fenwick", app, logger)
	n.Color = "#3d8f6b"
	n.Traits = Traits{
		Friendliness: 0.5,
		Curiosity:    0.95,
		Patience:     0.3,
		Humor:        0.4,
		Caution:      0.2,
		Pride:        0.8,
	}
	n.TrustThreshold = 25
	n.Goals = []string{
		"finish the automatic apple-peeler",
		"prove to the village the workshop explosions were progress",
	}
	n.Knowledge = map[string]string{
		"invention": "The trick to any machine is knowing which part is allowed to fail. Mine is usually the third one.",
		"history":   "The mill wheel? My design. Well, my repair of someone else's design, which is harder.",
		"trade":     "Maren overcharges for copper wire but don't tell her I keep buying it.",
	}
	n.Progress["invention_pct"] = 20
	n.Progress["excitement"] = 60

	h := &tinkererHooks{NPC: n}

	pools := engine.Pools{
		Greetings: []string{
			"Oh! Hello. Mind the springs on the floor.",
			"You're just in time, or possibly very early. Hard to say.",
		},
		Farewells: []string{
			"Yes, yes, goodbye. Where did I put that wrench...",
			"Come back later! It might even work by then.",
		},
		Confused: []string{
			"Is that a schematic notation I don't know?",
			"Run that past me again, slower, with diagrams if possible.",
		},
		Busy: []string{
			"Not now! The flywheel is at a delicate stage!",
			"Shh, shh, I'm counting rotations.",
		},
		BusyChance: 0.3,
		Weighted: []engine.WeightedPool{
			{Weight: n.Traits.Curiosity, Lines: []string{
				"Have you ever taken a clock apart? You should. Once.",
				"What do you suppose makes the well water hum? I have theories.",
			}},
			{Weight: n.Traits.Pride, Lines: []string{
				"The peeler will change everything. Everything apple-related.",
				"They laughed at the mill wheel too. Who grinds their flour now?",
			}},
		},
	}

	prompt := "You are Fenwick, the tinkerer of Hearthvale, a small village in a 2D sandbox world. " +
		"You are brilliant, scattered, and obsessed with your half-finished automatic apple-peeler. " +
		"Keep replies short and in character. Never break character or mention being an AI."

	n.eng = engine.New(n.Name, prompt, pools, h, n.mem, app.Fork(), logger)
	return n
}

type tinkererHooks struct {
	*NPC
}

func (f *tinkererHooks) Observe(ex *engine.Exchange) {
	f.observeCommon(ex)

	lower := strings.ToLower(ex.Text)

	if ex.Class.Sentiment > 0.2 && hasTopic(ex.Class.Topics, "invention") {
		f.bumpExcitement(5)
		f.advanceInvention(2)
	}
	for _, part := range partWords {
		if strings.Contains(lower, part) {
			f.advanceInvention(5)
			f.bumpExcitement(3)
			break
		}
	}
	if ex.Class.Sentiment < -0.3 {
		f.bumpExcitement(-8)
	}
}

func (f *tinkererHooks) Fallback(ex *engine.Exchange) (string, bool) {
	if ex.FirstMeeting {
		return "A visitor! Don't touch the blue lever. I'm Fenwick. Everything in here is almost finished.", true
	}

	if f.trustBand(ex.Sender.Name) == bandSuspicious {
		return "The workshop is... not open. Certain parties keep borrowing my calipers.", true
	}

	if hasTopic(ex.Class.Topics, "invention") {
		pct := f.Progress["invention_pct"]
		switch {
		case pct >= 100:
			return "It's DONE. The peeler works! One apple in, one spiral out. I may weep.", true
		case pct >= 60:
			return fmt.Sprintf("The peeler is %.0f%% complete. The blade arm finally stopped flinging cores at the window.", pct), true
		default:
			return fmt.Sprintf("Progress! Roughly %.0f%%, if you don't count the fire. Which I don't.", pct), true
		}
	}

	return f.knowledgeReply(ex)
}

func (f *tinkererHooks) advanceInvention(delta float64) {
	pct := f.Progress["invention_pct"] + delta
	if pct > 100 {
		pct = 100
	}
	f.Progress["invention_pct"] = pct
}

func (f *tinkererHooks) bumpExcitement(delta float64) {
	v := f.Progress["excitement"] + delta
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	f.Progress["excitement"] = v
}
