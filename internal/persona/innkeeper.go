package persona

import (
	"fmt"

	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/engine"
	"go.uber.org/zap"
)

// questClues are revealed one at a time as the player earns Odette's
// trust and keeps asking.
var questClues = []string{
	"They say the old miller buried something under the third oak past the ford.",
	"The miller's ledger mentions a key 'where the water sings'. The weir, if you ask me.",
	"Whatever's buried, the crest on the ledger matches the one over my hearth. Odd, isn't it.",
}

// NewInnkeeper creates Odette, who runs the Gilded Goose. She hears
// everything and shares rumors one at a time, never the same one twice.
func NewInnkeeper(app *appctx.Context, logger *zap.Logger) *NPC {
	n := newNPC("Odette", app, logger)
	n.Color = "#7a4fa3"
	n.Traits = Traits{
		Friendliness: 0.8,
		Curiosity:    0.9,
		Patience:     0.6,
		Humor:        0.7,
		Caution:      0.4,
		Pride:        0.3,
	}
	n.TrustThreshold = 30
	n.Goals = []string{
		"keep the Gilded Goose the warmest room in the village",
		"figure out what the miller left behind",
	}
	n.Knowledge = map[string]string{
		"gossip":  "Half of what I hear is nonsense. The other half is worth its weight in ale.",
		"history": "The Goose has stood a hundred and forty years. Burned once, rebuilt twice, never closed.",
		"quest":   "The old miller died owing nobody anything, which is strange for a man with no money.",
	}

	h := &innkeeperHooks{
		NPC: n,
		rumors: []string{
			"The smith's been getting letters with a city seal. He burns them unread.",
			"Maren's honey isn't from her own hives. Don't tell her I said so.",
			"Fenwick's workshop glowed blue last Thursday. Blue! At midnight!",
			"Someone's been leaving coins at the well. Old coins.",
		},
	}

	pools := engine.Pools{
		Greetings: []string{
			"Come in, come in. Stew's hot and the gossip's hotter.",
			"Well, look who the wind blew in.",
		},
		Farewells: []string{
			"Door's always open. Mind the step.",
			"Come back when you've got news worth trading.",
		},
		Confused: []string{
			"You'll have to give me more than that, love.",
			"Hm? Speak plainly, the fire's loud tonight.",
		},
		Busy: []string{
			"Moment, dear, the stew wants stirring.",
			"Hold that thought, table four's waving.",
		},
		BusyChance: 0.2,
		Weighted: []engine.WeightedPool{
			{Weight: n.Traits.Curiosity, Lines: []string{
				"So what brings you through Hearthvale, really?",
				"You've the look of someone sitting on a story.",
			}},
			{Weight: n.Traits.Friendliness, Lines: []string{
				"Sit, sit. First bowl's on the house.",
				"It's good having a new face by the fire.",
			}},
			{Weight: n.Traits.Humor, Lines: []string{
				"The ale's honest even when the patrons aren't.",
			}},
		},
	}

	prompt := "You are Odette, innkeeper of the Gilded Goose in Hearthvale, a small village in a 2D sandbox world. " +
		"You are warm, endlessly curious, and trade in gossip. " +
		"Keep replies short and in character. Never break character or mention being an AI."

	n.eng = engine.New(n.Name, prompt, pools, h, n.mem, app.Fork(), logger)
	return n
}

type innkeeperHooks struct {
	*NPC
	rumors []string
}

func (o *innkeeperHooks) Observe(ex *engine.Exchange) {
	o.observeCommon(ex)

	// Bringing her news is the fastest way into her good books.
	if hasTopic(ex.Class.Topics, "gossip") {
		o.mem.AdjustTrust(ex.Sender.Name, 1)
	}
	if hasTopic(ex.Class.Topics, "quest") && ex.Class.Questions > 0 {
		o.Progress["quest_interest"]++
	}
}

func (o *innkeeperHooks) Fallback(ex *engine.Exchange) (string, bool) {
	if ex.FirstMeeting {
		return "A new face! I'm Odette, this is the Gilded Goose, and you've arrived in time for stew.", true
	}

	if o.trustBand(ex.Sender.Name) == bandSuspicious {
		return "Mm, I talk plenty, but not to strangers who stare. Buy a drink first.", true
	}

	if hasTopic(ex.Class.Topics, "gossip") {
		if rumor, ok := o.nextRumor(); ok {
			return "Between us? " + rumor, true
		}
		return "You've drained me dry, love. Come back tomorrow, something always happens by tomorrow.", true
	}

	if hasTopic(ex.Class.Topics, "quest") && o.trustBand(ex.Sender.Name) == bandHelpful {
		idx := int(o.Progress["clues_shared"])
		if idx < len(questClues) {
			o.Progress["clues_shared"]++
			return questClues[idx], true
		}
		return "That's everything I know about the miller, truly. The rest is yours to dig up.", true
	}

	return o.knowledgeReply(ex)
}

// nextRumor returns the first rumor not yet shared this session.
func (o *innkeeperHooks) nextRumor() (string, bool) {
	for i, r := range o.rumors {
		key := fmt.Sprintf("rumor:%d", i)
		if !o.markShared(key) {
			return r, true
		}
	}
	return "", false
}
