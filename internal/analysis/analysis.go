package analysis

import (
	"strings"
	"unicode"
)

// Classification is the result of scoring one inbound or outbound message.
type Classification struct {
	Length     int
	WordCount  int
	Sentiment  float64 // -1..1
	Topics     []string
	Questions  int
	Complexity float64 // 0..1, average words per sentence normalized
	Importance int     // 1..5, matches memory.Importance
}

// sentimentDelta is the per-keyword contribution before clamping.
const sentimentDelta = 0.2

var positiveWords = map[string]bool{
	"good": true, "great": true, "thanks": true, "thank": true, "love": true,
	"like": true, "nice": true, "wonderful": true, "happy": true, "friend": true,
	"beautiful": true, "amazing": true, "help": true, "please": true, "yes": true,
	"interesting": true, "clever": true, "brilliant": true,
}

var negativeWords = map[string]bool{
	"bad": true, "hate": true, "stupid": true, "ugly": true, "no": true,
	"never": true, "boring": true, "awful": true, "terrible": true, "angry": true,
	"annoying": true, "shut": true, "liar": true, "useless": true, "worst": true,
}

// topicKeywords maps a fixed topic label to its trigger words.
var topicKeywords = map[string][]string{
	"trade":     {"buy", "sell", "trade", "price", "coin", "gold", "shop", "wares", "inventory"},
	"gossip":    {"gossip", "rumor", "rumour", "heard", "news", "story", "secret"},
	"invention": {"invention", "machine", "gadget", "build", "tinker", "gear", "contraption"},
	"history":   {"history", "past", "ago", "ancient", "old", "remember", "founded"},
	"quest":     {"quest", "clue", "treasure", "map", "find", "search", "lost"},
	"weather":   {"rain", "sun", "storm", "weather", "cold", "warm", "wind"},
	"personal":  {"you", "your", "yourself", "feel", "name", "family", "home"},
}

// importantWords bump a message's importance when present.
var importantWords = map[string]bool{
	"secret": true, "treasure": true, "danger": true, "important": true,
	"urgent": true, "promise": true, "quest": true, "help": true,
}

// Classify scores a message for sentiment, topics, importance, and shape.
// Pure function of the text; never fails.
func Classify(text string) Classification {
	words := Tokenize(text)

	c := Classification{
		Length:    len(text),
		WordCount: len(words),
		Questions: strings.Count(text, "?"),
	}

	var sentiment float64
	for _, w := range words {
		if positiveWords[w] {
			sentiment += sentimentDelta
		}
		if negativeWords[w] {
			sentiment -= sentimentDelta
		}
	}
	c.Sentiment = clamp(sentiment, -1, 1)
	c.Topics = MatchTopics(words)
	c.Complexity = complexity(text, len(words))
	c.Importance = importance(c, words)
	return c
}

// MatchTopics returns the topic labels whose keyword sets intersect words.
func MatchTopics(words []string) []string {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	var topics []string
	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if set[kw] {
				topics = append(topics, topic)
				break
			}
		}
	}
	return topics
}

// topicOrder keeps topic output deterministic across calls.
var topicOrder = []string{"trade", "gossip", "invention", "history", "quest", "weather", "personal"}

// importance starts at a baseline and is bumped by length, flagged
// keywords, and questions. Capped at 5.
func importance(c Classification, words []string) int {
	imp := 2
	if c.Length > 50 {
		imp++
	}
	for _, w := range words {
		if importantWords[w] {
			imp++
			break
		}
	}
	if c.Questions > 0 {
		imp++
	}
	if imp > 5 {
		imp = 5
	}
	return imp
}

// complexity is average words per sentence, normalized so that 20
// words per sentence saturates at 1.
func complexity(text string, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	sentences := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	avg := float64(wordCount) / float64(sentences)
	return clamp(avg/20, 0, 1)
}

// HasLetters reports whether the text contains at least one letter.
func HasLetters(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Tokenize splits text into lowercase word tokens, dropping single chars.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '\'')
	})
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.ToLower(strings.Trim(f, "'"))
		if len(w) > 1 {
			result = append(result, w)
		}
	}
	return result
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
