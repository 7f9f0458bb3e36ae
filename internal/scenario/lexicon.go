package scenario

// objectionCues are the built-in phrases that mark an objection raised by the
// simulated counterpart. Matching is on whole words.
var objectionCues = map[string][]string{
	"price": {
		"price", "pricing", "cost", "costs", "expensive", "budget", "afford", "too much",
	},
	"timing": {
		"not now", "bad time", "next quarter", "next year", "later", "busy", "timing", "not a priority",
	},
	"competitor": {
		"competitor", "already use", "already have", "another vendor", "current vendor", "locked in", "under contract",
	},
	"authority": {
		"my boss", "decision maker", "approval", "sign off", "run it by", "not my call", "committee",
	},
	"need": {
		"don't need", "not interested", "happy with", "no need", "works fine", "doesn't fit",
	},
	"trust": {
		"never heard of", "not sure about", "skeptical", "risky", "references", "proof",
	},
}

var affirmativeCues = []string{
	"yes", "yeah", "yep", "sure", "agreed", "agree", "deal", "absolutely", "definitely",
	"sounds good", "let's do", "works for me", "go ahead", "count me in",
}

var stopwords = map[string]bool{
	"about": true, "after": true, "been": true, "could": true, "from": true, "have": true,
	"into": true, "more": true, "over": true, "should": true, "than": true, "that": true,
	"their": true, "them": true, "then": true, "they": true, "this": true, "were": true,
	"what": true, "when": true, "will": true, "with": true, "would": true, "your": true,
}

// minResponseWords is how many words a trainee turn needs to count as an
// answer to an objection.
const minResponseWords = 3

// tailFraction is the share of final segments searched for goal evidence.
const tailFraction = 0.2
