package metrics

// fillerPhrases are counted as whole words (or consecutive words) in trainee speech.
var fillerPhrases = [][]string{
	{"um"}, {"uh"}, {"er"}, {"ah"}, {"hmm"},
	{"like"}, {"basically"}, {"literally"}, {"actually"},
	{"you", "know"}, {"i", "mean"}, {"sort", "of"}, {"kind", "of"},
}

var interrogatives = map[string]bool{
	"who": true, "what": true, "when": true, "where": true, "why": true, "how": true,
	"can": true, "could": true, "would": true, "do": true, "does": true,
}

var positiveCues = map[string]bool{
	"great": true, "good": true, "excellent": true, "happy": true, "glad": true,
	"love": true, "appreciate": true, "thanks": true, "thank": true, "perfect": true,
	"wonderful": true, "helpful": true, "absolutely": true, "definitely": true,
	"excited": true, "fantastic": true, "pleased": true, "awesome": true, "benefit": true,
}

var negativeCues = map[string]bool{
	"bad": true, "terrible": true, "unfortunately": true, "problem": true, "sorry": true,
	"difficult": true, "hate": true, "annoying": true, "frustrated": true, "frustrating": true,
	"worried": true, "wrong": true, "awful": true, "confused": true, "disappointed": true,
	"fail": true, "poor": true, "impossible": true,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "can't": true, "won't": true,
	"isn't": true, "doesn't": true, "didn't": true, "wasn't": true, "aren't": true,
}

// negationReach is how many preceding tokens a negator may be from a cue.
const negationReach = 2
