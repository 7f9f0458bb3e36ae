package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/repcoach/callscore/internal/models"
)

// ComputeGlobal derives the speaker-agnostic KPIs of a normalized transcript.
// callDurationMs is the resolved overall call duration. Every output is finite.
func ComputeGlobal(segments []models.TranscriptSegment, callDurationMs int64) models.GlobalKPIs {
	k := models.GlobalKPIs{CallDurationMs: max(0, callDurationMs)}

	var traineeWords []string
	var lastAgentEnd int64 = -1

	for _, seg := range segments {
		if !seg.IsTrainee() {
			k.ListenMs += seg.DurationMs()
			if seg.Speaker == models.SpeakerAgent {
				k.AgentTurns++
				lastAgentEnd = seg.EndTimeMs
			}
			continue
		}

		k.TraineeTurns++
		k.TalkMs += seg.DurationMs()

		if lastAgentEnd >= 0 && seg.StartTimeMs < lastAgentEnd {
			k.InterruptionsCount++
		}

		words := Words(seg.Text)
		if IsQuestion(seg.Text, words) {
			k.QuestionsAskedCount++
		}
		k.FillerWordsCount += CountFillers(words)
		traineeWords = append(traineeWords, words...)
	}

	k.TalkListenRatio = TalkListenRatio(k.TalkMs, k.ListenMs)
	k.TraineeWordCount = len(traineeWords)
	k.PaceWPM = Pace(len(traineeWords), k.TalkMs)
	k.SentimentScore = Sentiment(traineeWords)
	k.SilenceMs = max(0, k.CallDurationMs-speechUnionMs(segments))

	return k
}

// TalkListenRatio formats the trainee/other split as "T:L" with T+L = 100.
// A silent transcript yields "0:0".
func TalkListenRatio(talkMs, listenMs int64) string {
	total := talkMs + listenMs
	if total <= 0 {
		return "0:0"
	}
	t := int(math.Round(100 * float64(talkMs) / float64(total)))
	return fmt.Sprintf("%d:%d", t, 100-t)
}

// CountFillers counts filler words and phrases in already tokenized text.
func CountFillers(words []string) int {
	count := 0
	for _, f := range fillerPhrases {
		count += countSequence(words, f)
	}
	return count
}

// IsQuestion reports whether an utterance is a question: it ends with "?" or
// opens with an interrogative word.
func IsQuestion(text string, words []string) bool {
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return true
	}
	if len(words) == 0 {
		return false
	}
	// "what's", "how'd" and friends open with their interrogative
	first, _, _ := strings.Cut(words[0], "'")
	return interrogatives[first]
}

// Pace is words per minute of talk time, 0 when there was no talk time.
func Pace(wordCount int, talkMs int64) float64 {
	if talkMs <= 0 || wordCount == 0 {
		return 0
	}
	minutes := float64(talkMs) / 60000
	return round(float64(wordCount)/minutes, 2)
}

// Sentiment scores the polarity of tokens in [-1, 1] as (P-N)/(P+N), where a
// negator up to two tokens before a cue flips it. No cues yields 0.
func Sentiment(words []string) float64 {
	pos, neg := 0, 0
	for i, w := range words {
		polarity := 0
		switch {
		case positiveCues[w]:
			polarity = 1
		case negativeCues[w]:
			polarity = -1
		default:
			continue
		}

		for j := max(0, i-negationReach); j < i; j++ {
			if negators[words[j]] {
				polarity = -polarity
				break
			}
		}

		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}

	if pos+neg == 0 {
		return 0
	}
	return round(float64(pos-neg)/float64(pos+neg), 4)
}

// speechUnionMs is the total time covered by at least one segment. Segments
// must be ordered by start time.
func speechUnionMs(segments []models.TranscriptSegment) int64 {
	var total int64
	curStart, curEnd := int64(-1), int64(-1)
	for _, seg := range segments {
		if curEnd < 0 || seg.StartTimeMs > curEnd {
			if curEnd >= 0 {
				total += curEnd - curStart
			}
			curStart, curEnd = seg.StartTimeMs, seg.EndTimeMs
			continue
		}
		curEnd = max(curEnd, seg.EndTimeMs)
	}
	if curEnd >= 0 {
		total += curEnd - curStart
	}
	return total
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
