package models

// GlobalKPIs are speaker-agnostic conversational metrics.
type GlobalKPIs struct {
	TalkMs              int64   `json:"talk_ms"`
	ListenMs            int64   `json:"listen_ms"`
	TalkListenRatio     string  `json:"talk_listen_ratio"`
	FillerWordsCount    int     `json:"filler_words_count"`
	InterruptionsCount  int     `json:"interruptions_count"`
	QuestionsAskedCount int     `json:"questions_asked_count"`
	SentimentScore      float64 `json:"sentiment_score"`
	PaceWPM             float64 `json:"pace_wpm"`

	CallDurationMs   int64 `json:"call_duration_ms"`
	SilenceMs        int64 `json:"silence_ms"`
	TraineeTurns     int   `json:"trainee_turns"`
	AgentTurns       int   `json:"agent_turns"`
	TraineeWordCount int   `json:"trainee_word_count"`
}

// ScenarioKPIs are rubric and persona aware signals.
type ScenarioKPIs struct {
	RequiredPhrasesMentioned []string `json:"required_phrases_mentioned"`
	ObjectionsRaised         []string `json:"objections_raised"`
	ObjectionsHandled        []string `json:"objections_handled"`
	// GoalAchieved is a heuristic, not an authoritative judgment.
	GoalAchieved bool   `json:"goal_achieved"`
	GoalEvidence string `json:"goal_evidence,omitempty"`
}

// AttemptKPIs groups every metric computed for one attempt.
type AttemptKPIs struct {
	Global   GlobalKPIs   `json:"global"`
	Scenario ScenarioKPIs `json:"scenario"`
}
