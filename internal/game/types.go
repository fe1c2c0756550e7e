package game

import "time"

// Phase lifecycle states for the session.
type Phase string

const (
	PhaseLobby  Phase = "lobby"
	PhaseActive Phase = "in_progress"
	PhaseEnded  Phase = "ended"
)

// Question types.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeTextInput      = "text_input"
)

const defaultPoints = 10

// Question is one entry of the immutable question bank.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        int      `json:"points"`
	Hints         []string `json:"hints,omitempty"`
}

// Player is a joined participant. IDs are generated server-side and never reused.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Answer records one player's submission for the active question.
type Answer struct {
	PlayerID    string    `json:"playerId"`
	Value       string    `json:"answer"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// noResults marks that no question's results have been committed yet.
const noResults = -1

// SessionSnapshot is the persisted materialization of session state.
type SessionSnapshot struct {
	Phase                Phase     `json:"state"`
	Players              []Player  `json:"players"`
	CurrentQuestionIndex int       `json:"currentQuestionIndex"`
	CurrentAnswers       []Answer  `json:"currentAnswers"`
	ResultsToken         int       `json:"resultsToken"`
	HintIndex            int       `json:"hintIndex"`
	ShownHints           []string  `json:"shownHints"`
	SavedAt              time.Time `json:"savedAt"`
}
