package ws

import (
	"encoding/json"
	"time"
)

// Event name constants for the wire protocol.
const (
	// Client -> Server
	EventHostAuth     = "host_auth"
	EventJoinGame     = "join_game"
	EventStartGame    = "start_game"
	EventNextQuestion = "next_question"
	EventSubmitAnswer = "submit_answer"
	EventShowResults  = "show_results"
	EventShowHint     = "show_hint"
	EventEndGame      = "end_game"
	EventResetGame    = "reset_game"

	// Server -> Client
	EventHostAuthenticated = "host_authenticated"
	EventPlayersUpdate     = "players_update"
	EventGameState         = "game_state"
	EventJoinConfirmed     = "join_confirmed"
	EventQuestion          = "question"
	EventAnswersUpdate     = "answers_update"
	EventQuestionResults   = "question_results"
	EventFinalResults      = "final_results"
	EventGameEnded         = "game_ended"
	EventGameReset         = "game_reset"
	EventHintsAvailable    = "hints_available"
	EventHintRevealed      = "hint_revealed"
	EventHintShown         = "hint_shown"
	EventHintError         = "hint_error"
	EventError             = "error"
)

// Envelope wraps every inbound and outbound message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into a wire envelope.
func NewEnvelope(event string, payload any) (Envelope, error) {
	env := Envelope{Event: event}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	env.Data = data
	return env, nil
}

// Client Messages (incoming)

type HostAuthPayload struct {
	HostCode string `json:"hostCode,omitempty"`
	Token    string `json:"token,omitempty"`
}

type JoinGamePayload struct {
	PlayerName string `json:"playerName"`
}

type SubmitAnswerPayload struct {
	Answer string `json:"answer"`
}

// Server Messages (outgoing)

// PlayerInfo is the roster entry sent to clients.
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// QuestionView is the player-facing question: no correct answer, no hints.
type QuestionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Points   int      `json:"points"`
}

type HostAuthenticatedPayload struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
}

type PlayersUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

type GameStatePayload struct {
	State   string       `json:"state"`
	Players []PlayerInfo `json:"players"`
}

type JoinConfirmedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type QuestionPayload struct {
	Question  QuestionView `json:"question"`
	TimeLimit int          `json:"timeLimit"`
}

// AnswerInfo mirrors a recorded answer for the host dashboard.
type AnswerInfo struct {
	PlayerID    string    `json:"playerId"`
	Answer      string    `json:"answer"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type AnswersUpdatePayload struct {
	Answers      []AnswerInfo `json:"answers"`
	TotalPlayers int          `json:"totalPlayers"`
}

type QuestionResultsPayload struct {
	CorrectAnswer string       `json:"correctAnswer"`
	Scores        []PlayerInfo `json:"scores"`
}

type FinalResultsPayload struct {
	FinalScores []PlayerInfo `json:"finalScores"`
}

type GameEndedPayload struct {
	FinalScores []PlayerInfo `json:"finalScores"`
}

type HintsAvailablePayload struct {
	Count int `json:"count"`
}

type HintRevealedPayload struct {
	Hint          string   `json:"hint"`
	HintNumber    int      `json:"hintNumber"`
	AllShownHints []string `json:"allShownHints"`
}

type HintShownPayload struct {
	Hint       string `json:"hint"`
	HintNumber int    `json:"hintNumber"`
	Remaining  int    `json:"remaining"`
}

type HintErrorPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
