package game

import (
	"sort"
	"strings"
	"time"
)

// Session is the authoritative game-state record. It is owned and mutated
// exclusively by the Dispatcher under its mutex; nothing here locks.
type Session struct {
	phase                Phase
	players              []*Player
	currentQuestionIndex int
	currentAnswers       []Answer
	// resultsToken is the index of the last question whose results were
	// committed to player scores. Scoring a question is idempotent: it can
	// only be applied while the displayed question's index is ahead of the
	// token.
	resultsToken int
	hintIndex    int
	shownHints   []string
}

// NewSession creates an empty lobby-phase session.
func NewSession() *Session {
	return &Session{
		phase:        PhaseLobby,
		resultsToken: noResults,
	}
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) SetPhase(p Phase) { s.phase = p }

// CurrentQuestionIndex is the index of the next question to send.
func (s *Session) CurrentQuestionIndex() int { return s.currentQuestionIndex }

// DisplayedQuestionIndex is the index of the question currently in front of
// players, or noResults before the first question is sent.
func (s *Session) DisplayedQuestionIndex() int {
	return s.currentQuestionIndex - 1
}

// AddPlayer appends a player to the roster. Join order is preserved.
func (s *Session) AddPlayer(p Player) {
	s.players = append(s.players, &p)
}

// FindPlayer returns the roster entry for id.
func (s *Session) FindPlayer(id string) (*Player, bool) {
	for _, p := range s.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// RemovePlayer drops a player from the roster.
func (s *Session) RemovePlayer(id string) bool {
	for i, p := range s.players {
		if p.ID == id {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return true
		}
	}
	return false
}

// PlayerCount returns the roster size.
func (s *Session) PlayerCount() int {
	return len(s.players)
}

// Roster returns the players in join order.
func (s *Session) Roster() []Player {
	out := make([]Player, len(s.players))
	for i, p := range s.players {
		out[i] = *p
	}
	return out
}

// Leaderboard returns players ordered by descending score. Equal scores
// retain roster order.
func (s *Session) Leaderboard() []Player {
	out := s.Roster()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Start moves the session from lobby to active play, rewinding the
// question cursor and clearing any stale working state.
func (s *Session) Start() {
	s.phase = PhaseActive
	s.currentQuestionIndex = 0
	s.currentAnswers = nil
	s.resultsToken = noResults
	s.hintIndex = 0
	s.shownHints = nil
}

// BeginQuestion advances to the next question: the answer window and hint
// progress of the previous question are discarded.
func (s *Session) BeginQuestion() {
	s.currentQuestionIndex++
	s.currentAnswers = nil
	s.hintIndex = 0
	s.shownHints = nil
}

// RecordAnswer appends an answer; a second submission by the same player
// within one question window is rejected.
func (s *Session) RecordAnswer(a Answer) bool {
	for _, prev := range s.currentAnswers {
		if prev.PlayerID == a.PlayerID {
			return false
		}
	}
	s.currentAnswers = append(s.currentAnswers, a)
	return true
}

// Answers returns the current answer set in submission order.
func (s *Session) Answers() []Answer {
	out := make([]Answer, len(s.currentAnswers))
	copy(out, s.currentAnswers)
	return out
}

// ResultsCommitted reports whether the displayed question has been scored.
func (s *Session) ResultsCommitted() bool {
	displayed := s.DisplayedQuestionIndex()
	return displayed >= 0 && s.resultsToken == displayed
}

// CommitResults scores the displayed question exactly once. Each recorded
// answer matching q's correct answer earns q.Points for its player. Returns
// false without mutating anything when results were already committed.
func (s *Session) CommitResults(q Question) bool {
	if s.ResultsCommitted() {
		return false
	}
	for _, a := range s.currentAnswers {
		p, ok := s.FindPlayer(a.PlayerID)
		if !ok {
			continue
		}
		if AnswerMatches(a.Value, q.CorrectAnswer) {
			p.Score += q.Points
		}
	}
	s.resultsToken = s.DisplayedQuestionIndex()
	return true
}

// RevealHint discloses the next hint of q, in order.
func (s *Session) RevealHint(q Question) (string, bool) {
	if s.hintIndex >= len(q.Hints) {
		return "", false
	}
	hint := q.Hints[s.hintIndex]
	s.shownHints = append(s.shownHints, hint)
	s.hintIndex++
	return hint, true
}

// HintIndex is the count of hints revealed for the displayed question.
func (s *Session) HintIndex() int { return s.hintIndex }

// ShownHints returns the revealed hints in reveal order.
func (s *Session) ShownHints() []string {
	out := make([]string, len(s.shownHints))
	copy(out, s.shownHints)
	return out
}

// Reset returns the session to an empty lobby. Roster, answers and hint
// progress are cleared.
func (s *Session) Reset() {
	s.phase = PhaseLobby
	s.players = nil
	s.currentQuestionIndex = 0
	s.currentAnswers = nil
	s.resultsToken = noResults
	s.hintIndex = 0
	s.shownHints = nil
}

// Snapshot materializes the session for persistence.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Phase:                s.phase,
		Players:              s.Roster(),
		CurrentQuestionIndex: s.currentQuestionIndex,
		CurrentAnswers:       s.Answers(),
		ResultsToken:         s.resultsToken,
		HintIndex:            s.hintIndex,
		ShownHints:           s.ShownHints(),
		SavedAt:              time.Now(),
	}
}

// Restore rehydrates session state from a snapshot. Connections are not
// part of the snapshot: restored players stay on the roster but are only
// addressable again after they re-join.
func (s *Session) Restore(snap SessionSnapshot) {
	s.phase = snap.Phase
	if s.phase == "" {
		s.phase = PhaseLobby
	}
	s.players = nil
	for _, p := range snap.Players {
		s.AddPlayer(p)
	}
	s.currentQuestionIndex = snap.CurrentQuestionIndex
	s.currentAnswers = append([]Answer(nil), snap.CurrentAnswers...)
	s.resultsToken = snap.ResultsToken
	if s.resultsToken > s.currentQuestionIndex-1 {
		s.resultsToken = noResults
	}
	s.hintIndex = snap.HintIndex
	s.shownHints = append([]string(nil), snap.ShownHints...)
}

// AnswerMatches applies the scoring rule: string equality after trimming
// and case-folding both sides. All question types compare identically.
func AnswerMatches(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}
