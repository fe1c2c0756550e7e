package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trivia-live/internal/hostauth"
	"trivia-live/pkg/http/ws"
)

// SnapshotSink receives the session snapshot after every committing
// mutation. Implementations must not block the caller.
type SnapshotSink interface {
	Enqueue(SessionSnapshot)
}

// Options configures a Dispatcher.
type Options struct {
	// TimeLimit is the advisory per-question countdown sent to players.
	// The server itself never rejects an answer for being late.
	TimeLimit int
}

// Dispatcher is the single serialized mutation path for the session. One
// mutex is held for the full validate-mutate-persist span of a message, so
// the session invariants hold without any further synchronization.
type Dispatcher struct {
	mu sync.Mutex

	session  *Session
	bank     *Bank
	registry *Registry
	auth     *hostauth.Authenticator
	sink     SnapshotSink
	metrics  *Metrics
	logger   zerolog.Logger

	timeLimit int
}

// NewDispatcher wires the session state machine.
func NewDispatcher(session *Session, bank *Bank, registry *Registry, auth *hostauth.Authenticator, sink SnapshotSink, metrics *Metrics, logger zerolog.Logger, opts Options) *Dispatcher {
	timeLimit := opts.TimeLimit
	if timeLimit <= 0 {
		timeLimit = 30
	}
	return &Dispatcher{
		session:   session,
		bank:      bank,
		registry:  registry,
		auth:      auth,
		sink:      sink,
		metrics:   metrics,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
		timeLimit: timeLimit,
	}
}

// HandleMessage processes one decoded inbound envelope from conn.
func (d *Dispatcher) HandleMessage(conn Pusher, env ws.Envelope) {
	d.mu.Lock()
	defer d.mu.Unlock()

	role := d.registry.Resolve(conn)

	// Client-chosen names must not become metric labels.
	metricLabel := env.Event

	switch env.Event {
	case ws.EventHostAuth:
		d.handleHostAuth(conn, env.Data)
	case ws.EventJoinGame:
		d.handleJoinGame(conn, env.Data)
	case ws.EventStartGame:
		d.hostOnly(conn, role, env.Event, d.handleStartGame)
	case ws.EventNextQuestion:
		d.hostOnly(conn, role, env.Event, d.handleNextQuestion)
	case ws.EventSubmitAnswer:
		d.handleSubmitAnswer(conn, role, env.Data)
	case ws.EventShowResults:
		d.hostOnly(conn, role, env.Event, d.handleShowResults)
	case ws.EventShowHint:
		d.hostOnly(conn, role, env.Event, d.handleShowHint)
	case ws.EventEndGame:
		d.hostOnly(conn, role, env.Event, d.handleEndGame)
	case ws.EventResetGame:
		d.hostOnly(conn, role, env.Event, d.handleResetGame)
	default:
		metricLabel = "unknown"
		d.logger.Info().Str("event", env.Event).Msg("unknown event ignored")
	}
	d.metrics.Events.WithLabelValues(metricLabel).Inc()
}

// HandleDisconnect routes a connection close through the same mutation path
// as a regular message.
func (d *Dispatcher) HandleDisconnect(conn Pusher) {
	d.mu.Lock()
	defer d.mu.Unlock()

	role := d.registry.Unregister(conn)
	switch role.Kind {
	case RoleHost:
		d.logger.Info().Msg("host disconnected")
	case RolePlayer:
		if d.session.RemovePlayer(role.PlayerID) {
			d.commit()
		}
		d.metrics.ConnectedPlayers.Dec()
		d.logger.Info().Str("player_id", role.PlayerID).Msg("player disconnected")
		d.toHost(ws.EventPlayersUpdate, ws.PlayersUpdatePayload{Players: toWire(d.session.Roster())})
	}
}

// Status is the read-only projection served by /v1/status.
func (d *Dispatcher) Status() (phase string, players int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.session.Phase()), d.session.PlayerCount()
}

// hostOnly drops events from anyone but the host. An unauthorized sender
// gets no reply: that is an attacker or client-bug signal worth a log line,
// not a protocol error.
func (d *Dispatcher) hostOnly(conn Pusher, role Role, event string, fn func(conn Pusher)) {
	if role.Kind != RoleHost {
		d.logger.Warn().Str("event", event).Int("role", int(role.Kind)).Msg("event ignored: sender is not the host")
		return
	}
	fn(conn)
}

func (d *Dispatcher) handleHostAuth(conn Pusher, data json.RawMessage) {
	var req ws.HostAuthPayload
	if err := json.Unmarshal(data, &req); err != nil {
		d.logger.Warn().Err(err).Msg("invalid host_auth payload")
		return
	}

	authed := false
	switch {
	case req.HostCode != "":
		authed = d.auth.VerifyCode(req.HostCode)
	case req.Token != "":
		authed = d.auth.VerifyToken(req.Token) == nil
	}

	if !authed {
		d.logger.Warn().Msg("host authentication failed")
		d.push(conn, ws.EventHostAuthenticated, ws.HostAuthenticatedPayload{Success: false})
		return
	}

	d.registry.RegisterHost(conn)

	token, err := d.auth.IssueToken()
	if err != nil {
		d.logger.Error().Err(err).Msg("reconnect token issuance failed")
	}
	d.push(conn, ws.EventHostAuthenticated, ws.HostAuthenticatedPayload{Success: true, Token: token})
	d.push(conn, ws.EventPlayersUpdate, ws.PlayersUpdatePayload{Players: toWire(d.session.Roster())})
	d.logger.Info().Msg("host authenticated")
}

func (d *Dispatcher) handleJoinGame(conn Pusher, data json.RawMessage) {
	var req ws.JoinGamePayload
	if err := json.Unmarshal(data, &req); err != nil {
		d.logger.Warn().Err(err).Msg("invalid join_game payload")
		return
	}

	if d.session.Phase() != PhaseLobby {
		d.push(conn, ws.EventError, ws.ErrorPayload{Message: "Game is in progress"})
		return
	}

	player := Player{ID: uuid.NewString(), Name: req.PlayerName}
	d.session.AddPlayer(player)
	d.registry.RegisterPlayer(conn, player.ID)
	d.metrics.ConnectedPlayers.Inc()
	d.commit()

	d.push(conn, ws.EventJoinConfirmed, ws.JoinConfirmedPayload{PlayerID: player.ID, PlayerName: player.Name})
	d.push(conn, ws.EventGameState, ws.GameStatePayload{State: string(d.session.Phase()), Players: toWire(d.session.Roster())})
	d.toHost(ws.EventPlayersUpdate, ws.PlayersUpdatePayload{Players: toWire(d.session.Roster())})
	d.logger.Info().Str("player_id", player.ID).Str("name", player.Name).Msg("player joined")
}

func (d *Dispatcher) handleStartGame(conn Pusher) {
	if d.session.Phase() != PhaseLobby {
		d.push(conn, ws.EventError, ws.ErrorPayload{Message: "Game already started"})
		return
	}

	d.session.Start()
	d.commit()

	d.toPlayers(ws.EventGameState, ws.GameStatePayload{State: string(PhaseActive), Players: toWire(d.session.Roster())})
	d.logger.Info().Int("players", d.session.PlayerCount()).Msg("game started")
}

func (d *Dispatcher) handleNextQuestion(conn Pusher) {
	if d.session.Phase() != PhaseActive {
		d.push(conn, ws.EventError, ws.ErrorPayload{Message: "Game is not active"})
		return
	}

	idx := d.session.CurrentQuestionIndex()
	q, ok := d.bank.At(idx)
	if !ok {
		// Bank exhausted: the game is over.
		d.session.SetPhase(PhaseEnded)
		d.commit()

		final := ws.FinalResultsPayload{FinalScores: toWire(d.session.Leaderboard())}
		d.toPlayers(ws.EventFinalResults, final)
		d.toHost(ws.EventFinalResults, final)
		d.toHost(ws.EventGameEnded, ws.GameEndedPayload{FinalScores: final.FinalScores})
		d.logger.Info().Msg("question bank exhausted, game ended")
		return
	}

	d.session.BeginQuestion()
	d.commit()

	d.toPlayers(ws.EventQuestion, ws.QuestionPayload{Question: questionView(q), TimeLimit: d.timeLimit})
	d.toHost(ws.EventHintsAvailable, ws.HintsAvailablePayload{Count: len(q.Hints)})
	d.logger.Info().Int("index", idx).Str("prompt", q.Prompt).Msg("question sent")
}

func (d *Dispatcher) handleSubmitAnswer(conn Pusher, role Role, data json.RawMessage) {
	if role.Kind != RolePlayer {
		d.logger.Warn().Msg("submit_answer ignored: sender is not a player")
		return
	}

	var req ws.SubmitAnswerPayload
	if err := json.Unmarshal(data, &req); err != nil {
		d.logger.Warn().Err(err).Msg("invalid submit_answer payload")
		return
	}

	if d.session.Phase() != PhaseActive || d.session.DisplayedQuestionIndex() < 0 {
		d.push(conn, ws.EventError, ws.ErrorPayload{Message: "No active question"})
		return
	}

	recorded := d.session.RecordAnswer(Answer{
		PlayerID:    role.PlayerID,
		Value:       req.Answer,
		SubmittedAt: time.Now(),
	})
	if !recorded {
		// Duplicate submission: first answer stands, no error.
		return
	}
	d.commit()

	d.toHost(ws.EventAnswersUpdate, ws.AnswersUpdatePayload{
		Answers:      answersToWire(d.session.Answers()),
		TotalPlayers: d.session.PlayerCount(),
	})
	d.logger.Info().Str("player_id", role.PlayerID).Msg("answer submitted")
}

func (d *Dispatcher) handleShowResults(conn Pusher) {
	displayed := d.session.DisplayedQuestionIndex()
	q, ok := d.bank.At(displayed)
	if !ok {
		d.logger.Warn().Msg("show_results ignored: no question has been sent")
		return
	}

	if d.session.CommitResults(q) {
		d.commit()
		d.logger.Info().Int("index", displayed).Msg("results committed")
	} else {
		d.logger.Info().Int("index", displayed).Msg("results already shown, re-broadcasting")
	}

	d.toPlayers(ws.EventQuestionResults, ws.QuestionResultsPayload{
		CorrectAnswer: q.CorrectAnswer,
		Scores:        toWire(d.session.Leaderboard()),
	})
}

func (d *Dispatcher) handleShowHint(conn Pusher) {
	displayed := d.session.DisplayedQuestionIndex()
	q, ok := d.bank.At(displayed)
	if !ok {
		d.toHost(ws.EventHintError, ws.HintErrorPayload{Message: "No active question"})
		return
	}

	hint, revealed := d.session.RevealHint(q)
	if !revealed {
		msg := "No hints available for this question"
		if len(q.Hints) > 0 {
			msg = "All hints have been shown"
		}
		d.toHost(ws.EventHintError, ws.HintErrorPayload{Message: msg})
		return
	}
	d.commit()

	number := d.session.HintIndex()
	d.toPlayers(ws.EventHintRevealed, ws.HintRevealedPayload{
		Hint:          hint,
		HintNumber:    number,
		AllShownHints: d.session.ShownHints(),
	})
	d.toHost(ws.EventHintShown, ws.HintShownPayload{
		Hint:       hint,
		HintNumber: number,
		Remaining:  len(q.Hints) - number,
	})
	d.logger.Info().Int("hint", number).Msg("hint revealed")
}

func (d *Dispatcher) handleEndGame(conn Pusher) {
	d.session.SetPhase(PhaseEnded)
	d.commit()

	final := toWire(d.session.Leaderboard())
	d.toPlayers(ws.EventFinalResults, ws.FinalResultsPayload{FinalScores: final})
	d.toHost(ws.EventGameEnded, ws.GameEndedPayload{FinalScores: final})
	d.logger.Info().Msg("game ended by host")
}

func (d *Dispatcher) handleResetGame(conn Pusher) {
	// Capture connections before the roster and mappings are cleared so the
	// reset notice still reaches everyone.
	conns := d.registry.PlayerConns()

	d.session.Reset()
	d.commit()

	for _, pc := range conns {
		d.push(pc.Conn, ws.EventGameReset, struct{}{})
	}
	d.registry.ClearPlayers()
	d.metrics.ConnectedPlayers.Set(0)

	d.toHost(ws.EventPlayersUpdate, ws.PlayersUpdatePayload{Players: []ws.PlayerInfo{}})
	d.logger.Info().Msg("game reset, all players cleared")
}

// commit hands the post-mutation snapshot to the persistence sink. The
// sink never blocks and a failed save never rolls anything back.
func (d *Dispatcher) commit() {
	d.sink.Enqueue(d.session.Snapshot())
}

// toPlayers fans out to every connected player, roster order. Failed sends
// are counted and dropped.
func (d *Dispatcher) toPlayers(event string, payload any) {
	env, err := ws.NewEnvelope(event, payload)
	if err != nil {
		d.logger.Error().Err(err).Str("event", event).Msg("payload marshal failed")
		return
	}
	for _, p := range d.session.Roster() {
		conn, ok := d.registry.PlayerConnOf(p.ID)
		if !ok {
			continue
		}
		if err := conn.Push(env); err != nil {
			d.metrics.BroadcastFailures.Inc()
			d.logger.Warn().Err(err).Str("player_id", p.ID).Str("event", event).Msg("player send failed")
		}
	}
}

// toHost unicasts to the host; a no-op when none is registered.
func (d *Dispatcher) toHost(event string, payload any) {
	conn, ok := d.registry.HostConn()
	if !ok {
		return
	}
	d.push(conn, event, payload)
}

func (d *Dispatcher) push(conn Pusher, event string, payload any) {
	env, err := ws.NewEnvelope(event, payload)
	if err != nil {
		d.logger.Error().Err(err).Str("event", event).Msg("payload marshal failed")
		return
	}
	if err := conn.Push(env); err != nil {
		d.metrics.BroadcastFailures.Inc()
		d.logger.Warn().Err(err).Str("event", event).Msg("send failed")
	}
}

func toWire(players []Player) []ws.PlayerInfo {
	out := make([]ws.PlayerInfo, len(players))
	for i, p := range players {
		out[i] = ws.PlayerInfo{ID: p.ID, Name: p.Name, Score: p.Score}
	}
	return out
}

func answersToWire(answers []Answer) []ws.AnswerInfo {
	out := make([]ws.AnswerInfo, len(answers))
	for i, a := range answers {
		out[i] = ws.AnswerInfo{PlayerID: a.PlayerID, Answer: a.Value, SubmittedAt: a.SubmittedAt}
	}
	return out
}

func questionView(q Question) ws.QuestionView {
	return ws.QuestionView{
		ID:       q.ID,
		Question: q.Prompt,
		Type:     q.Type,
		Options:  q.Options,
		Points:   q.Points,
	}
}
