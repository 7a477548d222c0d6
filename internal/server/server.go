// Package server exposes a tournament over WebSocket. Players join
// open seats; when the table fills, one tournament runs to completion.
// A process-wide session guard rejects a second concurrent tournament.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tablestakes/sitngo/internal/coordinator"
	"github.com/tablestakes/sitngo/internal/evaluator"
	"github.com/tablestakes/sitngo/internal/game"
	"github.com/tablestakes/sitngo/internal/history"
)

// Server accepts WebSocket clients and runs the tournament they fill
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	guard    *coordinator.SessionGuard

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	connections map[*Connection]bool
	seats       []*Connection
	sources     map[int]*remoteSource
	coord       *coordinator.Coordinator
	running     bool

	httpSrv *http.Server
}

// NewServer creates a server for the given configuration
func NewServer(cfg *Config, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		guard:       coordinator.NewSessionGuard(),
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[*Connection]bool),
		seats:       make([]*Connection, cfg.Tournament.Seats),
	}
}

// Start serves WebSocket connections until Stop is called
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpSrv = &http.Server{Addr: s.cfg.ListenAddr(), Handler: mux}
	s.logger.Info("listening", "addr", s.cfg.ListenAddr(), "seats", s.cfg.Tournament.Seats)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down and closes every connection
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "err", err)
		return
	}

	conn := NewConnection(ws, s, s.logger)
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client connected", "total", total)
	conn.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) removeConnection(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	if seat := c.Seat(); seat >= 0 && !s.running {
		// Before the tournament starts a leaver frees the seat.
		// Mid-tournament the seat stays and times out each turn.
		s.seats[seat] = nil
	}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "name", c.Name(), "total", total)
}

func (s *Server) handleMessage(c *Connection, msg *Message) {
	switch msg.Type {
	case MessageTypeJoin:
		var d JoinData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			c.SendError("malformed join")
			return
		}
		s.handleJoin(c, d)

	case MessageTypeAction:
		var d ActionData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			c.SendError("malformed action")
			return
		}
		s.handleAction(c, d)

	case MessageTypePause:
		s.handlePauseResume(c, true)

	case MessageTypeResume:
		s.handlePauseResume(c, false)

	default:
		c.SendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Server) handleJoin(c *Connection, d JoinData) {
	if d.Name == "" {
		c.SendError("name is required")
		return
	}
	if c.Seat() >= 0 || (c.Name() != "" && c.Spectator()) {
		c.SendError("already joined")
		return
	}

	if d.Spectator {
		c.setIdentity(d.Name, -1, true)
		s.welcome(c, -1, 0)
		s.logger.Info("spectator joined", "name", d.Name)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		c.SendError("tournament already running")
		return
	}
	seat := -1
	for i, taken := range s.seats {
		if taken == nil {
			seat = i
			break
		}
	}
	if seat < 0 {
		s.mu.Unlock()
		c.SendError("table is full")
		return
	}
	s.seats[seat] = c
	waiting := 0
	for _, sc := range s.seats {
		if sc == nil {
			waiting++
		}
	}
	full := waiting == 0
	s.mu.Unlock()

	c.setIdentity(d.Name, seat, false)
	s.welcome(c, seat, waiting)
	s.logger.Info("player seated", "name", d.Name, "seat", seat, "waiting_for", waiting)

	if full {
		s.startTournament()
	}
}

func (s *Server) welcome(c *Connection, seat, waiting int) {
	msg, err := NewMessage(MessageTypeWelcome, WelcomeData{
		Seat:      seat,
		Name:      c.Name(),
		Spectator: seat < 0,
		Waiting:   waiting,
	})
	if err == nil {
		_ = c.Send(msg)
	}
}

func (s *Server) handleAction(c *Connection, d ActionData) {
	seat := c.Seat()
	if seat < 0 {
		c.SendError("not seated")
		return
	}

	s.mu.RLock()
	source := s.sources[seat]
	running := s.running
	s.mu.RUnlock()
	if !running || source == nil {
		c.SendError("no tournament running")
		return
	}

	actionType, err := parseActionType(d.Action)
	if err != nil {
		c.SendError(err.Error())
		return
	}
	if err := source.Submit(coordinator.Decision{Type: actionType, Amount: d.Amount}); err != nil {
		c.SendError(err.Error())
	}
}

func (s *Server) handlePauseResume(c *Connection, pause bool) {
	if c.Seat() < 0 {
		c.SendError("spectators cannot control the game")
		return
	}
	s.mu.RLock()
	coord := s.coord
	s.mu.RUnlock()
	if coord == nil {
		c.SendError("no tournament running")
		return
	}

	var err error
	if pause {
		err = coord.Pause()
	} else {
		err = coord.Resume()
	}
	if err != nil {
		c.SendError(err.Error())
	}
}

// startTournament builds the engine and coordinator for the filled
// table and runs the tournament on its own goroutine.
func (s *Server) startTournament() {
	if err := s.guard.Acquire(); err != nil {
		s.logger.Error("cannot start tournament", "err", err)
		s.broadcastError(err.Error())
		return
	}

	s.mu.Lock()
	t := s.cfg.Tournament
	names := make([]string, len(s.seats))
	for i, conn := range s.seats {
		names[i] = conn.Name()
	}

	opts := []game.Option{
		game.WithLogger(s.logger.WithPrefix("engine")),
		game.WithBlindSchedule(t.BlindLevels(), t.HandsPerLevel),
	}
	if t.Seed != 0 {
		opts = append(opts, game.WithRNG(rand.New(rand.NewSource(t.Seed))))
	}
	engine, err := game.NewEngine(names, t.StartingChips, evaluator.New(), opts...)
	if err != nil {
		s.mu.Unlock()
		s.guard.Release()
		s.logger.Error("building engine", "err", err)
		s.broadcastError(err.Error())
		return
	}

	sources := make(map[int]coordinator.DecisionSource, len(s.seats))
	s.sources = make(map[int]*remoteSource, len(s.seats))
	for i, conn := range s.seats {
		src := newRemoteSource(conn, t.DecisionTimeoutSeconds)
		s.sources[i] = src
		sources[i] = src
	}

	writer, err := history.NewWriter(s.cfg.Server.HistoryFile)
	if err != nil {
		s.mu.Unlock()
		s.guard.Release()
		s.logger.Error("opening hand history", "err", err)
		s.broadcastError(err.Error())
		return
	}

	coord, err := coordinator.New(engine, sources,
		coordinator.WithCoordinatorLogger(s.logger.WithPrefix("coordinator")),
		coordinator.WithDecisionTimeout(t.DecisionTimeout()),
		coordinator.WithSnapshotSink(s),
		coordinator.WithRecordSink(writer),
	)
	if err != nil {
		s.mu.Unlock()
		s.guard.Release()
		writer.Close()
		s.logger.Error("building coordinator", "err", err)
		return
	}
	s.coord = coord
	s.running = true
	s.mu.Unlock()

	go func() {
		defer s.guard.Release()
		defer writer.Close()

		err := coord.Run(s.ctx)
		standings, serr := coord.Standings()
		if serr == nil {
			if msg, merr := NewMessage(MessageTypeStandings, StandingsData{Standings: standings}); merr == nil {
				s.broadcastMessage(msg)
			}
		}
		if err != nil {
			s.logger.Error("tournament ended with error", "err", err)
		}

		s.mu.Lock()
		s.running = false
		s.coord = nil
		s.sources = nil
		s.seats = make([]*Connection, s.cfg.Tournament.Seats)
		s.mu.Unlock()
	}()
}

// Broadcast implements coordinator.SnapshotSink: every player receives
// the snapshot redacted to their own seat, spectators see no hole
// cards at all.
func (s *Server) Broadcast(snap game.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		seat := conn.Seat()
		msg, err := NewMessage(MessageTypeSnapshot, SnapshotData{Snapshot: snap.Redacted(seat)})
		if err != nil {
			continue
		}
		_ = conn.Send(msg)
	}
}

func (s *Server) broadcastMessage(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		_ = conn.Send(msg)
	}
}

func (s *Server) broadcastError(text string) {
	if msg, err := NewMessage(MessageTypeError, ErrorData{Error: text}); err == nil {
		s.broadcastMessage(msg)
	}
}

func parseActionType(action string) (game.ActionType, error) {
	switch action {
	case "fold":
		return game.ActionFold, nil
	case "check":
		return game.ActionCheck, nil
	case "call":
		return game.ActionCall, nil
	case "raise", "bet":
		return game.ActionRaise, nil
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}
}

// remoteSource forwards decision requests to a WebSocket client and
// waits on its submissions. One pending submission is buffered, so a
// decision sent during a pause is applied on resume.
type remoteSource struct {
	human          *coordinator.HumanSource
	conn           *Connection
	timeoutSeconds int
}

func newRemoteSource(conn *Connection, timeoutSeconds int) *remoteSource {
	return &remoteSource{
		human:          coordinator.NewHumanSource(),
		conn:           conn,
		timeoutSeconds: timeoutSeconds,
	}
}

// Submit hands in the client's decision
func (r *remoteSource) Submit(d coordinator.Decision) error {
	if !r.human.Submit(d) {
		return fmt.Errorf("decision already pending")
	}
	return nil
}

// Decide pushes an action request to the client and waits for its
// submission or cancellation.
func (r *remoteSource) Decide(ctx context.Context, view game.SeatView) (coordinator.Decision, error) {
	msg, err := NewMessage(MessageTypeActionRequest, ActionRequestData{
		View:           view,
		TimeoutSeconds: r.timeoutSeconds,
	})
	if err == nil {
		_ = r.conn.Send(msg)
	}
	return r.human.Decide(ctx, view)
}
