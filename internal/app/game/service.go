package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dungeon-server/internal/app/encounter"
	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/app/progression"
	"dungeon-server/internal/app/savegame"
	"dungeon-server/internal/app/worldgen"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	"dungeon-server/internal/platform/dice"
	"dungeon-server/internal/platform/mq"
)

type Options struct {
	IdleTimeout  time.Duration
	ReapInterval time.Duration
	// Seed, when non-zero, is used for every new game that does not bring its own.
	Seed uint64
}

type Client struct {
	Conn      *websocket.Conn
	AccountID uuid.UUID
	SessionID uuid.UUID
	Send      chan []byte
}

type session struct {
	id        uuid.UUID
	accountID uuid.UUID

	// mu is held for the whole of one command so commands never interleave.
	mu         sync.Mutex
	world      *world.World
	lastActive time.Time
	closed     bool
}

type Service struct {
	gen    *worldgen.Generator
	engine *encounter.Engine
	ledger *progression.Ledger
	saves  *savegame.Service
	pub    mq.Publisher
	logger zerolog.Logger
	opts   Options
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	clients  map[*Client]struct{}
	quit     chan struct{}
	started  bool
}

func NewService(gen *worldgen.Generator, engine *encounter.Engine, ledger *progression.Ledger, saves *savegame.Service, pub mq.Publisher, logger zerolog.Logger, opts Options) *Service {
	return &Service{
		gen:      gen,
		engine:   engine,
		ledger:   ledger,
		saves:    saves,
		pub:      pub,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
		clients:  make(map[*Client]struct{}),
		quit:     make(chan struct{}),
	}
}

// Start runs the idle-session reaper.
func (s *Service) Start() {
	s.mu.Lock()
	if s.started || s.opts.ReapInterval <= 0 {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	ticker := time.NewTicker(s.opts.ReapInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Reap(context.Background())
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop halts the reaper, autosaves every open session and disconnects clients.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		close(s.quit)
		s.started = false
	}
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		s.evict(ctx, sess)
	}
}

// Reap evicts sessions idle longer than the configured timeout.
func (s *Service) Reap(ctx context.Context) int {
	if s.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.IdleTimeout)
	s.mu.RLock()
	var idle []*session
	for _, sess := range s.sessions {
		idle = append(idle, sess)
	}
	s.mu.RUnlock()

	n := 0
	for _, sess := range idle {
		sess.mu.Lock()
		stale := !sess.closed && sess.lastActive.Before(cutoff)
		sess.mu.Unlock()
		if stale && s.hasNoClients(sess.id) {
			s.evict(ctx, sess)
			n++
		}
	}
	if n > 0 {
		s.logger.Info().Int("evicted", n).Msg("idle sessions reaped")
	}
	return n
}

func (s *Service) hasNoClients(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c.SessionID == id {
			return false
		}
	}
	return true
}

func (s *Service) evict(ctx context.Context, sess *session) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.closed = true
	if s.saves != nil && !sess.world.GameOver {
		if _, err := s.saves.Save(ctx, sess.accountID, savegame.AutosaveSlot, sess.world); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.id.String()).Msg("autosave on evict failed")
		}
	}
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sess.id)
	var detached []*Client
	for c := range s.clients {
		if c.SessionID == sess.id {
			detached = append(detached, c)
			delete(s.clients, c)
		}
	}
	s.mu.Unlock()
	for _, c := range detached {
		close(c.Send)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	}
}

func (s *Service) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

type NewGameRequest struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	Weapon string `json:"weapon,omitempty"`
	Seed   uint64 `json:"seed,omitempty"`
}

// NewGame creates a player, generates floor one and opens a session for it.
func (s *Service) NewGame(ctx context.Context, accountID uuid.UUID, req NewGameRequest) (Result, error) {
	class, err := character.ParseClass(req.Class)
	if err != nil {
		return Result{}, err
	}
	weapon, err := startingWeapon(class, req.Weapon)
	if err != nil {
		return Result{}, err
	}
	p, err := character.New(req.Name, class, weapon)
	if err != nil {
		return Result{}, err
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.opts.Seed
	}
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			return Result{}, err
		}
	}
	w := s.gen.NewWorld(seed, p)
	sess := &session{id: uuid.New(), accountID: accountID, world: w, lastActive: s.now()}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sess.id.String()).Str("class", string(class)).Uint64("seed", seed).Msg("game started")
	s.publish(ctx, mq.SubjectFloorEntered, map[string]any{"session_id": sess.id, "floor": 1, "player": p.Name})
	res := Result{Session: sess.id, Verb: VerbLook, FloorEntered: 1}
	finish(w, &res)
	return res, nil
}

func startingWeapon(class character.Class, choice string) (item.Weapon, error) {
	spec, _ := class.Spec()
	want := fold(choice)
	for _, w := range itemization.StartingWeapons() {
		if want == "" && w.Type == spec.Affinity {
			return w, nil
		}
		if want != "" && fold(w.Name) == want {
			return w, nil
		}
	}
	return item.Weapon{}, ErrInvalidChoice
}

func (s *Service) lookup(accountID, sessionID uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.accountID != accountID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// Snapshot describes the session without advancing it.
func (s *Service) Snapshot(accountID, sessionID uuid.UUID) (Result, error) {
	sess, err := s.lookup(accountID, sessionID)
	if err != nil {
		return Result{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return Result{}, ErrSessionNotFound
	}
	res := Result{Session: sess.id, Verb: VerbLook}
	finish(sess.world, &res)
	return res, nil
}

// Execute resolves one intent against the session's world. The whole command
// runs under the session lock.
func (s *Service) Execute(ctx context.Context, accountID, sessionID uuid.UUID, in Intent) (Result, error) {
	sess, err := s.lookup(accountID, sessionID)
	if err != nil {
		return Result{}, err
	}
	verb, ok := ParseVerb(string(in.Verb))
	if !ok {
		return Result{}, ErrInvalidIntent
	}
	in.Verb = verb

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return Result{}, ErrSessionNotFound
	}
	sess.lastActive = s.now()
	res := Result{Session: sess.id, Verb: verb}
	cmd := command{svc: s, sess: sess, w: sess.world, res: &res}
	err = cmd.run(ctx, in)
	finish(sess.world, &res)
	events := cmd.events
	sess.mu.Unlock()

	for _, ev := range events {
		s.publish(ctx, ev.subject, ev.payload)
	}
	if err != nil {
		return res, err
	}
	s.push(sess.id, map[string]any{"type": "result", "result": res})
	return res, nil
}

func finish(w *world.World, res *Result) {
	res.Room = roomView(w)
	res.Player = playerView(w.Player)
	if w.InCombat() {
		res.Encounter = encounterView(w.Encounter)
	}
	res.GameOver = w.GameOver
	res.Completed = w.Completed
	res.Turns = w.Turns
}

func (s *Service) RegisterClient(conn *websocket.Conn, accountID, sessionID uuid.UUID) (*Client, error) {
	if _, err := s.lookup(accountID, sessionID); err != nil {
		return nil, err
	}
	c := &Client{Conn: conn, AccountID: accountID, SessionID: sessionID, Send: make(chan []byte, 64)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	return c, nil
}

func (s *Service) UnregisterClient(c *Client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if !ok {
		return
	}
	close(c.Send)
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// Send delivers payload to one client if it is still attached.
func (s *Service) Send(c *Client, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal ws payload failed")
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- b:
	default:
	}
}

func (s *Service) push(sessionID uuid.UUID, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal ws payload failed")
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c.SessionID == sessionID {
			select {
			case c.Send <- b:
			default:
			}
		}
	}
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.pub == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.pub.Publish(ctx, subject, b); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("publish failed")
	}
}
