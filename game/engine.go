package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crash-game/models"
)

// ErrEngineStopped is returned by queries issued after the engine stopped.
var ErrEngineStopped = errors.New("engine stopped")

const archiveTimeout = 5 * time.Second

// Settings are the round tuning constants.
type Settings struct {
	CountdownSeconds int
	CountdownTick    time.Duration
	MultiplierTick   time.Duration
	ResetDelay       time.Duration
	CrashPointMin    float64
	CrashPointMax    float64
	GrowthRate       float64
	HistorySize      int
}

func DefaultSettings() Settings {
	return Settings{
		CountdownSeconds: 5,
		CountdownTick:    time.Second,
		MultiplierTick:   50 * time.Millisecond,
		ResetDelay:       5 * time.Second,
		CrashPointMin:    5,
		CrashPointMax:    30,
		GrowthRate:       DefaultGrowthRate,
		HistorySize:      DefaultHistorySize,
	}
}

// Options configure an Engine. Zero values fall back to production defaults.
type Options struct {
	Settings    Settings
	Broadcaster Broadcaster
	Archive     Archive
	Scheduler   Scheduler
	Now         func() time.Time
	CrashPoint  func() float64
	Logger      *zap.Logger
}

type round struct {
	id         string
	status     models.RoundStatus
	multiplier float64
	startTime  time.Time
	crashPoint float64
	countdown  int
}

// Engine owns the single shared round. Commands and timer firings are queued
// on one inbox and applied by Run in arrival order, so round and ledger state
// are only ever touched from that goroutine.
type Engine struct {
	settings   Settings
	clock      MultiplierClock
	bc         Broadcaster
	archive    Archive
	sched      Scheduler
	now        func() time.Time
	crashPoint func() float64
	log        *zap.Logger

	inbox chan any
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	round   round
	ledger  *PlayerLedger
	history *HistoryLog
	timers  map[timerKind]scheduledEvent
	tokens  uint64
}

func NewEngine(opts Options) *Engine {
	s := opts.Settings
	if s == (Settings{}) {
		s = DefaultSettings()
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = nopBroadcaster{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CrashPoint == nil {
		opts.CrashPoint = UniformCrashPoint(s.CrashPointMin, s.CrashPointMax)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		settings:   s,
		clock:      NewMultiplierClock(s.GrowthRate),
		bc:         opts.Broadcaster,
		archive:    opts.Archive,
		sched:      opts.Scheduler,
		now:        opts.Now,
		crashPoint: opts.CrashPoint,
		log:        opts.Logger.Named("engine"),
		inbox:      make(chan any, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		round: round{
			status:     models.RoundWaiting,
			multiplier: 1,
			countdown:  s.CountdownSeconds,
		},
		ledger:  NewPlayerLedger(),
		history: NewHistoryLog(s.HistorySize),
		timers:  make(map[timerKind]scheduledEvent),
	}
}

// Run processes the inbox until ctx is done or Stop is called. Every
// outstanding timer is cancelled on the way out.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	defer e.cancelAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		case cmd := <-e.inbox:
			e.handle(cmd)
		}
	}
}

func (e *Engine) Stop() {
	e.once.Do(func() { close(e.quit) })
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) Join(id, userID, userName string) {
	e.post(joinCmd{id: id, userID: userID, userName: userName})
}

func (e *Engine) PlaceBet(id string, amount float64) {
	e.post(betCmd{id: id, amount: amount})
}

func (e *Engine) CashOut(id string) {
	e.post(cashOutCmd{id: id})
}

func (e *Engine) Leave(id string) {
	e.post(leaveCmd{id: id})
}

// Snapshot returns the round as seen by a newly connected client. It is
// answered in queue order, after every command posted before it.
func (e *Engine) Snapshot(ctx context.Context) (models.GameState, error) {
	reply := make(chan models.GameState, 1)
	if err := e.send(ctx, snapshotCmd{reply: reply}); err != nil {
		return models.GameState{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-e.done:
		return models.GameState{}, ErrEngineStopped
	case <-ctx.Done():
		return models.GameState{}, ctx.Err()
	}
}

// Subscribe calls attach with the current state from inside the engine loop.
// Every event broadcast before the call reflects a state at or before the one
// attach sees, and every event after it is newer, so attach can register a
// listener without gaps. attach must not block. ctx only bounds queueing: once
// the command is queued, Subscribe waits until attach has run or the engine
// has stopped, in which case attach never runs.
func (e *Engine) Subscribe(ctx context.Context, attach func(models.GameState)) error {
	done := make(chan struct{})
	if err := e.send(ctx, subscribeCmd{attach: attach, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-e.done:
		// attach may have run just before the loop exited
		select {
		case <-done:
			return nil
		default:
			return ErrEngineStopped
		}
	}
}

func (e *Engine) History(ctx context.Context) ([]models.HistoryEntry, error) {
	reply := make(chan []models.HistoryEntry, 1)
	if err := e.send(ctx, historyCmd{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case entries := <-reply:
		return entries, nil
	case <-e.done:
		return nil, ErrEngineStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) post(cmd any) {
	select {
	case e.inbox <- cmd:
	case <-e.done:
	}
}

func (e *Engine) send(ctx context.Context, cmd any) error {
	select {
	case e.inbox <- cmd:
		return nil
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) handle(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		e.ledger.Join(c.id, c.userID, c.userName)
		e.bc.PlayersUpdated(e.ledger.Players())
	case betCmd:
		e.placeBet(c)
	case cashOutCmd:
		e.cashOut(c.id)
	case leaveCmd:
		if e.ledger.Leave(c.id) {
			e.bc.PlayersUpdated(e.ledger.Players())
		}
	case snapshotCmd:
		c.reply <- e.snapshot()
	case subscribeCmd:
		c.attach(e.snapshot())
		close(c.done)
	case historyCmd:
		c.reply <- e.history.Entries()
	case timerFired:
		e.onTimer(c)
	}
}

func (e *Engine) placeBet(c betCmd) {
	if e.round.status != models.RoundWaiting && e.round.status != models.RoundCounting {
		e.log.Debug("bet ignored", zap.String("player", c.id), zap.String("state", string(e.round.status)))
		return
	}
	if !e.ledger.PlaceBet(c.id, c.amount) {
		e.log.Debug("bet ignored, unknown player", zap.String("player", c.id))
		return
	}
	e.bc.PlayersUpdated(e.ledger.Players())
	if e.round.status == models.RoundWaiting && c.amount > 0 {
		e.startCountdown()
	}
}

func (e *Engine) cashOut(id string) {
	if e.round.status != models.RoundRunning {
		e.log.Debug("cash out ignored", zap.String("player", id), zap.String("state", string(e.round.status)))
		return
	}
	ev, ok := e.ledger.CashOut(id, e.round.multiplier)
	if !ok {
		e.log.Debug("cash out ignored, player not betting", zap.String("player", id))
		return
	}
	e.bc.PlayerCashedOut(ev)
	e.bc.PlayersUpdated(e.ledger.Players())
}

func (e *Engine) onTimer(f timerFired) {
	ev, ok := e.timers[f.kind]
	if !ok || ev.token != f.token {
		e.log.Debug("stale timer dropped", zap.Stringer("timer", f.kind))
		return
	}
	switch f.kind {
	case countdownTimer:
		e.countdownTick()
	case multiplierTimer:
		e.multiplierTick()
	case resetTimer:
		e.cancel(resetTimer)
		e.reset()
	}
}

func (e *Engine) startCountdown() {
	e.round.status = models.RoundCounting
	e.round.countdown = e.settings.CountdownSeconds
	e.bc.CountdownStarted(e.round.countdown)
	e.schedule(countdownTimer, e.settings.CountdownTick, true)
}

func (e *Engine) countdownTick() {
	if e.round.status != models.RoundCounting {
		return
	}
	e.round.countdown--
	e.bc.CountdownUpdated(e.round.countdown)
	if e.round.countdown <= 0 {
		e.startRunning()
	}
}

func (e *Engine) startRunning() {
	e.cancel(countdownTimer)
	e.round.id = uuid.NewString()
	e.round.status = models.RoundRunning
	e.round.startTime = e.now()
	e.round.crashPoint = e.crashPoint()
	e.round.multiplier = 1
	e.log.Info("round started", zap.String("round", e.round.id), zap.Int("players", e.ledger.Len()))
	e.bc.GameStarted()
	e.schedule(multiplierTimer, e.settings.MultiplierTick, true)
}

// multiplierTick measures wall-clock time since start rather than counting
// ticks, so late ticks never move the crash.
func (e *Engine) multiplierTick() {
	if e.round.status != models.RoundRunning {
		return
	}
	now := e.now()
	elapsed := now.Sub(e.round.startTime).Seconds()
	e.round.multiplier = e.clock.At(elapsed)
	if elapsed >= e.round.crashPoint {
		e.crash(now)
		return
	}
	e.bc.MultiplierUpdated(e.round.multiplier)
}

func (e *Engine) crash(now time.Time) {
	e.cancel(multiplierTimer)
	e.round.status = models.RoundCrashed
	lost := e.ledger.MarkLost()
	players := e.ledger.Players()
	e.log.Info("round crashed",
		zap.String("round", e.round.id),
		zap.Float64("crashPoint", e.round.crashPoint),
		zap.Float64("multiplier", e.round.multiplier),
		zap.Int("lost", lost))
	e.bc.GameCrashed(e.round.multiplier, players)
	e.history.Add(models.HistoryEntry{
		Multiplier: FormatMultiplier(e.round.multiplier),
		Timestamp:  now,
	})
	e.archiveRound(now, players)
	e.schedule(resetTimer, e.settings.ResetDelay, false)
}

func (e *Engine) reset() {
	e.round = round{
		status:     models.RoundWaiting,
		multiplier: 1,
		countdown:  e.settings.CountdownSeconds,
	}
	e.ledger.ResetAll()
	e.log.Info("round reset")
	e.bc.GameReset(e.ledger.Players())
}

func (e *Engine) archiveRound(now time.Time, players []models.Player) {
	if e.archive == nil {
		return
	}
	rec := models.RoundRecord{
		RoundID:    e.round.id,
		CrashPoint: e.round.crashPoint,
		Multiplier: e.round.multiplier,
		StartedAt:  e.round.startTime,
		CrashedAt:  now,
		Players:    make([]models.PlayerResult, 0, len(players)),
	}
	for _, p := range players {
		rec.Players = append(rec.Players, p.Result())
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := e.archive.Record(ctx, rec); err != nil {
			e.log.Warn("failed to archive round", zap.String("round", rec.RoundID), zap.Error(err))
		}
	}()
}

func (e *Engine) snapshot() models.GameState {
	return models.GameState{
		State:      e.round.status,
		Multiplier: e.round.multiplier,
		Countdown:  e.round.countdown,
		Players:    e.ledger.Players(),
		History:    e.history.Entries(),
	}
}

// schedule replaces any live timer of kind. Firings re-enter through the inbox.
func (e *Engine) schedule(kind timerKind, d time.Duration, repeat bool) {
	e.cancel(kind)
	e.tokens++
	token := e.tokens
	fire := func() { e.post(timerFired{kind: kind, token: token}) }
	var t Timer
	if repeat {
		t = e.sched.Every(d, fire)
	} else {
		t = e.sched.AfterFunc(d, fire)
	}
	e.timers[kind] = scheduledEvent{token: token, timer: t}
}

func (e *Engine) cancel(kind timerKind) {
	if ev, ok := e.timers[kind]; ok {
		ev.timer.Stop()
		delete(e.timers, kind)
	}
}

func (e *Engine) cancelAll() {
	for kind := range e.timers {
		e.cancel(kind)
	}
}
