package world

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/protocol"
)

type RunnerConfig struct {
	// Store persists the session. Nil disables saving.
	Store save.Store
	Slot  string
	// OnFrame receives the snapshot after every render frame, on the simulation goroutine.
	OnFrame   func(f protocol.FrameMsg)
	InboxSize int
	Logger    *zap.Logger
}

var errRunnerStopped = errors.New("runner stopped")

type welcomeReq struct {
	sessionID string
	resp      chan protocol.WelcomeMsg
}

type call struct {
	fn   func(w *World)
	done chan struct{}
}

// Status is a point-in-time summary of the session for operators.
type Status struct {
	Slot       string `json:"slot"`
	Tick       uint64 `json:"tick"`
	NowMs      int64  `json:"now_ms"`
	Characters int    `json:"characters"`
	Monsters   int    `json:"monsters"`
	Respawns   int    `json:"respawns"`
	Gold       int64  `json:"gold"`
	Gems       int64  `json:"gems"`
	Dirty      bool   `json:"dirty"`
	InboxDepth int    `json:"inbox_depth"`
}

// Runner owns a World and drives it from a single goroutine. Other goroutines talk to it
// through channels only.
type Runner struct {
	w       *World
	drv     *Driver
	store   save.Store
	slot    string
	onFrame func(f protocol.FrameMsg)
	log     *zap.Logger

	inbox   chan Intent
	welcome chan welcomeReq
	calls   chan call
	stop    chan struct{}
	exited  chan struct{}

	saveReq  chan save.SaveV3
	saveDone chan error
	lastSave time.Time
}

func NewRunner(w *World, cfg RunnerConfig) *Runner {
	size := cfg.InboxSize
	if size <= 0 {
		size = 256
	}
	log := cfg.Logger
	if log == nil {
		log = w.log
	}
	slot := cfg.Slot
	if slot == "" {
		slot = "default"
	}
	return &Runner{
		w:        w,
		drv:      NewDriver(w),
		store:    cfg.Store,
		slot:     slot,
		onFrame:  cfg.OnFrame,
		log:      log,
		inbox:    make(chan Intent, size),
		welcome:  make(chan welcomeReq),
		calls:    make(chan call),
		exited:   make(chan struct{}),
		stop:     make(chan struct{}),
		saveReq:  make(chan save.SaveV3, 1),
		saveDone: make(chan error, 1),
	}
}

// Submit queues an intent without blocking. It reports false when the inbox is full.
func (r *Runner) Submit(in Intent) bool {
	select {
	case r.inbox <- in:
		return true
	default:
		return false
	}
}

// Welcome asks the simulation goroutine for a WELCOME describing the current session.
func (r *Runner) Welcome(ctx context.Context, sessionID string) (protocol.WelcomeMsg, error) {
	req := welcomeReq{sessionID: sessionID, resp: make(chan protocol.WelcomeMsg, 1)}
	select {
	case r.welcome <- req:
	case <-ctx.Done():
		return protocol.WelcomeMsg{}, ctx.Err()
	case <-r.exited:
		return protocol.WelcomeMsg{}, errRunnerStopped
	}
	select {
	case msg := <-req.resp:
		return msg, nil
	case <-ctx.Done():
		return protocol.WelcomeMsg{}, ctx.Err()
	}
}

// Do runs fn on the simulation goroutine and waits for it to return.
func (r *Runner) Do(ctx context.Context, fn func(w *World)) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case r.calls <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.exited:
		return errRunnerStopped
	}
	<-c.done
	return nil
}

func (r *Runner) Status(ctx context.Context) (Status, error) {
	var st Status
	err := r.Do(ctx, func(w *World) {
		st = Status{
			Slot:       r.slot,
			Tick:       w.tick,
			NowMs:      w.now.Milliseconds(),
			Characters: len(w.reg.Characters()),
			Monsters:   len(w.reg.Monsters()),
			Respawns:   len(w.reg.AllRespawns()),
			Gold:       w.team.Gold,
			Gems:       w.team.Gems,
			Dirty:      w.dirty,
			InboxDepth: len(r.inbox),
		}
	})
	return st, err
}

// SaveNow exports the session and writes it synchronously on the caller's goroutine.
func (r *Runner) SaveNow(ctx context.Context) (uint64, error) {
	if r.store == nil {
		return 0, errors.New("saving disabled")
	}
	var s save.SaveV3
	if err := r.Do(ctx, func(w *World) {
		s = w.ExportSave(r.slot)
		w.MarkSaved()
	}); err != nil {
		return 0, err
	}
	if err := r.store.Save(ctx, s); err != nil {
		_ = r.Do(context.Background(), func(w *World) { w.dirty = true })
		return s.Header.Tick, err
	}
	return s.Header.Tick, nil
}

func (r *Runner) Stop() { close(r.stop) }

// Run drives frames until ctx is cancelled or Stop is called, then writes a final save.
func (r *Runner) Run(ctx context.Context) error {
	frame := r.w.tun.FrameDuration()
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	saverCtx, cancelSaver := context.WithCancel(context.Background())
	saverDone := make(chan struct{})
	go r.saver(saverCtx, saverDone)

	r.lastSave = time.Now()
	last := time.Now()
	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		case <-r.stop:
			break loop
		case in := <-r.inbox:
			r.w.Submit(in)
		case req := <-r.welcome:
			req.resp <- r.w.Welcome(req.sessionID)
		case c := <-r.calls:
			c.fn(r.w)
			close(c.done)
		case err := <-r.saveDone:
			r.onSaved(err)
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			r.drv.Frame(elapsed)
			r.w.DrainEvents() // already delivered to the sink
			if r.onFrame != nil {
				r.onFrame(r.w.Frame())
			}
			r.maybeSave(now)
		}
	}

	close(r.exited)
	close(r.saveReq)
	for waiting := true; waiting; {
		select {
		case err := <-r.saveDone:
			r.onSaved(err)
		case <-saverDone:
			waiting = false
		}
	}
	cancelSaver()
	select {
	case err := <-r.saveDone:
		r.onSaved(err)
	default:
	}
	if err := r.finalSave(); err != nil {
		return errors.Join(runErr, err)
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// maybeSave hands a save to the saver goroutine when state is dirty and the save
// interval has passed. A save still in flight defers the next one.
func (r *Runner) maybeSave(now time.Time) {
	if r.store == nil || !r.w.Dirty() || now.Sub(r.lastSave) < r.w.tun.SaveEvery() {
		return
	}
	s := r.w.ExportSave(r.slot)
	select {
	case r.saveReq <- s:
		r.w.MarkSaved()
		r.lastSave = now
	default:
	}
}

func (r *Runner) onSaved(err error) {
	if err == nil {
		return
	}
	r.log.Warn("save failed", zap.String("slot", r.slot), zap.Error(err))
	r.w.dirty = true
}

func (r *Runner) saver(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for s := range r.saveReq {
		err := r.store.Save(ctx, s)
		if err == nil {
			r.log.Debug("saved", zap.String("slot", s.Header.Slot), zap.Uint64("tick", s.Header.Tick))
		}
		r.saveDone <- err
	}
}

func (r *Runner) finalSave() error {
	if r.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.store.Save(ctx, r.w.ExportSave(r.slot)); err != nil {
		r.log.Error("final save failed", zap.String("slot", r.slot), zap.Error(err))
		return err
	}
	r.w.MarkSaved()
	r.log.Info("final save", zap.String("slot", r.slot), zap.Uint64("tick", r.w.Tick()))
	return nil
}
