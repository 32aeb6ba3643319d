// Package timer implements the focus timer state machine. A Machine owns one
// session's state, persists it on every change and ticks once per second
// while running.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/models"
)

// ErrInvalidDuration is returned by Start for a non-positive duration
var ErrInvalidDuration = errors.New("timer duration must be positive")

// Snapshot is the timer state plus the finished flag, which stays raised
// after a session runs out until it is dismissed or a new session starts.
type Snapshot struct {
	models.TimerState
	Finished bool `json:"finished"`
}

// Option configures a Machine
type Option func(*Machine)

func WithStore(store StateStore) Option {
	return func(m *Machine) { m.store = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) { m.tickInterval = d }
}

// WithManualTicks disables the background ticker. Callers drive the machine
// with Tick.
func WithManualTicks() Option {
	return func(m *Machine) { m.autoTick = false }
}

// OnFinish registers a hook run once each time a session runs out
func OnFinish(fn func(Snapshot)) Option {
	return func(m *Machine) { m.onFinish = fn }
}

// Machine is the focus timer. All transitions run under one mutex and are
// persisted through the StateStore.
type Machine struct {
	mu       sync.Mutex
	state    models.TimerState
	finished bool

	store        StateStore
	logger       *zap.Logger
	now          func() time.Time
	tickInterval time.Duration
	autoTick     bool
	onFinish     func(Snapshot)

	// generation is bumped whenever a ticker is started or cancelled so a
	// late tick from an old goroutine is ignored
	generation uint64
	cancelTick context.CancelFunc

	subs    map[int]chan Snapshot
	nextSub int
}

// New creates a stopped machine
func New(opts ...Option) *Machine {
	m := &Machine{
		state:        models.StoppedTimer(),
		store:        NewMemoryStore(),
		logger:       zap.NewNop(),
		now:          time.Now,
		tickInterval: time.Second,
		autoTick:     true,
		subs:         make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current snapshot
func (m *Machine) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Start begins a new session from any state
func (m *Machine) Start(ctx context.Context, minutes int, taskID, taskTitle string) (Snapshot, error) {
	if minutes <= 0 {
		return m.State(), ErrInvalidDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	total := minutes * 60
	m.state = models.TimerState{
		Status:           models.TimerStatusRunning,
		RemainingSeconds: total,
		TotalSeconds:     total,
		LinkedTaskID:     taskID,
		LinkedTaskTitle:  taskTitle,
		StartedAt:        &now,
		SyncedAt:         &now,
	}
	m.finished = false
	m.restartTickerLocked()
	m.commitLocked(ctx)

	m.logger.Info("timer_started",
		zap.Int("total_seconds", total),
		zap.String("linked_task_id", taskID))
	return m.snapshotLocked(), nil
}

// Pause freezes a running session. Any other state is left alone.
func (m *Machine) Pause(ctx context.Context) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != models.TimerStatusRunning {
		return m.snapshotLocked()
	}

	now := m.now()
	m.state.Status = models.TimerStatusPaused
	m.state.PausedAt = &now
	m.state.SyncedAt = &now
	m.stopTickerLocked()
	m.commitLocked(ctx)
	return m.snapshotLocked()
}

// Resume continues a paused session. Any other state is left alone.
func (m *Machine) Resume(ctx context.Context) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != models.TimerStatusPaused {
		return m.snapshotLocked()
	}

	now := m.now()
	m.state.Status = models.TimerStatusRunning
	m.state.StartedAt = &now
	m.state.SyncedAt = &now
	m.state.PausedAt = nil
	m.restartTickerLocked()
	m.commitLocked(ctx)
	return m.snapshotLocked()
}

// Stop ends the session from any state and clears the persisted slot
func (m *Machine) Stop(ctx context.Context) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTickerLocked()
	m.state = models.StoppedTimer()
	m.finished = false
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed_to_clear_timer_state", zap.Error(err))
	}
	m.notifyLocked()
	return m.snapshotLocked()
}

// DismissFinished lowers the finished flag
func (m *Machine) DismissFinished() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished {
		m.finished = false
		m.notifyLocked()
	}
	return m.snapshotLocked()
}

// Tick advances a running session by one second
func (m *Machine) Tick(ctx context.Context) Snapshot {
	snap, done := m.tick(ctx, 0, false)
	if done && m.onFinish != nil {
		m.onFinish(snap)
	}
	return snap
}

func (m *Machine) tick(ctx context.Context, generation uint64, checkGeneration bool) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if checkGeneration && generation != m.generation {
		return m.snapshotLocked(), false
	}
	if m.state.Status != models.TimerStatusRunning {
		return m.snapshotLocked(), false
	}

	now := m.now()
	m.state.RemainingSeconds--
	m.state.SyncedAt = &now

	finished := false
	if m.state.RemainingSeconds <= 0 {
		m.finishLocked()
		finished = true
	}
	m.commitLocked(ctx)

	if finished {
		m.logger.Info("timer_finished",
			zap.Int("total_seconds", m.state.TotalSeconds),
			zap.String("linked_task_id", m.state.LinkedTaskID))
	}
	return m.snapshotLocked(), finished
}

// Restore loads the persisted state and reconciles it against the clock.
// A missing or unreadable slot leaves the machine stopped.
func (m *Machine) Restore(ctx context.Context) Snapshot {
	state, ok, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("failed_to_load_timer_state", zap.Error(err))
		return m.State()
	}

	m.mu.Lock()
	if !ok {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap
	}

	reconciled, ranOut := Reconcile(state, m.now())
	m.state = reconciled
	if ranOut {
		m.finishLocked()
	}
	if m.state.Status == models.TimerStatusRunning {
		m.restartTickerLocked()
	}
	m.commitLocked(ctx)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if ranOut && m.onFinish != nil {
		m.onFinish(snap)
	}
	return snap
}

// Subscribe returns a channel of snapshots sent after every change. Slow
// readers only see the latest one. Call the returned func to unsubscribe.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the background ticker. The state is kept in the store.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTickerLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{TimerState: m.state, Finished: m.finished}
}

// finishLocked moves a session that ran out to stopped, keeping the total
// and the linked task for display. The finished flag lives in memory only, so
// a session that ran out before a restart restores without it.
func (m *Machine) finishLocked() {
	m.state.RemainingSeconds = 0
	m.state.Status = models.TimerStatusStopped
	m.state.PausedAt = nil
	m.state.SyncedAt = nil
	m.finished = true
	m.stopTickerLocked()
}

func (m *Machine) commitLocked(ctx context.Context) {
	if err := m.store.Save(ctx, m.state); err != nil {
		m.logger.Warn("failed_to_persist_timer_state",
			zap.String("status", string(m.state.Status)),
			zap.Error(err))
	}
	m.notifyLocked()
}

func (m *Machine) notifyLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (m *Machine) restartTickerLocked() {
	m.stopTickerLocked()
	if !m.autoTick {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelTick = cancel
	go m.run(ctx, m.generation, m.tickInterval)
}

func (m *Machine) stopTickerLocked() {
	m.generation++
	if m.cancelTick != nil {
		m.cancelTick()
		m.cancelTick = nil
	}
}

func (m *Machine) run(ctx context.Context, generation uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// the final tick cancels ctx itself and must still persist
	persistCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, done := m.tick(persistCtx, generation, true)
			if done {
				if m.onFinish != nil {
					m.onFinish(snap)
				}
				return
			}
		}
	}
}
