package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"rentora/internal/models"
)

const (
	// DefaultInterval is how often a bound watcher refreshes its queue.
	DefaultInterval = 3 * time.Second
	// DefaultPrimingDelay gives the session time to settle before the
	// periodic refresh starts ticking.
	DefaultPrimingDelay = 2 * time.Second
)

// Source is the slice of the notification service a watcher needs: one call
// to refresh the unread queue and one to dismiss an entry.
type Source interface {
	GetUnread(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID) error
}

// Options tunes a watcher. Zero values fall back to the defaults.
type Options struct {
	Interval     time.Duration
	PrimingDelay time.Duration
}

// Watcher keeps one bound session's unread notifications current. It does an
// immediate priming fetch on Bind, then refreshes periodically, surfacing
// the head of the queue through the bound callback whenever it changes.
// Refreshes that return a structurally identical queue are no-ops: the
// callback does not fire again for data the session has already seen.
type Watcher struct {
	source Source
	opts   Options

	mu         sync.Mutex
	scheduler  gocron.Scheduler
	generation uint64
	userID     uuid.UUID
	role       models.UserRole
	onCurrent  func(*models.Notification)
	queue      []*models.Notification

	// cbMu serializes callback delivery with unbind. Unbind takes it after
	// bumping the generation, so once Unbind returns no callback can fire.
	cbMu sync.Mutex
}

func New(source Source, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PrimingDelay <= 0 {
		opts.PrimingDelay = DefaultPrimingDelay
	}
	return &Watcher{source: source, opts: opts}
}

// Bind attaches the watcher to a user session. onCurrent fires with the new
// head of the queue after every refresh that changes it, and with nil when
// the queue drains. Binding an already bound watcher rebinds it. The
// callback must not call Bind or Unbind; both wait for it to finish.
func (w *Watcher) Bind(ctx context.Context, userID uuid.UUID, role models.UserRole, onCurrent func(*models.Notification)) error {
	w.unbind()

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.userID = userID
	w.role = role
	w.onCurrent = onCurrent
	w.queue = nil
	w.mu.Unlock()

	// Priming fetch so the session sees its backlog without waiting for
	// the first tick.
	w.refresh(ctx, gen)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(func() {
			w.refresh(context.Background(), gen)
		}),
		gocron.WithName("notification-watch"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartDateTime(time.Now().Add(w.opts.PrimingDelay))),
	)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.generation != gen {
		// Unbound while we were setting up.
		w.mu.Unlock()
		return scheduler.Shutdown()
	}
	w.scheduler = scheduler
	w.mu.Unlock()

	scheduler.Start()
	return nil
}

// Unbind detaches the session. Idempotent; after it returns no callback
// fires again, and an in-flight refresh is discarded when it lands.
func (w *Watcher) Unbind() {
	w.unbind()
}

func (w *Watcher) unbind() {
	w.mu.Lock()
	w.generation++
	scheduler := w.scheduler
	w.scheduler = nil
	w.onCurrent = nil
	w.queue = nil
	w.mu.Unlock()

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("Failed to shut down notification watcher: %v", err)
		}
	}

	// Wait out any delivery already past the generation check. It holds
	// cbMu while invoking the callback, so acquiring it here means the
	// last callback has finished and later ones see the stale generation.
	w.cbMu.Lock()
	//lint:ignore SA2001 the empty critical section is the teardown barrier
	w.cbMu.Unlock()
}

// Current returns the head of the queue, nil when it is empty.
func (w *Watcher) Current() *models.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return nil
	}
	return w.queue[0]
}

// Pending returns a snapshot of the full unread queue.
func (w *Watcher) Pending() []*models.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := make([]*models.Notification, len(w.queue))
	copy(snapshot, w.queue)
	return snapshot
}

// Dismiss marks the current head read and surfaces the next entry
// immediately, without waiting for the next refresh. A mark-read failure is
// logged but the head still advances locally; the periodic refresh
// reconciles with the store either way.
func (w *Watcher) Dismiss(ctx context.Context) {
	w.mu.Lock()
	if len(w.queue) == 0 {
		w.mu.Unlock()
		return
	}
	head := w.queue[0]
	w.queue = w.queue[1:]
	var next *models.Notification
	if len(w.queue) > 0 {
		next = w.queue[0]
	}
	gen := w.generation
	w.mu.Unlock()

	if err := w.source.MarkAsRead(ctx, head.ID); err != nil {
		log.Printf("Failed to dismiss notification %s: %v", head.ID, err)
	}
	w.deliver(gen, next)
}

// refresh fetches the unread queue and applies it if the bound generation is
// still current and the data actually changed.
func (w *Watcher) refresh(ctx context.Context, gen uint64) {
	w.mu.Lock()
	if w.generation != gen {
		w.mu.Unlock()
		return
	}
	userID, role := w.userID, w.role
	w.mu.Unlock()

	fresh, err := w.source.GetUnread(ctx, userID, role)
	if err != nil {
		// Transient fetch failures keep the previous queue; the next
		// tick retries.
		log.Printf("Notification refresh for %s failed: %v", userID, err)
		return
	}

	w.mu.Lock()
	if w.generation != gen {
		// Unbound while the fetch was in flight.
		w.mu.Unlock()
		return
	}
	if sameQueue(w.queue, fresh) {
		w.mu.Unlock()
		return
	}

	var prevHead, newHead uuid.UUID
	if len(w.queue) > 0 {
		prevHead = w.queue[0].ID
	}
	hadQueue := len(w.queue) > 0
	w.queue = fresh
	var current *models.Notification
	if len(fresh) > 0 {
		current = fresh[0]
		newHead = current.ID
	}
	w.mu.Unlock()

	if (len(fresh) > 0 && newHead != prevHead) || (len(fresh) == 0 && hadQueue) {
		w.deliver(gen, current)
	}
}

// deliver invokes the bound callback under cbMu, re-checking the generation
// first so a delivery racing an unbind is dropped instead of firing after
// Unbind has returned.
func (w *Watcher) deliver(gen uint64, n *models.Notification) {
	w.cbMu.Lock()
	defer w.cbMu.Unlock()

	w.mu.Lock()
	if w.generation != gen {
		w.mu.Unlock()
		return
	}
	onCurrent := w.onCurrent
	w.mu.Unlock()

	if onCurrent != nil {
		onCurrent(n)
	}
}

// sameQueue reports whether two refreshes carry the same notifications in
// the same order. Entries are immutable once stored, so identity by id is
// enough.
func sameQueue(a, b []*models.Notification) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
