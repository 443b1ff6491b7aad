package background

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"rentora/internal/caching"
	"rentora/internal/services"
)

const (
	// Pending requests older than this are auto-rejected so listings do
	// not stay locked behind abandoned requests.
	stalePendingWindow = 30 * 24 * time.Hour
	stalePendingBatch  = 500
)

// JobScheduler manages the service's recurring maintenance jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	requestSvc services.RequestService
	cacheSvc   caching.CacheService
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(requestSvc services.RequestService, cacheSvc caching.CacheService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		requestSvc: requestSvc,
		cacheSvc:   cacheSvc,
		jobs:       make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.expireStaleRequests, context.Background()),
		gocron.WithName("stale-request-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stale request expiry job: %v", err)
	} else {
		js.jobs["stale-request-expiry"] = expiryJob
	}

	snapshotJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.sweepUnreadSnapshots, context.Background()),
		gocron.WithName("unread-snapshot-sweep"),
	)
	if err != nil {
		log.Printf("Failed to create snapshot sweep job: %v", err)
	} else {
		js.jobs["unread-snapshot-sweep"] = snapshotJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// expireStaleRequests auto-rejects pending requests past the stale window.
func (js *JobScheduler) expireStaleRequests(ctx context.Context) error {
	expired, err := js.requestSvc.ExpireStalePending(ctx, stalePendingWindow, stalePendingBatch)
	if err != nil {
		log.Printf("Stale request expiry failed: %v", err)
		return err
	}
	if expired > 0 {
		log.Printf("Expired %d stale pending requests", expired)
	}
	return nil
}

// sweepUnreadSnapshots drops all cached unread snapshots so long-idle
// sessions pick up fresh reads even if an invalidation was missed.
func (js *JobScheduler) sweepUnreadSnapshots(ctx context.Context) error {
	if err := js.cacheSvc.InvalidateAllUnreadSnapshots(ctx); err != nil {
		log.Printf("Unread snapshot sweep failed: %v", err)
		return err
	}
	return nil
}

// JobStatus describes one registered job for the operator endpoint.
type JobStatus struct {
	Name    string     `json:"name"`
	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// GetJobStatus returns information about the registered jobs
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		status := JobStatus{Name: name}
		if lastRun, err := job.LastRun(); err == nil && !lastRun.IsZero() {
			status.LastRun = &lastRun
		}
		if nextRun, err := job.NextRun(); err == nil && !nextRun.IsZero() {
			status.NextRun = &nextRun
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
