// Package worker runs the buffered pool that persists ingested match results
// in batches and refreshes the affected teams' form snapshots.
package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/footyliveliness/api/internal/models"
)

// Prometheus metrics
var (
	resultsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footy_results_ingested_total",
		Help: "Total number of match results accepted into the queue",
	})

	resultsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footy_results_processed_total",
		Help: "Total number of match results written by workers",
	})

	resultsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footy_results_failed_total",
		Help: "Total number of match results that failed to persist",
	})

	formRefreshFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footy_form_refresh_failed_total",
		Help: "Total number of batches whose form snapshot refresh failed",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "footy_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "footy_batch_write_duration_seconds",
		Help:    "Duration of batch writes to the match store",
		Buckets: prometheus.DefBuckets,
	})

	resultsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footy_results_load_shed_total",
		Help: "Total number of results dropped because the queue was full or stopped",
	})
)

// ResultStore persists finished results
type ResultStore interface {
	SaveResults(ctx context.Context, results []models.MatchResult) error
}

// FormRefresher recomputes the form snapshots of the given teams
type FormRefresher interface {
	Refresh(ctx context.Context, teams []string) error
}

// Job is one queued result
type Job struct {
	Result     models.MatchResult
	ReceivedAt time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	WriteTimeout  time.Duration
	Store         ResultStore
	Forms         FormRefresher
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async result processing
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool. Forms may be nil.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue, waits for the workers to flush what is pending and
// then cancels the pool context.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a result to the queue without blocking. It returns false when
// the queue is full or the pool is stopped.
func (p *Pool) Enqueue(result *models.MatchResult) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		resultsLoadShed.Inc()
		return false
	}

	select {
	case p.jobQueue <- Job{Result: *result, ReceivedAt: time.Now()}:
		resultsIngested.Inc()
		return true
	default:
		resultsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			resultsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Infow("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			resultsProcessed.Add(float64(len(batch)))
		}
		batchWriteDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch writes the batch and refreshes the form of every team in it.
// A result repeated within the batch keeps its latest version.
func (p *Pool) processBatch(batch []Job) error {
	results := dedupe(batch)

	ctx, cancel := context.WithTimeout(context.Background(), p.config.WriteTimeout)
	defer cancel()

	if err := p.config.Store.SaveResults(ctx, results); err != nil {
		return err
	}

	if p.config.Forms == nil {
		return nil
	}
	teams := affectedTeams(results)
	if err := p.config.Forms.Refresh(ctx, teams); err != nil {
		formRefreshFailed.Inc()
		p.logger.Warnw("Form refresh failed", "error", err, "teams", len(teams))
	}
	return nil
}

func dedupe(batch []Job) []models.MatchResult {
	index := make(map[string]int, len(batch))
	out := make([]models.MatchResult, 0, len(batch))
	for _, job := range batch {
		if i, ok := index[job.Result.MatchID]; ok {
			out[i] = job.Result
			continue
		}
		index[job.Result.MatchID] = len(out)
		out = append(out, job.Result)
	}
	return out
}

func affectedTeams(results []models.MatchResult) []string {
	seen := make(map[string]struct{}, len(results)*2)
	for _, r := range results {
		seen[r.HomeTeam] = struct{}{}
		seen[r.AwayTeam] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
