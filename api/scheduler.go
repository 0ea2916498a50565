/*
scheduler.go - Background alert scanner

PURPOSE:
  Periodically aggregates the current year for every known user, runs the
  alert registry on each summary and keeps the latest result for
  GET /api/alerts/scan.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Scans once immediately on start
  - A user whose summary fails is counted and skipped; the scan continues
  - Only users with at least one alert appear in ScanResult.Alerted

USAGE:
  scanner := NewAlertScanner(store, service, registry, logger)
  scanner.Start()
  // ... later
  scanner.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/worktime-engine/alerts"
	"github.com/warp/worktime-engine/metrics"
	"github.com/warp/worktime-engine/worktime"
)

// ScanResult is the outcome of one pass over all users.
type ScanResult struct {
	StartedAt time.Time
	Duration  time.Duration
	Year      int
	Users     int
	Failed    int
	Alerted   map[worktime.UserID]alerts.Alerts
}

// AlertScanner evaluates alerts for every user on a fixed interval.
type AlertScanner struct {
	Store    worktime.Store
	Service  *worktime.Service
	Registry *alerts.Registry
	Interval time.Duration
	Enabled  bool

	// Now picks the scanned year. Defaults to time.Now.
	Now func() time.Time

	logger *zap.Logger
	ticker *time.Ticker
	cancel context.CancelFunc
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	resultMu sync.RWMutex
	last     *ScanResult
}

// NewAlertScanner creates a scanner with a one hour interval.
func NewAlertScanner(store worktime.Store, svc *worktime.Service, registry *alerts.Registry, logger *zap.Logger) *AlertScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertScanner{
		Store:    store,
		Service:  svc,
		Registry: registry,
		Interval: time.Hour,
		Enabled:  true,
		Now:      time.Now,
		logger:   logger.Named("scanner"),
	}
}

// Start begins the scanner. Calling Start on a running scanner is a no-op.
func (s *AlertScanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.logger.Info("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stop = make(chan struct{})
	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)

	go s.run(ctx, s.ticker, s.stop)

	s.logger.Info("started", zap.Duration("interval", s.Interval))
}

// Stop stops the scanner and waits for an in-flight scan to finish.
func (s *AlertScanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.cancel()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.logger.Info("stopped")
}

func (s *AlertScanner) run(ctx context.Context, ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	s.ScanOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.ScanOnce(ctx)
		case <-stop:
			return
		}
	}
}

// ScanOnce summarizes the current year for every user and records the result.
func (s *AlertScanner) ScanOnce(ctx context.Context) ScanResult {
	timer := time.Now()
	started := s.Now()
	result := ScanResult{
		StartedAt: started,
		Year:      started.Year(),
		Alerted:   make(map[worktime.UserID]alerts.Alerts),
	}

	users, err := s.Store.Users(ctx)
	if err != nil {
		s.logger.Error("listing users", zap.Error(err))
		metrics.ScanFailures.Inc()
		result.Failed++
		return s.finish(result, timer)
	}
	result.Users = len(users)

	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		summary, err := s.Service.AnnualSummary(ctx, user, result.Year)
		if err != nil {
			s.logger.Warn("summary failed", zap.String("user_id", string(user)), zap.Error(err))
			metrics.ScanFailures.Inc()
			result.Failed++
			continue
		}

		triggered := s.Registry.Evaluate(summary)
		metrics.RecordEvaluation("scanner", triggered.Names())
		if len(triggered) > 0 {
			result.Alerted[user] = triggered
			s.logger.Info("alerts triggered",
				zap.String("user_id", string(user)),
				zap.Int("year", result.Year),
				zap.Strings("alerts", triggered.Names()))
		}
	}

	s.logger.Debug("scan completed",
		zap.Int("users", result.Users),
		zap.Int("alerted", len(result.Alerted)),
		zap.Int("failed", result.Failed))

	return s.finish(result, timer)
}

func (s *AlertScanner) finish(result ScanResult, timer time.Time) ScanResult {
	result.Duration = time.Since(timer)
	metrics.ScanDuration.Observe(result.Duration.Seconds())
	s.record(result)
	return result
}

// LastResult returns the most recent scan, if any has run.
func (s *AlertScanner) LastResult() (ScanResult, bool) {
	s.resultMu.RLock()
	defer s.resultMu.RUnlock()
	if s.last == nil {
		return ScanResult{}, false
	}
	return *s.last, true
}

func (s *AlertScanner) record(r ScanResult) {
	s.resultMu.Lock()
	s.last = &r
	s.resultMu.Unlock()
}
