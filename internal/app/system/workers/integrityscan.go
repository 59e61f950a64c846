// internal/app/system/workers/integrityscan.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/integrity"
	"go.uber.org/zap"
)

// Scanner is the part of integrity.Auditor the worker needs.
type Scanner interface {
	Scan(ctx context.Context) (integrity.Report, error)
}

// IntegrityScan is a background worker that periodically runs a read-only
// tenant integrity scan and logs what it finds. It never repairs data;
// quarantining is left to the flotaudit command.
type IntegrityScan struct {
	scanner  Scanner
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup

	mu   sync.Mutex
	last integrity.Report
}

// NewIntegrityScan creates a scan worker. timeout bounds each scan.
func NewIntegrityScan(scanner Scanner, logger *zap.Logger, interval, timeout time.Duration) *IntegrityScan {
	return &IntegrityScan{
		scanner:  scanner,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background scan loop.
func (w *IntegrityScan) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("integrity scan worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for a running scan to finish.
func (w *IntegrityScan) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("integrity scan worker stopped")
}

// Last returns the most recent completed report.
func (w *IntegrityScan) Last() integrity.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *IntegrityScan) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *IntegrityScan) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	rep, err := w.scanner.Scan(ctx)
	if err != nil {
		w.log.Error("integrity scan failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.last = rep
	w.mu.Unlock()

	if rep.Clean() {
		w.log.Debug("integrity scan clean")
		return
	}
	w.log.Warn("integrity scan found violations",
		zap.Int("findings", len(rep.Findings)),
		zap.Int(string(integrity.MissingOrganization), rep.Count(integrity.MissingOrganization)),
		zap.Int(string(integrity.UserWithoutOrganization), rep.Count(integrity.UserWithoutOrganization)),
		zap.Int(string(integrity.DanglingReference), rep.Count(integrity.DanglingReference)),
		zap.Int(string(integrity.CrossOrgReference), rep.Count(integrity.CrossOrgReference)))
}
