package engine

import (
	"context"
	"log"
	"time"

	"github.com/carverauto/pulse/pkg/alerts"
)

// run drives the adaptive cycle. The timer is re-armed after every tick with
// the interval of the state the tick left behind. Transitions made during a
// tick take effect on the next one; only a request waking the engine from
// IDLE cuts a wait short through Kick.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	// Do initial check
	timer := time.NewTimer(e.Tick(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}

		if ctx.Err() != nil {
			return
		}

		timer.Reset(e.Tick(ctx))
	}
}

// Tick runs one monitoring cycle and returns the wait before the next one:
// timer-driven transitions, collection sized to the state, then alerting on
// violations that have lasted long enough.
func (e *Engine) Tick(ctx context.Context) time.Duration {
	if _, err := e.machine.CheckAndTransition(ctx); err != nil {
		log.Printf("Error checking state transitions: %v", err)
	}

	full, err := e.machine.ShouldCollectFullMetrics(ctx)
	if err != nil {
		log.Printf("Error reading monitoring state, collecting all metrics: %v", err)

		full = true
	}

	report, err := e.collector.Collect(ctx, full)
	if err != nil {
		log.Printf("Error collecting metrics: %v", err)
	} else if len(report.Failed) > 0 {
		log.Printf("Metric sources failed: %v", report.Failed)
	}

	if _, err := e.processor.Process(ctx); err != nil {
		log.Printf("Error processing rule violations: %v", err)
	}

	interval, err := e.machine.CheckInterval(ctx)
	if err != nil {
		log.Printf("Error reading check interval: %v", err)

		return e.monitoring.ActiveInterval
	}

	return interval
}

// MaintenanceReport summarizes one maintenance pass.
type MaintenanceReport struct {
	MetricBaselines int                  `json:"metric_baselines"`
	PathBaselines   int                  `json:"path_baselines"`
	Cleanup         alerts.CleanupReport `json:"cleanup"`
}

func (e *Engine) maintain(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.maintenanceInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.RunMaintenance(ctx)
		}
	}
}

// RunMaintenance recomputes the metric and request-path baselines and sweeps
// stale and old alerts.
func (e *Engine) RunMaintenance(ctx context.Context) MaintenanceReport {
	var report MaintenanceReport

	n, err := e.collector.RecomputeBaselines(ctx)
	if err != nil {
		log.Printf("Error recomputing metric baselines: %v", err)
	}

	report.MetricBaselines = n

	n, err = e.classifier.RecomputeBaselines(ctx)
	if err != nil {
		log.Printf("Error recomputing path baselines: %v", err)
	}

	report.PathBaselines = n
	report.Cleanup = e.cleanup.Cleanup(ctx)

	log.Printf("Maintenance: %d metric baselines, %d path baselines, %d alerts expired, %d purged",
		report.MetricBaselines, report.PathBaselines, report.Cleanup.Expired, report.Cleanup.Deleted)

	return report
}
