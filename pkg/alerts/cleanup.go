package alerts

import (
	"context"
	"log"
	"time"

	"github.com/carverauto/pulse/pkg/config"
)

// CleanupConfig holds the retention periods of CleanupService.
type CleanupConfig struct {
	// StaleAfter expires active alerts not re-triggered for this long.
	StaleAfter config.Duration `json:"stale_after" toml:"stale_after"`
	// ResolvedRetention deletes resolved alerts older than this.
	ResolvedRetention config.Duration `json:"resolved_retention" toml:"resolved_retention"`
}

// CleanupReport summarizes one cleanup pass.
type CleanupReport struct {
	Expired int
	Deleted int
}

// CleanupService expires and purges alerts.
type CleanupService struct {
	service           AlertService
	staleAfter        time.Duration
	resolvedRetention time.Duration
}

func NewCleanupService(service AlertService, cfg CleanupConfig) *CleanupService {
	return &CleanupService{
		service:           service,
		staleAfter:        cfg.StaleAfter.Or(24 * time.Hour),
		resolvedRetention: cfg.ResolvedRetention.Or(30 * 24 * time.Hour), // 30 days
	}
}

// Cleanup runs one pass. Errors are logged and the pass continues.
func (c *CleanupService) Cleanup(ctx context.Context) CleanupReport {
	var report CleanupReport

	expired, err := c.service.ExpireAlerts(ctx, c.staleAfter)
	if err != nil {
		log.Printf("Error expiring alerts: %v", err)
	}

	report.Expired = expired

	deleted, err := c.service.PurgeResolved(ctx, c.resolvedRetention)
	if err != nil {
		log.Printf("Error deleting resolved alerts: %v", err)
	}

	report.Deleted = deleted

	log.Printf("Alert cleanup: expired %d, deleted %d", report.Expired, report.Deleted)

	return report
}
