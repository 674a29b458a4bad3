package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

// recordWake appends the wake to the audit log and teaches the hour pattern
// for the path.
func (c *Classifier) recordWake(ctx context.Context, method, path, reason string) {
	now := c.now()
	key := patternKey(path)

	event := models.WakeEvent{
		Version:   models.RecordVersion,
		ID:        uuid.NewString(),
		Timestamp: now.UTC(),
		Method:    method,
		Path:      path,
		Reason:    reason,
		Hour:      now.Hour(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Encoding wake event failed: %v", err)
		return
	}

	if err := c.store.LPushTrim(ctx, kv.WakeLogKey, string(payload), c.cfg.WakeLogLength, 0); err != nil {
		log.Printf("Appending wake event failed: %v", err)
	}

	if _, err := c.store.HIncrBy(ctx, kv.WakeStatsKey, reasonCategory(reason), 1); err != nil {
		log.Printf("Counting wake reason failed: %v", err)
	}

	if err := c.store.SAdd(ctx, kv.PathHoursKey(key, dayStamp(now)), strconv.Itoa(event.Hour), c.cfg.PatternWindow); err != nil {
		log.Printf("Learning hour pattern for %s failed: %v", key, err)
	}
}

// learnedHours returns the hours key woke the engine on any day inside the
// pattern window. Each day is its own set so an hour ages out once its day
// leaves the window, however busy the path stays.
func (c *Classifier) learnedHours(ctx context.Context, key string, now time.Time) ([]string, error) {
	days := int(c.cfg.PatternWindow / (24 * time.Hour))
	if days < 1 {
		days = 1
	}

	seen := make(map[string]struct{})

	var hours []string

	for d := 0; d < days; d++ {
		members, err := c.store.SMembers(ctx, kv.PathHoursKey(key, dayStamp(now.AddDate(0, 0, -d))))
		if err != nil {
			return nil, err
		}

		for _, h := range members {
			if _, ok := seen[h]; ok {
				continue
			}

			seen[h] = struct{}{}
			hours = append(hours, h)
		}
	}

	return hours, nil
}

func dayStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}

// reasonCategory strips the variable part of parameterized reasons.
func reasonCategory(reason string) string {
	switch {
	case strings.HasPrefix(reason, unusualTimePrefix):
		return "unusual_time"
	case strings.HasPrefix(reason, highFrequencyPrefix):
		return "high_frequency"
	default:
		return reason
	}
}

func (c *Classifier) RecomputeBaselines(ctx context.Context) (int, error) {
	paths, err := c.store.SMembers(ctx, kv.PathIndexKey)
	if err != nil {
		return 0, fmt.Errorf("failed to list tracked paths: %w", err)
	}

	updated := 0

	for _, key := range paths {
		samples, err := c.store.LRange(ctx, kv.PathRateSamplesKey(key), 0, -1)
		if err != nil {
			log.Printf("Reading rate samples for %s failed: %v", key, err)
			continue
		}

		var (
			sum float64
			n   int
		)

		for _, raw := range samples {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}

			sum += v
			n++
		}

		if n == 0 {
			continue
		}

		avg := strconv.FormatFloat(sum/float64(n), 'f', -1, 64)

		if err := c.store.Set(ctx, kv.PathBaselineKey(key), avg, c.cfg.PatternWindow); err != nil {
			return updated, fmt.Errorf("failed to store baseline for %s: %w", key, err)
		}

		updated++
	}

	log.Printf("Recomputed request baselines for %d of %d paths", updated, len(paths))

	return updated, nil
}

// RecentWakeEvents returns up to limit wake events, newest first.
func (c *Classifier) RecentWakeEvents(ctx context.Context, limit int) ([]models.WakeEvent, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := c.store.LRange(ctx, kv.WakeLogKey, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to read wake log: %w", err)
	}

	events := make([]models.WakeEvent, 0, len(raw))

	for _, item := range raw {
		var ev models.WakeEvent

		if err := json.Unmarshal([]byte(item), &ev); err != nil || ev.Version != models.RecordVersion {
			continue
		}

		events = append(events, ev)
	}

	return events, nil
}

func (c *Classifier) Stats(ctx context.Context) (*models.WakeStats, error) {
	counts, err := c.store.HGetAll(ctx, kv.WakeStatsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read wake counts: %w", err)
	}

	stats := &models.WakeStats{ByReason: make(map[string]int64, len(counts))}

	for reason, raw := range counts {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}

		stats.ByReason[reason] = n
		stats.TotalWakes += n
	}

	return stats, nil
}
