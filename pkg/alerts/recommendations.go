package alerts

import (
	"strings"

	"github.com/carverauto/pulse/pkg/models"
)

var metricRecommendations = map[string][]string{
	"cpu_percent": {
		"Identify the processes with the highest CPU usage",
		"Check for runaway loops or hot request paths",
		"Consider scaling out if load is sustained",
	},
	"memory_percent": {
		"Check for memory leaks in long-running processes",
		"Review cache sizes and eviction settings",
		"Consider increasing available memory",
	},
	"disk_percent": {
		"Remove old logs and temporary files",
		"Review data retention settings",
		"Expand the volume before it fills",
	},
	"response_time_ms": {
		"Profile the slowest endpoints",
		"Check downstream dependencies for latency",
		"Review recent deployments for regressions",
	},
	"error_rate": {
		"Inspect recent application logs for new errors",
		"Roll back recent deployments if errors started after them",
	},
	"db_connections": {
		"Check for leaked database connections",
		"Review connection pool limits",
	},
	"db_query_ms": {
		"Review slow query logs",
		"Check for missing indexes",
	},
	"queue_depth": {
		"Check that consumers are running",
		"Scale consumers if the backlog keeps growing",
	},
	"runtime_goroutines": {
		"Look for goroutine leaks in blocked operations",
	},
}

var keywordRecommendations = []struct {
	keywords []string
	advice   []string
}{
	{
		keywords: []string{"database", "connection", "sql"},
		advice: []string{
			"Verify database availability and credentials",
			"Check connection pool exhaustion",
		},
	},
	{
		keywords: []string{"memory", "oom"},
		advice: []string{
			"Inspect memory usage of the affected service",
			"Look for unbounded caches or buffers",
		},
	},
	{
		keywords: []string{"timeout", "timed out", "deadline"},
		advice: []string{
			"Check latency of downstream services",
			"Review timeout and retry settings",
		},
	},
}

var genericRecommendations = []string{
	"Review recent changes to the affected component",
	"Check application logs around the trigger time",
	"Escalate if the condition persists",
}

// Recommend returns remediation hints for alert from its metric and the
// keywords of its error type and message. It never returns an empty list.
func Recommend(alert *models.Alert) []string {
	var out []string

	seen := make(map[string]bool)

	add := func(items []string) {
		for _, item := range items {
			if !seen[item] {
				seen[item] = true
				out = append(out, item)
			}
		}
	}

	add(metricRecommendations[alert.MetricName])

	text := strings.ToLower(alert.Metadata.ErrorType + " " + alert.AlertType + " " + alert.Message)

	for _, kr := range keywordRecommendations {
		for _, kw := range kr.keywords {
			if strings.Contains(text, kw) {
				add(kr.advice)
				break
			}
		}
	}

	if len(out) == 0 {
		add(genericRecommendations)
	}

	return out
}
