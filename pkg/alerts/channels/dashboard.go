package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/models"
)

// Publisher is the part of the shared store the dashboard channel needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// AlertEvent is published on kv.TopicAlerts for live dashboards.
type AlertEvent struct {
	Type  string        `json:"type"`
	Alert *models.Alert `json:"alert"`
}

// DashboardHandler publishes alerts on the bus. Stored alerts are already
// visible through the API; this feeds the live stream.
type DashboardHandler struct {
	bus Publisher
}

func NewDashboardHandler(bus Publisher) *DashboardHandler {
	return &DashboardHandler{bus: bus}
}

func (*DashboardHandler) Channel() models.AlertChannel {
	return models.ChannelDashboard
}

func (h *DashboardHandler) Send(ctx context.Context, alert *models.Alert) error {
	data, err := json.Marshal(AlertEvent{Type: "alert", Alert: alert})
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}

	return h.bus.Publish(ctx, kv.TopicAlerts, data)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
