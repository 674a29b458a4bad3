/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerts

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/carverauto/pulse/pkg/models"
)

const (
	defaultChannelRate  = rate.Limit(1)
	defaultChannelBurst = 10
)

// Dispatcher implements Notifier over registered channel handlers. Each
// channel has its own token bucket; a send over the limit fails instead of
// waiting.
type Dispatcher struct {
	handlerMu sync.RWMutex
	handlers  map[models.AlertChannel]ChannelHandler
	limiters  map[models.AlertChannel]*rate.Limiter

	limit    rate.Limit
	burst    int
	fallback []models.AlertChannel
	now      func() time.Time
}

var _ Notifier = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRateLimit sets the per-channel send rate and burst.
func WithRateLimit(limit rate.Limit, burst int) DispatcherOption {
	return func(d *Dispatcher) {
		d.limit = limit
		d.burst = burst
	}
}

// WithDefaultChannels sets the channels used for alerts that name none.
func WithDefaultChannels(channels ...models.AlertChannel) DispatcherOption {
	return func(d *Dispatcher) {
		d.fallback = channels
	}
}

// WithDispatcherClock overrides the clock used to stamp deliveries.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[models.AlertChannel]ChannelHandler),
		limiters: make(map[models.AlertChannel]*rate.Limiter),
		limit:    defaultChannelRate,
		burst:    defaultChannelBurst,
		fallback: []models.AlertChannel{models.ChannelDashboard},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// RegisterHandler registers h for its channel, replacing any previous one.
func (d *Dispatcher) RegisterHandler(h ChannelHandler) {
	d.handlerMu.Lock()
	defer d.handlerMu.Unlock()

	ch := h.Channel()
	d.handlers[ch] = h
	d.limiters[ch] = rate.NewLimiter(d.limit, d.burst)
}

// Channels returns the channels that have a handler.
func (d *Dispatcher) Channels() []models.AlertChannel {
	d.handlerMu.RLock()
	defer d.handlerMu.RUnlock()

	out := make([]models.AlertChannel, 0, len(d.handlers))
	for ch := range d.handlers {
		out = append(out, ch)
	}

	return out
}

func (d *Dispatcher) handler(ch models.AlertChannel) (ChannelHandler, *rate.Limiter, bool) {
	d.handlerMu.RLock()
	defer d.handlerMu.RUnlock()

	h, ok := d.handlers[ch]

	return h, d.limiters[ch], ok
}

// Notify sends alert to each of its channels and reports one result per
// channel. Failures are logged and recorded, never returned.
func (d *Dispatcher) Notify(ctx context.Context, alert *models.Alert) []models.DeliveryResult {
	channels := alert.Channels
	if len(channels) == 0 {
		channels = d.fallback
	}

	results := make([]models.DeliveryResult, 0, len(channels))
	seen := make(map[models.AlertChannel]bool, len(channels))

	for _, ch := range channels {
		if seen[ch] {
			continue
		}

		seen[ch] = true

		err := d.send(ctx, ch, alert)

		result := models.DeliveryResult{
			AlertID: alert.ID,
			Channel: ch,
			Success: err == nil,
			SentAt:  d.now().UTC(),
		}

		if err != nil {
			result.Error = err.Error()
			log.Printf("Error sending alert %d to %s: %v", alert.ID, ch, err)
		}

		results = append(results, result)
	}

	return results
}

func (d *Dispatcher) send(ctx context.Context, ch models.AlertChannel, alert *models.Alert) (err error) {
	h, limiter, ok := d.handler(ch)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, ch)
	}

	if !limiter.AllowN(d.now(), 1) {
		return fmt.Errorf("%w: %s", ErrRateLimited, ch)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h.Send(ctx, alert)
}
