package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/carverauto/pulse/pkg/kv"
)

const streamBuffer = 64

// streamTopics maps the names accepted by ?topics= to bus topics.
var streamTopics = map[string]string{
	"metrics":     kv.TopicMetricUpdates,
	"transitions": kv.TopicTransitions,
	"alerts":      kv.TopicAlerts,
}

// StreamEvent is one websocket frame.
type StreamEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func selectTopics(raw string) (map[string]string, error) {
	if raw == "" {
		return streamTopics, nil
	}

	out := make(map[string]string)

	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)

		topic, ok := streamTopics[name]
		if !ok {
			return nil, fmt.Errorf("unknown stream topic %q", name)
		}

		out[name] = topic
	}

	return out, nil
}

// stream forwards bus messages to a websocket client until either side goes
// away.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		respondError(w, http.StatusServiceUnavailable, "stream not available")
		return
	}

	topics, err := selectTopics(r.URL.Query().Get("topics"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := make(chan StreamEvent, streamBuffer)

	type topicSub struct {
		kind string
		sub  kv.Subscription
	}

	var subs []topicSub

	defer func() {
		for _, ts := range subs {
			if err := ts.sub.Close(); err != nil {
				log.Printf("Error closing stream subscription: %v", err)
			}
		}
	}()

	for name, topic := range topics {
		sub, err := s.deps.Bus.Subscribe(ctx, topic)
		if err != nil {
			respondServiceError(w, "subscribing to "+topic, err)
			return
		}

		subs = append(subs, topicSub{kind: strings.TrimSuffix(name, "s"), sub: sub})
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	defer func(conn *websocket.Conn) {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing websocket connection: %v", err)
		}
	}(conn)

	var wg sync.WaitGroup

	for _, ts := range subs {
		wg.Add(1)

		go forward(ctx, &wg, ts.kind, ts.sub, events)
	}

	go readLoop(conn, cancel)

	s.writeLoop(ctx, conn, events)

	cancel()
	wg.Wait()
}

// forward relays one subscription. Payloads that are not JSON are dropped.
func forward(ctx context.Context, wg *sync.WaitGroup, kind string, sub kv.Subscription, out chan<- StreamEvent) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}

			if !gjson.ValidBytes(msg.Payload) {
				continue
			}

			select {
			case out <- StreamEvent{Type: kind, Data: json.RawMessage(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// readLoop discards client frames and cancels the stream once the
// connection is closed.
func readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan StreamEvent) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))

			return
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))

			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("Error writing stream event: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
