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

package channels

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/models"
)

const (
	defaultWebhookTimeout  = 10 * time.Second
	defaultSignatureHeader = "X-Signature"
	webhookUserAgent       = "Pulse-Alerts/1.0"
	maxErrorBodyBytes      = 4096
	templateAlertKey       = "alert"
	templateRecipientKey   = "to"
)

// WebhookConfig configures an HTTP POST channel.
type WebhookConfig struct {
	URL      string   `json:"url" toml:"url"`
	Headers  []Header `json:"headers,omitempty" toml:"headers"`
	Template string   `json:"template,omitempty" toml:"template"` // Optional JSON template
	// Secret signs the body with HMAC-SHA256 in SignatureHeader.
	Secret          string          `json:"secret,omitempty" toml:"secret"`
	SignatureHeader string          `json:"signature_header,omitempty" toml:"signature_header"`
	Timeout         config.Duration `json:"timeout,omitempty" toml:"timeout"`
	// To is exposed to templates as .to, for gateways that need a recipient.
	To string `json:"to,omitempty" toml:"to"`
}

type Header struct {
	Key   string `json:"key" toml:"key"`
	Value string `json:"value" toml:"value"`
}

// WebhookHandler posts alerts as JSON, optionally shaped by a template.
type WebhookHandler struct {
	channel    models.AlertChannel
	config     WebhookConfig
	tmpl       *template.Template
	client     *http.Client
	bufferPool *sync.Pool
}

// NewWebhookHandler creates a handler delivering on channel. The template,
// if any, is parsed up front.
func NewWebhookHandler(channel models.AlertChannel, cfg WebhookConfig) (*WebhookHandler, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%s: %w", channel, errURLRequired)
	}

	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = defaultSignatureHeader
	}

	w := &WebhookHandler{
		channel: channel,
		config:  cfg,
		client: &http.Client{
			Timeout: cfg.Timeout.Or(defaultWebhookTimeout),
		},
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}

	if cfg.Template != "" {
		tmpl, err := template.New(string(channel)).Funcs(w.templateFuncs()).Parse(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errTemplateParse, err)
		}

		w.tmpl = tmpl
	}

	return w, nil
}

// NewSlackWebhook posts Slack incoming-webhook messages.
func NewSlackWebhook(cfg WebhookConfig) (*WebhookHandler, error) {
	cfg.Template = SlackTemplate

	return NewWebhookHandler(models.ChannelSlack, cfg)
}

// NewDiscordWebhook posts Discord webhook embeds.
func NewDiscordWebhook(cfg WebhookConfig) (*WebhookHandler, error) {
	cfg.Template = DiscordTemplate

	return NewWebhookHandler(models.ChannelDiscord, cfg)
}

// NewSMSGateway posts a short text to an HTTP SMS gateway. A custom
// template may replace the default body.
func NewSMSGateway(cfg WebhookConfig) (*WebhookHandler, error) {
	if cfg.To == "" {
		return nil, errSMSRecipient
	}

	if cfg.Template == "" {
		cfg.Template = SMSTemplate
	}

	return NewWebhookHandler(models.ChannelSMS, cfg)
}

func (w *WebhookHandler) Channel() models.AlertChannel {
	return w.channel
}

func (w *WebhookHandler) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"json": func(v interface{}) (string, error) {
			buf := w.bufferPool.Get().(*bytes.Buffer)
			buf.Reset()
			defer w.bufferPool.Put(buf)

			enc := json.NewEncoder(buf)
			if err := enc.Encode(v); err != nil {
				return "", fmt.Errorf("JSON marshaling failed: %w", err)
			}

			return strings.TrimSuffix(buf.String(), "\n"), nil
		},
		"upper": strings.ToUpper,
	}
}

func (w *WebhookHandler) Send(ctx context.Context, alert *models.Alert) error {
	payload, err := w.preparePayload(NewPayload(alert))
	if err != nil {
		return fmt.Errorf("failed to prepare payload: %w", err)
	}

	return w.sendRequest(ctx, payload)
}

func (w *WebhookHandler) preparePayload(p *Payload) ([]byte, error) {
	if w.tmpl == nil {
		buf := w.bufferPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer w.bufferPool.Put(buf)

		enc := json.NewEncoder(buf)
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("failed to marshal alert: %w", err)
		}

		return append([]byte(nil), buf.Bytes()...), nil
	}

	return w.executeTemplate(p)
}

func (w *WebhookHandler) executeTemplate(p *Payload) ([]byte, error) {
	buf := w.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer w.bufferPool.Put(buf)

	if err := w.tmpl.Execute(buf, map[string]interface{}{
		templateAlertKey:     p,
		templateRecipientKey: w.config.To,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateExecution, err)
	}

	if !json.Valid(buf.Bytes()) {
		return nil, errInvalidJSON
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

func (w *WebhookHandler) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(w.config.Secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

func (w *WebhookHandler) sendRequest(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	if w.config.Secret != "" {
		req.Header.Set(w.config.SignatureHeader, w.sign(payload))
	}

	resp, err := w.client.Do(req) //nolint:bodyclose // Response body is closed later
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, string(body))
	}

	return nil
}

func (w *WebhookHandler) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("User-Agent", webhookUserAgent)
}
