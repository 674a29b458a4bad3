package channels

import (
	"fmt"
	"log"

	"github.com/carverauto/pulse/pkg/alerts"
	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/models"
)

// Environment variables that supply channel secrets left out of the config file.
const (
	EnvSendGridKey      = "SENDGRID_API_KEY"
	EnvDiscordBotToken  = "DISCORD_BOT_TOKEN"
	EnvDiscordChannelID = "DISCORD_CHANNEL_ID"
)

// Config selects and configures the notification channels. A nil section
// disables the channel.
type Config struct {
	Webhook        *WebhookConfig    `json:"webhook,omitempty" toml:"webhook"`
	Slack          *WebhookConfig    `json:"slack,omitempty" toml:"slack"`
	DiscordWebhook *WebhookConfig    `json:"discord_webhook,omitempty" toml:"discord_webhook"`
	DiscordBot     *DiscordBotConfig `json:"discord_bot,omitempty" toml:"discord_bot"`
	Email          *EmailConfig      `json:"email,omitempty" toml:"email"`
	SMS            *WebhookConfig    `json:"sms,omitempty" toml:"sms"`
}

// ApplyEnv fills missing secrets from the environment.
func (c *Config) ApplyEnv() {
	if c.Email != nil && c.Email.APIKey == "" {
		c.Email.APIKey = config.EnvOr(EnvSendGridKey, "")
	}

	token := config.EnvOr(EnvDiscordBotToken, "")
	channelID := config.EnvOr(EnvDiscordChannelID, "")

	if c.DiscordBot == nil && token != "" && channelID != "" {
		c.DiscordBot = &DiscordBotConfig{}
	}

	if c.DiscordBot != nil {
		if c.DiscordBot.Token == "" {
			c.DiscordBot.Token = token
		}

		if c.DiscordBot.ChannelID == "" {
			c.DiscordBot.ChannelID = channelID
		}
	}
}

// Build creates the configured handlers. The dashboard handler is always
// included when bus is set. A Discord bot takes precedence over a Discord
// webhook.
func Build(cfg Config, bus Publisher) ([]alerts.ChannelHandler, error) {
	var handlers []alerts.ChannelHandler

	add := func(h alerts.ChannelHandler, err error) error {
		if err != nil {
			return err
		}

		handlers = append(handlers, h)
		log.Printf("Notification channel %s enabled", h.Channel())

		return nil
	}

	if cfg.Webhook != nil {
		h, err := NewWebhookHandler(models.ChannelWebhook, *cfg.Webhook)
		if err := add(h, err); err != nil {
			return nil, fmt.Errorf("webhook channel: %w", err)
		}
	}

	if cfg.Slack != nil {
		h, err := NewSlackWebhook(*cfg.Slack)
		if err := add(h, err); err != nil {
			return nil, fmt.Errorf("slack channel: %w", err)
		}
	}

	switch {
	case cfg.DiscordBot != nil:
		h, err := NewDiscordBotHandler(*cfg.DiscordBot)
		if err := add(h, err); err != nil {
			return nil, fmt.Errorf("discord channel: %w", err)
		}
	case cfg.DiscordWebhook != nil:
		h, err := NewDiscordWebhook(*cfg.DiscordWebhook)
		if err := add(h, err); err != nil {
			return nil, fmt.Errorf("discord channel: %w", err)
		}
	}

	if cfg.Email != nil {
		h, err := NewEmailHandler(*cfg.Email)
		if err := add(h, err); err != nil {
			return nil, fmt.Errorf("email channel: %w", err)
		}
	}

	if cfg.SMS != nil {
		h, err := NewSMSGateway(*cfg.SMS)
		if err := add(h, err); err != nil {
			return nil, fmt.Errorf("sms channel: %w", err)
		}
	}

	if bus != nil {
		_ = add(NewDashboardHandler(bus), nil)
	}

	return handlers, nil
}
