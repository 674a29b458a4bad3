package channels

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/carverauto/pulse/pkg/models"
)

// DiscordBotConfig configures the Discord bot channel.
type DiscordBotConfig struct {
	Token     string `json:"token" toml:"token"`
	ChannelID string `json:"channel_id" toml:"channel_id"`
}

type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordBotHandler posts alert embeds through a bot account. It only uses
// the REST API, so no gateway connection is opened.
type DiscordBotHandler struct {
	session   embedSender
	channelID string
}

func NewDiscordBotHandler(cfg DiscordBotConfig) (*DiscordBotHandler, error) {
	if cfg.Token == "" || cfg.ChannelID == "" {
		return nil, errDiscordConfig
	}

	// Create Discord session with Bot prefix
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &DiscordBotHandler{session: session, channelID: cfg.ChannelID}, nil
}

func (*DiscordBotHandler) Channel() models.AlertChannel {
	return models.ChannelDiscord
}

func (h *DiscordBotHandler) Send(ctx context.Context, alert *models.Alert) error {
	if _, err := h.session.ChannelMessageSendEmbed(h.channelID, alertEmbed(alert), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	return nil
}

func alertEmbed(alert *models.Alert) *discordgo.MessageEmbed {
	p := NewPayload(alert)

	color := DiscordColorBlue

	switch p.Level {
	case Error:
		color = DiscordColorRed
	case Warning:
		color = DiscordColorYellow
	case Info:
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Resource", Value: orDash(p.Resource), Inline: true},
		{Name: "Category", Value: orDash(p.Category), Inline: true},
	}

	for _, key := range sortedKeys(p.Details) {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   key,
			Value:  fmt.Sprint(p.Details[key]),
			Inline: true,
		})
	}

	if recs := alert.Metadata.Recommendations; len(recs) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Recommendations",
			Value: "• " + strings.Join(recs, "\n• "),
		})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("[%s] %s", strings.ToUpper(p.Priority), p.Title),
		Description: p.Message,
		Color:       color,
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Alert ID: " + strconv.FormatInt(p.AlertID, 10),
		},
		Timestamp: p.Timestamp,
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
