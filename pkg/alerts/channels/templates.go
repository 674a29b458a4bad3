package channels

const (
	DiscordColorRed    = 15158332 // Error
	DiscordColorYellow = 16776960 // Warning
	DiscordColorBlue   = 3447003  // Info
)

const DiscordTemplate = `{
  "username": "Pulse",
  "embeds": [{
    "title": {{json (printf "[%s] %s" (upper .alert.Priority) .alert.Title)}},
    "description": {{json .alert.Message}},
    "color": {{if eq .alert.Level "error"}}15158332{{else if eq .alert.Level "warning"}}16776960{{else}}3447003{{end}},
    "timestamp": {{json .alert.Timestamp}},
    "fields": [
      {
        "name": "Resource",
        "value": {{json .alert.Resource}},
        "inline": true
      }
      {{range $key, $value := .alert.Details}},
      {
        "name": {{json $key}},
        "value": {{json (printf "%v" $value)}},
        "inline": true
      }
      {{end}}
    ],
    "footer": {"text": {{json (printf "Alert %d" .alert.AlertID)}}}
  }]
}`

const SlackTemplate = `{
  "text": {{json (printf "[%s] %s" (upper .alert.Priority) .alert.Title)}},
  "attachments": [{
    "color": {{if eq .alert.Level "error"}}"danger"{{else if eq .alert.Level "warning"}}"warning"{{else}}"good"{{end}},
    "text": {{json .alert.Message}},
    "fields": [
      {"title": "Resource", "value": {{json .alert.Resource}}, "short": true}
      {{range $key, $value := .alert.Details}},
      {"title": {{json $key}}, "value": {{json (printf "%v" $value)}}, "short": true}
      {{end}}
    ],
    "footer": {{json (printf "Alert %d via %s" .alert.AlertID .alert.Source)}}
  }]
}`

const SMSTemplate = `{
  "to": {{json .to}},
  "body": {{json (printf "[%s] %s: %s" (upper .alert.Priority) .alert.Title .alert.Message)}}
}`
