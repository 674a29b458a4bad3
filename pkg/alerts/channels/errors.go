package channels

import "errors"

var (
	errURLRequired       = errors.New("webhook url is required")
	errInvalidJSON       = errors.New("invalid JSON generated")
	errWebhookStatus     = errors.New("webhook returned non-2xx status")
	errTemplateParse     = errors.New("template parsing failed")
	errTemplateExecution = errors.New("template execution failed")
	errEmailConfig       = errors.New("email channel needs api_key, from and at least one recipient")
	errEmailStatus       = errors.New("sendgrid returned non-2xx status")
	errDiscordConfig     = errors.New("discord channel needs a bot token and channel id")
	errSMSRecipient      = errors.New("sms channel needs a recipient")
)
