package domain

// ProviderType identifies the email transport used for delivery.
type ProviderType string

const (
	ProviderHTTP      ProviderType = "http"
	ProviderSES       ProviderType = "ses"
	ProviderMailgun   ProviderType = "mailgun"
	ProviderSparkPost ProviderType = "sparkpost"
)

// EmailMessage is the fully-rendered message handed to a sender.
// By the time a message reaches this struct, all template substitution is
// complete.
type EmailMessage struct {
	To       SubscriberEmail
	Subject  string
	HTMLBody string
	TextBody string
}
