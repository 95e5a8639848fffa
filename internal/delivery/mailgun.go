package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/sending"
	"github.com/rs/zerolog"
)

const defaultMailgunBaseURL = "https://api.mailgun.net"

// MailgunSender sends emails via the Mailgun Messages API.
type MailgunSender struct {
	apiKey   string
	endpoint string
	sender   string
	client   *http.Client
}

// NewMailgunSender creates a Mailgun sender targeting the given domain.
func NewMailgunSender(baseURL, apiKey, domainName, sender string, timeout time.Duration) (*MailgunSender, error) {
	if apiKey == "" || domainName == "" {
		return nil, fmt.Errorf("%w: mailgun api key and domain are required", sending.ErrNotConfigured)
	}
	if baseURL == "" {
		baseURL = defaultMailgunBaseURL
	}
	endpoint, err := url.JoinPath(baseURL, "v3", domainName, "messages")
	if err != nil {
		return nil, fmt.Errorf("mailgun base_url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MailgunSender{
		apiKey:   apiKey,
		endpoint: endpoint,
		sender:   sender,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Send delivers a single email through Mailgun.
func (s *MailgunSender) Send(ctx context.Context, msg *domain.EmailMessage) error {
	form := url.Values{}
	form.Add("from", s.sender)
	form.Add("to", msg.To.String())
	form.Add("subject", msg.Subject)
	form.Add("html", msg.HTMLBody)
	form.Add("text", msg.TextBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", s.apiKey)

	if err := doSend(s.client, req); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("provider", "mailgun").Str("to", logger.RedactEmail(msg.To.String())).Msg("email sent")
	return nil
}
