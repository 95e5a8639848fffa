package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/sending"
	"github.com/rs/zerolog"
)

const defaultSparkPostBaseURL = "https://api.sparkpost.com/api/v1"

// SparkPostSender sends emails via the SparkPost Transmissions API.
type SparkPostSender struct {
	apiKey   string
	endpoint string
	sender   string
	client   *http.Client
}

type sparkPostAddress struct {
	Email string `json:"email"`
}

type sparkPostRecipient struct {
	Address sparkPostAddress `json:"address"`
}

type sparkPostContent struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type sparkPostTransmission struct {
	Recipients []sparkPostRecipient `json:"recipients"`
	Content    sparkPostContent     `json:"content"`
	Options    map[string]bool      `json:"options"`
}

// NewSparkPostSender creates a sender targeting the SparkPost v1 API.
func NewSparkPostSender(baseURL, apiKey, sender string, timeout time.Duration) (*SparkPostSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: sparkpost api key is required", sending.ErrNotConfigured)
	}
	if baseURL == "" {
		baseURL = defaultSparkPostBaseURL
	}
	endpoint, err := url.JoinPath(baseURL, "transmissions")
	if err != nil {
		return nil, fmt.Errorf("sparkpost base_url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SparkPostSender{
		apiKey:   apiKey,
		endpoint: endpoint,
		sender:   sender,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Send delivers a single email through SparkPost.
func (s *SparkPostSender) Send(ctx context.Context, msg *domain.EmailMessage) error {
	payload, err := json.Marshal(sparkPostTransmission{
		Recipients: []sparkPostRecipient{{Address: sparkPostAddress{Email: msg.To.String()}}},
		Content: sparkPostContent{
			From:    s.sender,
			Subject: msg.Subject,
			HTML:    msg.HTMLBody,
			Text:    msg.TextBody,
		},
		// Click tracking would rewrite the confirmation link.
		Options: map[string]bool{"open_tracking": false, "click_tracking": false},
	})
	if err != nil {
		return fmt.Errorf("marshal transmission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	if err := doSend(s.client, req); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("provider", "sparkpost").Str("to", logger.RedactEmail(msg.To.String())).Msg("email sent")
	return nil
}
