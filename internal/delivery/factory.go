package delivery

import (
	"context"
	"fmt"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/service/sending"
)

// New returns the sender selected by cfg.Provider.
func New(ctx context.Context, cfg config.EmailConfig) (sending.Sender, error) {
	var (
		s   sending.Sender
		err error
	)
	switch domain.ProviderType(cfg.Provider) {
	case domain.ProviderHTTP, "":
		var hs *HTTPSender
		hs, err = NewHTTPSender(cfg.BaseURL, cfg.Sender, cfg.AuthorizationToken, cfg.Timeout())
		s = hs
	case domain.ProviderSES:
		var ss *SESSender
		ss, err = NewSESSender(ctx, cfg.SESRegion, cfg.SESAccessKey, cfg.SESSecretKey, cfg.Sender)
		s = ss
	case domain.ProviderMailgun:
		var ms *MailgunSender
		ms, err = NewMailgunSender(cfg.BaseURL, cfg.AuthorizationToken, cfg.MailgunDomain, cfg.Sender, cfg.Timeout())
		s = ms
	case domain.ProviderSparkPost:
		var sp *SparkPostSender
		sp, err = NewSparkPostSender(cfg.BaseURL, cfg.AuthorizationToken, cfg.Sender, cfg.Timeout())
		s = sp
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
