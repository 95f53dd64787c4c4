// Package notify delivers account emails: activation links after
// registration and password reset links.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/murmures-api/internal/api"
	"github.com/elskow/murmures-api/internal/config"
)

const (
	DriverSMTP = "smtp"
	DriverLog  = "log"
)

// Notifier reports delivery success or failure; it never retries.
type Notifier interface {
	SendActivation(ctx context.Context, email, token string) error
	SendReset(ctx context.Context, email, token string) error
}

// Links builds the URLs embedded in outgoing mail.
type Links struct {
	APIBaseURL    string
	ClientBaseURL string
}

// clientResetPath is the front-end page that collects the new password.
const clientResetPath = "/reset-password/{token}"

func (l Links) Activation(token string) string {
	return joinURL(l.APIBaseURL, api.UserPrefix+api.UserVerifyMail, token)
}

func (l Links) Reset(token string) string {
	return joinURL(l.ClientBaseURL, clientResetPath, token)
}

func joinURL(base, pattern, token string) string {
	path := strings.Replace(pattern, "{token}", url.PathEscape(token), 1)
	return strings.TrimRight(base, "/") + path
}

func New(cfg *config.AppConfig, log *zap.Logger) (Notifier, error) {
	links := Links{
		APIBaseURL:    cfg.Mail.APIBaseURL,
		ClientBaseURL: cfg.Client.BaseURL,
	}
	content := NewContent(cfg.Mail.SiteName, cfg.Auth.ActivationTokenTTL, cfg.Auth.ResetTokenTTL)

	switch cfg.Mail.Driver {
	case DriverSMTP:
		if cfg.Mail.Host == "" {
			return nil, fmt.Errorf("mail.host is required for the %s driver", DriverSMTP)
		}
		return NewSMTPNotifier(&cfg.Mail, links, content, log), nil
	case DriverLog, "":
		return NewLogNotifier(links, log), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Mail.Driver)
	}
}
