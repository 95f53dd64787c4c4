package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/elskow/murmures-api/internal/config"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPNotifier struct {
	from    string
	links   Links
	content *Content
	dialer  sender
	log     *zap.Logger
}

func NewSMTPNotifier(cfg *config.MailConfig, links Links, content *Content, log *zap.Logger) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPNotifier{
		from:    from,
		links:   links,
		content: content,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:     log,
	}
}

func (n *SMTPNotifier) SendActivation(ctx context.Context, email, token string) error {
	msg, err := n.content.Activation(n.links.Activation(token))
	if err != nil {
		return err
	}
	return n.send(ctx, email, msg)
}

func (n *SMTPNotifier) SendReset(ctx context.Context, email, token string) error {
	msg, err := n.content.Reset(n.links.Reset(token))
	if err != nil {
		return err
	}
	return n.send(ctx, email, msg)
}

// send stops waiting when ctx is done; the SMTP exchange itself is bounded
// by gomail's dial timeout. A context that is already done never dials.
func (n *SMTPNotifier) send(ctx context.Context, to string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			n.log.Error("failed to send email",
				zap.String("to", to),
				zap.String("subject", msg.Subject),
				zap.Error(err))
			return fmt.Errorf("send email: %w", err)
		}
		n.log.Info("email sent", zap.String("to", to), zap.String("subject", msg.Subject))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}
