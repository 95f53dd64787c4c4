package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes links to the log instead of sending mail. Development only.
type LogNotifier struct {
	links Links
	log   *zap.Logger
}

func NewLogNotifier(links Links, log *zap.Logger) *LogNotifier {
	return &LogNotifier{links: links, log: log}
}

func (n *LogNotifier) SendActivation(_ context.Context, email, token string) error {
	n.log.Info("activation link",
		zap.String("to", email),
		zap.String("link", n.links.Activation(token)))
	return nil
}

func (n *LogNotifier) SendReset(_ context.Context, email, token string) error {
	n.log.Info("password reset link",
		zap.String("to", email),
		zap.String("link", n.links.Reset(token)))
	return nil
}
