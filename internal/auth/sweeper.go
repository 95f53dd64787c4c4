package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes pending accounts whose activation token has expired.
type Sweeper struct {
	service  *Service
	interval time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(service *Service, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		log:      log,
	}
}

// Start is a no-op when the interval is not positive.
func (s *Sweeper) Start() {
	if s.interval <= 0 {
		s.log.Info("pending account sweeper disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	removed, err := s.service.PurgeExpiredPending(ctx)
	if err != nil {
		s.log.Error("failed to purge expired pending accounts", zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("purged expired pending accounts", zap.Int64("count", removed))
	}
}
