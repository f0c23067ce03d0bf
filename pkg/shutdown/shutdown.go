package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()

	return ctx, cancel
}

// Step is one component to stop. Graceful must respect ctx; Force is called
// when the deadline passes first and may be nil.
type Step struct {
	Name     string
	Graceful func(ctx context.Context) error
	Force    func()
}

// Run stops each step in order, sharing a single deadline.
func Run(log *slog.Logger, timeout time.Duration, steps ...Step) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, st := range steps {
		done := make(chan error, 1)
		go func() { done <- st.Graceful(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				log.Error("graceful stop failed", slog.String("component", st.Name), slog.Any("err", err))
			}
		case <-ctx.Done():
			log.Warn("graceful stop timeout, forcing stop", slog.String("component", st.Name))
			if st.Force != nil {
				st.Force()
			}
		}
	}
}
