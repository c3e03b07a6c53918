// Package srv runs long lived components with a shared start and stop
// protocol.
package srv

import (
	"context"
	"time"

	"github.com/sandevgo/smartctx/pkg/log"
)

// DefaultShutdownTimeout bounds how long Stop waits for all services.
const DefaultShutdownTimeout = 15 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices starts each service in its own goroutine. A service that
// fails to start terminates the process.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is done and then stops the services.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	Stop(ctx, services, DefaultShutdownTimeout)
}

// Stop shuts services down in order. ctx may already be cancelled; only its
// values are kept and a fresh deadline of timeout applies.
func Stop(ctx context.Context, services []Service, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	for _, service := range services {
		if err := service.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
		}
	}
}
