package srv

import (
	"context"
	"sync"

	"github.com/sandevgo/glimpse/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices runs every service in its own goroutine. The returned channel
// receives the first start error, or is closed once every service has returned.
func StartServices(ctx context.Context, services []Service) <-chan error {
	logger := log.FromCtx(ctx)
	errCh := make(chan error, len(services))

	var wg sync.WaitGroup
	for _, service := range services {
		wg.Add(1)
		go func(service Service) {
			defer wg.Done()
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed", service)
				errCh <- err
			}
		}(service)
	}

	go func() {
		wg.Wait()
		close(errCh)
	}()

	return errCh
}

// ShutdownServices stops services in reverse start order.
func ShutdownServices(ctx context.Context, services []Service) {
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
