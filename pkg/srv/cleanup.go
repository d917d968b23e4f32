package srv

import (
	"context"
	"sync"
)

// cleanupService runs fn once on shutdown and does nothing on start.
type cleanupService struct {
	once    sync.Once
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		if c.cleanup != nil {
			err = c.cleanup()
		}
	})
	return err
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
