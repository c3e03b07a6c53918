package srv

import "context"

// cleanupService runs fn on shutdown and does nothing on start.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	return c.cleanup()
}

// NewCleanup wraps a closer such as (*sql.DB).Close as a Service.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
