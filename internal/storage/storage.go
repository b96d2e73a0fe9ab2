package storage

import (
	"context"
	"time"
)

// Backend opens atomic units against a concrete store.
type Backend interface {
	Reader() *Reader
	Begin(ctx context.Context) (*Writer, error)
	Ping(ctx context.Context) error
	Close() error
}

type Storage struct {
	backend Backend
	timeout time.Duration

	*Reader
}

const DefaultTimeout = 5 * time.Second

func New(backend Backend, timeout time.Duration) *Storage {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Storage{
		backend: backend,
		timeout: timeout,
		Reader:  backend.Reader(),
	}
}

// Write starts an atomic unit. Callers must Commit or Rollback the returned Writer.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	return s.backend.Begin(ctx)
}

// Timeout bounds a single atomic unit.
func (s *Storage) Timeout() time.Duration {
	return s.timeout
}

// Ping checks the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Storage) Close() error {
	return s.backend.Close()
}
