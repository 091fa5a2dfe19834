package opstore

import (
	"context"
	"time"

	"go.trai.ch/tomobench/internal/core/domain"
)

// SetClock replaces the store's clock.
func (s *FileStore) SetClock(now func() time.Time) { s.now = now }

// SetClock replaces the store's clock.
func (s *S3Store) SetClock(now func() time.Time) { s.now = now }

// NewFactoryWithS3 builds a Factory with a custom S3 client constructor.
func NewFactoryWithS3(newS3 func(context.Context, domain.S3Config) (S3API, error)) *Factory {
	return &Factory{newS3: newS3}
}
