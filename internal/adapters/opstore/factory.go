package opstore

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory opens the store selected by the configuration.
type Factory struct {
	newS3 func(ctx context.Context, cfg domain.S3Config) (S3API, error)
}

var _ ports.StoreFactory = (*Factory)(nil)

// NewFactory creates a Factory that builds real S3 clients.
func NewFactory() *Factory {
	return &Factory{newS3: NewS3Client}
}

// Open returns the store for cfg.Cache.
func (f *Factory) Open(ctx context.Context, cfg *domain.Config) (ports.OperatorStore, error) {
	switch cfg.Cache.Backend {
	case domain.StoreFS, "":
		return NewFileStore(cfg.Cache.Root), nil
	case domain.StoreS3:
		client, err := f.newS3(ctx, cfg.Cache.S3)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.Cache.S3.Bucket, cfg.Cache.S3.Prefix), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown cache backend"), "backend", cfg.Cache.Backend)
	}
}

// NewS3Client loads the shared AWS configuration chain (environment, profile,
// instance metadata) with the overrides from cfg.
func NewS3Client(ctx context.Context, cfg domain.S3Config) (S3API, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrStoreIO, err), "failed to load AWS configuration")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}
