package ports

import "go.trai.ch/tomobench/internal/core/domain"

// ConfigLoader defines the interface for loading the benchmark configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration. A non-empty path names the file explicitly;
	// otherwise the file is searched for from cwd upwards and defaults apply when
	// none is found.
	Load(cwd, path string) (*domain.Config, error)
}
