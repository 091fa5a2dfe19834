package recon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/recon"
	"go.trai.ch/tomobench/internal/core/domain"
)

func TestRegistry_Reconstructor(t *testing.T) {
	registry := recon.NewRegistry(map[domain.Backend]domain.EngineConfig{
		domain.BackendAstra: {Command: []string{"astra-helper"}},
	}, &fakeHelper{})

	r, err := registry.Reconstructor(domain.BackendLprec, "")
	require.NoError(t, err)
	assert.IsType(t, &recon.Reference{}, r)

	r, err = registry.Reconstructor(domain.BackendAstra, "")
	require.NoError(t, err)
	assert.IsType(t, &recon.Process{}, r)

	r, err = registry.Reconstructor(domain.BackendTomopy, domain.AlgorithmFBP)
	require.NoError(t, err)
	assert.IsType(t, &recon.Reference{}, r)

	_, err = registry.Reconstructor(domain.BackendTomopy, "")
	require.ErrorIs(t, err, domain.ErrInvalidAlgorithm)

	_, err = registry.Reconstructor("fbp", "")
	require.ErrorIs(t, err, domain.ErrUnknownBackend)
}

func TestRegistry_Precomputer(t *testing.T) {
	registry := recon.NewRegistry(map[domain.Backend]domain.EngineConfig{
		domain.BackendLprec: {Command: []string{"lprec-helper"}},
	}, &fakeHelper{})

	p, err := registry.Precomputer(domain.BackendLprec)
	require.NoError(t, err)
	assert.IsType(t, &recon.Process{}, p)

	_, err = registry.Precomputer(domain.BackendAstra)
	require.ErrorIs(t, err, domain.ErrUnknownBackend)

	p, err = recon.NewRegistry(nil, nil).Precomputer(domain.BackendLprec)
	require.NoError(t, err)
	assert.IsType(t, &recon.Reference{}, p)
}

func TestFactory_Open(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Engines[domain.BackendTomopy] = domain.EngineConfig{Command: []string{"tomo-helper"}}

	registry, err := recon.NewFactory(&fakeHelper{}).Open(cfg)
	require.NoError(t, err)

	r, err := registry.Reconstructor(domain.BackendTomopy, domain.AlgorithmGridrec)
	require.NoError(t, err)
	assert.IsType(t, &recon.Process{}, r)
}
