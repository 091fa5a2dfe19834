// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tomobench/internal/adapters/config"
	_ "go.trai.ch/tomobench/internal/adapters/lease"
	_ "go.trai.ch/tomobench/internal/adapters/logger"
	_ "go.trai.ch/tomobench/internal/adapters/opstore"
	_ "go.trai.ch/tomobench/internal/adapters/recon"
	_ "go.trai.ch/tomobench/internal/adapters/shell"
	_ "go.trai.ch/tomobench/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/tomobench/internal/app"
)
