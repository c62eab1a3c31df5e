// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/nftgen/internal/adapters/cas"
	_ "go.trai.ch/nftgen/internal/adapters/clock"
	_ "go.trai.ch/nftgen/internal/adapters/config"
	_ "go.trai.ch/nftgen/internal/adapters/extractor"
	_ "go.trai.ch/nftgen/internal/adapters/fs"
	_ "go.trai.ch/nftgen/internal/adapters/janitor"
	_ "go.trai.ch/nftgen/internal/adapters/logger"
	_ "go.trai.ch/nftgen/internal/adapters/preset"
	_ "go.trai.ch/nftgen/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/nftgen/internal/app"
	_ "go.trai.ch/nftgen/internal/engine/collector"
	_ "go.trai.ch/nftgen/internal/engine/generator"
)
