package iiconfig

import "go.uber.org/zap"

// NewLogger builds the process-wide structured logger: development mode
// (human-readable, debug-level) when verbose is set, production mode
// (JSON, info-level) otherwise. Every pipeline stage takes this logger
// rather than reaching for a package-level global.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
