//go:build !webview

package main

import (
	"fmt"
	"log/slog"
)

const webviewAvailable = false

// runEmbeddedUI is a stub for builds without the webview tag
func runEmbeddedUI(config *Config, logger *slog.Logger) error {
	return fmt.Errorf("desktop window not available in this build (rebuild with -tags webview); use 'gini-sim serve' instead")
}
