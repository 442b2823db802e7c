//go:build webview

package main

import (
	"fmt"
	"log/slog"

	webview "github.com/webview/webview_go"
)

// webviewAvailable reports whether this binary was built with the desktop window
const webviewAvailable = true

// runEmbeddedUI starts the web server and opens an embedded browser window
func runEmbeddedUI(config *Config, logger *slog.Logger) error {
	ws := NewWebServer(config, "localhost:0", logger)

	url, cleanup, err := ws.StartForEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer cleanup()

	// false = no debug mode
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Gini Simulator")
	w.SetSize(1200, 800, webview.HintNone)
	w.Navigate(url)

	// Run blocks until window is closed
	w.Run()

	return nil
}
