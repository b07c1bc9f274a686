package server

import (
	"github.com/amaguregi/folio/internal/app"
	"github.com/amaguregi/folio/internal/logging"
)

// Config holds the settings for the editor API server. The server is a
// loopback surface for the editor UI; it is not meant to face the internet.
type Config struct {
	// ListenAddr is the listen address, e.g. "127.0.0.1:8765".
	ListenAddr string

	// AppConfig configures the pipeline the server drives. nil selects
	// app.DefaultConfig.
	AppConfig *app.Config

	// Logger receives request and handler logs. nil selects a stdout
	// JSON logger.
	Logger logging.Logger
}

// DefaultConfig returns a Config bound to the conventional loopback address.
func DefaultConfig() Config {
	return Config{ListenAddr: "127.0.0.1:8765"}
}
