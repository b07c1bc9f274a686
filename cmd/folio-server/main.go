// Command folio-server starts the editor API server on its own, without the
// rest of the CLI.
// Usage: go run ./cmd/folio-server [addr]
// Default address: 127.0.0.1:8765
package main

import (
	"log"
	"os"

	"github.com/amaguregi/folio/internal/server"
)

func main() {
	cfg := server.DefaultConfig()

	// Optional: custom address from command line
	if len(os.Args) > 1 {
		cfg.ListenAddr = os.Args[1]
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
	defer srv.Close()

	log.Printf("folio editor server listening on %s", cfg.ListenAddr)
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
