package cli

import (
	"flag"
	"fmt"
	"io"
)

// Commands understood by the folio binary. generate is an alias for
// publish, kept for scripts that only care about the build step.
const (
	CmdPublish  = "publish"
	CmdGenerate = "generate"
	CmdDeploy   = "deploy"
	CmdCheck    = "check"
	CmdHistory  = "history"
	CmdServe    = "serve"
)

// CLIArgs are the parsed command-line arguments for a single run.
type CLIArgs struct {
	// Command selects the operation: publish|deploy|check|history|serve.
	Command string

	// ContentRoot is the JSON content directory.
	ContentRoot string

	// OutputRoot is the generated site directory.
	OutputRoot string

	// StylesPath optionally overrides the embedded stylesheet.
	StylesPath string

	// RemoteConfigPath points at the object-store credentials file.
	RemoteConfigPath string

	// HistoryPath is the run ledger database file.
	HistoryPath string

	// Addr is the listen address for the serve command.
	Addr string

	// Limit bounds the history command output.
	Limit int

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not read
// os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("folio", flag.ContinueOnError)
	var (
		command      = fs.String("cmd", CmdPublish, "Command: generate|publish|deploy|check|history|serve")
		contentRoot  = fs.String("content", "content", "Content root directory")
		outputRoot   = fs.String("out", "dist/website", "Output directory for the generated site")
		stylesPath   = fs.String("styles", "", "Stylesheet file overriding the built-in one")
		remoteConfig = fs.String("remote-config", "s3-config.json", "Object-store credentials file")
		historyPath  = fs.String("history-db", ".folio/history.db", "Run ledger database file")
		addr         = fs.String("addr", "127.0.0.1:8765", "Listen address for serve")
		limit        = fs.Int("limit", 20, "Number of runs shown by history")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch *command {
	case CmdGenerate:
		*command = CmdPublish
	case CmdPublish, CmdDeploy, CmdCheck, CmdHistory, CmdServe:
	default:
		return nil, fmt.Errorf("unknown command %q", *command)
	}

	return &CLIArgs{
		Command:          *command,
		ContentRoot:      *contentRoot,
		OutputRoot:       *outputRoot,
		StylesPath:       *stylesPath,
		RemoteConfigPath: *remoteConfig,
		HistoryPath:      *historyPath,
		Addr:             *addr,
		Limit:            *limit,
		RawArgs:          args,
	}, nil
}
