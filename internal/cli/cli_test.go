package cli_test

import (
	"testing"

	"github.com/amaguregi/folio/internal/cli"
)

func TestParseArgsDefaults(t *testing.T) {
	args, err := cli.ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Command != cli.CmdPublish {
		t.Errorf("default command = %q, want publish", args.Command)
	}
	if args.ContentRoot != "content" || args.OutputRoot != "dist/website" {
		t.Errorf("default roots = %q, %q", args.ContentRoot, args.OutputRoot)
	}
	if args.Addr != "127.0.0.1:8765" {
		t.Errorf("default addr = %q", args.Addr)
	}
	if args.Limit != 20 {
		t.Errorf("default limit = %d", args.Limit)
	}
}

func TestParseArgsOverrides(t *testing.T) {
	args, err := cli.ParseArgs([]string{
		"-cmd", "deploy",
		"-content", "/srv/content",
		"-out", "/srv/dist",
		"-remote-config", "/etc/folio/s3.json",
		"-history-db", "/var/lib/folio/history.db",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Command != cli.CmdDeploy {
		t.Errorf("command = %q", args.Command)
	}
	if args.ContentRoot != "/srv/content" || args.OutputRoot != "/srv/dist" {
		t.Errorf("roots = %q, %q", args.ContentRoot, args.OutputRoot)
	}
	if args.RemoteConfigPath != "/etc/folio/s3.json" {
		t.Errorf("remote config = %q", args.RemoteConfigPath)
	}
	if args.HistoryPath != "/var/lib/folio/history.db" {
		t.Errorf("history db = %q", args.HistoryPath)
	}
}

func TestParseArgsUnknownCommand(t *testing.T) {
	if _, err := cli.ParseArgs([]string{"-cmd", "explode"}); err == nil {
		t.Fatal("unknown command should fail")
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	if _, err := cli.ParseArgs([]string{"-nope"}); err == nil {
		t.Fatal("unknown flag should fail")
	}
}

func TestParseArgsGenerateAlias(t *testing.T) {
	args, err := cli.ParseArgs([]string{"-cmd", "generate"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Command != cli.CmdPublish {
		t.Errorf("generate resolved to %q, want publish", args.Command)
	}
}

func TestParseArgsEveryCommand(t *testing.T) {
	for _, cmd := range []string{cli.CmdPublish, cli.CmdDeploy, cli.CmdCheck, cli.CmdHistory, cli.CmdServe} {
		args, err := cli.ParseArgs([]string{"-cmd", cmd})
		if err != nil {
			t.Errorf("ParseArgs(-cmd %s): %v", cmd, err)
			continue
		}
		if args.Command != cmd {
			t.Errorf("command = %q, want %q", args.Command, cmd)
		}
	}
}
