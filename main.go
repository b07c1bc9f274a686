// Command folio builds a portfolio website from JSON content records and
// mirrors it to an S3 bucket.
//
// Usage:
//
//	folio -cmd publish            regenerate the site under -out (alias: generate)
//	folio -cmd check              report whether content changed since the last publish
//	folio -cmd deploy             mirror the generated site to the configured bucket
//	folio -cmd history            show recent publish/deploy runs
//	folio -cmd serve              start the editor API server
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/amaguregi/folio/internal/app"
	"github.com/amaguregi/folio/internal/cli"
	"github.com/amaguregi/folio/internal/logging"
	"github.com/amaguregi/folio/internal/mirror"
	"github.com/amaguregi/folio/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "folio: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	parsed, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}

	logger := logging.NewStdoutLogger("folio")

	cfg := app.DefaultConfig()
	cfg.ContentRoot = parsed.ContentRoot
	cfg.OutputRoot = parsed.OutputRoot
	cfg.RemoteConfigPath = parsed.RemoteConfigPath
	cfg.HistoryPath = parsed.HistoryPath
	cfg.SiteCfg.StylesPath = parsed.StylesPath

	if parsed.Command == cli.CmdServe {
		return serve(parsed, cfg, logger)
	}

	pipeline, err := app.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	pipeline.SetNotify(func(ev app.Event) {
		if ev.Total > 0 {
			fmt.Printf("%s: %s (%d/%d)\n", ev.Step, ev.Message, ev.Uploaded, ev.Total)
			return
		}
		fmt.Printf("%s: %s\n", ev.Step, ev.Message)
	})

	ctx := context.Background()

	switch parsed.Command {
	case cli.CmdPublish:
		out, err := pipeline.Publish(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("site written to %s\n", out)
		return nil

	case cli.CmdCheck:
		report, err := pipeline.CheckChanges()
		if err != nil {
			return err
		}
		if !report.HasChanges {
			fmt.Println("no changes since last publish")
			return nil
		}
		for _, c := range report.Changes {
			fmt.Printf("%-9s %s\n", c.Type, c.Path)
			for _, ch := range c.Chunks {
				marker := "+"
				if ch.Type == "removed" {
					marker = "-"
				}
				fmt.Printf("          %s %s\n", marker, strings.TrimSpace(ch.Content))
			}
		}
		return nil

	case cli.CmdDeploy:
		rc, err := mirror.LoadRemoteConfig(cfg.RemoteConfigPath)
		if err != nil {
			return err
		}
		store, err := mirror.NewS3Store(ctx, rc)
		if err != nil {
			return err
		}
		pipeline.SetRemote(store)
		uploaded, err := pipeline.Deploy(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %d file(s) to %s\n", uploaded, rc.Bucket)
		fmt.Printf("site available at %s\n", store.WebsiteURL())
		return nil

	case cli.CmdHistory:
		runs, err := pipeline.RecentRuns(ctx, parsed.Limit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			line := fmt.Sprintf("%s  %-7s  %s", r.StartedAt.Format("2006-01-02 15:04:05"), r.Kind, r.Status)
			if r.Error != "" {
				line += "  " + r.Error
			}
			fmt.Println(line)
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", parsed.Command)
}

func serve(parsed *cli.CLIArgs, cfg *app.Config, logger logging.Logger) error {
	srv, err := server.NewServer(server.Config{
		ListenAddr: parsed.Addr,
		AppConfig:  cfg,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("editor server listening", logging.F("addr", parsed.Addr))
	return srv.HTTPServer().ListenAndServe()
}
