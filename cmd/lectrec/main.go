package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/lectrec/internal/cliconfig"
	"github.com/bft-labs/lectrec/pkg/log"
)

const helpDescription = `
Edit lecture recordings from the command line.

Recordings hold pages of shapes, a timeline of drawing actions and the
narration audio. Cutting or exporting a part of the timeline keeps actions,
pages and audio in step.

Configuration is read from $HOME/.lectrec/config.toml, then LECTREC_*
environment variables, then flags.
`

var exampleUsage = strings.TrimSpace(`
  lectrec info lecture.lrec --format yaml
  lectrec cut lecture.lrec --begin 1m30s --end 2m -o edited.lrec
  lectrec export lecture.lrec --begin 0s --end 10m -o part1.lrec
  lectrec split lecture.lrec --begin 10m --end 20m -o part2.lrec
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(run())
}

func run() int {
	e := &env{cfg: cliconfig.DefaultConfig()}
	var cfgPath string

	bootstrap, _ := cliconfig.Logger("info")
	e.log = bootstrap

	root := &cobra.Command{
		Use:           "lectrec",
		Short:         "Edit lecture recordings",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&e.cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file; changed flags win over both.
			if err := cliconfig.ApplyEnvConfig(&e.cfg, changed); err != nil {
				return err
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}

			logger, err := cliconfig.Logger(e.cfg.LogLevel)
			if err != nil {
				return err
			}
			e.log = logger
			e.log.Debug("configuration", log.Any("config", e.cfg))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.lectrec/config.toml)")
	root.PersistentFlags().StringVar(&e.cfg.StateDir, "state-dir", e.cfg.StateDir, "state directory for the recent list (default: $HOME/.lectrec)")
	root.PersistentFlags().StringVar(&e.cfg.LogLevel, "log-level", e.cfg.LogLevel, "log level: debug, info, warn or error")
	root.PersistentFlags().IntVar(&e.cfg.HistoryLimit, "history-limit", e.cfg.HistoryLimit, "undo steps kept per recording")
	root.PersistentFlags().IntVar(&e.cfg.Workers, "workers", e.cfg.Workers, "background reads and writes run at once")
	root.PersistentFlags().IntVar(&e.cfg.RecentLimit, "recent-limit", e.cfg.RecentLimit, "recently opened recordings kept")
	root.PersistentFlags().BoolVar(&e.cfg.WatchSource, "watch-source", e.cfg.WatchSource, "warn when another program modifies an open recording")

	root.AddCommand(
		newInfoCommand(e),
		newCutCommand(e),
		newExportCommand(e),
		newSplitCommand(e),
		newMoveShapeCommand(e),
		newDeletePageCommand(e),
		newImportCommand(e),
		newRecentCommand(e),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		e.log.Error("lectrec", log.Err(err))
		return 1
	}
	return 0
}
