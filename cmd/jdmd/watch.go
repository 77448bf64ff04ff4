package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/watcher"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate documentation whenever a Java source changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repoArg(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts, repo)
			if err != nil {
				return err
			}
			eng, closeEngine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer closeEngine()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			snapshot, err := generate(cmd, eng, repo)
			if err != nil {
				return err
			}
			printSummary(cmd.ErrOrStderr(), snapshot, eng.OutputDir(repo))

			skip := func(rel string, isDir bool) bool {
				return eng.Excluded(repo, rel, isDir)
			}
			debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
			w, err := watcher.New(repo, debounce, skip)
			if err != nil {
				return err
			}
			defer w.Stop()

			err = w.Start(ctx, func(files []string) {
				log.Noticef("%d files changed: %s", len(files), strings.Join(files, ", "))
				snapshot, err := generate(cmd, eng, repo)
				if err != nil {
					if ctx.Err() == nil {
						log.Errorf("%v", err)
					}
					return
				}
				log.Noticef("regenerated %d documents in %s", snapshot.Meta.DocumentCount, snapshot.Meta.Duration)
			})
			if err != nil {
				return err
			}

			<-ctx.Done()
			log.Infof("watch stopped")
			return nil
		},
	}
}
