package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lex00/logging-config-go/internal/lint"
	"github.com/lex00/logging-config-go/internal/pipeline"
)

// newWatchCmd creates the "watch" subcommand for re-applying on file changes.
func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the settings when the service or template changes",
		Long: `Watch monitors the service definition and the compiled template and
re-runs apply whenever either changes.

The watch command:
- Re-reads both files from disk on each change
- Runs a full, fresh lifecycle, so permissions are never appended twice
- Lints the result
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    logging-config watch --template template.json -o out.json
    logging-config watch --template template.json -o out.yaml --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "serverless.yml", "Service definition holding the settings")
	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "Compiled CloudFormation template (required)")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (required)")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "", "Output format: json or yaml (default: from --output extension)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

type watchOptions struct {
	configPath   string
	templatePath string
	outputFile   string
	outputFormat string
	debounce     time.Duration
}

// runWatch monitors the input files and re-applies on changes.
func runWatch(opts watchOptions) error {
	watched, err := watchedFiles(opts.configPath, opts.templatePath)
	if err != nil {
		return err
	}
	if out, err := filepath.Abs(opts.outputFile); err == nil && watched[out] {
		return fmt.Errorf("output %s must differ from the watched inputs", opts.outputFile)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Watch the directories: editors often replace files instead of writing them.
	for _, dir := range watchedDirs(watched) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logrus.WithField("dir", dir).Info("Watching")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logrus.Info("Running initial apply")
	runWatchApply(opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	logrus.Info("Watching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevantEvent(event, watched) {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			logrus.Info("Change detected, re-applying")
			runWatchApply(opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("Watch error")

		case <-sigChan:
			logrus.Info("Stopping watch")
			return nil
		}
	}
}

// watchedFiles returns the absolute input paths as a set.
func watchedFiles(paths ...string) (map[string]bool, error) {
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		files[abs] = true
	}
	return files, nil
}

// watchedDirs returns the distinct parent directories of the watched files.
func watchedDirs(files map[string]bool) []string {
	seen := make(map[string]bool)
	var dirs []string
	for f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// isRelevantEvent reports whether the event touches a watched file.
func isRelevantEvent(event fsnotify.Event, watched map[string]bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return watched[abs]
}

// runWatchApply loads fresh inputs, applies, writes the output and lints it.
// Errors are logged; the watch keeps running.
func runWatchApply(opts watchOptions) {
	format, err := outputFormat(opts.outputFormat, opts.outputFile)
	if err != nil {
		logrus.WithError(err).Error("Apply failed")
		return
	}

	in, err := pipeline.Load(pipeline.Options{
		ConfigPath:   opts.configPath,
		TemplatePath: opts.templatePath,
	})
	if err != nil {
		logrus.WithError(err).Error("Apply failed")
		return
	}

	if _, err := pipeline.Apply(in); err != nil {
		logrus.WithError(err).Error("Apply failed")
		return
	}

	if err := writeTemplate(in, opts.outputFile, format); err != nil {
		logrus.WithError(err).Error("Apply failed")
		return
	}
	logrus.WithField("path", opts.outputFile).Info("Wrote template")

	res := lint.Check(in.Template, in.Settings())
	for _, issue := range res.Issues {
		logrus.WithFields(logrus.Fields{
			"rule":     issue.Rule,
			"resource": issue.Resource,
		}).Warn(issue.Message)
	}
}
