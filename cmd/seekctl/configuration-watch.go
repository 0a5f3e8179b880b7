package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
)

// configurationWatchCmd represents the configuration watch command
var configurationWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Apply the configuration file whenever it changes",
	Long: `Watch the configuration file and apply it to the running server each
time it is written. A change that fails validation is reported and not
applied.

The directory holding the file is watched so that editors replacing the
file are noticed too.

Example:
  seekctl configuration watch`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchConfiguration(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationWatchCmd)
}

// settle absorbs the burst of events a single save produces
const settle = 500 * time.Millisecond

func watchConfiguration() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	path := cfg.ConfigFilePath()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	logging.Log.WithField("file", path).Info("Watching configuration")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(settle)
			}
		case <-pending:
			pending = nil
			applyChangedConfiguration()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Log.WithError(err).Error("Watcher error")
		case <-sigChan:
			return nil
		}
	}
}

func applyChangedConfiguration() {
	if _, err := validateConfiguration(); err != nil {
		logging.Log.WithError(err).Error("Configuration changed but is invalid, not applying")
		return
	}
	pids, err := signalServer(syscall.SIGHUP)
	if err != nil {
		logging.Log.WithError(err).Warn("Configuration changed")
		return
	}
	logging.Log.WithField("pids", pids).Info("Configuration applied")
}
