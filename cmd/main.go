package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"eggtimer/internal/cli"
	"eggtimer/internal/core/timekeeper"
	"eggtimer/internal/platform"
	"eggtimer/internal/storage"
	"eggtimer/resources"
)

const appName = "eggtimer"

const debugEnv = "EGGTIMER_DEBUG"

const (
	exitSuccess = 0
	// exitFailure is what a C exit(-1) turns into.
	exitFailure = 255
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	program := appName
	if len(args) > 0 {
		program = filepath.Base(args[0])
		args = args[1:]
	}

	settings, settingsPath, err := storage.LoadSettings(appName)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: ignoring settings: %v\n", err)
	}
	if os.Getenv(debugEnv) != "" {
		settings.Debug = true
	}
	logger := settings.Logger(stderr)
	if settingsPath != "" {
		logger.Printf("settings loaded from %s", settingsPath)
	}

	config, err := cli.Parse(args)
	if err != nil {
		reportConfigError(stderr, program, err)
		return exitFailure
	}

	options := timekeeper.Config{
		Stdout:        stdout,
		Stderr:        stderr,
		Logger:        logger,
		Replacer:      platform.NewProcessReplacer(),
		NotifySummary: settings.NotifySummary,
	}
	if settings.DesktopNotify {
		options.Notifier = platform.NewNotifier(appName, settings.NotifyTimeout)
	}

	keeper := timekeeper.New(config, platform.NewAlarm(), options)
	events := keeper.Subscribe(8)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range events {
			logger.Printf("%s: %s (%d seconds)", event.Type, event.State, event.Remaining)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = keeper.Run(ctx, platform.WatchToggle(ctx))
	<-drained
	if err != nil {
		var execErr *timekeeper.ExecError
		if !errors.As(err, &execErr) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitFailure
	}
	return exitSuccess
}

func reportConfigError(stderr io.Writer, program string, err error) {
	var configErr *cli.ConfigError
	if !errors.As(err, &configErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return
	}
	if configErr.Message != "" {
		fmt.Fprintf(stderr, "Error: %s\n", configErr.Message)
	}
	if configErr.Usage {
		fmt.Fprint(stderr, resources.MustUsage(program, settingsHint()))
	}
}

func settingsHint() string {
	configDir, err := platform.ConfigDir()
	if err != nil {
		return "$" + storage.ConfigEnv
	}
	return filepath.Join(configDir, appName, "settings.yaml")
}
