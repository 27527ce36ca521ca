// Copyright © 2024 Mutker Telag <witty.text5011@fastmail.com>
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/speedometer/internal/config"
	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/logger"
)

const usage = `Usage: speedometer <command> [flags]

Commands:
  render   Run the gauge headless and write the final frame as PNG or SVG
  watch    Follow a live value source and keep the output file current
  preview  Show the gauge in the terminal
  trace    Print the most recently recorded frames

Run "speedometer <command> --help" for the flags of a command.
`

type command func(ctx context.Context, args []string) error

var commands = map[string]command{
	"render":  runRender,
	"watch":   runWatch,
	"preview": runPreview,
	"trace":   runTrace,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	name := os.Args[1]
	if name == "-h" || name == "--help" || name == "help" {
		fmt.Fprint(os.Stdout, usage)
		return
	}

	cmd, ok := commands[name]
	if !ok {
		err := errors.New().WithData(errors.ErrUnknownCommand, name)
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		os.Exit(2)
	}

	// Commands re-initialize at the configured level once config is loaded.
	if err := logger.Init(config.DefaultLogLevel, logger.IsService()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := cmd(ctx, os.Args[2:]); err != nil {
		var coded errors.Error
		if errors.As(err, &coded) {
			logger.ErrorWithCode(coded).Msg("Command failed")
		} else {
			logger.Error().Err(err).Msg("Command failed")
		}
		cancel()
		os.Exit(1)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
