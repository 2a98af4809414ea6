package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/binstall/internal/cmd"
	"github.com/quantmind-br/binstall/internal/config"
	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/logging"
	"github.com/quantmind-br/binstall/internal/ui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, logging.Stderr())
	stop()
	os.Exit(code)
}

// run executes the root command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return core.ExitGeneral
	}

	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		Color:   cfg.Logging.Color,
	})
	ui.InitColors(cfg.Logging.Color)

	rootCmd := cmd.NewRootCmd(cfg, log, version)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := core.ExitCode(err)
		log.Debug().Err(err).Str("stage", string(core.StageOf(err))).Int("exit_code", code).Msg("command failed")
		ui.PrintError(stderr, "%v", err)
		return code
	}
	return core.ExitSuccess
}
