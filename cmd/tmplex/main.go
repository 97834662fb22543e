package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	apply_edit "github.com/walteh/tmplex/cmd/tmplex/apply-edit"
	get_diagnostics "github.com/walteh/tmplex/cmd/tmplex/get-diagnostics"
	get_semantic_tokens "github.com/walteh/tmplex/cmd/tmplex/get-semantic-tokens"
	get_tokens "github.com/walteh/tmplex/cmd/tmplex/get-tokens"
	tdebug "github.com/walteh/tmplex/pkg/debug"
	"github.com/walteh/tmplex/pkg/project"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	flags := &project.Flags{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "tmplex",
		Short:         "A lexer for documents with embedded languages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.Register(rootCmd.PersistentFlags())

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return errors.Errorf("parsing log level: %w", err)
		}
		color := isatty.IsTerminal(os.Stderr.Fd())
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !color}).
			Level(level).
			Hook(tdebug.TimeHook{}).
			Hook(tdebug.CallerHook{WithColor: color})
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(get_tokens.NewTokensCommand(flags))
	rootCmd.AddCommand(get_diagnostics.NewDiagnosticsCommand(flags))
	rootCmd.AddCommand(get_semantic_tokens.NewSemtokCommand(flags))
	rootCmd.AddCommand(apply_edit.NewRelexCommand(flags))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
