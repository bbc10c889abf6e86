// Command ipngconv converts CgBI PNG files, as found in iOS application bundles, into standard
// PNG files.
//
//	ipngconv [flags] SOURCE TARGET
//
// SOURCE is a .png file or a directory that is searched recursively for .png files. Converted
// files keep their path relative to SOURCE below TARGET.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/928799934/cgbi-png-fix/internal/config"
	"github.com/928799934/cgbi-png-fix/internal/log"
	"github.com/928799934/cgbi-png-fix/internal/walk"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, err := newRootCmd(stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	cmd := &cobra.Command{
		Use:   "ipngconv [flags] SOURCE TARGET",
		Short: "Convert iOS CgBI PNG files into standard PNG files.",
		Long: "Convert iOS CgBI PNG files into standard PNG files.\n\n" +
			"SOURCE is a .png file or a directory searched recursively for .png files. " +
			"Files that are not CgBI are left alone unless --copy-plain is given.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cmd.Context(), cfg, args[0], args[1], stderr)
		},
	}
	cfg.BindFlags(cmd.Flags())
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd, nil
}

func convert(ctx context.Context, cfg config.Config, source, target string, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := cfg.ZapLevel()
	if err != nil {
		return err
	}
	logger, err := log.New(stderr, level, log.Format(cfg.LogFormat))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	ctx = log.Child(log.AddLogger(ctx, logger), "ipngconv")

	w := &walk.Walker{
		Source:    source,
		Target:    target,
		Workers:   cfg.Workers,
		Level:     cfg.Level,
		CopyPlain: cfg.CopyPlain,
		Strict:    cfg.Strict,
	}
	report, err := w.Run(ctx)
	log.Info(ctx, "done",
		zap.Int("converted", len(report.Converted)),
		zap.Int("copied", len(report.Copied)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)))
	return errors.Wrapf(err, "convert %s", source)
}
