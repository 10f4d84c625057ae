// Command mrfvalidator validates machine-readable price transparency files
// against a JSON Schema and extracts selected sections into separate files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// exitError carries the process exit status. A nil err means the failure was
// already reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error { return &exitError{code: code, err: err} }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execRootCmd(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err == nil {
		return
	}
	code := 1
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
		if ee.err == nil {
			os.Exit(code)
		}
	}
	fmt.Fprintln(os.Stderr, "mrfvalidator:", err)
	os.Exit(code)
}

type globalFlags struct {
	logFormat string
	verbose   bool
}

func execRootCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "mrfvalidator",
		Short:         "Validator for machine-readable files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug records")

	root.AddCommand(
		newValidateCmd(g),
		newProfilesCmd(),
		newRenderCmd(),
		newVersionCmd(),
	)
	return root.ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of the mrfvalidator utility",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mrfvalidator version", version)
		},
	}
}

func (g *globalFlags) logger(w io.Writer) (*slog.Logger, error) {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch g.logFormat {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", g.logFormat)
}
