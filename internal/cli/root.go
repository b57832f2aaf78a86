// Package cli implements the recipebox command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recipebox/internal/lockfile"
	"github.com/mesh-intelligence/recipebox/pkg/recipebox"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the logger shared by all subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "recipebox" command with global flags
// and all subcommands registered. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "recipebox",
		Short: "A personal recipe catalog",
		Long: "recipebox keeps your recipes and favorites on local disk.\n" +
			"Add, edit, search, and filter recipes by category.",
		Version:       recipebox.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.recipebox-db)")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")
	pf.BoolVar(&a.verbose, "verbose", false, "log debug events to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newFavoriteCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCategoriesCmd(a),
	)
	return root
}

// Execute runs the root command against the process arguments and exits
// with the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command tree with args and returns the exit code.
// Errors are printed to stderr.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "recipebox:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// sysError marks err as an environment failure (exit code 2).
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(format string, args ...any) error {
	return &sysError{err: fmt.Errorf(format, args...)}
}

// exitCode maps an error to a process exit code. User mistakes, including
// cobra's flag and argument errors, exit 1; storage and environment
// failures exit 2.
func exitCode(err error) int {
	var se *sysError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &se),
		errors.Is(err, types.ErrPersistence),
		errors.Is(err, lockfile.ErrLockBusy):
		return exitSysError
	default:
		return exitUserError
	}
}
