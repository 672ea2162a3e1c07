package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/adapters/firestore"
	"github.com/ideamans/excelview/adapters/sqlite"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// app carries the I/O streams and configuration shared by all commands
type app struct {
	v          *viper.Viper
	configFile string
	settings   *settings
	logger     excelview.Logger

	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		v:      newViper(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "excelview",
		Short:         "Import spreadsheets into a per-user table store and browse them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// preview and version work without any store configuration
			if cmd.Annotations["store"] != "true" {
				a.logger = newLogger(a.errOut, a.v.GetString(cfgKeyLogLevel))
				return nil
			}

			s, err := loadSettings(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.settings = s
			a.logger = newLogger(a.errOut, s.LogLevel)
			return nil
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml)")
	flags.String("backend", "", "store backend: firestore or sqlite (env EXCELVIEW_BACKEND)")
	flags.String("uid", "", "user id owning the files (env EXCELVIEW_UID)")
	flags.String("sqlite-path", "", "database file for the sqlite backend (env EXCELVIEW_SQLITE_PATH)")
	flags.String("log-level", "", "debug, info, warn or error (env EXCELVIEW_LOG_LEVEL)")
	for key, name := range map[string]string{
		cfgKeyBackend:    "backend",
		cfgKeyUID:        "uid",
		cfgKeySQLitePath: "sqlite-path",
		cfgKeyLogLevel:   "log-level",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newVersionCmd(),
		newPreviewCmd(a),
		newUploadCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)
	return root
}

// storeCommand marks cmd as needing store settings
func storeCommand(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["store"] = "true"
	return cmd
}

// openEngine connects to the configured backend. The caller must close the returned store.
func (a *app) openEngine(ctx context.Context) (*excelview.Engine, excelview.Store, error) {
	s := a.settings

	var (
		store excelview.Store
		err   error
	)
	switch s.Backend {
	case backendSQLite:
		store, err = sqlite.New(&sqlite.Config{Path: s.SQLitePath})
	case backendFirestore:
		store, err = firestore.NewWithCredentials(ctx, s.Firebase)
	default:
		err = fmt.Errorf("unknown backend %q", s.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	a.logger.Debug("store opened", "backend", s.Backend)
	return excelview.New(store, s.engineConfig(), a.logger), store, nil
}

// newLogger builds a text logger on w at the named level
func newLogger(w io.Writer, level string) excelview.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return excelview.NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})))
}

// describeError turns an error into the message shown to the user
func describeError(err error) string {
	switch {
	case errors.Is(err, excelview.ErrAuthRequired):
		return "you must be signed in: set --uid or EXCELVIEW_UID"
	case errors.Is(err, excelview.ErrEmptySheet):
		return "the selected sheet is empty"
	case errors.Is(err, excelview.ErrUnreadableFile):
		return fmt.Sprintf("%v (is it a valid .xls or .xlsx file?)", err)
	case excelview.IsPermissionDenied(err):
		return fmt.Sprintf("permission denied by the store: %v", err)
	case errors.Is(err, excelview.ErrFileNotFound):
		return fmt.Sprintf("file not found: %v", err)
	}
	return err.Error()
}
