package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/terminal"
)

// session is the per-command state resolved from settings and global flags.
type session struct {
	dir      string
	settings config.Settings
	log      *slog.Logger
	close    func()
	yes      bool
	quiet    bool
	color    bool
}

// openSession loads settings in precedence order: the settings file, then
// .rigkit/.env, then RIGKIT_ process variables, then changed flags applied by
// override. The .rigkit directory is searched upward from the working
// directory. The result is validated before the logger is built.
func openSession(cmd *cobra.Command, override func(s *config.Settings) error) (*session, error) {
	dir, err := getwd()
	if err != nil {
		return nil, err
	}
	settingsRoot, found, err := config.FindRoot(dir)
	if err != nil {
		return nil, err
	}
	if !found {
		settingsRoot = dir
	}
	paths := config.DefaultPaths(settingsRoot)

	cfgPath, _ := cmd.Flags().GetString(flagConfig)
	if cfgPath == "" {
		cfgPath = paths.ConfigPath()
	} else {
		cfgPath = resolve(dir, cfgPath)
	}
	s, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	env, err := config.LoadEnv(paths.EnvPath)
	if err != nil {
		return nil, err
	}
	for k, v := range config.ProcessEnv() {
		env[k] = v
	}
	if s, err = s.ApplyEnv(env); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed(flagLogLevel) {
		s.LogLevel, _ = flags.GetString(flagLogLevel)
	}
	if flags.Changed(flagLogFile) {
		s.LogFile, _ = flags.GetString(flagLogFile)
	}
	if override != nil {
		if err := override(&s); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.OutputDir = resolve(dir, s.OutputDir)
	s.LogFile = resolve(dir, s.LogFile)

	quiet, _ := flags.GetBool(flagQuiet)
	yes, _ := flags.GetBool(flagYes)
	noColor, _ := flags.GetBool(flagNoColor)

	logger, closeLog, err := newLogger(s.LogLevel, s.LogFile, quiet, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &session{
		dir:      dir,
		settings: s,
		log:      logger,
		close:    closeLog,
		yes:      yes,
		quiet:    quiet,
		color:    !noColor && colorAllowed(cmd.OutOrStdout()),
	}, nil
}

// colorAllowed reports whether w is a terminal and NO_COLOR is unset.
func colorAllowed(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return terminal.IsTerminal(w)
}

// confirm asks before a destructive step unless --yes was given.
func (s *session) confirm(title string) (bool, error) {
	if s.yes {
		return true, nil
	}
	return newConfirmer().Confirm(title)
}

// resolve anchors a relative path at dir. Empty and home-relative paths are
// left for the config loader.
func resolve(dir string, path string) string {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "~") {
		return path
	}
	return filepath.Join(dir, path)
}

// path resolves a command argument against the working directory.
func (s *session) path(arg string) string {
	return resolve(s.dir, arg)
}
