package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/rigkit/internal/messages"
)

// newLogger builds the text logger shared by every command. Logs go to stderr
// without timestamps, or to file with them. quiet raises the level to error.
// The returned close function releases the log file.
func newLogger(level string, file string, quiet bool, stderr io.Writer) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	if quiet && lvl < slog.LevelError {
		lvl = slog.LevelError
	}

	out := stderr
	closeFn := func() {}
	dropTime := true
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, closeFn, fmt.Errorf(messages.LogOpenFileFmt, file, err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf(messages.LogOpenFileFmt, file, err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
		dropTime = false
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if dropTime && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(handler), closeFn, nil
}
