// Package cli provides the command-line interface for prmptr.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/greg-randall/prmptr/internal/config"
	"github.com/greg-randall/prmptr/internal/constants"
	"github.com/greg-randall/prmptr/internal/logging"
)

// logFileWriter keeps the rotating file writer reachable so shutdown
// can close it.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // closed by CloseLogFile on shutdown

// zerologGlobalMu serializes writes to the zerolog package-level logger.
// Separate from globalLoggerMu so the two locks never nest.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // guards log.Logger

// InitLogger builds the CLI logger from the verbosity flags and the log
// section of the configuration.
//
// The level comes from --verbose (debug) or --quiet (warn); with
// neither set, the configured log.level applies and info is the
// fallback. Console output goes to stderr, pretty-printed on a TTY
// unless NO_COLOR is set, JSON otherwise.
//
// Every line is also appended to a rotating log file under log.dir
// (default ~/.prmptr/logs/prmptr.log), wrapped in the redaction filter
// so pasted API keys never reach disk. When the file cannot be opened
// the logger runs console-only.
func InitLogger(verbose, quiet bool, logCfg config.LogConfig) zerolog.Logger {
	level := selectLevel(verbose, quiet, logCfg.Level)
	console := selectOutput()

	var writer io.Writer = console
	if fileWriter, err := createLogFileWriter(logCfg); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := zerolog.New(writer).Level(level).Hook(logging.NewSensitiveDataHook()).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter builds a logger over the given writer, skipping
// the log file. Tests use this to capture output in a buffer.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	level := selectLevel(verbose, quiet, "")
	logger := zerolog.New(w).Level(level).Hook(logging.NewSensitiveDataHook()).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// setGlobalLogger points the zerolog package-level logger at the CLI
// logger, so stray log.Info() calls share its format and destinations.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

// CloseLogFile closes the rotating log file if one was opened. Called
// once on shutdown.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel picks the log level. Verbosity flags win over the
// configured level; an unset or unparsable configured level means info.
func selectLevel(verbose, quiet bool, configured string) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		if configured != "" {
			if level, err := zerolog.ParseLevel(configured); err == nil {
				return level
			}
		}
		return zerolog.InfoLevel
	}
}

// selectOutput returns the console destination: a color console writer
// when stderr is a TTY and NO_COLOR is unset, plain stderr (JSON lines)
// otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// redactingWriteCloser pairs the redaction filter with the Close method
// of the writer underneath it, since FilteringWriter itself only writes.
type redactingWriteCloser struct {
	filter *logging.FilteringWriter
	closer io.Closer
}

func (rwc *redactingWriteCloser) Write(p []byte) (n int, err error) {
	return rwc.filter.Write(p)
}

func (rwc *redactingWriteCloser) Close() error {
	return rwc.closer.Close()
}

// createLogFileWriter opens the rotating CLI log file with the rotation
// policy from the log config, behind the redaction filter.
func createLogFileWriter(logCfg config.LogConfig) (io.WriteCloser, error) {
	logDir, err := resolveLogDir(logCfg)
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(logDir, constants.CLILogFileName)

	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	maxSize := logCfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = constants.DefaultLogMaxSizeMB
	}

	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSize,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAgeDays,
		Compress:   logCfg.Compress,
	}

	return &redactingWriteCloser{
		filter: logging.NewFilteringWriter(lj),
		closer: lj,
	}, nil
}

// resolveLogDir returns the log file directory: an explicit log.dir
// wins, otherwise logs/ under the prmptr home (PRMPTR_HOME or
// ~/.prmptr, matching where the global config lives).
func resolveLogDir(logCfg config.LogConfig) (string, error) {
	if logCfg.Dir != "" {
		return logCfg.Dir, nil
	}
	home, err := config.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir), nil
}

// LogFilePath reports where the CLI log file lives for the given log
// config, without creating anything.
func LogFilePath(logCfg config.LogConfig) (string, error) {
	logDir, err := resolveLogDir(logCfg)
	if err != nil {
		return "", err
	}
	return filepath.Join(logDir, constants.CLILogFileName), nil
}
