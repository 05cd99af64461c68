package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/rs/zerolog"
)

// backupLayout names rotated logs <file>.<timestamp>; names sort by age
const backupLayout = "20060102T150405"

// LogFile is the log file a logger writes to. Rotation happens when it is
// opened: a file past MaxSize megabytes is moved aside and backups beyond
// MaxBackups or older than MaxAge days are removed.
type LogFile struct {
	*os.File
}

// Close is a no-op on a nil LogFile
func (f *LogFile) Close() error {
	if f == nil || f.File == nil {
		return nil
	}
	return f.File.Close()
}

func openLogFile(cfg *LogConfig, now time.Time) (*LogFile, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, errors.New(ErrLogDirectoryCreationFailed, "failed to create log directory", err).AddContext("path", cfg.FilePath)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if cfg.Cleanup {
		flags |= os.O_TRUNC
	} else if err := rotateLog(cfg, now); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(cfg.FilePath, flags, 0644)
	if err != nil {
		return nil, errors.New(ErrLogFileOpenFailed, "failed to open log file", err).AddContext("path", cfg.FilePath)
	}
	return &LogFile{File: f}, nil
}

func rotateLog(cfg *LogConfig, now time.Time) error {
	if cfg.MaxSize <= 0 {
		return nil
	}
	info, err := os.Stat(cfg.FilePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.New(ErrLogFileStatFailed, "failed to stat log file", err).AddContext("path", cfg.FilePath)
	}
	if info.Size() < int64(cfg.MaxSize)<<20 {
		return nil
	}

	backup := cfg.FilePath + "." + now.Format(backupLayout)
	if err := os.Rename(cfg.FilePath, backup); err != nil {
		return errors.New(ErrLogRotationFailed, "failed to rotate log file", err).AddContext("backup", backup)
	}
	return pruneBackups(cfg, now)
}

// pruneBackups removes expired backups, then the oldest ones past MaxBackups
func pruneBackups(cfg *LogConfig, now time.Time) error {
	dir := filepath.Dir(cfg.FilePath)
	prefix := filepath.Base(cfg.FilePath) + "."
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.New(ErrLogBackupReadFailed, "failed to read log directory", err).AddContext("dir", dir)
	}

	var kept, removed []string
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok || e.IsDir() {
			continue
		}
		taken, err := time.ParseInLocation(backupLayout, suffix, now.Location())
		if err != nil {
			continue
		}
		if cfg.MaxAge > 0 && now.Sub(taken) > time.Duration(cfg.MaxAge)*24*time.Hour {
			removed = append(removed, e.Name())
			continue
		}
		kept = append(kept, e.Name())
	}
	// ReadDir returns names sorted, so kept is oldest first
	if cfg.MaxBackups > 0 && len(kept) > cfg.MaxBackups {
		removed = append(removed, kept[:len(kept)-cfg.MaxBackups]...)
	}

	for _, name := range removed {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return errors.New(ErrLogBackupRemoveFailed, "failed to remove old log backup", err).AddContext("backup", name)
		}
	}
	return nil
}

// SetupLogger creates the process logger. The returned LogFile is nil unless
// FilePath is set; the caller closes it.
func SetupLogger(cfg *LogConfig) (zerolog.Logger, *LogFile, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.Console {
		if cfg.Format == "json" {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		}
	}

	var file *LogFile
	if cfg.FilePath != "" {
		file, err = openLogFile(cfg, time.Now())
		if err != nil {
			return zerolog.Logger{}, nil, errors.New(ErrLogFileWriterSetupFailed, "failed to setup file writer", err)
		}
		// files always get JSON lines
		writers = append(writers, file)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "metacat").
		Logger()
	return logger, file, nil
}
