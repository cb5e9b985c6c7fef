package filesystem

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
)

// FsLogger logs the operations modifying the wrapped filesystem. Read
// operations are passed through.
type FsLogger struct {
	afero.Fs
	ctx   context.Context
	level slog.Level
}

func (l *FsLogger) log(op string, attrs ...any) {
	slog.Log(l.ctx, l.level, "fs."+op, attrs...)
}

// Chmod implements afero.Fs.
func (l *FsLogger) Chmod(name string, mode os.FileMode) error {
	l.log("chmod", slog.String("name", name), slog.Any("mode", mode))
	return l.Fs.Chmod(name, mode)
}

// Chtimes implements afero.Fs.
func (l *FsLogger) Chtimes(name string, atime time.Time, mtime time.Time) error {
	l.log("chtimes", slog.String("name", name), slog.Time("mtime", mtime))
	return l.Fs.Chtimes(name, atime, mtime)
}

// Create implements afero.Fs.
func (l *FsLogger) Create(name string) (afero.File, error) {
	l.log("create", slog.String("name", name))
	return l.Fs.Create(name)
}

// Mkdir implements afero.Fs.
func (l *FsLogger) Mkdir(name string, perm os.FileMode) error {
	l.log("mkdir", slog.String("name", name), slog.Any("perm", perm))
	return l.Fs.Mkdir(name, perm)
}

// MkdirAll implements afero.Fs.
func (l *FsLogger) MkdirAll(path string, perm os.FileMode) error {
	l.log("mkdirAll", slog.String("path", path), slog.Any("perm", perm))
	return l.Fs.MkdirAll(path, perm)
}

// OpenFile implements afero.Fs.
func (l *FsLogger) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		l.log("openFile", slog.String("name", name), slog.Int("flag", flag), slog.Any("perm", perm))
	}
	return l.Fs.OpenFile(name, flag, perm)
}

// Remove implements afero.Fs.
func (l *FsLogger) Remove(name string) error {
	l.log("remove", slog.String("name", name))
	return l.Fs.Remove(name)
}

// RemoveAll implements afero.Fs.
func (l *FsLogger) RemoveAll(path string) error {
	l.log("removeAll", slog.String("path", path))
	return l.Fs.RemoveAll(path)
}

// Rename implements afero.Fs.
func (l *FsLogger) Rename(oldname string, newname string) error {
	l.log("rename", slog.String("oldname", oldname), slog.String("newname", newname))
	return l.Fs.Rename(oldname, newname)
}

func NewLogger(ctx context.Context, fs afero.Fs, level slog.Level) *FsLogger {
	return &FsLogger{
		Fs:    fs,
		ctx:   ctx,
		level: level,
	}
}

var _ afero.Fs = &FsLogger{}
