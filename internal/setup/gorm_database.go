package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bornholm/crosspost/internal/config"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/ncruces/go-sqlite3/embed"
)

var getGormDatabaseFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*gorm.DB, error) {
	dsn := conf.Storage.Database.DSN

	if path := databasePath(dsn); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "could not create directory of database '%s'", path)
		}
	}

	dialector := gormlite.Open(dsn)

	var logLevel logger.LogLevel
	switch {
	case conf.Logger.Level <= slog.LevelInfo:
		logLevel = logger.Info
	case conf.Logger.Level <= slog.LevelWarn:
		logLevel = logger.Warn
	default:
		logLevel = logger.Error
	}

	// Queries are logged through slog, stdout being kept for the commands
	// output.
	gormLogger := logger.New(slogWriter{level: slog.LevelDebug}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	internalDB, err := db.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	internalDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA journal_mode=wal; PRAGMA foreign_keys=on; PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return db, nil
})

// databasePath returns the file path of a sqlite DSN, or an empty string
// for in-memory databases.
func databasePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}

	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}

	return path
}

type slogWriter struct {
	level slog.Level
}

func (w slogWriter) Printf(format string, args ...any) {
	slog.Log(context.Background(), w.level, "gorm", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, args...))))
}
