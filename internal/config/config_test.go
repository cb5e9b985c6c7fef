package config

import (
	"log/slog"
	"testing"

	"github.com/pkg/errors"
)

func TestParse(t *testing.T) {
	t.Setenv("CROSSPOST_LOGGER_LEVEL", "debug")
	t.Setenv("CROSSPOST_STORAGE_DATABASE_DSN", "history.sqlite")
	t.Setenv("CROSSPOST_PREVIEW_LENGTH", "120")
	t.Setenv("CROSSPOST_CATALOG", "catalog.yaml")

	conf, err := Parse()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := slog.LevelDebug, conf.Logger.Level; e != g {
		t.Errorf("conf.Logger.Level: expected '%v', got '%v'", e, g)
	}

	if e, g := "history.sqlite", conf.Storage.Database.DSN; e != g {
		t.Errorf("conf.Storage.Database.DSN: expected '%v', got '%v'", e, g)
	}

	if e, g := 120, conf.Preview.Length; e != g {
		t.Errorf("conf.Preview.Length: expected '%v', got '%v'", e, g)
	}

	if e, g := "catalog.yaml", conf.Catalog; e != g {
		t.Errorf("conf.Catalog: expected '%v', got '%v'", e, g)
	}

	if e, g := "", conf.Metrics.Textfile; e != g {
		t.Errorf("conf.Metrics.Textfile: expected '%v', got '%v'", e, g)
	}
}
