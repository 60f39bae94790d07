package db

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"okurmen-backend/internal/config"
	"okurmen-backend/internal/model"

	"gorm.io/gorm"
)

func TestShippedConfigBuildsPostgresDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")

	cfg, err := config.LoadConfig("../../config.xml")
	if err != nil {
		t.Fatal(err)
	}
	if Driver(cfg.DB.Driver) != DriverPostgres {
		t.Fatalf("driver = %q, want postgres", cfg.DB.Driver)
	}
	want := "host=localhost port=5432 user=postgres password=postgres dbname=okurmen_test sslmode=disable"
	if got := dsnFromConfig(cfg.DB); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}

func TestDSNFromConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.DBConfig
		want string
	}{
		{"explicit dsn wins", config.DBConfig{Driver: "postgres", DSN: "postgres://x", Host: "h"}, "postgres://x"},
		{"sqlite uses db name", config.DBConfig{Driver: "sqlite", Names: config.DBNames{OKURMEN: "local.db"}}, "local.db"},
		{"sqlite defaults left to Open", config.Default().DB, ""},
		{"postgres fills port and ssl", config.DBConfig{Driver: "postgres", Host: "db", Username: "u", Names: config.DBNames{OKURMEN: "n"}},
			"host=db port=5432 user=u password= dbname=n sslmode=disable"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := dsnFromConfig(tc.in); got != tc.want {
				t.Fatalf("dsn = %q, want %q", got, tc.want)
			}
		})
	}
}

type recordingWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *recordingWriter) Printf(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.lines)
}

func TestGormLoggerSkipsMissingRows(t *testing.T) {
	gdb, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := gdb.AutoMigrate(&model.TestSettings{}); err != nil {
		t.Fatal(err)
	}
	rec := &recordingWriter{}
	session := gdb.Session(&gorm.Session{Logger: newGormLogger(rec)})

	var row model.TestSettings
	err = session.Where("level = ?", model.LevelA1).First(&row).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
	if n := rec.count(); n != 0 {
		t.Fatalf("missing row logged %d lines: %v", n, rec.lines)
	}

	var n int
	if err := session.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error; err == nil {
		t.Fatal("query on a missing table succeeded")
	}
	if rec.count() == 0 {
		t.Fatal("failed statement was not logged")
	}
}
