package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aswearingen91/skillcheck/internal/steg"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, envMap(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.ReadTimeout != 15*time.Second || cfg.WriteTimeout != time.Minute {
		t.Fatalf("server settings %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Fatalf("log settings %v %s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Storage != "disk" || cfg.Compression != steg.CompressGzip {
		t.Fatalf("storage=%s compression=%s", cfg.Storage, cfg.Compression)
	}
	a, err := steg.ResolveArea(200, 100, cfg.Region)
	if err != nil {
		t.Fatal(err)
	}
	if a != (steg.Area{Top: 84, Left: 0, Width: 200, Height: 16}) {
		t.Fatalf("default region resolves to %+v", a)
	}
}

func TestLoad_EnvAndFlags(t *testing.T) {
	env := envMap(map[string]string{
		"SKILLCHECK_ADDR":        ":9000",
		"SKILLCHECK_LOG_LEVEL":   "debug",
		"SKILLCHECK_COMPRESSION": "zstd",
		"SKILLCHECK_BACKGROUND":  "#111111",
	})
	cfg, err := Load([]string{"-addr", ":9100", "-log-format", "json", "-columns", "2"}, env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("flag did not win over env: %s", cfg.Addr)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Fatalf("log %v %s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Compression != steg.CompressZstd || cfg.Theme.Background != "#111111" || cfg.Theme.NumColumns != 2 {
		t.Fatalf("%+v", cfg)
	}
}

func TestLoad_ColumnsFromEnv(t *testing.T) {
	cfg, err := Load(nil, envMap(map[string]string{"SKILLCHECK_COLUMNS": "3"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme.NumColumns != 3 {
		t.Fatalf("NumColumns = %d, want 3", cfg.Theme.NumColumns)
	}

	cfg, err = Load([]string{"-columns", "2"}, envMap(map[string]string{"SKILLCHECK_COLUMNS": "3"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme.NumColumns != 2 {
		t.Fatalf("flag did not win over env: %d", cfg.Theme.NumColumns)
	}

	if _, err := Load(nil, envMap(map[string]string{"SKILLCHECK_COLUMNS": "many"})); err == nil {
		t.Fatal("bad SKILLCHECK_COLUMNS accepted")
	}
}

func TestLoad_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"bad_storage", []string{"-storage", "s3"}, "storage"},
		{"imgur_without_id", []string{"-storage", "imgur"}, "imgur-client-id"},
		{"bad_region", []string{"-region", `{"height":16}`}, "region"},
		{"bad_compression", []string{"-compression", "lz4"}, "compression"},
		{"bad_colour", []string{"-card", "blue"}, "card colour"},
		{"bad_timeout", []string{"-read-timeout", "soon"}, "read-timeout"},
		{"bad_columns", []string{"-columns", "four"}, "columns"},
		{"unknown_flag", []string{"-nope"}, "nope"},
		{"positional", []string{"extra"}, "unexpected"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args, envMap(nil))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want mention of %q", err, tc.want)
			}
		})
	}
}
