// Package config reads the service settings from flags and SKILLCHECK_*
// environment variables. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aswearingen91/skillcheck/internal/render"
	"github.com/aswearingen91/skillcheck/internal/steg"
)

// DefaultRegion is the strip along the bottom edge that exports use.
const DefaultRegion = `{"bottom":"0px","left":"0px","width":"100%","height":"16px"}`

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	Storage       string // "disk" or "imgur"
	DataDir       string
	PublicURL     string
	ImgurClientID string
	ImgurAPI      string

	Compression steg.Compression
	Region      steg.Region
	Theme       render.Config
}

// Load parses args (without the program name). getenv supplies defaults;
// pass os.Getenv in production.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv("SKILLCHECK_" + key); v != "" {
			return v
		}
		return def
	}
	theme := render.DefaultConfig()

	fs := flag.NewFlagSet("skillcheck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		addr         = fs.String("addr", env("ADDR", ":8080"), "listen address")
		readTimeout  = fs.String("read-timeout", env("READ_TIMEOUT", "15s"), "HTTP read timeout")
		writeTimeout = fs.String("write-timeout", env("WRITE_TIMEOUT", "60s"), "HTTP write timeout")
		logLevel     = fs.String("log-level", env("LOG_LEVEL", "info"), "debug, info, warn or error")
		logFormat    = fs.String("log-format", env("LOG_FORMAT", "text"), "text or json")
		storage      = fs.String("storage", env("STORAGE", "disk"), "disk or imgur")
		dataDir      = fs.String("data-dir", env("DATA_DIR", "data"), "image directory for disk storage")
		publicURL    = fs.String("public-url", env("PUBLIC_URL", "http://localhost:8080"), "base URL of this service")
		imgurID      = fs.String("imgur-client-id", env("IMGUR_CLIENT_ID", ""), "Imgur API client ID")
		imgurAPI     = fs.String("imgur-api", env("IMGUR_API", "https://api.imgur.com"), "Imgur API base URL")
		compression  = fs.String("compression", env("COMPRESSION", "gzip"), "none, gzip, zstd or flate")
		region       = fs.String("region", env("REGION", DefaultRegion), "JSON region that exports are hidden in")
		background   = fs.String("background", env("BACKGROUND", theme.Background), "export background colour")
		card         = fs.String("card", env("CARD", theme.Card), "export card colour")
		text         = fs.String("text", env("TEXT", theme.Text), "export text colour")
		columns      = fs.String("columns", env("COLUMNS", ""), "export column count (default 4)")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("config: unexpected arguments %q", fs.Args())
	}

	cfg := Config{
		Addr:          *addr,
		LogFormat:     strings.ToLower(*logFormat),
		Storage:       strings.ToLower(*storage),
		DataDir:       *dataDir,
		PublicURL:     strings.TrimSuffix(*publicURL, "/"),
		ImgurClientID: *imgurID,
		ImgurAPI:      strings.TrimSuffix(*imgurAPI, "/"),
		Theme:         theme,
	}
	var errs []error
	var err error
	if cfg.ReadTimeout, err = time.ParseDuration(*readTimeout); err != nil {
		errs = append(errs, fmt.Errorf("read-timeout: %w", err))
	}
	if cfg.WriteTimeout, err = time.ParseDuration(*writeTimeout); err != nil {
		errs = append(errs, fmt.Errorf("write-timeout: %w", err))
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log-level: %w", err))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log-format: %q is not text or json", *logFormat))
	}
	switch cfg.Storage {
	case "disk":
	case "imgur":
		if cfg.ImgurClientID == "" {
			errs = append(errs, errors.New("imgur-client-id: required for imgur storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage: %q is not disk or imgur", *storage))
	}
	if cfg.Compression, err = steg.ParseCompression(*compression); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}
	if cfg.Region, err = steg.ParseRegion([]byte(*region)); err != nil {
		errs = append(errs, fmt.Errorf("region: %w", err))
	}

	cfg.Theme.Background, cfg.Theme.Card, cfg.Theme.Text = *background, *card, *text
	if *columns != "" {
		n, err := strconv.Atoi(*columns)
		if err != nil {
			errs = append(errs, fmt.Errorf("columns: %w", err))
		} else {
			cfg.Theme.NumColumns = n
		}
	}
	if err := cfg.Theme.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
