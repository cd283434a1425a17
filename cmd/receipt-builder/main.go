package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-builder/internal/history"
	"github.com/zombor/receipt-builder/internal/i18n"
	"github.com/zombor/receipt-builder/internal/receipt"
	"github.com/zombor/receipt-builder/internal/settings"
	"github.com/zombor/receipt-builder/internal/storage"
	"github.com/zombor/receipt-builder/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env file is fine
	_ = godotenv.Load()

	fs := ff.NewFlagSet("receipt-builder")
	var (
		addr          = fs.StringLong("addr", "127.0.0.1:8080", "HTTP listen address")
		backend       = fs.StringLong("backend", storage.BackendBolt, "Storage backend: 'bolt', 'sqlite' or 'memory'")
		dbPath        = fs.StringLong("db", "receipt-builder.db", "Database file path")
		maxImageWidth = fs.IntLong("max-image-width", 600, "Width in pixels uploaded images are shrunk to (0 keeps the original)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		_             = fs.StringLong("config", "", "Config file (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_BUILDER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.Info("Initializing storage...", "backend", *backend, "path", *dbPath)
	kv, err := storage.Open(*backend, *dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	editor := receipt.NewEditor(kv)
	historyStore := history.NewStore(kv, editor)
	settingsStore := settings.New(kv)
	locale := i18n.NewLocale()

	server := web.NewServer(web.Stores{
		Editor:   editor,
		History:  historyStore,
		Settings: settingsStore,
		Locale:   locale,
	}, web.Config{
		BasicAuth: web.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		},
		MaxImageWidth: *maxImageWidth,
	})

	settingsStore.OnLanguageChange(locale.Set)
	settingsStore.OnLanguageChange(func(code string) {
		slog.Info("Language changed", "language", code)
	})
	settingsStore.OnDarkModeChange(server.SetDarkMode)
	settingsStore.OnCurrencyChange(func(code string) {
		slog.Info("Currency changed", "currency", code)
	})
	settingsStore.Sync()

	// Start server in goroutine
	go func() {
		if err := server.Start(*addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://%s", *addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
