package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/invoice-analyzer/internal/invoice"
	"github.com/zombor/invoice-analyzer/internal/scanning"
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

	fs := ff.NewFlagSet("invoice-analyzer")
	var (
		port          = fs.IntLong("port", 5000, "HTTP server port")
		storeType     = fs.StringLong("store", "json", "Invoice store: 'json' or 'bolt'")
		dataPath      = fs.StringLong("data", "data/invoices.json", "JSON invoice file path (json store)")
		dbPath        = fs.StringLong("db", "data/invoices.db", "Database file path (bolt store)")
		scannerType   = fs.StringLong("scanner", "tesseract", "OCR engine: 'tesseract', 'gosseract', 'gemini' or 'ollama'")
		tesseractPath = fs.StringLong("tesseract-path", "tesseract", "Path to the tesseract binary")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2.5vl, minicpm-v)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_ANALYZER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Initialize store
	slog.Info("Initializing store...", "type", *storeType)
	var (
		store invoice.Store
		err   error
	)
	switch *storeType {
	case "json":
		store, err = invoice.NewJSONStore(*dataPath)
	case "bolt":
		store, err = invoice.NewBoltStore(*dbPath)
	default:
		slog.Error("Invalid store type", "type", *storeType, "valid", "json or bolt")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	scanner, err := newScanner(*scannerType, scannerOptions{
		tesseractPath: *tesseractPath,
		tesseractLang: *tesseractLang,
		geminiKey:     *geminiKey,
		geminiModel:   *geminiModel,
		ollamaURL:     *ollamaURL,
		ollamaModel:   *ollamaModel,
	})
	if err != nil {
		slog.Error("Failed to initialize scanner", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	invoiceService := invoice.NewService(store, scanner)

	basicAuth := invoice.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := invoice.NewServer(invoiceService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

type scannerOptions struct {
	tesseractPath string
	tesseractLang string
	geminiKey     string
	geminiModel   string
	ollamaURL     string
	ollamaModel   string
}

// newScanner builds the configured OCR engine
func newScanner(scannerType string, opts scannerOptions) (scanning.Scanner, error) {
	switch scannerType {
	case "tesseract":
		slog.Info("Initializing Tesseract scanner...", "binary", opts.tesseractPath, "lang", opts.tesseractLang)
		return scanning.NewTesseract(opts.tesseractPath, opts.tesseractLang)
	case "gosseract":
		// Only available in binaries built with -tags gosseract
		slog.Info("Initializing embedded Tesseract scanner...", "lang", opts.tesseractLang)
		return scanning.NewGosseract(opts.tesseractLang)
	case "gemini":
		apiKey := opts.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", opts.geminiModel)
		return scanning.NewGemini(apiKey, opts.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", opts.ollamaURL, "model", opts.ollamaModel)
		return scanning.NewOllama(opts.ollamaURL, opts.ollamaModel)
	default:
		return nil, fmt.Errorf("invalid scanner type %q: want tesseract, gosseract, gemini or ollama", scannerType)
	}
}
