package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insightdelivered/statement-extractor/internal/api"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/extract"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/institutions"
	"github.com/insightdelivered/statement-extractor/internal/securities"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const version = "2.0.0"

func main() {
	configFlag := flag.String("config", "", "Path to YAML config file (optional)")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	outputFlag := flag.String("output", "", "Output CSV path (defaults to input filename with .csv extension)")
	workersFlag := flag.Int("workers", 0, "Parallel document workers (overrides config)")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement Extractor
by Insight Delivered

Converts brokerage account statements (PDF or plain text) into typed
transaction records using declarative per-institution extraction rules.

Usage:
  statement-extractor [flags] <statement.pdf|statement.txt> [more files ...]
  statement-extractor -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a statement to CSV
  statement-extractor statement.pdf

  # Convert several statements in parallel
  statement-extractor -workers=4 jan.pdf feb.pdf mar.pdf

  # Run the HTTP API
  statement-extractor -serve -addr=:8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Config error: %v\n", err)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	if *workersFlag > 0 {
		cfg.Workers = *workersFlag
	}

	log := newLogger(cfg.LogJSON)
	defer log.Sync()

	registry := securities.NewMemRegistry()
	engine := extract.New(institutions.All(registry), extract.WithLogger(log))

	if *serveFlag {
		serve(engine, log, cfg.Addr)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if err := convertFiles(engine, cfg, flag.Args(), *outputFlag); err != nil {
		fatalf("Error: %v\n", err)
	}
}

func serve(engine *extract.Engine, log *zap.SugaredLogger, addr string) {
	app := fiber.New(fiber.Config{
		AppName:   "statement-extractor",
		BodyLimit: 32 << 20,
	})
	h := &api.Handler{Engine: engine, Log: log}
	h.Register(app)

	log.Infow("listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		fatalf("Server error: %v\n", err)
	}
}

func convertFiles(engine *extract.Engine, cfg config.Config, paths []string, outputPath string) error {
	docs := make([]*extract.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	results, err := engine.ExtractAll(context.Background(), docs, cfg.Workers)
	if err != nil {
		return err
	}

	w := &writer.CSVWriter{IncludeFailures: cfg.IncludeFailures}
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", res.Doc.Source, res.Err)
			continue
		}

		outPath := outputPath
		if outPath == "" || len(results) > 1 {
			base := strings.TrimSuffix(paths[i], filepath.Ext(paths[i]))
			outPath = base + ".csv"
		}
		if err := w.WriteToFile(outPath, res.Items); err != nil {
			return err
		}

		failures := 0
		for _, item := range res.Items {
			if item.Failed() {
				failures++
			}
		}
		fmt.Printf("%s: %d transaction(s), %d failed block(s) -> %s\n",
			res.Doc.Source, len(res.Items)-failures, failures, outPath)
	}
	return nil
}

func readDocument(path string) (*extract.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err := extractor.ExtractText(path)
		if err != nil {
			return nil, err
		}
		return extract.NewDocument(filepath.Base(path), strings.Join(pages, "\n")), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return extract.NewDocument(filepath.Base(path), string(data)), nil
	}
}

func newLogger(jsonOutput bool) *zap.SugaredLogger {
	if jsonOutput {
		log, err := zap.NewProduction()
		if err != nil {
			fatalf("Logger error: %v\n", err)
		}
		return log.Sugar()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		fatalf("Logger error: %v\n", err)
	}
	return log.Sugar()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
