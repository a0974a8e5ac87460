package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"productsim/internal/config"
	"productsim/internal/container"
	"productsim/matching"
	"productsim/server"
	"productsim/server/services"
)

func main() {
	var (
		inputPath    = flag.String("input", "", "Path to records file (JSON array or CSV)")
		format       = flag.String("format", "", "Input format: json or csv (default: by file extension)")
		configPath   = flag.String("config", "", "Path to YAML config file")
		minFrequency = flag.Int("min-frequency", 0, "Drop records with frequency below this value (0: from config)")
		sampleSize   = flag.Int("sample-size", -1, "Keep only the N most frequent records (-1: from config)")
		duplicate    = flag.Float64("duplicate-threshold", 0, "Duplicate tier threshold (0: from config)")
		similar      = flag.Float64("similar-threshold", 0, "Similar tier threshold (0: from config)")
		xlsxPath     = flag.String("xlsx", "", "Write groups to an Excel file")
		noEmbeddings = flag.Bool("no-embeddings", false, "Disable embedding backends")
		train        = flag.Bool("train", false, "Train a model on the stored corpus before matching")
		calibrated   = flag.Bool("calibrated", false, "Derive tier thresholds from the trained model's F1-optimal threshold")
		learnBrands  = flag.Bool("learn-brands", false, "Learn brand names from the input descriptions before matching")
		brandMinOcc  = flag.Int("brand-min-occurrences", 0, "Minimum occurrences for a learned brand (0: default)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: match_products -input <records.json|records.csv> [-format json|csv] [-config <path>] [-xlsx <out.xlsx>]")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *noEmbeddings {
		cfg.EmbeddingEnabled = false
	}

	// В stdout пишется только результат, журнал уходит в stderr
	logger := server.NewLoggerTo(os.Stderr, cfg.SlogLevel())

	records, err := readRecords(*inputPath, *format)
	if err != nil {
		log.Fatalf("Failed to read records: %v", err)
	}

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *train {
		report, err := c.TrainingService.Train(ctx, services.TrainRequest{Validate: true})
		if err != nil {
			log.Fatalf("Training failed: %v", err)
		}
		logger.Info("model trained", "version", report.ModelVersion, "f1", report.F1)
	}

	if *learnBrands {
		if err := learnInputBrands(ctx, c.NormalizationService, records, *brandMinOcc, logger); err != nil {
			log.Fatalf("Brand learning failed: %v", err)
		}
	}

	req := services.MatchRequest{Records: records, UseCalibratedThreshold: *calibrated}
	if *minFrequency > 0 {
		req.MinFrequency = minFrequency
	}
	if *sampleSize >= 0 {
		req.SampleSize = sampleSize
	}
	if *duplicate > 0 {
		req.DuplicateThreshold = duplicate
	}
	if *similar > 0 {
		req.SimilarThreshold = similar
	}

	resp, err := c.MatchingService.Match(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Fatalf("Matching interrupted")
		}
		log.Fatalf("Matching failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}

	if *xlsxPath != "" {
		if err := matching.ExportXLSX(resp.Result, *xlsxPath); err != nil {
			log.Fatalf("Failed to export XLSX: %v", err)
		}
		logger.Info("groups exported", "file", *xlsxPath)
	}
}

// learnInputBrands дополняет словарь брендов частыми токенами входных описаний
func learnInputBrands(ctx context.Context, svc *services.NormalizationService, records []matching.ProductRecord, minOccurrences int, logger *slog.Logger) error {
	resp, err := svc.LearnBrands(ctx, services.LearnBrandsRequest{
		Records:        records,
		MinOccurrences: minOccurrences,
	})
	if err != nil {
		return err
	}
	logger.Info("brands learned from input",
		"candidates", len(resp.Candidates),
		"learned", resp.Learned)
	return nil
}

func readRecords(path, format string) ([]matching.ProductRecord, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var recordFormat matching.RecordFormat
	switch format {
	case "json":
		recordFormat = matching.RecordsJSON
	case "csv":
		recordFormat = matching.RecordsCSV
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return matching.ReadRecords(f, recordFormat)
}
