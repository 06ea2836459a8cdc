package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/config"
	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/pkg/decision"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	domainType := flag.String("type", models.DomainConstructionMethod, "domain query type")
	subtype := flag.String("subtype", "", "domain subtype, e.g. wooden_fence")
	region := flag.String("region", "", "project region")
	size := flag.Float64("size", 0, "project size measure")
	highComplexity := flag.Bool("complex", false, "mark the project as high complexity")
	options := flag.String("options", "", "comma-separated key=value request options")
	evictDays := flag.Int("evict-older-than", 0, "evict cached answers older than N days and exit")
	flag.Parse()

	// Load environment files explicitly
	config.LoadEnvFiles([]string{".env.local", ".env.development", ".env"})

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	pipeline, err := decision.NewPipeline(cfg)
	if err != nil {
		fiberlog.Fatalf("Failed to assemble pipeline: %v", err)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			fiberlog.Errorf("Failed to close pipeline: %v", err)
		}
	}()

	ctx := context.Background()

	if *evictDays > 0 {
		count, err := pipeline.InvalidateOlderThan(ctx, *evictDays)
		if err != nil {
			fiberlog.Fatalf("Eviction failed: %v", err)
		}
		fmt.Printf("evicted %d entries\n", count)
		return
	}

	if *subtype == "" {
		fiberlog.Fatal("-subtype is required")
	}

	req := models.MethodRequest{
		DomainType:    *domainType,
		DomainSubtype: *subtype,
		Location:      models.Location{Region: *region},
		Dimensions:    models.Dimensions{SizeMeasure: *size},
		Complexity:    models.ComplexityFlags{HighComplexity: *highComplexity},
		Options:       parseOptions(*options),
	}

	result, err := pipeline.Decide(ctx, req)
	if err != nil {
		fiberlog.Fatalf("Decision failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fiberlog.Fatalf("Failed to encode result: %v", err)
	}
	if _, err := os.Stdout.Write(append(out, '\n')); err != nil {
		fiberlog.Fatalf("Failed to write result: %v", err)
	}
}

func parseOptions(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	opts := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && k != "" {
			opts[k] = v
		}
	}
	return opts
}
