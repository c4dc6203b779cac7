package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ahrav/go-docreview/infrastructure/templates"
	"github.com/ahrav/go-docreview/internal/application"
	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/testutils"
)

func main() {
	var (
		template = flag.String("template", "saas-product-launch", "Template to generate scores for")
		specPath = flag.String("spec", "", "Specification file (overrides -template)")
		count    = flag.Int("count", 5, "Number of score sets to generate")
		coverage = flag.Float64("coverage", testutils.DefaultCoverage, "Share of criteria that receive a score")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible output")
		outDir   = flag.String("output", "testdata/scores", "Output directory")
	)
	flag.Parse()

	spec, err := loadSpec(*specPath, *template)
	if err != nil {
		log.Fatalf("Failed to load specification: %v", err)
	}

	sets := testutils.GenerateScoreSets(spec, testutils.GenerateOptions{
		Count:    *count,
		Seed:     *seed,
		Coverage: *coverage,
	})

	for i, set := range sets {
		path := filepath.Join(*outDir, fmt.Sprintf("scores-%03d.yaml", i+1))
		if err := testutils.SaveScoreSet(set, path); err != nil {
			log.Fatalf("Failed to save scores: %v", err)
		}
	}

	stats := testutils.ComputeScoreStatistics(sets)

	fmt.Printf("Generated synthetic score sets:\n")
	fmt.Printf("- Directory: %s\n", *outDir)
	fmt.Printf("- Seed: %d\n", *seed)
	fmt.Printf("- Sets: %d\n", stats.Sets)
	fmt.Printf("- Scores: %d (%.2f to %.2f, mean %.2f)\n", stats.Scores, stats.MinScore, stats.MaxScore, stats.MeanScore)
	fmt.Printf("- Findings by severity: %v\n", stats.BySeverity)
	if *specPath != "" {
		fmt.Printf("\nReview them with:\n  docreview review %s", *specPath)
	} else {
		fmt.Printf("\nReview them with:\n  docreview review --template %s", *template)
	}
	for i := range sets {
		fmt.Printf(" -s %s", filepath.Join(*outDir, fmt.Sprintf("scores-%03d.yaml", i+1)))
	}
	fmt.Println()
}

func loadSpec(path, template string) (*domain.RequirementsSpec, error) {
	if path != "" {
		return application.NewSpecLoader().LoadFromFile(context.Background(), path)
	}
	return templates.Default().Get(template)
}
