package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"acrqa/pkg/archive"
	"acrqa/pkg/config"
	"acrqa/pkg/qa"
	"acrqa/pkg/report"
)

func main() {
	// Parse command line arguments
	input := flag.String("input", "", "ZIP archive or directory containing DICOM files")
	workDir := flag.String("workdir", "", "Working directory for archive extraction (default: temporary directory)")
	plotDir := flag.String("plots", "", "Directory for generated plot files (default: from config)")
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	outPath := flag.String("out", "report.json", "Report JSON output path, or - for stdout")
	flag.Parse()

	// Validate inputs
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *plotDir == "" {
		*plotDir = cfg.Output.PlotDir
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("ACR PHANTOM QA ANALYSIS")
		fmt.Println("================================")
	}

	// A zip archive is extracted into the working directory first;
	// a directory input is analyzed in place.
	inputDir := *input
	if strings.EqualFold(filepath.Ext(*input), ".zip") {
		dir := *workDir
		if dir == "" {
			dir, err = os.MkdirTemp("", "acrqa-work-*")
			if err != nil {
				log.Fatalf("Failed to create working directory: %v", err)
			}
		}
		if cfg.Output.Verbose {
			fmt.Printf("Extracting archive %s to %s...\n", *input, dir)
		}
		if err := archive.ExtractFile(*input, dir); err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
		inputDir = dir
	}

	if cfg.Output.Verbose {
		fmt.Println("Analyzing DICOM files...")
	}

	analyzer := qa.NewAnalyzer(&qa.Params{
		InputDir: inputDir,
		PlotDir:  *plotDir,
		Title:    cfg.Report.Title,
		Thresholds: qa.Thresholds{
			SNRMin:           cfg.Thresholds.SNRMin,
			PIUMin:           cfg.Thresholds.PIUMin,
			GhostingMax:      cfg.Thresholds.GhostingMax,
			SpacingTolerance: cfg.Thresholds.SpacingTolerance,
		},
	})

	rep, err := analyzer.Run()
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	printReport(rep)

	if err := writeReport(rep, *outPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	if *outPath != "-" {
		fmt.Printf("\nReport saved to: %s\n", *outPath)
	}

	if rep.Status != "ok" {
		os.Exit(1)
	}
}

// printReport writes a human-readable summary of the report to stdout.
func printReport(rep *report.Report) {
	fmt.Printf("\n%s\n", rep.Title)
	fmt.Printf("Status: %s (%s)\n", rep.Status, rep.Message)

	for _, section := range rep.Sections {
		fmt.Printf("\n%s:\n", section.Name)
		fmt.Println(strings.Repeat("=", len(section.Name)+1))
		switch section.Kind {
		case report.SectionKV:
			for _, row := range section.KV {
				fmt.Printf("%-28s %s\n", row.Label+":", row.Value)
			}
		case report.SectionMetrics:
			for _, row := range section.Metrics {
				fmt.Printf("%-28s %-6s %-42s (expected %s)\n",
					row.Label+":", row.Status, row.Value, row.Expected)
			}
		}
	}

	if len(rep.Plots) > 0 {
		fmt.Println("\nGenerated plots:")
		for _, p := range rep.Plots {
			fmt.Printf("- %s: %s\n", p.Title, p.URL)
		}
	}
}

// writeReport serializes the report as JSON to the given path, or to
// stdout when path is "-".
func writeReport(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}

	if path == "-" {
		_, err = fmt.Println(string(data))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
