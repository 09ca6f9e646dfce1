// Command report renders a carbon footprint PDF from a carbontracker-format
// training log.
//
// Usage:
//
//	go run ./cmd/report -log train.log -out report.pdf
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/carbon-intensity-service/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logPath := flag.String("log", "", "path to the training log")
	outPath := flag.String("out", "report.pdf", "output PDF path")
	flag.Parse()

	if *logPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -log")
	}

	f, err := os.Open(*logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	parsed, err := report.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", *logPath, err)
	}

	fp, err := report.ComputeFootprint(parsed)
	if err != nil {
		return fmt.Errorf("compute footprint: %w", err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := report.RenderPDF(out, parsed, fp); err != nil {
		out.Close()
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %s: %s training, %.6f kWh, %.6f g CO2eq\n",
		*outPath, report.FormatDuration(fp.Duration), fp.Energy, fp.CO2*1000)
	return nil
}
