package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/windshear/internal/log"
	"github.com/chrissnell/windshear/pkg/shear"
)

func main() {
	profileFile := flag.String("profile", "profile.yaml", "Path to YAML wind profile")
	format := flag.String("format", "json", "Output format: 'json' or 'matrix' (grids of up to two dimensions)")
	quiet := flag.Bool("quiet", false, "Suppress shear bucket diagnostics")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	p, err := loadProfile(*profileFile)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}

	var reporter shear.Reporter = shear.NewWriterReporter(os.Stdout)
	if *quiet {
		reporter = shear.NopReporter{}
	}

	out, err := run(p, shear.NewCalculator(reporter))
	if err != nil {
		log.Fatalf("Calculation failed: %v", err)
	}

	switch *format {
	case "matrix":
		if err := writeMatrix(os.Stdout, out); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	default:
		log.Fatalf("Unsupported output format %q: use 'json' or 'matrix'", *format)
	}
}
