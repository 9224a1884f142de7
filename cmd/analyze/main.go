// Command analyze runs one or more produce photos through the configured
// predictor and prints the resulting history table, without the web page.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raine/produce-shelf-life/config"
	"github.com/raine/produce-shelf-life/internal/imaging"
	"github.com/raine/produce-shelf-life/internal/llm"
	"github.com/raine/produce-shelf-life/internal/produce"
	"github.com/raine/produce-shelf-life/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  PREDICTOR      - gemini (default) or endpoint\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required for gemini\n")
		fmt.Fprintf(os.Stderr, "  VERTEX_PROJECT, VERTEX_ENDPOINT_ID, VERTEX_ACCESS_TOKEN - Required for endpoint\n")
		os.Exit(1)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if missing := cfg.Validate(); len(missing) > 0 {
		log.Fatal().Msgf("missing required config: %s", strings.Join(missing, ", "))
	}

	ctx := context.Background()
	predictor, err := llm.NewPredictor(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize predictor")
	}

	s, _ := session.NewRegistry(0).Get("")
	for _, path := range os.Args[1:] {
		analyzeFile(ctx, s, predictor, path, cfg)
	}

	fmt.Println()
	printHistory(s.Snapshot().History)
}

func analyzeFile(ctx context.Context, s *session.Session, predictor llm.Predictor, path string, cfg *config.Config) {
	fmt.Printf("=== %s ===\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read image: %v\n", err)
		return
	}

	upload, err := imaging.Decode(data)
	if err != nil {
		fmt.Printf("Error decoding image: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.InferenceTimeout)
	defer cancel()

	record, err := s.Analyze(ctx, predictor, upload)
	if err != nil {
		fmt.Printf("Error analyzing image: %v\n", err)
		return
	}

	for _, f := range record.Fields() {
		fmt.Printf("%-28s %s\n", f.Title+":", f.Value)
	}
}

func printHistory(records []produce.Record) {
	if len(records) == 0 {
		fmt.Println("No produce analyzed yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(produce.Columns(), "\t"))
	for _, r := range records {
		fmt.Fprintln(w, strings.Join(r.Row(), "\t"))
	}
	w.Flush()
}
