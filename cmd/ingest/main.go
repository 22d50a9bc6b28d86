// Command ingest runs a single air quality fetch and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ali-sehran/air-quality-dashboard/internal/config"
	"github.com/ali-sehran/air-quality-dashboard/internal/logging"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

const appName = "air-quality-ingest"

var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the result, so logs go to stderr.
	logger := logging.New(os.Stderr, cfg, version, appName)
	slog.SetDefault(logger)

	os.Exit(run(context.Background(), cfg, logger, os.Stdout))
}

// run performs one ingestion and writes the entries, or the error object, to
// stdout as indented JSON. It returns the process exit code.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, stdout io.Writer) int {
	svc := airquality.NewFeatureService(cfg, nil, nil, logger)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	result, err := svc.Fetch(ctx)
	if err != nil {
		logger.Error("ingest failed", "err", err)
		_ = enc.Encode(types.ErrorBody{Error: err.Error()})
		return 1
	}

	entries := result.Entries
	if entries == nil {
		entries = []types.Entry{}
	}
	if err := enc.Encode(entries); err != nil {
		logger.Error("encode result", "err", err)
		return 1
	}
	return 0
}
