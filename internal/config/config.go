package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Batch BatchConfig
	Paths PathConfig
}

// BatchConfig holds batch execution settings
type BatchConfig struct {
	// Workers bounds the number of concurrently processed units. Each unit
	// may hold a full volumetric map in memory, so the default leaves two
	// cores of headroom for the orchestrating process.
	Workers int
}

// PathConfig holds file system paths
type PathConfig struct {
	// DatabasePath is the SQLite run-ledger location; empty disables the ledger.
	DatabasePath string
}

// DefaultWorkers derives the worker-count default from hardware concurrency:
// available parallelism minus two, floored at one.
func DefaultWorkers() int {
	w := runtime.NumCPU() - 2
	if w < 1 {
		w = 1
	}
	return w
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Batch: BatchConfig{Workers: DefaultWorkers()},
		Paths: PathConfig{DatabasePath: os.Getenv("VOXREPORT_DB")},
	}

	if raw := os.Getenv("VOXREPORT_WORKERS"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil || w < 1 {
			return nil, fmt.Errorf("invalid VOXREPORT_WORKERS value %q", raw)
		}
		cfg.Batch.Workers = w
	}

	return cfg, nil
}
