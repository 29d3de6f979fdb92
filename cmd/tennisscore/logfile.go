package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tennisscore/tennisscore/pkg/config"
	"github.com/tennisscore/tennisscore/pkg/match"
)

// loadMatchLog reads a point log file. A log without a format is scored
// under the configured default format.
func loadMatchLog(path string, stderr io.Writer) (*match.Log, error) {
	log, err := match.LoadLog(path)
	if err != nil {
		return nil, err
	}
	if log.Format == (match.MatchFormat{}) {
		log.Format = loadConfig(stderr).Match.DefaultFormat
		fmt.Fprintf(stderr, "No format in %s, using default: %s\n", path, log.Format)
	}
	if err := log.Format.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}

func loadConfig(stderr io.Writer) *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig()
	}
	cfgFile := firstNonEmpty(os.Getenv("TENNISSCORE_CONFIG"), config.FindConfigFile(cwd))
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
