package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"porestream/pkg/config"
	"porestream/pkg/rock"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.json", "Configuration file (JSON or YAML)")
	runSetup := flag.Bool("run-setup", false, "Load the greyscale cube and calculate its histogram")
	runSegmentation := flag.Bool("run-segmentation", false, "Segment the greyscale cube into pore and solid phases")
	runMorphology := flag.Bool("run-morphology", false, "Analyse the pore morphology and extract centerlines")
	writeConfig := flag.Bool("write-default-config", false, "Write a default configuration file and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			logger.Error("failed to write default config", "error", err)
			os.Exit(1)
		}
		logger.Info("default configuration written", "file", *configPath)
		return
	}

	if !*runSetup && !*runSegmentation && !*runMorphology {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	sample := rock.NewSample(cfg, logger)
	start := time.Now()

	if *runSetup {
		if err := sample.RunSetup(); err != nil {
			logger.Error("setup failed", "error", err)
			os.Exit(1)
		}
	}
	if *runSegmentation {
		if err := sample.RunSegmentation(); err != nil {
			logger.Error("segmentation failed", "error", err)
			os.Exit(1)
		}
	}
	if *runMorphology {
		if err := sample.RunMorphology(); err != nil {
			logger.Error("morphology failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("pipeline finished", "elapsed", time.Since(start))
}
