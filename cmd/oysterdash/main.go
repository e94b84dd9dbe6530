package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/oysterdash/internal/app"
	"github.com/chrissnell/oysterdash/internal/constants"
	"github.com/chrissnell/oysterdash/internal/log"
	"github.com/chrissnell/oysterdash/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML configuration file; defaults apply when it does not exist")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("oysterdash %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	filename, _ := filepath.Abs(*cfgFile)
	cfgData, err := config.NewYAMLProvider(filename, true).LoadConfig()
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Reinitialize once the config has been read so a log file can be added
	if cfgData.Log.File != "" || cfgData.Log.Debug {
		err := log.InitWithOptions(log.Options{
			Debug:      *debug || cfgData.Log.Debug,
			File:       cfgData.Log.File,
			MaxSizeMB:  cfgData.Log.MaxSizeMB,
			MaxBackups: cfgData.Log.MaxBackups,
			MaxAgeDays: cfgData.Log.MaxAgeDays,
		})
		if err != nil {
			log.Errorf("Failed to initialize file logging: %v", err)
			os.Exit(1)
		}
	}

	// Create and run the application
	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
