package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resumerag/internal/config"
	"resumerag/internal/logger"
)

const app = "resumerag"

var (
	// Used for flags.
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "resumerag answers job application forms from an uploaded résumé",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config (default ./config.yaml or ~/.config/resumerag/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")
}

// loadConfig reads the config file and builds the logger it describes.
// Command-line flags win over the file.
func loadConfig() (*config.AppConfig, *zap.Logger, error) {
	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if cfgFile == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		path = cfgFile
		cfg, err = config.Load(cfgFile)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.JSON || jsonFlag, cfg.Log.Debug || debugFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	log.Debug("config loaded", zap.String("path", path))
	return cfg, log, nil
}
