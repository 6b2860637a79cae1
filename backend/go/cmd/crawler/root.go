package main

import (
	"context"
	"os/signal"
	"syscall"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	testMode   bool

	appLogger *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "crawler",
	Short:         "Collects RIDE-DF education news into the bronze layer and the vector index",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the YAML config file")
	logger.Init(logrus.InfoLevel)
	appLogger = logger.New("crawler")
}

// loadConfig reads the configuration and applies its log level.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
