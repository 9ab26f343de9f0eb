// Package cli provides the Cobra-based command-line interface for deepl.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexigo/deepl-go"
	"github.com/lexigo/deepl-go/internal/buildinfo"
	"github.com/lexigo/deepl-go/internal/cli/env"
	"github.com/lexigo/deepl-go/internal/config"
	log "github.com/lexigo/deepl-go/internal/logging"
)

var (
	cfgFile   string
	authKey   string
	serverURL string
	proxyURL  string
	logFile   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "deepl",
	Short: "Translate text and documents with the DeepL API",
	Long: `deepl is a command-line client for the DeepL translation API.

The auth key is read from the --auth-key flag, the DEEPL_AUTH_KEY
environment variable, a .env file in the working directory, or the
config file, in that order.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/deepl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&authKey, "auth-key", "", "DeepL API authentication key")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "override the API endpoint URL")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy-url", "", "proxy URL for all requests")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// bootstrap loads .env and the config file, applies environment and flag
// overrides, and configures logging. It must run before a client is built.
func bootstrap() (*config.Config, error) {
	if wd, err := os.Getwd(); err == nil {
		if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
			if !errors.Is(errLoad, os.ErrNotExist) {
				log.Warnf("failed to load .env file: %v", errLoad)
			}
		}
	}

	configPath := cfgFile
	optional := configPath == ""
	if optional {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configPath = filepath.Join(home, ".config", "deepl", "config.yaml")
	}
	cfg, err := config.LoadConfigOptional(configPath, optional)
	if err != nil {
		return nil, err
	}

	if v := env.AuthKey(); v != "" {
		cfg.AuthKey = v
	}
	if v := env.ServerURL(); v != "" {
		cfg.ServerURL = v
	}
	if v := env.ProxyURL(); v != "" {
		cfg.ProxyURL = v
	}
	if n, ok := env.MaxRetries(); ok {
		cfg.MaxRetries = &n
	}
	if v, ok := env.Verbose(); ok {
		cfg.Verbose = v
	}
	if authKey != "" {
		cfg.AuthKey = authKey
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if proxyURL != "" {
		cfg.ProxyURL = proxyURL
	}
	if logFile != "" {
		cfg.LoggingToFile = logFile
	}
	if verbose {
		cfg.Verbose = true
	}

	log.SetDebug(cfg.Verbose)
	if err := log.ConfigureLogOutput(cfg.LoggingToFile); err != nil {
		return nil, fmt.Errorf("configure log output: %w", err)
	}
	return cfg, nil
}

// newClient builds the API client from the bootstrapped configuration.
func newClient() (*deepl.Client, error) {
	cfg, err := bootstrap()
	if err != nil {
		return nil, err
	}
	if cfg.AuthKey == "" {
		return nil, fmt.Errorf("no auth key configured, set --auth-key or %s", env.KeyAuthKey)
	}

	opts := []deepl.Option{
		deepl.WithAppInfo("deepl-cli", buildinfo.Version),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, deepl.WithServerURL(cfg.ServerURL))
	}
	if cfg.ProxyURL != "" {
		opts = append(opts, deepl.WithProxyURL(cfg.ProxyURL))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, deepl.WithMaxRetries(*cfg.MaxRetries))
	}
	if cfg.PollIntervalSeconds > 0 {
		opts = append(opts, deepl.WithDocumentPollInterval(time.Duration(cfg.PollIntervalSeconds)*time.Second))
	}
	return deepl.NewClient(cfg.AuthKey, opts...)
}
