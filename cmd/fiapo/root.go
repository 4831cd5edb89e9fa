package main

import (
	"fmt"
	"io"

	"fiapo/internal/app"
	"fiapo/internal/config"
	"fiapo/internal/decoder"
	"fiapo/internal/log"
	"fiapo/internal/session"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "fiapo",
		Short:   "A reader for documents and image sequences",
		Long:    logo + "\nfiapo reads several documents and page scans as one continuous book.",
		Version: version,
		// Errors are printed by main
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var configErr error
			if cfgFile != "" {
				cfg, configErr = config.LoadConfigFile(cfgFile)
			} else {
				cfg, configErr = config.LoadConfig()
			}

			if configErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("Warning: %v", configErr)))
				fmt.Fprintln(cmd.ErrOrStderr(), "Using default settings.")
				cfg = config.New()
			}
			configureLogging(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/fiapo/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newGUICmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newRecentCmd())

	return rootCmd
}

// configureLogging points the package logger at w and the configured file
func configureLogging(w io.Writer) {
	opts := []log.Option{log.WithOutput(w)}
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	log.Configure(opts...)
	log.SetDebug(debug || cfg.Log.Debug)
}

// newController builds the application controller from the loaded config
func newController() (*app.Controller, error) {
	return app.New(cfg)
}

// newBuilder builds a session builder without the rest of the controller
func newBuilder() (*session.Builder, error) {
	classifier, err := session.NewClassifier(cfg.Import.Documents, cfg.Import.Images)
	if err != nil {
		return nil, err
	}
	return session.NewBuilder(classifier,
		decoder.NewFitz(cfg.Decoder.DPI),
		decoder.NewImage(),
		session.WithWorkers(cfg.Decoder.Workers),
		session.WithPrewarm(false),
	), nil
}
