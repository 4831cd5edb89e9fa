package main

import (
	"io"

	"fiapo/internal/gui"
	"fiapo/internal/log"
	"fiapo/internal/tui"

	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [files...]",
		Short: "Read files in the terminal",
		Long: `Read documents and images in the terminal as one continuous book.
Files are read in name order; unreadable ones are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal belongs to the reader; log to the file only
			quietLogging()

			ctrl, err := newController()
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if _, err := ctrl.Import(cmd.Context(), args); err != nil {
				return err
			}
			return tui.Run(ctrl, cfg)
		},
	}
}

func newGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui [files...]",
		Short: "Launch the desktop reader",
		Long:  `Launch the desktop reader, optionally opening files right away.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController()
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return gui.StartGUI(ctrl, cfg, args)
		},
	}
}

func quietLogging() {
	opts := []log.Option{log.WithOutput(io.Discard)}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
}
