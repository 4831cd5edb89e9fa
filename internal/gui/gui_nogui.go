//go:build nogui
// +build nogui

package gui

import (
	"fmt"

	"fiapo/internal/config"
)

// StartGUI is a stub implementation for builds with GUI disabled
func StartGUI(session Session, cfg *config.Config, paths []string) error {
	fmt.Println("GUI is disabled in this build. Please use: fiapo read <files...>")
	return fmt.Errorf("GUI not available in this build")
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}
