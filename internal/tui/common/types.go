package common

import (
	"image"

	"fiapo/pkg/types"
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Page() image.Image
	Progress() (current, total int)
	Mode() types.Mode
	CommandView() string
	StatusView() string
	HelpView() string
	ShowHelp() bool
	ShowIndicator() bool
	Size() (width, height int)
}
