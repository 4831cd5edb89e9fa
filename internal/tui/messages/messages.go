package messages

import (
	"fiapo/internal/reader"
	"fiapo/internal/watch"
)

// ErrorMsg reports a failed command
type ErrorMsg struct {
	Err error
}

// PageMsg carries the page shown after a jump or reload
type PageMsg struct {
	Page   *reader.Page
	Status string
}

// FileChangedMsg reports a modified session file
type FileChangedMsg struct {
	Change watch.Change
}
