package types

// Mode represents the current input mode of the terminal reader
type Mode int

const (
	// Normal is the default mode: keys turn pages
	Normal Mode = iota
	// Command is the mode for typing a ":" command
	Command
)

// String returns the label shown in the status bar
func (m Mode) String() string {
	switch m {
	case Command:
		return "COMMAND"
	default:
		return "NORMAL"
	}
}
