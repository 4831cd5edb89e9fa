package source

// Kind classifies an imported path
type Kind int

const (
	// Document is a multi-page file rendered through a document decoder
	Document Kind = iota
	// ImageSequence is an image file contributing one page
	ImageSequence
	// Directory paths are rejected at import and never become a Source
	Directory
)

func (k Kind) String() string {
	switch k {
	case Document:
		return "document"
	case ImageSequence:
		return "image"
	case Directory:
		return "directory"
	default:
		return "unknown"
	}
}
