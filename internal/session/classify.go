package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gobwas/glob"

	"fiapo/internal/errors"
	"fiapo/internal/log"
	"fiapo/internal/source"
)

// Classifier decides which kind of Source a path becomes
type Classifier struct {
	documents []glob.Glob
	images    []glob.Glob
}

// NewClassifier compiles the document and image file name patterns
func NewClassifier(documents, images []string) (*Classifier, error) {
	c := &Classifier{}
	var err error
	if c.documents, err = compile(documents, "import.documents"); err != nil {
		return nil, err
	}
	if c.images, err = compile(images, "import.images"); err != nil {
		return nil, err
	}
	return c, nil
}

func compile(patterns []string, param string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.NewConfigError("invalid pattern "+p, param, errors.InvalidConfig, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Classify stats path and matches its file name against the patterns.
// Names matching neither list are sniffed: image content becomes an
// ImageSequence, anything else a Document.
func (c *Classifier) Classify(path string) (source.Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return source.Document, errors.NewFileError("file not found", path, errors.FileNotFound, err)
		}
		return source.Document, errors.NewFileError("cannot access file", path, errors.FileAccessDenied, err)
	}
	if info.IsDir() {
		return source.Directory, nil
	}

	name := filepath.Base(path)
	if matchAny(c.documents, name) {
		return source.Document, nil
	}
	if matchAny(c.images, name) {
		return source.ImageSequence, nil
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return source.Document, errors.NewFileError("failed to detect MIME type", path, errors.FileAccessDenied, err)
	}
	log.LogWithFields(log.F("path", path), log.F("mime", mime.String())).Debug("Classified by content")
	if strings.HasPrefix(mime.String(), "image/") {
		return source.ImageSequence, nil
	}
	return source.Document, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	lower := strings.ToLower(name)
	for _, g := range globs {
		if g.Match(name) || g.Match(lower) {
			return true
		}
	}
	return false
}
