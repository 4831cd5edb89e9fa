// Package decoder turns document files into page images. A Decoder opens a
// path into a Handle; a Handle is expensive to hold and cheap to render from.
package decoder

import "image"

// Decoder opens native document handles
type Decoder interface {
	// Open acquires a handle for the document at path. Failures are
	// Unreadable decode errors.
	Open(path string) (Handle, error)
}

// Handle is one open document
type Handle interface {
	// PageCount returns the number of pages in the document
	PageCount() int
	// Render decodes the page at the 0-based index. Failures are
	// RenderFailed decode errors.
	Render(index int) (image.Image, error)
	// Close releases the native resources
	Close() error
}

// Func adapts a plain function to the Decoder interface
type Func func(path string) (Handle, error)

// Open calls f(path)
func (f Func) Open(path string) (Handle, error) {
	return f(path)
}
