// Package imgresize provides functionality for batch image resizing with
// conversion of every resized image to JPEG.
package imgresize

import (
	"context"
	"image"
)

// Resulter is the interface that wraps Result and Header methods.
//
// Result returns string representation of processing result.
//
// Header returns header if output format expects header (e.g. CSV file format).
// If output format does not requires header, method implementation can return
// empty string.
type Resulter interface {
	Result() string
	Header() string
}

// Outputer is the interface that wraps Save and Close method,
//
// Save receives Resulter to be written to the output.
//
// Close flushes output buffer and closes output.
type Outputer interface {
	Save(Resulter) error
	Close() error
}

// Inputer is the interface that wraps the basic Next method.
//
// Next returns channel of image paths read from input. Channel closes
// when input EOF is reached.
type Inputer interface {
	Next() <-chan string
}

// Codec is the interface that groups Decode and Encode methods.
//
// Decode reads the image stored at path.
//
// Encode writes img to path, the file format is chosen by the path extension.
type Codec interface {
	Decode(path string) (image.Image, error)
	Encode(img image.Image, path string) error
}

// Resampler is the interface that wraps the basic Resample method.
//
// Resample returns a new image of exactly width x height pixels.
type Resampler interface {
	Resample(img image.Image, width, height int) image.Image
}

// Converter is the interface that wraps the basic Convert method.
//
// Convert reads the image at src and writes its equivalent to dst in the format
// implied by the dst extension.
type Converter interface {
	Convert(ctx context.Context, src, dst string) error
}

// Fetcher is the interface that wraps the basic Fetch method.
//
// Fetch retrieves a remote image addressed by url and returns the path of
// the local copy.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
