package imgresize

import (
	"errors"
	"strings"
)

// ErrNoInputs is returned when a batch is started without any image path.
var ErrNoInputs = errors.New("no input images")

// FetchError means a remote image could not be downloaded.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return "could not fetch " + e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError means the input is missing, unreadable or not a supported image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return "could not open or decode image " + e.Path + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ResizeError means the target size computed for the image is not usable.
type ResizeError struct {
	Path string
	Err  error
}

func (e *ResizeError) Error() string {
	return "could not resize " + e.Path + ": " + e.Err.Error()
}

func (e *ResizeError) Unwrap() error { return e.Err }

// EncodeError means the resized image could not be written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return "could not write " + e.Path + ": " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error { return e.Err }

// ConversionError means the external converter is unavailable or exited
// with non-zero status. Output holds what the converter printed.
type ConversionError struct {
	Command string
	Src     string
	Dst     string
	Output  string
	Err     error
}

func (e *ConversionError) Error() string {
	msg := "conversion " + e.Src + " -> " + e.Dst
	if e.Command != "" {
		msg += " by " + e.Command
	}
	msg += " failed: " + e.Err.Error()
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += " [" + out + "]"
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }
