package imgresize_test

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// writePNG creates w x h png image in dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	if err := imaging.Save(img, p); err != nil {
		t.Fatalf("test image %s creation failed: %s", p, err.Error())
	}
	return p
}

// imageSize returns dimensions of the image stored at p.
func imageSize(t *testing.T, p string) (int, int) {
	t.Helper()
	img, err := imaging.Open(p)
	if err != nil {
		t.Fatalf("image %s open failed: %s", p, err.Error())
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

// fakeConverter re-encodes src to dst in-process and records calls.
type fakeConverter struct {
	mux   sync.Mutex
	calls [][2]string
	err   error
}

func (fc *fakeConverter) Convert(ctx context.Context, src, dst string) error {
	fc.mux.Lock()
	fc.calls = append(fc.calls, [2]string{src, dst})
	fc.mux.Unlock()

	if fc.err != nil {
		return fc.err
	}
	img, err := imaging.Open(src)
	if err != nil {
		return err
	}
	return imaging.Save(img, dst)
}

var errConverterBroken = errors.New("converter is broken")
