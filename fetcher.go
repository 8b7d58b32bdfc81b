package imgresize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// ErrMediaIsEmpty is returned when size of downloaded file is equal to zero.
var ErrMediaIsEmpty = errors.New("url referes to the empty file")

const (
	// DefaultMaxConnsPerHost defines default value of maximum parallel http connections
	// to the host.
	DefaultMaxConnsPerHost = 4

	// DefaultReadTimeout defines maximum duration for full response reading (including body).
	DefaultReadTimeout = 8 * time.Second

	// DefaultMaxBodySize limits size of a downloaded image.
	DefaultMaxBodySize = 64 * 1024 * 1024
)

// MediaFetcher implements interface Fetcher. Downloads images into a local
// directory, uses fasthttp.Client to reduce garbage generation.
type MediaFetcher struct {
	log    zerolog.Logger
	dir    string
	client fasthttp.Client
}

// NewMediaFetcher returns new instance of MediaFetcher storing downloads in dir,
// with default read timeout and MaxConnsPerHost parameters.
func NewMediaFetcher(l zerolog.Logger, dir string) *MediaFetcher {
	if dir == "" {
		dir = "."
	}
	return &MediaFetcher{
		log: l.With().Str("component", "fetcher").Logger(),
		dir: dir,
		client: fasthttp.Client{ReadTimeout: DefaultReadTimeout,
			MaxConnsPerHost:     DefaultMaxConnsPerHost,
			ReadBufferSize:      64 * 1024,
			MaxResponseBodySize: DefaultMaxBodySize},
	}
}

// SetMaxConnsPerHost set maximum parallel http connections to the host.
func (mf *MediaFetcher) SetMaxConnsPerHost(n int) {
	mf.client.MaxConnsPerHost = n
}

// SetReadTimeout set maximum duration for full response reading (including body).
func (mf *MediaFetcher) SetReadTimeout(d time.Duration) {
	mf.client.ReadTimeout = d
}

// IsURL reports whether the input refers to a remote image.
func IsURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// LocalPath returns the path a remote image is stored at:
// <base-stem>-<hash8><ext>, where hash8 is taken from the full URL. Equal
// URLs share the path, URLs with the same base name do not.
func (mf *MediaFetcher) LocalPath(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		name = "index"
	}
	ext := extension(name)
	sum := sha256.Sum256([]byte(rawurl))
	name = strings.TrimSuffix(name, ext) + "-" + hex.EncodeToString(sum[:4]) + ext
	return filepath.Join(mf.dir, name), nil
}

// Fetch implements interface Fetcher. Downloads image by URL and writes it
// into the fetcher directory.
func (mf *MediaFetcher) Fetch(ctx context.Context, rawurl string) (string, error) {

	dst, err := mf.LocalPath(rawurl)
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseResponse(resp)
		fasthttp.ReleaseRequest(req)
	}()
	req.SetRequestURI(rawurl)

	t := time.Now()
	if err := mf.do(ctx, req, resp); err != nil {
		return "", err
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return "", fmt.Errorf("http code %d", code)
	}
	body := resp.Body()
	if len(body) == 0 {
		return "", ErrMediaIsEmpty
	}

	if err := os.MkdirAll(mf.dir, 0755); err != nil {
		return "", err
	}
	if err := ioutil.WriteFile(dst, body, 0644); err != nil {
		return "", err
	}

	mf.log.Debug().Str("url", rawurl).Str("path", dst).Int("size", len(body)).Str("dur", time.Since(t).String()).Msg("downloaded")
	return dst, nil
}

func (mf *MediaFetcher) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	err := mf.client.Do(req, resp)
	if err != fasthttp.ErrNoFreeConns {
		return err
	}

	// all connections to the host are busy, wait for a free one.
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err = mf.client.Do(req, resp); err != fasthttp.ErrNoFreeConns {
				return err
			}
		}
	}
}
