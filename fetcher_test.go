package imgresize_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/regorov/imgresize"
	"github.com/rs/zerolog"
)

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	var png bytes.Buffer
	img := imaging.New(40, 30, color.NRGBA{B: 255, A: 255})
	if err := imaging.Encode(&png, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/img/photo.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png.Bytes())
	})
	for i, sz := range []int{10, 30} {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, imaging.New(sz, sz, color.NRGBA{G: 255, A: 255}), imaging.PNG); err != nil {
			t.Fatal(err)
		}
		body := buf.Bytes()
		mux.HandleFunc("/"+string(rune('a'+i))+"/img.png", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(body)
		})
	}
	mux.HandleFunc("/img/empty.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsURL(t *testing.T) {
	var tbl = []struct {
		in  string
		res bool
	}{
		{"http://a/b.png", true}, {"HTTPS://a/b.png", true},
		{"b.png", false}, {"/tmp/http/b.png", false}, {"ftp://a/b.png", false},
	}
	for i := range tbl {
		if res := imgresize.IsURL(tbl[i].in); res != tbl[i].res {
			t.Errorf("case %d failed. Input: %s, got: %v", i, tbl[i].in, res)
		}
	}
}

func TestMediaFetcher_LocalPath(t *testing.T) {
	f := imgresize.NewMediaFetcher(zerolog.Nop(), "dl")
	var tbl = []struct {
		url    string
		prefix string
		ext    string
	}{
		{"http://host/a/b/photo.png?x=1", "photo-", ".png"},
		{"http://host/a/c/photo.png", "photo-", ".png"},
		{"http://other/a/b/photo.png", "photo-", ".png"},
		{"http://host/", "index-", ""},
		{"http://host", "index-", ""},
		{"http://host/.hidden", ".hidden-", ""},
	}

	seen := map[string]string{}
	for i := range tbl {
		p, err := f.LocalPath(tbl[i].url)
		if err != nil {
			t.Errorf("case %d failed: %s", i, err.Error())
			continue
		}
		name := filepath.Base(p)
		if filepath.Dir(p) != "dl" || !strings.HasPrefix(name, tbl[i].prefix) || !strings.HasSuffix(name, tbl[i].ext) ||
			len(name) != len(tbl[i].prefix)+8+len(tbl[i].ext) {
			t.Errorf("case %d failed. Unexpected local path: %s", i, p)
		}
		if again, _ := f.LocalPath(tbl[i].url); again != p {
			t.Errorf("case %d failed. Local path is not stable: %s, %s", i, p, again)
		}
		if u, ok := seen[p]; ok {
			t.Errorf("case %d failed. %s and %s share local path %s", i, u, tbl[i].url, p)
		}
		seen[p] = tbl[i].url
	}
}

func TestMediaFetcher_Fetch(t *testing.T) {
	srv := newImageServer(t)
	dir := t.TempDir()
	f := imgresize.NewMediaFetcher(zerolog.Nop(), dir)

	p, err := f.Fetch(context.Background(), srv.URL+"/img/photo.png")
	if err != nil {
		t.Fatalf("fetch failed: %s", err.Error())
	}
	if exp, _ := f.LocalPath(srv.URL + "/img/photo.png"); p != exp {
		t.Errorf("local path. Got: %s, expected: %s", p, exp)
	}
	if w, h := imageSize(t, p); w != 40 || h != 30 {
		t.Errorf("downloaded image size %dx%d, expected 40x30", w, h)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/img/absent.png"); err == nil {
		t.Errorf("404 accepted")
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/img/empty.png"); !errors.Is(err, imgresize.ErrMediaIsEmpty) {
		t.Errorf("expected ErrMediaIsEmpty, got: %v", err)
	}
}

func TestPipeline_RemoteInput(t *testing.T) {
	srv := newImageServer(t)
	dir := t.TempDir()

	p := newPipeline(absConfig(10, 10), &fakeConverter{})
	f := imgresize.NewMediaFetcher(zerolog.Nop(), dir)
	p.SetFetcher(f)

	outcomes := p.ProcessAll(context.Background(), []string{srv.URL + "/img/photo.png", srv.URL + "/img/absent.png"})

	if !outcomes[0].OK() {
		t.Fatalf("remote image processing failed: %s", outcomes[0].Err.Error())
	}
	local, _ := f.LocalPath(srv.URL + "/img/photo.png")
	if _, exp := imgresize.OutputPaths(local, p.Config()); outcomes[0].Final != exp {
		t.Errorf("final path. Got: %s, expected: %s", outcomes[0].Final, exp)
	}
	if w, h := imageSize(t, outcomes[0].Final); w != 10 || h != 10 {
		t.Errorf("final size %dx%d, expected 10x10", w, h)
	}

	var ferr *imgresize.FetchError
	if !errors.As(outcomes[1].Err, &ferr) {
		t.Errorf("expected FetchError, got: %v", outcomes[1].Err)
	}
}

func TestPipeline_RemoteInputsSameBaseName(t *testing.T) {
	srv := newImageServer(t)

	cfg := imgresize.DefaultConfig()
	cfg.Resize = imgresize.Scaled(1)
	cfg.Workers = 2
	p := newPipeline(cfg, &fakeConverter{})
	p.SetFetcher(imgresize.NewMediaFetcher(zerolog.Nop(), t.TempDir()))

	outcomes := p.ProcessAll(context.Background(), []string{srv.URL + "/a/img.png", srv.URL + "/b/img.png"})

	for i, sz := range []int{10, 30} {
		o := outcomes[i]
		if !o.OK() {
			t.Fatalf("outcome %d failed: %s", i, o.Err.Error())
		}
		if w, h := imageSize(t, o.Final); w != sz || h != sz {
			t.Errorf("outcome %d: final %s is %dx%d, expected %dx%d", i, o.Final, w, h, sz, sz)
		}
	}
	if outcomes[0].Intermediate == outcomes[1].Intermediate || outcomes[0].Final == outcomes[1].Final {
		t.Errorf("different urls share artifacts: %s, %s", outcomes[0].Final, outcomes[1].Final)
	}
}
