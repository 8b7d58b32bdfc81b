package imgresize

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// PlainTextFileInput implements interface Inputer and provides image paths
// from plain text file, one per line. Empty lines and lines starting with
// '#' are skipped.
type PlainTextFileInput struct {
	line        chan string
	log         zerolog.Logger
	linesPassed int
}

// NewPlainTextFileInput returns new instance of PlainTextFileInput.
func NewPlainTextFileInput(l zerolog.Logger) *PlainTextFileInput {
	return &PlainTextFileInput{log: l.With().Str("component", "inputer").Logger(), line: make(chan string)}
}

// Start opens an input file in read only mode and starts runner (separate goroutine) of line by
// line reading to chan string. Returns error if could not open a file.
func (inp *PlainTextFileInput) Start(ctx context.Context, fname string) error {

	file, err := os.Open(fname)
	if err != nil {
		return err
	}

	go func() {
		inp.runner(ctx, file)
		close(inp.line)
		_ = file.Close() // we can ignore file.Close() error because of readonly mode.
	}()
	return nil
}

func (inp *PlainTextFileInput) runner(ctx context.Context, file *os.File) {

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		// catching ctx.Done() while line chan is full.
		select {
		case inp.line <- s:
			inp.linesPassed++
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		inp.log.Error().Str("errmsg", err.Error()).Msg("scanner failed")
		return
	}
	inp.log.Debug().Int("lines", inp.linesPassed).Msg("reached EOF")
}

// Next returns chan with paths read from file.
func (inp *PlainTextFileInput) Next() <-chan string {
	return inp.line
}

// ReadAll drains Inputer and returns all paths in the order they were read.
func ReadAll(in Inputer) []string {
	var paths []string
	for p := range in.Next() {
		paths = append(paths, p)
	}
	return paths
}
