package imgresize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrRemoteDisabled is returned for URL inputs when the pipeline has no Fetcher.
var ErrRemoteDisabled = errors.New("remote inputs are not enabled")

// Pipeline implements core logic orchestration functionality.
// For every input it invocates Codec to decode the image, Resampler to resize it,
// Codec to store the intermediate artifact and Converter to produce the final
// JPEG. A failure of any step is recorded for that input only, the batch always
// runs over all inputs.
type Pipeline struct {
	cfg       Config
	codec     Codec
	resampler Resampler
	conv      Converter
	fetcher   Fetcher
	outputs   []Outputer
	log       zerolog.Logger
}

// NewPipeline returns new instance of Pipeline. Every outcome is passed to
// each of outs as soon as the input is processed.
func NewPipeline(l zerolog.Logger, cfg Config, c Codec, r Resampler, conv Converter, outs ...Outputer) *Pipeline {
	return &Pipeline{
		log:       l.With().Str("component", "pipeline").Logger(),
		cfg:       cfg,
		codec:     c,
		resampler: r,
		conv:      conv,
		outputs:   outs}
}

// SetFetcher enables http(s) URL inputs.
func (p *Pipeline) SetFetcher(f Fetcher) {
	p.fetcher = f
}

// Config returns pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// ProcessAll processes every path and returns outcomes in the order of paths.
// With Config.Workers > 1 inputs are processed by parallel goroutines, the
// order of returned outcomes is kept.
func (p *Pipeline) ProcessAll(ctx context.Context, paths []string) []Outcome {

	outcomes := make([]Outcome, len(paths))
	log := p.log.With().Str("batch", uuid.New().String()).Logger()
	started := time.Now()

	n := p.cfg.Workers
	if n > len(paths) {
		n = len(paths)
	}
	log.Info().Int("inputs", len(paths)).Int("workers", n).Str("resize", p.cfg.Resize.String()).Msg("batch started")

	if n <= 1 {
		for i := range paths {
			outcomes[i] = p.process(ctx, log, i, paths[i])
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(num int) {
				defer wg.Done()
				rlog := log.With().Int("runner", num).Logger()
				for idx := range jobs {
					// each runner owns the slot of the index it received.
					outcomes[idx] = p.process(ctx, rlog, idx, paths[idx])
				}
			}(i + 1)
		}
		for i := range paths {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	st := NewStats(outcomes, time.Since(started))
	log.Info().Int("total", st.Total).
		Int("succeeded", st.Succeeded).
		Int("failed", st.Failed).
		Str("dur", st.Duration.String()).Msg("batch completed")

	return outcomes
}

func (p *Pipeline) process(ctx context.Context, log zerolog.Logger, idx int, path string) Outcome {

	o := p.ProcessOne(ctx, path)
	o.Index = idx

	if o.OK() {
		log.Debug().Str("path", path).Str("final", o.Final).Str("dur", o.Duration.String()).Msg("image processed")
	} else {
		log.Error().Str("path", path).Str("errmsg", o.Err.Error()).Msg("image processing failed")
	}

	for _, out := range p.outputs {
		if err := out.Save(&o); err != nil {
			log.Error().Str("path", path).Str("errmsg", err.Error()).Msg("result saving failed")
		}
	}
	return o
}

// ProcessOne runs fetch (URL inputs only), decode, resize, encode and convert
// steps for a single input. Never panics, the first failed step ends
// processing and its error is returned in Outcome.Err.
func (p *Pipeline) ProcessOne(ctx context.Context, path string) (o Outcome) {

	t := time.Now()
	o.Input = path

	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("unexpected failure: %v", r)
		}
		o.Duration = time.Since(t)
	}()

	if err := ctx.Err(); err != nil {
		o.Err = fmt.Errorf("not processed: %w", err)
		return o
	}

	local := path
	if IsURL(path) {
		if p.fetcher == nil {
			o.Err = &FetchError{URL: path, Err: ErrRemoteDisabled}
			return o
		}
		var err error
		if local, err = p.fetcher.Fetch(ctx, path); err != nil {
			o.Err = &FetchError{URL: path, Err: err}
			return o
		}
	}

	o.Intermediate, o.Final = OutputPaths(local, p.cfg)

	img, err := p.codec.Decode(local)
	if err != nil {
		o.Err = &DecodeError{Path: local, Err: err}
		return o
	}

	b := img.Bounds()
	w, h := p.cfg.Resize.Target(b.Dx(), b.Dy())
	if w < 1 || h < 1 {
		o.Err = &ResizeError{Path: local, Err: fmt.Errorf("target size %dx%d of %dx%d image is empty", w, h, b.Dx(), b.Dy())}
		return o
	}

	resized := p.resampler.Resample(img, w, h)

	if err := p.codec.Encode(resized, o.Intermediate); err != nil {
		o.Err = &EncodeError{Path: o.Intermediate, Err: err}
		return o
	}

	if err := p.conv.Convert(ctx, o.Intermediate, o.Final); err != nil {
		var cerr *ConversionError
		if !errors.As(err, &cerr) {
			err = &ConversionError{Src: o.Intermediate, Dst: o.Final, Err: err}
		}
		o.Err = err
		return o
	}

	return o
}
