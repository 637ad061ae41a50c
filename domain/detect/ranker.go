package detect

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
)

// TemplateSource enumerates and decodes reference images.
type TemplateSource interface {
	Paths() ([]string, error)
	Load(path string) (image.Image, error)
}

// TemplateMatcher scores one preprocessed template against a capture.
type TemplateMatcher interface {
	Match(target *Target, tmpl *image.Gray) MultiScaleResult
}

// Ranker evaluates every template of a source and picks the best one.
type Ranker struct {
	Matcher         TemplateMatcher
	Threshold       float64
	HighlightCutoff uint8
	Workers         int // templates evaluated concurrently; below 2 is sequential
	Logger          *slog.Logger
}

type rankSlot struct {
	result MatchResult
	loaded bool
	err    error
}

// Rank loads, preprocesses and scores each template. Unreadable templates are
// skipped and counted. The winner is the highest score; on ties the template
// enumerated first wins.
func (r *Ranker) Rank(ctx context.Context, target *Target, src TemplateSource) (Outcome, error) {
	paths, err := src.Paths()
	if err != nil {
		return classify(nil, r.Threshold), fmt.Errorf("list templates: %w", err)
	}

	slots := make([]rankSlot, len(paths))
	eval := func(i int) {
		path := paths[i]
		img, err := src.Load(path)
		if err != nil {
			slots[i].err = err
			return
		}
		tmpl := PreprocessTemplate(img, r.HighlightCutoff)
		slots[i].loaded = true
		slots[i].result = MatchResult{
			Template:         filepath.Base(path),
			Path:             path,
			MultiScaleResult: r.Matcher.Match(target, tmpl),
		}
	}

	if r.Workers < 2 {
		for i := range paths {
			if err := ctx.Err(); err != nil {
				return classify(nil, r.Threshold), err
			}
			eval(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, r.Workers)
	loop:
		for i := range paths {
			select {
			case <-ctx.Done():
				break loop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				eval(i)
			}(i)
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return classify(nil, r.Threshold), err
		}
	}

	var best *MatchResult
	evaluated, failed := 0, 0
	for i := range slots {
		s := &slots[i]
		if s.err != nil {
			failed++
			r.log().Debug("template.skip", "path", paths[i], "error", s.err)
			continue
		}
		if !s.loaded || s.result.ScalesEvaluated == 0 {
			r.log().Debug("template.no_scale", "path", paths[i])
			continue
		}
		evaluated++
		r.log().Debug("template.score",
			"template", s.result.Template,
			"score", s.result.Score,
			"scale", s.result.Scale,
			"scales_evaluated", s.result.ScalesEvaluated,
			"scales_skipped", s.result.ScalesSkipped,
		)
		if best == nil || s.result.Score > best.Score {
			best = &s.result
		}
	}
	out := classify(best, r.Threshold)
	out.Evaluated, out.Failed = evaluated, failed
	return out, nil
}

func (r *Ranker) log() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
