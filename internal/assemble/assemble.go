// Package assemble runs the ad pipeline: script, narration, B-roll search,
// alignment and optional rendering.
package assemble

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/cutaway/internal/broll"
	"github.com/mgpai22/cutaway/internal/logging"
	"github.com/mgpai22/cutaway/internal/script"
	"github.com/mgpai22/cutaway/internal/speech"
	"github.com/mgpai22/cutaway/internal/timeline"
)

// pipeline stage reported to the status callback
type Stage string

const (
	StageScript       Stage = "script"
	StageSynthesizing Stage = "synthesizing"
	StageSearching    Stage = "searching"
	StageAligning     Stage = "aligning"
	StageComposing    Stage = "composing"
	StageDone         Stage = "done"
)

// Status is one progress event.
type Status struct {
	Stage   Stage
	Message string
}

// StatusFunc receives progress events. It may be called from several
// goroutines at once.
type StatusFunc func(Status)

// renders the final timeline over the narration
type Composer interface {
	Compose(ctx context.Context, intervals []timeline.Interval, narrationPath, outputPath string) error
}

// Request describes one ad. Segments wins over Brief when both are set.
type Request struct {
	Segments      []timeline.ScriptSegment
	Brief         *script.Brief
	NarrationPath string // synthesized audio is written here
	VideoPath     string // rendered when non-empty and a Composer is set
}

// Result is everything the pipeline produced.
type Result struct {
	Segments   []timeline.ScriptSegment
	Narration  *speech.Result
	Candidates [][]timeline.Candidate // search results per segment
	Plan       *timeline.Plan
}

// Assembler wires the collaborators together.
type Assembler struct {
	Writer      script.Writer
	Synthesizer speech.Synthesizer
	Searcher    broll.Searcher
	Composer    Composer
	Selector    *timeline.Selector
	Search      broll.Options
	Logger      *logging.Logger
	OnStatus    StatusFunc
}

var ErrNoScript = errors.New("no script segments")

// Run executes the pipeline. Synthesis and candidate search run
// concurrently; alignment waits for both.
func (a *Assembler) Run(ctx context.Context, req Request) (*Result, error) {
	logger := a.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	if a.Synthesizer == nil || a.Searcher == nil {
		return nil, fmt.Errorf("assembler needs a synthesizer and a searcher")
	}

	segments, err := a.script(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Infow("Script ready", "segments", len(segments))

	var (
		narration  *speech.Result
		candidates [][]timeline.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.emit(StageSynthesizing, "synthesizing narration")
		res, err := a.Synthesizer.Synthesize(gctx, speech.Narration(segments), req.NarrationPath)
		if err != nil {
			return fmt.Errorf("speech synthesis failed: %w", err)
		}
		narration = res
		logger.Infow("Narration synthesized",
			"words", len(res.Words),
			"duration", res.Duration.String(),
		)
		return nil
	})
	g.Go(func() error {
		a.emit(StageSearching, "searching B-roll")
		opts := a.Search
		if opts.Logger == nil {
			opts.Logger = logger
		}
		found, err := broll.SearchAll(gctx, a.Searcher, segments, opts)
		if err != nil {
			return fmt.Errorf("B-roll search failed: %w", err)
		}
		candidates = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.emit(StageAligning, "aligning timeline")
	plan, err := timeline.Build(segments, narration.Words, candidates, a.Selector)
	if err != nil {
		return nil, fmt.Errorf("alignment failed: %w", err)
	}
	logger.Infow("Timeline built",
		"intervals", len(plan.Intervals),
		"duration", plan.Duration().String(),
	)

	if req.VideoPath != "" && a.Composer != nil {
		a.emit(StageComposing, "rendering video")
		if err := a.Composer.Compose(ctx, plan.Intervals, narration.AudioPath, req.VideoPath); err != nil {
			return nil, fmt.Errorf("composition failed: %w", err)
		}
	}

	a.emit(StageDone, "done")
	return &Result{
		Segments:   segments,
		Narration:  narration,
		Candidates: candidates,
		Plan:       plan,
	}, nil
}

func (a *Assembler) script(ctx context.Context, req Request) ([]timeline.ScriptSegment, error) {
	if len(req.Segments) > 0 {
		segments := script.Sanitize(req.Segments)
		if len(segments) == 0 {
			return nil, ErrNoScript
		}
		return segments, nil
	}
	if req.Brief == nil || a.Writer == nil {
		return nil, ErrNoScript
	}

	a.emit(StageScript, "writing script")
	segments, err := a.Writer.Write(ctx, *req.Brief)
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}
	if len(segments) == 0 {
		return nil, ErrNoScript
	}
	return segments, nil
}

func (a *Assembler) emit(stage Stage, msg string) {
	if a.OnStatus != nil {
		a.OnStatus(Status{Stage: stage, Message: msg})
	}
}
