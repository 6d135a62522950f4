package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	ffmpegbin "github.com/mgpai22/cutaway/internal/ffmpeg"
	"github.com/mgpai22/cutaway/internal/logging"
	"github.com/mgpai22/cutaway/internal/timeline"
)

// output settings for composition
type Options struct {
	Width       int
	Height      int
	FPS         int
	BaseFootage string // played under narration; black frames when empty
	Concurrency int    // parallel clip downloads
}

// returns sensible defaults for a vertical ad
func DefaultOptions() Options {
	return Options{
		Width:       1080,
		Height:      1920,
		FPS:         30,
		Concurrency: 4,
	}
}

// one contiguous piece of the rendered video
type piece struct {
	Start    time.Duration
	Duration time.Duration
	Link     string // empty for narration footage
}

// Composer renders a final timeline over the narration audio.
type Composer struct {
	opts    Options
	tempDir string
	client  *http.Client
	logger  *logging.Logger
}

func NewComposer(tempDir string, opts Options, logger *logging.Logger) *Composer {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Composer{
		opts:    opts,
		tempDir: tempDir,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger,
	}
}

// Compose downloads the selected clips and renders outputPath.
func (c *Composer) Compose(
	ctx context.Context,
	intervals []timeline.Interval,
	narrationPath, outputPath string,
) error {
	if len(intervals) == 0 {
		return fmt.Errorf("nothing to compose: empty timeline")
	}
	if _, err := os.Stat(narrationPath); os.IsNotExist(err) {
		return fmt.Errorf("narration file not found: %s", narrationPath)
	}

	clips, err := c.download(ctx, intervals)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	args := c.Build(intervals, clips, narrationPath, outputPath).GetArgs()
	c.logger.Debugw("Running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg composition failed: %w: %s", err, tail(string(out), 500))
	}
	return nil
}

// Build returns the ffmpeg graph for intervals. clips maps each B-roll link
// to its local file.
func (c *Composer) Build(
	intervals []timeline.Interval,
	clips map[string]string,
	narrationPath, outputPath string,
) *ffmpeg.Stream {
	var streams []*ffmpeg.Stream
	for _, p := range plan(intervals) {
		streams = append(streams, c.pieceStream(p, clips))
	}

	video := ffmpeg.Concat(streams, ffmpeg.KwArgs{"v": 1, "a": 0})
	narration := ffmpeg.Input(narrationPath).Audio()

	return ffmpeg.Output(
		[]*ffmpeg.Stream{video, narration},
		outputPath,
		ffmpeg.KwArgs{
			"c:v":      "libx264",
			"pix_fmt":  "yuv420p",
			"c:a":      "aac",
			"b:a":      "192k",
			"shortest": "",
		},
	).OverWriteOutput()
}

func (c *Composer) pieceStream(p piece, clips map[string]string) *ffmpeg.Stream {
	seconds := p.Duration.Seconds()

	var in *ffmpeg.Stream
	switch {
	case p.Link != "":
		in = ffmpeg.Input(clips[p.Link], ffmpeg.KwArgs{"t": seconds})
	case c.opts.BaseFootage != "":
		in = ffmpeg.Input(c.opts.BaseFootage, ffmpeg.KwArgs{
			"ss": p.Start.Seconds(),
			"t":  seconds,
		})
	default:
		in = ffmpeg.Input(
			fmt.Sprintf("color=c=black:s=%dx%d:r=%d", c.opts.Width, c.opts.Height, c.opts.FPS),
			ffmpeg.KwArgs{"f": "lavfi", "t": seconds},
		)
	}

	size := fmt.Sprintf("%d:%d", c.opts.Width, c.opts.Height)
	return in.Video().
		Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{size}).
		Filter("fps", ffmpeg.Args{fmt.Sprintf("%d", c.opts.FPS)}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"})
}

// turns intervals into render pieces, filling any lead-in or gap with
// narration footage so the video tracks the audio from zero
func plan(intervals []timeline.Interval) []piece {
	var (
		pieces []piece
		cursor time.Duration
	)
	for _, iv := range intervals {
		if iv.Start > cursor {
			pieces = append(pieces, piece{Start: cursor, Duration: iv.Start - cursor})
		}
		start := iv.Start
		if start < cursor {
			start = cursor
		}
		if iv.End <= start {
			continue
		}
		p := piece{Start: start, Duration: iv.End - start}
		if iv.IsBRoll {
			p.Link = iv.BRollLink
		}
		pieces = append(pieces, p)
		cursor = iv.End
	}
	return pieces
}

// fetches every distinct B-roll link into the temp dir
func (c *Composer) download(ctx context.Context, intervals []timeline.Interval) (map[string]string, error) {
	clips := map[string]string{}
	var links []string
	for _, iv := range intervals {
		if !iv.IsBRoll || iv.BRollLink == "" {
			continue
		}
		if _, seen := clips[iv.BRollLink]; seen {
			continue
		}
		ext := path.Ext(strings.SplitN(iv.BRollLink, "?", 2)[0])
		if ext == "" {
			ext = ".mp4"
		}
		clips[iv.BRollLink] = filepath.Join(c.tempDir, fmt.Sprintf("broll_%02d%s", len(links), ext))
		links = append(links, iv.BRollLink)
	}

	if err := os.MkdirAll(c.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for _, link := range links {
		g.Go(func() error {
			c.logger.Debugw("Downloading B-roll", "link", link)
			return c.fetch(gctx, link, clips[link])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

func (c *Composer) fetch(ctx context.Context, link, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("download %s: %w", link, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", link, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", link, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return out.Close()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
