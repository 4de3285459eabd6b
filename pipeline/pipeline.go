// Package pipeline - Per-image detection pipeline and directory batch
// orchestration.
package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/tablesense/go-table-detect/images"
	"github.com/tablesense/go-table-detect/inference"
	"github.com/tablesense/go-table-detect/postprocess"
	"github.com/tablesense/go-table-detect/render"
	"github.com/tablesense/go-table-detect/tables"
	"github.com/tablesense/go-table-detect/util"
)

// LetterboxMode selects how source images are fitted to the model input.
type LetterboxMode int

const (
	// FixedCanvasLetterbox centers the downscaled image on a square canvas.
	FixedCanvasLetterbox LetterboxMode = iota
	// MaxSideDownscaleOnly downscales to fit the canvas but anchors the image
	// at the origin, padding only the right and bottom margins.
	MaxSideDownscaleOnly
)

// DefaultTargetSize is the square model input side the table models are
// trained at.
const DefaultTargetSize = 1600

// Inferencer runs the model on a prepared CHW input buffer. It is the
// function-shaped boundary to the inference runtime; *inference.Session
// satisfies it.
type Inferencer interface {
	Run(input []float32) (*postprocess.OutputTensor, error)
}

// Config defines one configurable pipeline covering all the experimental
// variants of the original scripts.
type Config struct {
	// TargetSize is the model input side length; 0 uses DefaultTargetSize.
	TargetSize int
	// LetterboxMode selects resize/pad behavior.
	LetterboxMode LetterboxMode
	// Background fills the canvas margins; nil uses black.
	Background color.Color
	// ConfidenceThreshold for decoding; 0 uses the postprocess default.
	ConfidenceThreshold float32
	// IoUThreshold for NMS; 0 uses the postprocess default.
	IoUThreshold float32
	// SkipNMS disables suppression for models with NMS baked in.
	SkipNMS bool
	// ClassNames maps class indices to names; nil uses tables.ClassNames.
	ClassNames []string
	// Palette holds per-class display colors; nil uses tables.Palette.
	Palette []color.RGBA
	// Workers bounds directory-level concurrency; 0 or less means 1.
	Workers int
	// PerImageTimeout aborts a single image's run when exceeded; 0 disables.
	PerImageTimeout time.Duration
	// Debug enables verbose per-stage logging.
	Debug bool
}

// withDefaults returns a copy of the config with zero values filled in.
func (c Config) withDefaults() Config {
	if c.TargetSize <= 0 {
		c.TargetSize = DefaultTargetSize
	}
	if c.Background == nil {
		c.Background = color.Black
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = postprocess.DefaultConfidenceThreshold
	}
	if c.IoUThreshold <= 0 {
		c.IoUThreshold = postprocess.DefaultIoUThreshold
	}
	if c.ClassNames == nil {
		c.ClassNames = tables.ClassNames
	}
	if c.Palette == nil {
		c.Palette = tables.Palette
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// Processor runs source images through preprocess, inference, decoding, NMS,
// and rendering.
type Processor struct {
	config Config
	infer  Inferencer
}

// NewProcessor creates a Processor with defaults applied.
//
// Arguments:
//   - config: Pipeline configuration; zero values are defaulted.
//   - infer: The inference runtime boundary.
//
// Returns:
//   - *Processor: The ready processor.
func NewProcessor(config Config, infer Inferencer) *Processor {
	return &Processor{config: config.withDefaults(), infer: infer}
}

// buildCanvas fits img onto a square canvas per the configured mode and
// returns the transform needed to invert detection coordinates.
func (p *Processor) buildCanvas(img image.Image) (*image.RGBA, images.LetterboxTransform) {
	if p.config.LetterboxMode == FixedCanvasLetterbox {
		return images.Letterbox(img, p.config.TargetSize, p.config.Background)
	}

	// MaxSideDownscaleOnly: anchor at the origin so the transform has zero
	// padding and coordinate inversion reduces to a pure rescale.
	scaled, t := images.DownscaleMaxSide(img, p.config.TargetSize)
	canvas := image.NewRGBA(image.Rect(0, 0, p.config.TargetSize, p.config.TargetSize))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{p.config.Background}, image.Point{}, draw.Src)
	draw.Draw(canvas, scaled.Bounds().Sub(scaled.Bounds().Min), scaled, scaled.Bounds().Min, draw.Over)
	return canvas, t
}

// Detect runs a decoded source image through the full pipeline and returns
// the final detections in original-image coordinates.
//
// Arguments:
//   - ctx: Deadline/cancellation for this image; checked between stages.
//   - img: The decoded source image.
//
// Returns:
//   - []postprocess.Result: Final detections.
//   - error: Preprocessing, inference, or decoding failures.
func (p *Processor) Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	canvas, transform := p.buildCanvas(img)
	if p.config.Debug {
		log.Printf("[DEBUG] letterbox: scale=%.4f pad=(%.1f, %.1f) canvas=%d",
			transform.Scale, transform.PadX, transform.PadY, transform.TargetSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input := inference.PrepareInput(canvas, p.config.TargetSize)
	tensor, err := p.infer.Run(input)
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := postprocess.Decode(tensor, transform, &postprocess.Config{
		NumClasses:          len(p.config.ClassNames),
		ConfidenceThreshold: p.config.ConfidenceThreshold,
		IoUThreshold:        p.config.IoUThreshold,
		SkipNMS:             p.config.SkipNMS,
		ClassNames:          p.config.ClassNames,
	})
	if err != nil {
		return nil, err
	}
	if p.config.Debug {
		log.Printf("[DEBUG] decoded %d detections", len(results))
	}
	return results, nil
}

// ProcessFile loads one image, detects table structure in it, and writes the
// annotated copy to outputPath.
//
// Arguments:
//   - ctx: Deadline/cancellation for this image.
//   - path: Source image path.
//   - outputPath: Destination for the annotated image; the format follows the
//     file extension.
//
// Returns:
//   - []postprocess.Result: Final detections.
//   - error: Any per-image failure; callers treat it as isolated.
func (p *Processor) ProcessFile(ctx context.Context, path, outputPath string) ([]postprocess.Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	detections, err := p.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	annotated := render.Draw(img, detections, p.config.Palette)
	if err := imaging.Save(annotated, outputPath, imaging.JPEGQuality(90)); err != nil {
		return detections, errors.Wrapf(err, "saving %s", outputPath)
	}
	return detections, nil
}

// Summary reports the outcome of a directory run.
type Summary struct {
	// Processed is the number of images fully processed.
	Processed int
	// Failed is the number of images skipped due to per-image errors.
	Failed int
}

// ProcessDirectory runs every image in inputDir through the pipeline with
// bounded concurrency, writing "pred_<name>" outputs to outputDir. Each
// image's failure is logged and isolated; the batch always runs to
// completion.
//
// Arguments:
//   - ctx: Cancellation for the whole batch.
//   - inputDir: Directory scanned for images.
//   - outputDir: Directory receiving annotated outputs; typically inputDir.
//
// Returns:
//   - Summary: Processed/failed counts.
//   - error: Only when the input directory itself cannot be read.
func (p *Processor) ProcessDirectory(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	files, err := util.LoadDirectoryImageFiles(inputDir)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "scanning %s", inputDir)
	}

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, p.config.Workers)

	for _, file := range files {
		wg.Add(1)
		go func(file util.ImageFile) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			imgCtx := ctx
			if p.config.PerImageTimeout > 0 {
				var cancel context.CancelFunc
				imgCtx, cancel = context.WithTimeout(ctx, p.config.PerImageTimeout)
				defer cancel()
			}

			outputPath := filepath.Join(outputDir, "pred_"+file.Name)
			detections, err := p.ProcessFile(imgCtx, file.Path, outputPath)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				log.Printf("skipping %s: %v", file.Name, err)
				return
			}
			summary.Processed++
			log.Printf("%s: %d detections -> %s", file.Name, len(detections), outputPath)
		}(file)
	}

	wg.Wait()
	return summary, nil
}
