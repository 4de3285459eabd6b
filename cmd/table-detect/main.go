// Command table-detect runs table-structure detection over a directory of
// images and writes annotated pred_<name> copies next to (or instead of) the
// inputs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/tablesense/go-table-detect/inference"
	"github.com/tablesense/go-table-detect/pipeline"
	"github.com/tablesense/go-table-detect/postprocess"
)

func main() {
	var (
		modelPath    string
		inputDir     string
		outputDir    string
		targetSize   int
		confidence   float64
		iou          float64
		skipNMS      bool
		downscale    bool
		workers      int
		imageTimeout time.Duration
		debug        bool
	)
	flag.StringVar(&modelPath, "model", "table-model", "Path to the ONNX model (with or without .onnx extension)")
	flag.StringVar(&inputDir, "input", ".", "Directory of images to process")
	flag.StringVar(&outputDir, "output", "", "Output directory (defaults to the input directory)")
	flag.IntVar(&targetSize, "size", pipeline.DefaultTargetSize, "Model input side length in pixels")
	flag.Float64Var(&confidence, "confidence", postprocess.DefaultConfidenceThreshold, "Detection confidence threshold")
	flag.Float64Var(&iou, "iou", postprocess.DefaultIoUThreshold, "NMS IoU threshold")
	flag.BoolVar(&skipNMS, "skip-nms", false, "Skip NMS (for models with suppression baked in)")
	flag.BoolVar(&downscale, "downscale-only", false, "Anchor images at the origin instead of centered letterboxing")
	flag.IntVar(&workers, "workers", 4, "Number of images processed concurrently")
	flag.DurationVar(&imageTimeout, "image-timeout", 0, "Per-image timeout (0 disables)")
	flag.BoolVar(&debug, "debug", false, "Verbose per-stage logging")
	flag.Parse()

	if outputDir == "" {
		outputDir = inputDir
	}

	session, err := inference.NewSession(modelPath, targetSize, nil)
	if err != nil {
		log.Fatalf("loading model: %v", err)
	}
	defer session.Close()

	mode := pipeline.FixedCanvasLetterbox
	if downscale {
		mode = pipeline.MaxSideDownscaleOnly
	}

	processor := pipeline.NewProcessor(pipeline.Config{
		TargetSize:          targetSize,
		LetterboxMode:       mode,
		ConfidenceThreshold: float32(confidence),
		IoUThreshold:        float32(iou),
		SkipNMS:             skipNMS,
		Workers:             workers,
		PerImageTimeout:     imageTimeout,
		Debug:               debug,
	}, session)

	summary, err := processor.ProcessDirectory(context.Background(), inputDir, outputDir)
	if err != nil {
		log.Fatalf("processing %s: %v", inputDir, err)
	}

	log.Printf("done: %d processed, %d failed", summary.Processed, summary.Failed)
	if summary.Processed == 0 && summary.Failed > 0 {
		os.Exit(1)
	}
}
