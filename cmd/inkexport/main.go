// Package main implements inkexport, which renders a recorded writing
// attempt to the same PNG the server sends to the assessor.
//
// Usage:
//
//	inkexport -in attempt.json -out attempt.png [-style color|calligraphy] [-size 512]
//
// The input is a JSON attempt with character, strokes, canvas_width and
// canvas_height. "-" reads standard input or writes standard output.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
	"github.com/phrazzld/kanji-ink/internal/redact"
)

// Export styles.
const (
	styleColor       = "color"
	styleCalligraphy = "calligraphy"
)

const maxSize = 4096

type options struct {
	in      string
	out     string
	style   string
	size    int
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("inkexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "-", "attempt JSON file, or - for stdin")
	fs.StringVar(&opts.out, "out", "-", "PNG output file, or - for stdout")
	fs.StringVar(&opts.style, "style", styleColor, "export style: color or calligraphy")
	fs.IntVar(&opts.size, "size", ink.ExportSize, "output edge length in pixels")
	fs.BoolVar(&opts.verbose, "verbose", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch {
	case opts.style != styleColor && opts.style != styleCalligraphy:
		return options{}, fmt.Errorf("unknown style %q", opts.style)
	case opts.size < 1 || opts.size > maxSize:
		return options{}, fmt.Errorf("size must be between 1 and %d", maxSize)
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "inkexport: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(stderr, level)

	attempt, err := readAttempt(opts.in, stdin)
	if err != nil {
		return err
	}
	log.Debug("attempt loaded",
		slog.String("character", attempt.Character),
		slog.Int("stroke_count", len(attempt.Strokes)))

	var out io.Writer = stdout
	if opts.out != "-" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Error("failed to close output", redact.ErrorAttr(err))
			}
		}()
		out = f
	}

	if err := export(out, attempt, opts.style, opts.size); err != nil {
		return err
	}

	log.Info("attempt exported",
		slog.String("character", attempt.Character),
		slog.String("style", opts.style),
		slog.Int("size", opts.size),
		slog.String("output", opts.out))
	return nil
}

// readAttempt decodes and validates an attempt. Missing canvas dimensions
// default to the export size.
func readAttempt(path string, stdin io.Reader) (*domain.Attempt, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open attempt: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var attempt domain.Attempt
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&attempt); err != nil {
		return nil, fmt.Errorf("failed to decode attempt: %w", err)
	}

	if len(attempt.Strokes) == 0 {
		return nil, errors.New("attempt has no strokes")
	}
	for i, stroke := range attempt.Strokes {
		for j, sample := range stroke.Samples {
			if err := sample.Validate(); err != nil {
				return nil, fmt.Errorf("stroke %d sample %d: %w", i, j, err)
			}
			stroke.Samples[j] = sample.Clamped()
		}
	}
	if attempt.CanvasWidth <= 0 {
		attempt.CanvasWidth = ink.ExportSize
	}
	if attempt.CanvasHeight <= 0 {
		attempt.CanvasHeight = ink.ExportSize
	}
	return &attempt, nil
}

func export(w io.Writer, attempt *domain.Attempt, style string, size int) error {
	if style == styleCalligraphy {
		img := ink.RenderCalligraphy(attempt.Strokes, attempt.CanvasWidth, attempt.CanvasHeight, size)
		return ink.EncodePNG(w, img)
	}
	return ink.NewExportRenderer(size).RenderPNG(w, attempt.Strokes, attempt.CanvasWidth, attempt.CanvasHeight)
}
