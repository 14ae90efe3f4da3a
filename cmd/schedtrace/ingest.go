package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/schedtrace/schedtrace/internal/model"
	"github.com/schedtrace/schedtrace/pkg/parser"
)

// loadTrace reads and extracts a full trace from a serial capture file.
func loadTrace(ctx context.Context, path, policy string) (model.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Trace{}, fmt.Errorf("input file not found: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.Trace{}, fmt.Errorf("failed to stat input: %w", err)
	}

	bar := newIngestBar(info.Size(), filepath.Base(path))
	defer bar.Clear()

	trace := model.Trace{Policy: policy}
	events := make(chan model.Event, 1024)

	p := parser.NewSerialParser(parser.DefaultConfig())
	g, ctx := errgroup.WithContext(ctx)

	reader := progressbar.NewReader(f, bar)
	g.Go(func() error {
		defer close(events)
		return p.Parse(ctx, &reader, events)
	})
	g.Go(func() error {
		for event := range events {
			trace.Events = append(trace.Events, event)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Trace{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return trace, nil
}

// newIngestBar creates a byte-progress bar for file ingestion.
func newIngestBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// policyLabel derives a policy label from a flag value or the trace file
// name ("edf_log.csv" → "EDF").
func policyLabel(flag, path string) string {
	if flag != "" {
		return flag
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.IndexAny(base, "_-."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		return "TRACE"
	}
	return strings.ToUpper(base)
}
