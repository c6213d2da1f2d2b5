package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Output writes tick records to ticks.csv and window summaries to summary.csv.
// A nil *Output discards everything.
type Output struct {
	dir         string
	ticksFile   *os.File
	summaryFile *os.File

	ticksHeaderWritten   bool
	summaryHeaderWritten bool
}

// NewOutput creates dir and opens the CSV files. Returns nil if dir is empty.
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	out := &Output{dir: dir}

	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating ticks.csv: %w", err)
	}
	out.ticksFile = f

	f, err = os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		out.ticksFile.Close()
		return nil, fmt.Errorf("creating summary.csv: %w", err)
	}
	out.summaryFile = f

	return out, nil
}

func (o *Output) WriteTicks(records []TickRecord) error {
	if o == nil || len(records) == 0 {
		return nil
	}

	if !o.ticksHeaderWritten {
		if err := gocsv.Marshal(records, o.ticksFile); err != nil {
			return fmt.Errorf("writing ticks: %w", err)
		}
		o.ticksHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, o.ticksFile); err != nil {
			return fmt.Errorf("writing ticks: %w", err)
		}
	}

	return nil
}

func (o *Output) WriteSummaries(summaries []WindowSummary) error {
	if o == nil || len(summaries) == 0 {
		return nil
	}

	if !o.summaryHeaderWritten {
		if err := gocsv.Marshal(summaries, o.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		o.summaryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(summaries, o.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

func (o *Output) Close() error {
	if o == nil {
		return nil
	}

	var firstErr error

	if o.ticksFile != nil {
		if err := o.ticksFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if o.summaryFile != nil {
		if err := o.summaryFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
