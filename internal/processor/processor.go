package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"codeberg.org/maclinea/ledgerlingo/internal/archive"
	"codeberg.org/maclinea/ledgerlingo/internal/batch"
	"codeberg.org/maclinea/ledgerlingo/internal/dictionary"
	"codeberg.org/maclinea/ledgerlingo/internal/ledger"
)

// DefaultDelay is the pause between two batches
const DefaultDelay = 2500 * time.Millisecond

// BatchTranslator translates one batch of items, keyed by item id
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, items []batch.Item) (map[int]string, error)
}

// Options configures a run
type Options struct {
	InputPath  string
	OutputPath string
	BatchSize  int
	Delay      time.Duration
	// Backup copies the existing dictionary to the archive before saving
	Backup bool
	// DryRun reports the plan without translating or writing
	DryRun bool
}

// Summary reports what a run did
type Summary struct {
	Unique        int
	Existing      int
	Outstanding   int
	Batches       int
	Translated    int
	FailedBatches int
	OutputPath    string
	BackupPath    string
	Saved         bool
}

// Processor handles the translation run
type Processor struct {
	opts       Options
	translator BatchTranslator
	sleep      func(time.Duration)
	out        io.Writer
	errOut     io.Writer
}

// NewProcessor creates a processor. translator may be nil for dry runs.
func NewProcessor(opts Options, translator BatchTranslator) *Processor {
	if opts.BatchSize == 0 {
		opts.BatchSize = batch.DefaultSize
	}
	return &Processor{
		opts:       opts,
		translator: translator,
		sleep:      time.Sleep,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// SetOutput redirects progress and error reporting
func (p *Processor) SetOutput(out, errOut io.Writer) {
	p.out = out
	p.errOut = errOut
}

// SetSleep replaces the function used to wait between batches
func (p *Processor) SetSleep(sleep func(time.Duration)) {
	p.sleep = sleep
}

// Run executes the whole pipeline. Failed batches are counted and reported
// but do not stop the run; only ledger and save errors are returned.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	summary := Summary{OutputPath: p.opts.OutputPath}

	fmt.Fprintf(p.out, "Reading %s...\n", p.opts.InputPath)
	uniques, err := ledger.CollectFile(p.opts.InputPath)
	if err != nil {
		return summary, err
	}
	summary.Unique = len(uniques)
	fmt.Fprintf(p.out, "Unique strings found: %d\n", summary.Unique)

	dict := dictionary.Load(p.opts.OutputPath)
	summary.Existing = len(dict)
	fmt.Fprintf(p.out, "Already translated: %d\n", summary.Existing)

	outstanding := batch.Outstanding(uniques, dict)
	summary.Outstanding = len(outstanding)
	fmt.Fprintf(p.out, "Missing translations: %d\n", summary.Outstanding)

	if len(outstanding) == 0 {
		fmt.Fprintf(p.out, "Nothing to do. Dictionary is already complete.\n")
		return summary, nil
	}

	chunks, err := batch.Split(outstanding, p.opts.BatchSize)
	if err != nil {
		return summary, err
	}
	summary.Batches = len(chunks)

	if p.opts.DryRun {
		fmt.Fprintf(p.out, "Dry run: %d batches of up to %d strings would be sent\n", len(chunks), p.opts.BatchSize)
		return summary, nil
	}
	if p.translator == nil {
		return summary, fmt.Errorf("no translator configured")
	}

	for _, chunk := range chunks {
		summary.Translated += p.translateChunk(ctx, chunk, dict, &summary)

		done := min(chunk.End, len(outstanding))
		fmt.Fprintf(p.out, "Progress: %d%% (%d/%d)\n", batch.Progress(done, len(outstanding)), done, len(outstanding))

		if chunk.Index < len(chunks)-1 && p.opts.Delay > 0 {
			p.sleep(p.opts.Delay)
		}
	}

	if p.opts.Backup {
		backupPath, err := archive.BackupFile(p.opts.OutputPath)
		if err != nil {
			fmt.Fprintf(p.errOut, "Warning: Failed to back up dictionary: %v\n", err)
		} else if backupPath != "" {
			summary.BackupPath = backupPath
			fmt.Fprintf(p.out, "Previous dictionary archived to: %s\n", backupPath)
		}
	}

	if err := dictionary.Save(p.opts.OutputPath, dict); err != nil {
		return summary, err
	}
	summary.Saved = true

	fmt.Fprintf(p.out, "\n=== Translation Summary ===\n")
	fmt.Fprintf(p.out, "New translations: %d\n", summary.Translated)
	fmt.Fprintf(p.out, "Failed batches: %d\n", summary.FailedBatches)
	fmt.Fprintf(p.out, "Output file: %s\n", summary.OutputPath)
	fmt.Fprintf(p.out, "===========================\n")

	return summary, nil
}

// translateChunk sends one chunk and merges the result into dict. It
// returns the number of merged strings.
func (p *Processor) translateChunk(ctx context.Context, chunk batch.Chunk, dict dictionary.Dictionary, summary *Summary) int {
	items := chunk.Items()

	translated, err := p.translator.TranslateBatch(ctx, items)
	if err != nil {
		summary.FailedBatches++
		fmt.Fprintf(p.errOut, "Error in batch %d-%d: %v\n", chunk.Start, chunk.End, err)
		return 0
	}

	merged := 0
	for _, item := range items {
		text, ok := translated[item.ID]
		if !ok || text == "" {
			continue
		}
		dict[item.Text] = text
		merged++
	}
	return merged
}
