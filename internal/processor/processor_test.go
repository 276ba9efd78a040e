package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/maclinea/ledgerlingo/internal/dictionary"
	"codeberg.org/maclinea/ledgerlingo/internal/testutil"
	"codeberg.org/maclinea/ledgerlingo/internal/translation"
)

// ledgerRows returns rows that yield exactly 2*n unique strings
func ledgerRows(n int) []string {
	var rows []string
	for i := 0; i < n; i++ {
		rows = append(rows, testutil.LedgerRow(fmt.Sprintf("%d - Categoria %d", i, i), fmt.Sprintf("Histórico %d", i)))
		// duplicates must not add work
		rows = append(rows, testutil.LedgerRow(fmt.Sprintf("Categoria %d", i), fmt.Sprintf("Histórico %d", i)))
	}
	rows = append(rows, "linha;curta")
	return rows
}

type runner struct {
	proc   *Processor
	sleeps []time.Duration
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newRunner(opts Options, translator BatchTranslator) *runner {
	r := &runner{proc: NewProcessor(opts, translator)}
	r.proc.SetOutput(&r.out, &r.errOut)
	r.proc.SetSleep(func(d time.Duration) { r.sleeps = append(r.sleeps, d) })
	return r
}

func testOptions(t *testing.T, rows []string) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		InputPath:  testutil.WriteLedger(t, dir, rows),
		OutputPath: filepath.Join(dir, "dados", "traducao_it.json"),
		BatchSize:  35,
		Delay:      DefaultDelay,
	}
}

func TestRun_TwoBatches(t *testing.T) {
	opts := testOptions(t, ledgerRows(20))
	mock := &testutil.MockTranslator{}
	r := newRunner(opts, mock)

	summary, err := r.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Unique != 40 || summary.Outstanding != 40 {
		t.Errorf("Expected 40 unique and outstanding strings, got %+v", summary)
	}
	if len(mock.Calls) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(mock.Calls))
	}
	if len(mock.Calls[0]) != 35 || len(mock.Calls[1]) != 5 {
		t.Errorf("Expected batch sizes 35 and 5, got %d and %d", len(mock.Calls[0]), len(mock.Calls[1]))
	}
	if mock.Calls[1][0].ID != 1 {
		t.Errorf("Expected ids to restart at 1 in every batch, got %d", mock.Calls[1][0].ID)
	}
	if len(r.sleeps) != 1 || r.sleeps[0] != DefaultDelay {
		t.Errorf("Expected a single %v delay between batches, got %v", DefaultDelay, r.sleeps)
	}
	if summary.Translated != 40 || summary.FailedBatches != 0 {
		t.Errorf("Expected 40 translations and no failures, got %+v", summary)
	}

	dict := dictionary.Load(opts.OutputPath)
	if len(dict) != 40 {
		t.Errorf("Expected 40 saved translations, got %d", len(dict))
	}
	if dict["Categoria 3"] != "IT Categoria 3" {
		t.Errorf("Unexpected translation for Categoria 3: %q", dict["Categoria 3"])
	}

	out := r.out.String()
	for _, want := range []string{"Progress: 88% (35/40)", "Progress: 100% (40/40)", "New translations: 40", "Failed batches: 0", opts.OutputPath} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	opts := testOptions(t, ledgerRows(20))

	first := newRunner(opts, &testutil.MockTranslator{})
	if _, err := first.proc.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	saved, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read dictionary: %v", err)
	}

	mock := &testutil.MockTranslator{}
	second := newRunner(opts, mock)
	summary, err := second.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if summary.Outstanding != 0 {
		t.Errorf("Expected nothing outstanding, got %d", summary.Outstanding)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("Expected no requests, got %d", len(mock.Calls))
	}
	if summary.Saved {
		t.Error("Dictionary should not be rewritten when nothing is outstanding")
	}
	if !strings.Contains(second.out.String(), "Nothing to do") {
		t.Errorf("Expected completion notice, got:\n%s", second.out.String())
	}

	testutil.AssertFileContains(t, opts.OutputPath, string(saved))
}

func TestRun_IdempotentLatin1Ledger(t *testing.T) {
	opts := testOptions(t, []string{
		testutil.LedgerRow("1 - Transfer\xeancia", "TARIFA BANC\xc1RIA"),
		testutil.LedgerRow("2 - Impostos", "IOF S/ OPERA\xc7\xc3O"),
	})

	first := &testutil.MockTranslator{}
	summary, err := newRunner(opts, first).proc.Run(context.Background())
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if summary.Translated != 4 {
		t.Errorf("Expected 4 translations, got %d", summary.Translated)
	}
	if first.Calls[0][0].Text != "Transferência" {
		t.Errorf("Expected decoded text, got %q", first.Calls[0][0].Text)
	}

	second := &testutil.MockTranslator{}
	summary, err = newRunner(opts, second).proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if summary.Outstanding != 0 || len(second.Calls) != 0 {
		t.Errorf("Expected nothing outstanding on second run, got %d outstanding in %d calls", summary.Outstanding, len(second.Calls))
	}
}

func TestRun_FailedBatchContinues(t *testing.T) {
	opts := testOptions(t, ledgerRows(40)) // 80 strings: 35 + 35 + 10
	mock := &testutil.MockTranslator{
		Errors: map[int]error{1: &translation.RemoteServiceError{StatusCode: 502, Body: "bad gateway"}},
	}
	r := newRunner(opts, mock)

	summary, err := r.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(mock.Calls) != 3 {
		t.Errorf("Expected all 3 batches to be sent, got %d", len(mock.Calls))
	}
	if summary.FailedBatches != 1 {
		t.Errorf("Expected 1 failed batch, got %d", summary.FailedBatches)
	}
	if summary.Translated != 45 {
		t.Errorf("Expected 45 translations, got %d", summary.Translated)
	}
	if len(r.sleeps) != 2 {
		t.Errorf("Expected 2 delays, got %d", len(r.sleeps))
	}
	if !strings.Contains(r.errOut.String(), "Error in batch 35-70") {
		t.Errorf("Expected failure to be logged with its range, got:\n%s", r.errOut.String())
	}

	dict := dictionary.Load(opts.OutputPath)
	if len(dict) != 45 {
		t.Errorf("Expected 45 saved translations, got %d", len(dict))
	}

	// The failed strings are picked up by the next run
	retry := &testutil.MockTranslator{}
	summary, err = newRunner(opts, retry).proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Retry run failed: %v", err)
	}
	if summary.Outstanding != 35 || len(retry.Calls) != 1 {
		t.Errorf("Expected 35 outstanding strings in 1 batch, got %d in %d", summary.Outstanding, len(retry.Calls))
	}
}

func TestRun_PartialReply(t *testing.T) {
	opts := testOptions(t, ledgerRows(2))
	mock := &testutil.MockTranslator{
		Skip:  map[string]bool{"Histórico 1": true},
		Extra: map[int]string{99: "fuori intervallo"},
	}
	r := newRunner(opts, mock)

	summary, err := r.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Translated != 3 {
		t.Errorf("Expected 3 translations, got %d", summary.Translated)
	}

	dict := dictionary.Load(opts.OutputPath)
	if _, ok := dict["Histórico 1"]; ok {
		t.Error("Missing id should leave the string untranslated")
	}
	if len(dict) != 3 {
		t.Errorf("Expected 3 saved translations, got %v", dict)
	}
	for _, v := range dict {
		if v == "fuori intervallo" {
			t.Error("Ids outside the batch must be ignored")
		}
	}
}

func TestRun_KeepsExistingTranslations(t *testing.T) {
	opts := testOptions(t, ledgerRows(2))
	existing := dictionary.Dictionary{"Categoria 0": "Categoria zero", "Vecchio": "Antico"}
	if err := dictionary.Save(opts.OutputPath, existing); err != nil {
		t.Fatalf("Failed to seed dictionary: %v", err)
	}

	mock := &testutil.MockTranslator{}
	summary, err := newRunner(opts, mock).proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Existing != 2 || summary.Outstanding != 3 {
		t.Errorf("Expected 2 existing and 3 outstanding, got %+v", summary)
	}

	dict := dictionary.Load(opts.OutputPath)
	if dict["Categoria 0"] != "Categoria zero" || dict["Vecchio"] != "Antico" {
		t.Errorf("Existing translations were changed: %v", dict)
	}
	if len(dict) != 5 {
		t.Errorf("Expected 5 translations, got %d", len(dict))
	}
}

func TestRun_CorruptDictionary(t *testing.T) {
	opts := testOptions(t, ledgerRows(1))
	testutil.CreateTestFile(t, opts.OutputPath, []byte("{not json"))

	summary, err := newRunner(opts, &testutil.MockTranslator{}).proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Existing != 0 || summary.Translated != 2 {
		t.Errorf("Expected corrupt dictionary to be treated as empty, got %+v", summary)
	}
}

func TestRun_MissingLedger(t *testing.T) {
	opts := Options{
		InputPath:  filepath.Join(t.TempDir(), "missing.csv"),
		OutputPath: filepath.Join(t.TempDir(), "out.json"),
	}

	mock := &testutil.MockTranslator{}
	if _, err := newRunner(opts, mock).proc.Run(context.Background()); err == nil {
		t.Error("Expected error for missing ledger")
	}
	if len(mock.Calls) != 0 {
		t.Error("No batch should be sent without a ledger")
	}
	testutil.AssertFileNotExists(t, opts.OutputPath)
}

func TestRun_DryRun(t *testing.T) {
	opts := testOptions(t, ledgerRows(20))
	opts.DryRun = true

	r := newRunner(opts, nil)
	summary, err := r.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Batches != 2 {
		t.Errorf("Expected 2 planned batches, got %d", summary.Batches)
	}
	if len(r.sleeps) != 0 {
		t.Error("Dry run should not wait")
	}
	testutil.AssertFileNotExists(t, opts.OutputPath)
}

func TestRun_Backup(t *testing.T) {
	opts := testOptions(t, ledgerRows(1))
	opts.Backup = true
	if err := dictionary.Save(opts.OutputPath, dictionary.Dictionary{"Vecchio": "Antico"}); err != nil {
		t.Fatalf("Failed to seed dictionary: %v", err)
	}

	summary, err := newRunner(opts, &testutil.MockTranslator{}).proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.BackupPath == "" {
		t.Fatal("Expected a backup to be created")
	}
	testutil.AssertFileContains(t, summary.BackupPath, `"Vecchio": "Antico"`)
	testutil.AssertFileContains(t, opts.OutputPath, `"Categoria 0": "IT Categoria 0"`)
}

func TestRun_NoTranslator(t *testing.T) {
	opts := testOptions(t, ledgerRows(1))

	_, err := newRunner(opts, nil).proc.Run(context.Background())
	if err == nil {
		t.Error("Expected error when no translator is configured")
	}
}

func TestRun_WithChatEndpoint(t *testing.T) {
	server := testutil.NewChatServer(t, testutil.EchoTranslations)

	cfg := translation.DefaultConfig()
	cfg.APIKey = "test-api-key"
	cfg.BaseURL = server.URL
	translator, err := translation.NewTranslator(cfg)
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	opts := testOptions(t, ledgerRows(20))
	r := newRunner(opts, translator)
	summary, err := r.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if server.RequestCount() != 2 {
		t.Errorf("Expected 2 requests, got %d", server.RequestCount())
	}
	if summary.Translated != 40 {
		t.Errorf("Expected 40 translations, got %d", summary.Translated)
	}

	dict := dictionary.Load(opts.OutputPath)
	if dict["Histórico 7"] != "IT Histórico 7" {
		t.Errorf("Unexpected translation: %q", dict["Histórico 7"])
	}
}

func TestRun_RemoteFailureThroughEndpoint(t *testing.T) {
	server := testutil.NewChatServer(t, testutil.EchoTranslations)
	server.Close()

	cfg := translation.DefaultConfig()
	cfg.APIKey = "test-api-key"
	cfg.BaseURL = server.URL
	translator, err := translation.NewTranslator(cfg)
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	opts := testOptions(t, ledgerRows(1))
	r := newRunner(opts, translator)
	summary, err := r.proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should not fail on batch errors: %v", err)
	}
	if summary.FailedBatches != 1 || summary.Translated != 0 {
		t.Errorf("Expected 1 failed batch, got %+v", summary)
	}
	if !strings.Contains(r.errOut.String(), "Error in batch 0-2") {
		t.Errorf("Expected failure to be logged, got:\n%s", r.errOut.String())
	}
	// An empty dictionary is still written
	testutil.AssertFileExists(t, opts.OutputPath)
}
