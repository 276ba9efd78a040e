package cli

import (
	"time"

	"codeberg.org/maclinea/ledgerlingo/internal/batch"
	"codeberg.org/maclinea/ledgerlingo/internal/processor"
	"codeberg.org/maclinea/ledgerlingo/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	InputPath   string
	OutputPath  string
	Backup      bool
	DryRun      bool
	ListModels  bool
	ModelFilter string

	// Endpoint flags
	Model   string
	BaseURL string

	// Batch flags
	BatchSize   int
	Delay       time.Duration
	MaxTokens   int
	Temperature float32
	MaxFailures uint32
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		InputPath:   "public/dados/movimentos.csv",
		OutputPath:  "public/dados/traducao_it.json",
		Model:       translation.DefaultModel,
		BaseURL:     translation.DefaultBaseURL,
		BatchSize:   batch.DefaultSize,
		Delay:       processor.DefaultDelay,
		MaxTokens:   translation.DefaultMaxTokens,
		Temperature: translation.DefaultTemperature,
	}
}
