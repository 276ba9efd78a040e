package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/maclinea/ledgerlingo/internal/translation"
)

// Lister handles listing available chat models
type Lister struct {
	config translation.Config
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(cfg translation.Config) *Lister {
	return &Lister{
		config: cfg,
		client: translation.NewClient(cfg),
	}
}

// Models returns the sorted model ids that contain filter
func (l *Lister) Models(ctx context.Context, filter string) ([]string, error) {
	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	filter = strings.ToLower(filter)
	var ids []string
	for _, model := range models.Models {
		if filter != "" && !strings.Contains(strings.ToLower(model.ID), filter) {
			continue
		}
		ids = append(ids, model.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListAvailableModels prints the models to w, marking the configured one
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, filter string) error {
	ids, err := l.Models(ctx, filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Available models at %s:\n", l.config.BaseURL)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  No models found")
		return nil
	}
	for _, id := range ids {
		marker := " "
		if id == l.config.Model {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, id)
	}
	return nil
}
