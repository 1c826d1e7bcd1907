package runner

import (
	"context"
	"fmt"
	"strings"

	"redactbench/internal/record"
)

// GenerateItem asks the generator for an original text and stores it as a
// new, selected item.
func (r *Runner) GenerateItem(ctx context.Context) (record.Item, error) {
	if r.generator == nil {
		return record.Item{}, ErrNoGenerator
	}
	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	text, err := r.generator.OriginalText(callCtx)
	if err != nil {
		return record.Item{}, fmt.Errorf("generate original: %w", err)
	}
	item := r.store.AddItem(text)
	r.store.Select(item.ID)
	r.log.Info("generated item", "item_id", item.ID, "chars", len(text))
	return item, nil
}

// GenerateQA extracts question probes from the original text and appends
// them with redact=false.
func (r *Runner) GenerateQA(ctx context.Context, itemID string) ([]record.QAEntry, error) {
	if r.generator == nil {
		return nil, ErrNoGenerator
	}
	item, ok := r.store.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("generate qa %s: %w", itemID, ErrUnknownTarget)
	}
	original := item.Original().Text
	if strings.TrimSpace(original) == "" {
		return nil, fmt.Errorf("generate qa %s: %w", itemID, ErrEmptyOriginal)
	}
	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	pairs, err := r.generator.QuestionAnswers(callCtx, original)
	if err != nil {
		return nil, fmt.Errorf("generate qa: %w", err)
	}
	added := make([]record.QAEntry, 0, len(pairs))
	for _, pair := range pairs {
		if strings.TrimSpace(pair.Q) == "" {
			continue
		}
		entry, ok := r.store.AddQA(itemID, pair.Q, pair.A, false)
		if !ok {
			r.log.Warn("generated qa dropped, item removed in flight", "item_id", itemID)
			return added, fmt.Errorf("generate qa %s: %w", itemID, ErrUnknownTarget)
		}
		added = append(added, entry)
	}
	r.log.Info("generated qa", "item_id", itemID, "count", len(added))
	return added, nil
}

// GenerateVariant redacts the original under the item policy and appends
// the result as a new variant.
func (r *Runner) GenerateVariant(ctx context.Context, itemID string) (record.Text, error) {
	if r.generator == nil {
		return record.Text{}, ErrNoGenerator
	}
	item, ok := r.store.Item(itemID)
	if !ok {
		return record.Text{}, fmt.Errorf("generate variant %s: %w", itemID, ErrUnknownTarget)
	}
	original := item.Original().Text
	if strings.TrimSpace(original) == "" {
		return record.Text{}, fmt.Errorf("generate variant %s: %w", itemID, ErrEmptyOriginal)
	}
	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	redacted, err := r.generator.Redact(callCtx, original, item.Policy)
	if err != nil {
		return record.Text{}, fmt.Errorf("generate variant: %w", err)
	}
	text, ok := r.store.AddRedactedVariant(itemID, redacted, "")
	if !ok {
		return record.Text{}, fmt.Errorf("generate variant %s: %w", itemID, ErrUnknownTarget)
	}
	r.log.Info("generated variant", "item_id", itemID, "text_id", text.ID)
	return text, nil
}
