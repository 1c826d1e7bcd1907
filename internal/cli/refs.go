package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"redactbench/internal/record"
)

var errUnknownRef = errors.New("no match")

// resolveItem maps an id or 1-based position to an item. An empty ref is the
// current item.
func resolveItem(store *record.Store, ref string) (record.Item, int, error) {
	ref = strings.TrimSpace(ref)
	items := store.Items()
	if ref == "" {
		current, _ := store.Current()
		ref = current
	}
	for i, item := range items {
		if item.ID == ref {
			return item, i + 1, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return items[n-1], n, nil
	}
	return record.Item{}, 0, fmt.Errorf("item %q: %w", ref, errUnknownRef)
}

// resolveText maps original, 0, a 1-based variant position or an id to a
// text and its index. An empty ref is the first variant, or the original
// when the item has none.
func resolveText(item record.Item, ref string) (record.Text, int, error) {
	ref = strings.TrimSpace(ref)
	switch ref {
	case "":
		if len(item.Texts) > 1 {
			return item.Texts[1], 1, nil
		}
		return item.Texts[0], 0, nil
	case "original", "0":
		return item.Texts[0], 0, nil
	}
	if idx := item.TextIndex(ref); idx >= 0 {
		return item.Texts[idx], idx, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n < len(item.Texts) {
		return item.Texts[n], n, nil
	}
	return record.Text{}, 0, fmt.Errorf("text %q: %w", ref, errUnknownRef)
}

// resolveQA maps an id or 1-based position to a question probe.
func resolveQA(item record.Item, ref string) (record.QAEntry, int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return record.QAEntry{}, 0, errors.New("--qa is required")
	}
	if idx := item.QAIndex(ref); idx >= 0 {
		return item.QA[idx], idx, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(item.QA) {
		return item.QA[n-1], n - 1, nil
	}
	return record.QAEntry{}, 0, fmt.Errorf("question %q: %w", ref, errUnknownRef)
}

// textName is the display name of the text at index.
func textName(text record.Text, index int) string {
	return record.TextName(index, text.Label)
}

// snippet collapses whitespace and shortens text for one-line listings.
func snippet(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}
