package record

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// sequentialIDs returns an id generator producing id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// seededStore builds a store with one item, two variants and two probes.
func seededStore(t *testing.T) (*Store, Item) {
	t.Helper()
	store := NewStore(WithIDFunc(sequentialIDs()))
	itemID, _ := store.Current()
	store.SetOriginalText(itemID, "Alice lives in Minnesota.")
	store.AddRedactedVariant(itemID, "Alice lives in [STATE].", "v1")
	store.AddRedactedVariant(itemID, "[NAME] lives in [STATE].", "v2")
	store.AddQA(itemID, "Who?", "Alice", false)
	store.AddQA(itemID, "Where?", "Minnesota", true)
	item, _ := store.Item(itemID)
	for _, text := range item.Texts {
		for _, qa := range item.QA {
			store.RecordAnswer(itemID, text.ID, qa.ID, "x")
			store.RecordScore(itemID, text.ID, qa.ID, 1)
		}
	}
	item, _ = store.Item(itemID)
	return store, item
}

// TestNewStoreHoldsBlankItem verifies a new store is never empty.
func TestNewStoreHoldsBlankItem(t *testing.T) {
	store := NewStore()
	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if len(items[0].Texts) != 1 || items[0].Texts[0].Text != "" {
		t.Fatalf("expected blank original, got %+v", items[0].Texts)
	}
	current, _ := store.Current()
	if current != items[0].ID {
		t.Fatalf("expected blank item to be current")
	}
}

// TestAddItemUsesInitialText verifies the original body is set on creation.
func TestAddItemUsesInitialText(t *testing.T) {
	store := NewStore()
	item := store.AddItem("hello")
	if item.Original().Text != "hello" {
		t.Fatalf("expected original text, got %q", item.Original().Text)
	}
	if len(item.QA) != 0 || len(item.Answers) != 0 || item.Policy != "" {
		t.Fatalf("expected empty item, got %+v", item)
	}
	if store.Len() != 2 {
		t.Fatalf("expected two items, got %d", store.Len())
	}
}

// TestDeleteLastItemLeavesBlank verifies the store never becomes empty.
func TestDeleteLastItemLeavesBlank(t *testing.T) {
	store, item := seededStore(t)
	if !store.DeleteItem(item.ID) {
		t.Fatalf("expected delete to apply")
	}
	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	blank := items[0]
	if blank.ID == item.ID {
		t.Fatalf("expected a fresh item id")
	}
	if len(blank.Texts) != 1 || len(blank.QA) != 0 || len(blank.Answers) != 0 {
		t.Fatalf("expected blank item, got %+v", blank)
	}
	current, text := store.Current()
	if current != blank.ID || text != "" {
		t.Fatalf("expected blank item selected, got %s/%s", current, text)
	}
}

// TestDeleteCurrentItemSelectsFirst verifies selection after deleting the current item.
func TestDeleteCurrentItemSelectsFirst(t *testing.T) {
	store := NewStore(WithIDFunc(sequentialIDs()))
	first, _ := store.Current()
	second := store.AddItem("two")
	third := store.AddItem("three")
	store.Select(third.ID)
	store.DeleteItem(third.ID)
	current, _ := store.Current()
	if current != first {
		t.Fatalf("expected first item selected, got %s", current)
	}
	store.Select(second.ID)
	store.DeleteItem(first)
	current, _ = store.Current()
	if current != second.ID {
		t.Fatalf("expected selection to stay on %s, got %s", second.ID, current)
	}
}

// TestDeleteAllItems verifies exactly one blank item remains.
func TestDeleteAllItems(t *testing.T) {
	store, _ := seededStore(t)
	store.AddItem("more")
	store.DeleteAllItems()
	items := store.Items()
	if len(items) != 1 || items[0].Original().Text != "" {
		t.Fatalf("expected one blank item, got %+v", items)
	}
}

// TestSetQuestionInvalidatesAcrossTexts verifies edits drop answers on every text.
func TestSetQuestionInvalidatesAcrossTexts(t *testing.T) {
	store, item := seededStore(t)
	qa := item.QA[0]
	if !store.SetQuestion(item.ID, qa.ID, "Who is it?") {
		t.Fatalf("expected edit to apply")
	}
	got, _ := store.Item(item.ID)
	for _, text := range got.Texts {
		if _, ok := got.Answer(text.ID, qa.ID); ok {
			t.Fatalf("expected answer for %s on %s to be removed", qa.ID, text.ID)
		}
		if _, ok := got.Answer(text.ID, item.QA[1].ID); !ok {
			t.Fatalf("expected other qa answers to remain on %s", text.ID)
		}
	}
	if got.QA[0].Q != "Who is it?" {
		t.Fatalf("expected question to be updated, got %q", got.QA[0].Q)
	}
}

// TestSetGoldAnswerInvalidates verifies gold edits drop answers, even when unchanged.
func TestSetGoldAnswerInvalidates(t *testing.T) {
	store, item := seededStore(t)
	qa := item.QA[1]
	store.SetGoldAnswer(item.ID, qa.ID, qa.A)
	got, _ := store.Item(item.ID)
	for _, text := range got.Texts {
		if _, ok := got.Answer(text.ID, qa.ID); ok {
			t.Fatalf("expected answer to be removed on %s", text.ID)
		}
	}
}

// TestSetRedactFlagKeepsAnswers verifies flag changes never invalidate.
func TestSetRedactFlagKeepsAnswers(t *testing.T) {
	store, item := seededStore(t)
	qa := item.QA[0]
	store.SetRedactFlag(item.ID, qa.ID, true)
	got, _ := store.Item(item.ID)
	if !got.QA[0].Redact {
		t.Fatalf("expected redact flag set")
	}
	if _, ok := got.Answer(item.Texts[1].ID, qa.ID); !ok {
		t.Fatalf("expected answers to survive flag change")
	}
}

// TestSetOriginalTextKeepsAnswers verifies the original edit leaves answers in place.
func TestSetOriginalTextKeepsAnswers(t *testing.T) {
	store, item := seededStore(t)
	store.SetOriginalText(item.ID, "Bob lives in Ohio.")
	got, _ := store.Item(item.ID)
	if got.Original().ID != item.Original().ID {
		t.Fatalf("expected original id to be preserved")
	}
	if _, ok := got.Answer(got.Original().ID, item.QA[0].ID); !ok {
		t.Fatalf("expected original answers to be kept")
	}
}

// TestDeleteQARemovesAnswers verifies probe deletion cascades.
func TestDeleteQARemovesAnswers(t *testing.T) {
	store, item := seededStore(t)
	qa := item.QA[0]
	store.DeleteQA(item.ID, qa.ID)
	got, _ := store.Item(item.ID)
	if got.QAIndex(qa.ID) >= 0 {
		t.Fatalf("expected qa to be removed")
	}
	for textID, bucket := range got.Answers {
		if _, ok := bucket[qa.ID]; ok {
			t.Fatalf("expected no answers for deleted qa on %s", textID)
		}
	}
}

// TestDeleteVariantRemovesBucket verifies variant deletion and selection.
func TestDeleteVariantRemovesBucket(t *testing.T) {
	store, item := seededStore(t)
	v1 := item.Texts[1]
	v2 := item.Texts[2]
	store.SelectText(v1.ID)
	store.DeleteVariant(item.ID, v1.ID)
	got, _ := store.Item(item.ID)
	if got.TextIndex(v1.ID) >= 0 {
		t.Fatalf("expected variant to be removed")
	}
	if _, ok := got.Answers[v1.ID]; ok {
		t.Fatalf("expected answers bucket to be removed")
	}
	_, selected := store.Current()
	if selected != v2.ID {
		t.Fatalf("expected next variant selected, got %s", selected)
	}
	store.DeleteVariant(item.ID, v2.ID)
	_, selected = store.Current()
	if selected != "" {
		t.Fatalf("expected no selection, got %s", selected)
	}
}

// TestDeleteOriginalResetsItem verifies deleting index 0 resets the texts.
func TestDeleteOriginalResetsItem(t *testing.T) {
	store, item := seededStore(t)
	store.SetPolicy(item.ID, "hide places")
	store.DeleteVariant(item.ID, item.Texts[0].ID)
	got, _ := store.Item(item.ID)
	if len(got.Texts) != 1 || got.Texts[0].Text != "" {
		t.Fatalf("expected single blank original, got %+v", got.Texts)
	}
	if got.Texts[0].ID == item.Texts[0].ID {
		t.Fatalf("expected fresh original id")
	}
	if len(got.Answers) != 0 {
		t.Fatalf("expected answers cleared, got %+v", got.Answers)
	}
	if len(got.QA) != 2 || got.Policy != "hide places" {
		t.Fatalf("expected qa and policy kept, got %+v", got)
	}
}

// TestDeleteAllVariantsKeepsOriginal verifies pruning to the original bucket.
func TestDeleteAllVariantsKeepsOriginal(t *testing.T) {
	store, item := seededStore(t)
	store.DeleteAllVariants(item.ID)
	got, _ := store.Item(item.ID)
	if len(got.Texts) != 1 || got.Texts[0].ID != item.Texts[0].ID {
		t.Fatalf("expected original only, got %+v", got.Texts)
	}
	if len(got.Answers) != 1 {
		t.Fatalf("expected one answers bucket, got %d", len(got.Answers))
	}
	if _, ok := got.Answers[item.Texts[0].ID]; !ok {
		t.Fatalf("expected original bucket to remain")
	}
}

// TestAddRedactedVariantSelectsAtomically verifies concurrent adds leave the
// selection on the last variant appended.
func TestAddRedactedVariantSelectsAtomically(t *testing.T) {
	store := NewStore()
	itemID, _ := store.Current()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddRedactedVariant(itemID, fmt.Sprintf("variant %d", i), "")
		}()
	}
	wg.Wait()

	item, _ := store.Item(itemID)
	if len(item.Texts) != 51 {
		t.Fatalf("expected 51 texts, got %d", len(item.Texts))
	}
	if _, text := store.Current(); text != item.Texts[50].ID {
		t.Fatalf("expected selection on the last variant %s, got %s", item.Texts[50].ID, text)
	}
}

// TestDeleteAllVariantsClearsSelection verifies the current text is cleared
// with the variants.
func TestDeleteAllVariantsClearsSelection(t *testing.T) {
	store, item := seededStore(t)
	if _, text := store.Current(); text == "" {
		t.Fatalf("expected a selected variant before deleting")
	}
	store.DeleteAllVariants(item.ID)
	if _, text := store.Current(); text != "" {
		t.Fatalf("expected no selected variant, got %s", text)
	}
}

// TestRecordScoreRequiresAnswer verifies scores never create records.
func TestRecordScoreRequiresAnswer(t *testing.T) {
	store := NewStore()
	itemID, _ := store.Current()
	item, _ := store.Item(itemID)
	qa, _ := store.AddQA(itemID, "q", "a", false)
	if store.RecordScore(itemID, item.Texts[0].ID, qa.ID, 0.5) {
		t.Fatalf("expected score without answer to be a no-op")
	}
	store.RecordAnswer(itemID, item.Texts[0].ID, qa.ID, "a")
	if !store.RecordScore(itemID, item.Texts[0].ID, qa.ID, 0.5) {
		t.Fatalf("expected score to apply")
	}
	store.RecordAnswer(itemID, item.Texts[0].ID, qa.ID, "b")
	got, _ := store.Item(itemID)
	rec, _ := got.Answer(item.Texts[0].ID, qa.ID)
	if rec.Value != "b" || rec.Scored() {
		t.Fatalf("expected new answer to reset score, got %+v", rec)
	}
}

// TestUnknownIDsAreNoOps verifies unresolved references never mutate.
func TestUnknownIDsAreNoOps(t *testing.T) {
	store, item := seededStore(t)
	before := store.Version()
	ops := []bool{
		store.DeleteItem("missing"),
		store.SetOriginalText("missing", "x"),
		store.SetPolicy("missing", "x"),
		store.SetVariantText(item.ID, "missing", "x"),
		store.SetVariantLabel(item.ID, "missing", "x"),
		store.DeleteVariant(item.ID, "missing"),
		store.SetQuestion(item.ID, "missing", "x"),
		store.SetGoldAnswer(item.ID, "missing", "x"),
		store.SetRedactFlag(item.ID, "missing", true),
		store.DeleteQA(item.ID, "missing"),
		store.RecordAnswer(item.ID, "missing", item.QA[0].ID, "x"),
		store.RecordScore(item.ID, item.Texts[0].ID, "missing", 1),
	}
	for i, applied := range ops {
		if applied {
			t.Fatalf("expected op %d to be a no-op", i)
		}
	}
	if store.Version() != before {
		t.Fatalf("expected version unchanged")
	}
}

// TestReadersReceiveCopies verifies callers cannot mutate store state.
func TestReadersReceiveCopies(t *testing.T) {
	store, item := seededStore(t)
	item.Texts[0].Text = "mutated"
	item.QA[0].Q = "mutated"
	rec := item.Answers[item.Texts[0].ID][item.QA[0].ID]
	*rec.Score = 0
	got, _ := store.Item(item.ID)
	if got.Texts[0].Text == "mutated" || got.QA[0].Q == "mutated" {
		t.Fatalf("expected store to be isolated from caller edits")
	}
	if *got.Answers[item.Texts[0].ID][item.QA[0].ID].Score != 1 {
		t.Fatalf("expected score to be isolated from caller edits")
	}
}

type memoryPersistence struct {
	items   []Item
	saved   []Item
	loadErr error
}

func (m *memoryPersistence) Load(context.Context) ([]Item, error) {
	return m.items, m.loadErr
}

func (m *memoryPersistence) Save(_ context.Context, items []Item) error {
	m.saved = items
	return nil
}

// TestOpenAndSave verifies the persistence port round trip.
func TestOpenAndSave(t *testing.T) {
	source := &memoryPersistence{items: []Item{{ID: "a", Texts: []Text{{ID: "t"}}}}}
	store, err := Open(context.Background(), source)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	current, _ := store.Current()
	if current != "a" {
		t.Fatalf("expected loaded item selected, got %s", current)
	}
	if err := store.SaveTo(context.Background(), source); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(source.saved) != 1 || source.saved[0].ID != "a" {
		t.Fatalf("unexpected saved items: %+v", source.saved)
	}

	empty, err := Open(context.Background(), &memoryPersistence{})
	if err != nil {
		t.Fatalf("open empty: %v", err)
	}
	if empty.Len() != 1 {
		t.Fatalf("expected blank item for empty load")
	}

	boom := errors.New("boom")
	if _, err := Open(context.Background(), &memoryPersistence{loadErr: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}
