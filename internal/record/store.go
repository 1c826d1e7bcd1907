package record

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds the item collection. Mutations are serialized and replace the
// touched item with a modified copy; readers always receive deep copies.
type Store struct {
	mu          sync.RWMutex
	items       []*Item
	currentItem string
	currentText string
	version     uint64
	newID       func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides identifier generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns a store holding a single blank item.
func NewStore(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

// Version increases on every applied mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns copies of every item in store order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out
}

// Item returns a copy of one item.
func (s *Store) Item(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return Item{}, false
	}
	return s.items[idx].Clone(), true
}

// Replace swaps the whole collection, used after loading from persistence.
// An empty collection becomes a single blank item.
func (s *Store) Replace(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	for _, item := range items {
		s.items = append(s.items, normalize(item, s.newID))
	}
	if len(s.items) == 0 {
		s.resetLocked()
		return
	}
	s.selectLocked(s.items[0])
	s.version++
}

// Append adds items to the end of the collection. Items whose id already
// exists are skipped. It returns the number of items added.
func (s *Store) Append(items []Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, item := range items {
		if item.ID == "" || s.indexLocked(item.ID) >= 0 {
			continue
		}
		s.items = append(s.items, normalize(item, s.newID))
		added++
	}
	if added > 0 {
		s.version++
	}
	return added
}

// Current returns the selected item id and selected text id. The text id is
// empty when no variant is selected.
func (s *Store) Current() (itemID string, textID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentItem, s.currentText
}

// Select makes an item current and selects its first variant.
func (s *Store) Select(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(itemID)
	if idx < 0 {
		return false
	}
	s.selectLocked(s.items[idx])
	return true
}

// SelectText selects a text of the current item.
func (s *Store) SelectText(textID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.currentItem)
	if idx < 0 || s.items[idx].TextIndex(textID) < 0 {
		return false
	}
	s.currentText = textID
	return true
}

// AddItem appends an item whose original holds initialText.
func (s *Store) AddItem(initialText string) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.blankLocked()
	item.Texts[0].Text = initialText
	s.items = append(s.items, item)
	s.version++
	return item.Clone()
}

// DeleteItem removes an item. Removing the last item leaves a fresh blank
// one; removing the current item selects the first remaining item.
func (s *Store) DeleteItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.version++
	if len(s.items) == 0 {
		s.resetLocked()
		return true
	}
	if s.currentItem == id {
		s.selectLocked(s.items[0])
	}
	return true
}

// DeleteAllItems leaves exactly one blank item, which becomes current.
func (s *Store) DeleteAllItems() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// SetOriginalText replaces the original text body. Existing answers are
// kept even though they were computed against the previous body.
func (s *Store) SetOriginalText(itemID, text string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		item.Texts[0].Text = text
		return true
	})
}

// SetPolicy replaces the redaction policy.
func (s *Store) SetPolicy(itemID, policy string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		item.Policy = policy
		return true
	})
}

// AddRedactedVariant appends a variant and selects it when its item is current.
func (s *Store) AddRedactedVariant(itemID, text, label string) (Text, bool) {
	var added Text
	ok := s.mutate(itemID, func(item *Item) bool {
		added = Text{ID: s.newID(), Text: text, Label: label}
		item.Texts = append(item.Texts, added)
		if s.currentItem == itemID {
			s.currentText = added.ID
		}
		return true
	})
	return added, ok
}

// SetVariantText replaces the body of any text, original included.
func (s *Store) SetVariantText(itemID, textID, text string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		idx := item.TextIndex(textID)
		if idx < 0 {
			return false
		}
		item.Texts[idx].Text = text
		return true
	})
}

// SetVariantLabel replaces the label of a text.
func (s *Store) SetVariantLabel(itemID, textID, label string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		idx := item.TextIndex(textID)
		if idx < 0 {
			return false
		}
		item.Texts[idx].Label = label
		return true
	})
}

// DeleteVariant removes a text and its answers. Deleting the original resets
// the item to a single blank original with a fresh id and no answers; qa and
// policy survive.
func (s *Store) DeleteVariant(itemID, textID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(itemID)
	if idx < 0 {
		return false
	}
	item := s.items[idx].Clone()
	pos := item.TextIndex(textID)
	if pos < 0 {
		return false
	}
	if pos == 0 {
		item.Texts = []Text{{ID: s.newID()}}
		item.Answers = Answers{}
	} else {
		item.Texts = append(item.Texts[:pos:pos], item.Texts[pos+1:]...)
		delete(item.Answers, textID)
	}
	s.items[idx] = &item
	s.version++
	if s.currentItem == itemID && (s.currentText == textID || pos == 0) {
		s.currentText = nextSelection(item, pos)
	}
	return true
}

// DeleteAllVariants keeps only the original and its answers.
func (s *Store) DeleteAllVariants(itemID string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		item.Texts = item.Texts[:1]
		kept := Answers{}
		if bucket, found := item.Answers[item.Texts[0].ID]; found {
			kept[item.Texts[0].ID] = bucket
		}
		item.Answers = kept
		if s.currentItem == itemID {
			s.currentText = ""
		}
		return true
	})
}

// AddQA appends a question probe.
func (s *Store) AddQA(itemID, q, a string, redact bool) (QAEntry, bool) {
	var added QAEntry
	ok := s.mutate(itemID, func(item *Item) bool {
		added = QAEntry{ID: s.newID(), Q: q, A: a, Redact: redact}
		item.QA = append(item.QA, added)
		return true
	})
	return added, ok
}

// SetQuestion edits a question and deletes its answers on every text.
func (s *Store) SetQuestion(itemID, qaID, q string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		idx := item.QAIndex(qaID)
		if idx < 0 {
			return false
		}
		item.dropQA(qaID)
		item.QA[idx].Q = q
		item.QA[idx].rev++
		return true
	})
}

// SetGoldAnswer edits a gold answer and deletes its answers on every text.
func (s *Store) SetGoldAnswer(itemID, qaID, a string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		idx := item.QAIndex(qaID)
		if idx < 0 {
			return false
		}
		item.dropQA(qaID)
		item.QA[idx].A = a
		item.QA[idx].rev++
		return true
	})
}

// SetRedactFlag flips the redact marker. Answers stay valid because the flag
// only changes how they are classified.
func (s *Store) SetRedactFlag(itemID, qaID string, redact bool) bool {
	return s.mutate(itemID, func(item *Item) bool {
		idx := item.QAIndex(qaID)
		if idx < 0 {
			return false
		}
		item.QA[idx].Redact = redact
		return true
	})
}

// DeleteQA removes a probe and its answers.
func (s *Store) DeleteQA(itemID, qaID string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		idx := item.QAIndex(qaID)
		if idx < 0 {
			return false
		}
		item.QA = append(item.QA[:idx:idx], item.QA[idx+1:]...)
		item.dropQA(qaID)
		return true
	})
}

// RecordAnswer stores an answer with no score, replacing any prior record.
func (s *Store) RecordAnswer(itemID, textID, qaID, value string) bool {
	return s.mutate(itemID, func(item *Item) bool {
		if item.TextIndex(textID) < 0 || item.QAIndex(qaID) < 0 {
			return false
		}
		item.setAnswer(textID, qaID, AnswerRecord{Value: value})
		return true
	})
}

// RecordScore attaches a score to an existing record.
func (s *Store) RecordScore(itemID, textID, qaID string, score float64) bool {
	return s.mutate(itemID, func(item *Item) bool {
		rec, ok := item.Answer(textID, qaID)
		if !ok {
			return false
		}
		rec.Score = &score
		item.Answers[textID][qaID] = rec
		return true
	})
}

// mutate applies fn to a copy of the item and publishes it when fn reports a
// change. fn runs under the write lock and may update the selection.
func (s *Store) mutate(itemID string, fn func(item *Item) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(itemID)
	if idx < 0 {
		return false
	}
	next := s.items[idx].Clone()
	if !fn(&next) {
		return false
	}
	s.items[idx] = &next
	s.version++
	return true
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) blankLocked() *Item {
	return &Item{
		ID:      s.newID(),
		Texts:   []Text{{ID: s.newID()}},
		QA:      []QAEntry{},
		Answers: Answers{},
	}
}

func (s *Store) resetLocked() {
	item := s.blankLocked()
	s.items = []*Item{item}
	s.selectLocked(item)
	s.version++
}

func (s *Store) selectLocked(item *Item) {
	s.currentItem = item.ID
	s.currentText = ""
	if len(item.Texts) > 1 {
		s.currentText = item.Texts[1].ID
	}
}

// nextSelection picks the variant that took the removed position, else the
// last variant, else nothing.
func nextSelection(item Item, removed int) string {
	if removed < 1 {
		removed = 1
	}
	if removed < len(item.Texts) {
		return item.Texts[removed].ID
	}
	if len(item.Texts) > 1 {
		return item.Texts[len(item.Texts)-1].ID
	}
	return ""
}

func (it *Item) setAnswer(textID, qaID string, rec AnswerRecord) {
	if it.Answers == nil {
		it.Answers = Answers{}
	}
	bucket, ok := it.Answers[textID]
	if !ok {
		bucket = map[string]AnswerRecord{}
		it.Answers[textID] = bucket
	}
	bucket[qaID] = rec
}

// normalize copies an externally supplied item and fills the structural
// minimum: one original text and non-nil collections.
func normalize(item Item, newID func() string) *Item {
	out := item.Clone()
	if len(out.Texts) == 0 {
		out.Texts = []Text{{ID: newID()}}
	}
	if out.QA == nil {
		out.QA = []QAEntry{}
	}
	return &out
}
