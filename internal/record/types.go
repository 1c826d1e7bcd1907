package record

import "fmt"

// Text is one body of text belonging to an item. Index 0 of Item.Texts is
// the original; every later index is a redacted variant.
type Text struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// TextName is the display name of the text at index: "original", or
// "variant N" with the label in parentheses when there is one.
func TextName(index int, label string) string {
	switch {
	case index == 0:
		return "original"
	case label != "":
		return fmt.Sprintf("variant %d (%s)", index, label)
	default:
		return fmt.Sprintf("variant %d", index)
	}
}

// QAEntry is a question/gold-answer probe. Redact marks probes whose answer
// should no longer be recoverable from a redacted text.
type QAEntry struct {
	ID     string `json:"id"`
	Q      string `json:"q"`
	A      string `json:"a"`
	Redact bool   `json:"redact"`

	// rev changes whenever Q or A is edited. In-flight pipelines compare it
	// before writing back.
	rev uint64
}

// AnswerRecord is the oracle output for one (text, qa) pair. A record with a
// value and no score is pending judgement.
type AnswerRecord struct {
	Value string   `json:"value"`
	Score *float64 `json:"score,omitempty"`
}

// Scored reports whether the record carries a similarity score.
func (r AnswerRecord) Scored() bool {
	return r.Score != nil
}

// Answers maps textID -> qaID -> record.
type Answers map[string]map[string]AnswerRecord

// Item is one evaluation unit: an original text, its redacted variants, the
// redaction policy and the question probes.
type Item struct {
	ID      string    `json:"id"`
	Texts   []Text    `json:"texts"`
	QA      []QAEntry `json:"qa"`
	Policy  string    `json:"policy"`
	Answers Answers   `json:"answers"`
}

// Original returns the original text of the item.
func (it Item) Original() Text {
	if len(it.Texts) == 0 {
		return Text{}
	}
	return it.Texts[0]
}

// Variants returns the redacted variants, excluding the original.
func (it Item) Variants() []Text {
	if len(it.Texts) <= 1 {
		return nil
	}
	return it.Texts[1:]
}

// TextIndex returns the index of a text id, or -1.
func (it Item) TextIndex(id string) int {
	for i, text := range it.Texts {
		if text.ID == id {
			return i
		}
	}
	return -1
}

// QAIndex returns the index of a qa id, or -1.
func (it Item) QAIndex(id string) int {
	for i, qa := range it.QA {
		if qa.ID == id {
			return i
		}
	}
	return -1
}

// Answer looks up the record for a (text, qa) pair.
func (it Item) Answer(textID, qaID string) (AnswerRecord, bool) {
	bucket, ok := it.Answers[textID]
	if !ok {
		return AnswerRecord{}, false
	}
	rec, ok := bucket[qaID]
	return rec, ok
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := Item{ID: it.ID, Policy: it.Policy}
	out.Texts = append([]Text(nil), it.Texts...)
	out.QA = append([]QAEntry(nil), it.QA...)
	out.Answers = make(Answers, len(it.Answers))
	for textID, bucket := range it.Answers {
		copied := make(map[string]AnswerRecord, len(bucket))
		for qaID, rec := range bucket {
			if rec.Score != nil {
				score := *rec.Score
				rec.Score = &score
			}
			copied[qaID] = rec
		}
		out.Answers[textID] = copied
	}
	return out
}

// dropQA removes the answers for a qa id across every text.
func (it *Item) dropQA(qaID string) {
	for textID, bucket := range it.Answers {
		delete(bucket, qaID)
		if len(bucket) == 0 {
			delete(it.Answers, textID)
		}
	}
}
