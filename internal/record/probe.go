package record

// Probe is a snapshot of one (text, qa) pair taken before an oracle
// pipeline starts. Writes made through a probe only land when the pair is
// still structurally the same one the snapshot was taken from.
type Probe struct {
	ItemID   string
	TextID   string
	QAID     string
	QAIndex  int
	Context  string
	Question string
	Gold     string
	Redact   bool

	rev    uint64
	answer string
}

// Answer returns the value written by RecordProbeAnswer.
func (p Probe) Answer() string {
	return p.answer
}

// Probe snapshots the inputs of a pipeline for one (text, qa) pair.
func (s *Store) Probe(itemID, textID, qaID string) (Probe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(itemID)
	if idx < 0 {
		return Probe{}, false
	}
	item := s.items[idx]
	textIdx := item.TextIndex(textID)
	qaIdx := item.QAIndex(qaID)
	if textIdx < 0 || qaIdx < 0 {
		return Probe{}, false
	}
	qa := item.QA[qaIdx]
	return Probe{
		ItemID:   itemID,
		TextID:   textID,
		QAID:     qaID,
		QAIndex:  qaIdx,
		Context:  item.Texts[textIdx].Text,
		Question: qa.Q,
		Gold:     qa.A,
		Redact:   qa.Redact,
		rev:      qa.rev,
	}, true
}

// RecordProbeAnswer writes an answer for the probed pair. It is a no-op when
// the text or qa was deleted, or the question or gold answer was edited,
// after the probe was taken.
func (s *Store) RecordProbeAnswer(p Probe, value string) (Probe, bool) {
	ok := s.mutate(p.ItemID, func(item *Item) bool {
		if !p.matches(item) {
			return false
		}
		item.setAnswer(p.TextID, p.QAID, AnswerRecord{Value: value})
		return true
	})
	if ok {
		p.answer = value
	}
	return p, ok
}

// RecordProbeScore attaches a score to the answer written through the probe.
// It is a no-op when the pair changed or the stored value is no longer the
// one the score was computed for.
func (s *Store) RecordProbeScore(p Probe, score float64) bool {
	return s.mutate(p.ItemID, func(item *Item) bool {
		if !p.matches(item) {
			return false
		}
		rec, ok := item.Answer(p.TextID, p.QAID)
		if !ok || rec.Value != p.answer {
			return false
		}
		rec.Score = &score
		item.Answers[p.TextID][p.QAID] = rec
		return true
	})
}

func (p Probe) matches(item *Item) bool {
	if item.TextIndex(p.TextID) < 0 {
		return false
	}
	idx := item.QAIndex(p.QAID)
	return idx >= 0 && item.QA[idx].rev == p.rev
}
