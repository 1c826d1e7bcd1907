// Package dataset reads and writes item collections as JSON Lines.
package dataset

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"redactbench/internal/record"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://redactbench.local/item.schema.json"

// repairNamespace seeds deterministic ids for repaired originals.
var repairNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://redactbench.local/original"))

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func itemSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Report summarizes a decoded import.
type Report struct {
	Items []record.Item
	// Repaired counts originals that received a derived id.
	Repaired int
	// DroppedAnswers counts answer records that referenced unknown texts or questions.
	DroppedAnswers int
}

type wireText struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Label string `json:"label"`
}

type wireAnswer struct {
	Value string   `json:"value"`
	Score *float64 `json:"score"`
}

type wireItem struct {
	ID      string                           `json:"id"`
	Texts   []wireText                       `json:"texts"`
	QA      []record.QAEntry                 `json:"qa"`
	Policy  string                           `json:"policy"`
	Answers map[string]map[string]wireAnswer `json:"answers"`
}

// Decode parses JSON Lines into items. Every line is validated against the
// item schema and checked for duplicate or colliding ids; any problem fails
// the whole import with a *ValidationError. existing lists item ids already
// present in the destination store.
func Decode(r io.Reader, existing []string) (Report, error) {
	schema, err := itemSchema()
	if err != nil {
		return Report{}, err
	}
	seen := make(map[string]int, len(existing))
	for _, id := range existing {
		seen[id] = 0
	}

	var (
		report Report
		issues []Issue
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		item, lineReport, lineIssues := decodeLine(schema, line, lineNo)
		if len(lineIssues) > 0 {
			issues = append(issues, lineIssues...)
			continue
		}
		if prev, dup := seen[item.ID]; dup {
			message := "item id already exists in the store"
			if prev > 0 {
				message = fmt.Sprintf("duplicate item id (first seen on line %d)", prev)
			}
			issues = append(issues, Issue{Field: lineField(lineNo, "id"), Message: message})
			continue
		}
		seen[item.ID] = lineNo
		report.Items = append(report.Items, item)
		report.Repaired += lineReport.Repaired
		report.DroppedAnswers += lineReport.DroppedAnswers
	}
	if err := scanner.Err(); err != nil {
		return Report{}, fmt.Errorf("read jsonl: %w", err)
	}
	if len(issues) > 0 {
		return Report{}, &ValidationError{Issues: issues}
	}
	return report, nil
}

func decodeLine(schema *jsonschema.Schema, line []byte, lineNo int) (record.Item, Report, []Issue) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return record.Item{}, Report{}, []Issue{{Field: lineField(lineNo, ""), Message: "invalid json: " + err.Error()}}
	}
	if err := schema.Validate(raw); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return record.Item{}, Report{}, schemaIssues(ve, lineNo)
		}
		return record.Item{}, Report{}, []Issue{{Field: lineField(lineNo, ""), Message: err.Error()}}
	}
	var wire wireItem
	if err := json.Unmarshal(line, &wire); err != nil {
		return record.Item{}, Report{}, []Issue{{Field: lineField(lineNo, ""), Message: err.Error()}}
	}
	return convert(wire, lineNo)
}

// convert applies the deterministic repairs and semantic checks.
func convert(wire wireItem, lineNo int) (record.Item, Report, []Issue) {
	var (
		report Report
		issues []Issue
	)
	add := func(field, message string) {
		issues = append(issues, Issue{Field: lineField(lineNo, field), Message: message})
	}

	item := record.Item{ID: wire.ID, Policy: wire.Policy, QA: []record.QAEntry{}, Answers: record.Answers{}}
	textIDs := map[string]bool{}
	for i, text := range wire.Texts {
		id := strings.TrimSpace(text.ID)
		if id == "" {
			if i > 0 {
				add(fmt.Sprintf("texts[%d].id", i), "variant id is required")
				continue
			}
			id = uuid.NewSHA1(repairNamespace, []byte(wire.ID+"/original")).String()
			report.Repaired++
		}
		if textIDs[id] {
			add(fmt.Sprintf("texts[%d].id", i), fmt.Sprintf("duplicate text id %q", id))
			continue
		}
		textIDs[id] = true
		item.Texts = append(item.Texts, record.Text{ID: id, Text: text.Text, Label: text.Label})
	}

	qaIDs := map[string]bool{}
	for i, qa := range wire.QA {
		if qaIDs[qa.ID] {
			add(fmt.Sprintf("qa[%d].id", i), fmt.Sprintf("duplicate qa id %q", qa.ID))
			continue
		}
		qaIDs[qa.ID] = true
		item.QA = append(item.QA, record.QAEntry{ID: qa.ID, Q: qa.Q, A: qa.A, Redact: qa.Redact})
	}

	for textID, bucket := range wire.Answers {
		for qaID, answer := range bucket {
			if !textIDs[textID] || !qaIDs[qaID] {
				report.DroppedAnswers++
				continue
			}
			if answer.Score != nil && (math.IsNaN(*answer.Score) || *answer.Score < 0 || *answer.Score > 1) {
				add(fmt.Sprintf("answers.%s.%s.score", textID, qaID), "score must be within [0,1]")
				continue
			}
			if item.Answers[textID] == nil {
				item.Answers[textID] = map[string]record.AnswerRecord{}
			}
			item.Answers[textID][qaID] = record.AnswerRecord{Value: answer.Value, Score: answer.Score}
		}
	}
	if len(issues) > 0 {
		return record.Item{}, Report{}, issues
	}
	return item, report, nil
}

func schemaIssues(ve *jsonschema.ValidationError, lineNo int) []Issue {
	if len(ve.Causes) == 0 {
		location := strings.TrimPrefix(ve.InstanceLocation, "/")
		return []Issue{{Field: lineField(lineNo, strings.ReplaceAll(location, "/", ".")), Message: ve.Message}}
	}
	var issues []Issue
	for _, cause := range ve.Causes {
		issues = append(issues, schemaIssues(cause, lineNo)...)
	}
	return issues
}

func lineField(lineNo int, field string) string {
	if field == "" {
		return fmt.Sprintf("line %d", lineNo)
	}
	return fmt.Sprintf("line %d: %s", lineNo, field)
}

// Encode writes one compact JSON object per item, in order.
func Encode(w io.Writer, items []record.Item) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if item.Answers == nil {
			item.Answers = record.Answers{}
		}
		if item.QA == nil {
			item.QA = []record.QAEntry{}
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", item.ID, err)
		}
		if _, err := bw.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write item %s: %w", item.ID, err)
		}
	}
	return bw.Flush()
}
