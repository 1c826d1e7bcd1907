// Package prompt holds the instruction and input templates sent to the
// language model.
package prompt

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// EqualityInput asks whether two short values mean the same thing.
func EqualityInput(value, gold string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `Do "`+value+`" and "`+gold+`" have the same meaning? score from 0 to 1. 0 means no, 1 means yes.`)
		return err
	})
}

// OriginalTextInput requests a fresh source document to redact.
func OriginalTextInput() templ.Component {
	return templ.Raw("Write a fictional news report releasing sensitive information.")
}

// QuestionAnswersInstruction frames the extraction of question/answer probes.
func QuestionAnswersInstruction() templ.Component {
	return templ.Raw(`You are a professional content analyst who extracts all information from a text to create study materials.
Read the text provided below and generate a list of questions and answers (Q&A) that fully covers the entire content.

**[Requirements]**
1.  **Comprehensiveness:** Do not miss even minor details. Turn everything into questions, including the text's key concepts, key figures, events, dates, statistics, reasons, and outcomes.
2.  **Accuracy:** All answers must be based solely on information in the given text. Never use external knowledge or make guesses.
3.  **Format:** Organize it in the JSON format.
4.  **Answer Length:** Keep answers concise and to the point, ideally within 1-5 words.

Now, please start working with the text below.`)
}

// RedactInstruction frames a redaction pass under a policy.
func RedactInstruction(policy string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `You are a careful document redactor.
Rewrite the text provided by the user so that it follows the redaction policy below.
Remove or replace only the information the policy asks to hide, and keep every other detail, sentence and fact intact.
Replace removed spans with a short bracketed placeholder such as [REDACTED].

**[Redaction policy]**
`); err != nil {
			return err
		}
		if policy == "" {
			policy = "Remove personally identifying and otherwise sensitive information."
		}
		_, err := io.WriteString(w, policy)
		return err
	})
}

// Render writes a component into a string.
func Render(ctx context.Context, component templ.Component) (string, error) {
	var builder strings.Builder
	if err := component.Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}
