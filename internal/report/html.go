package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"redactbench/internal/record"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin:.5rem 0 1.5rem}
th,td{border:1px solid #ccc;padding:.25rem .5rem;text-align:left;vertical-align:top}
th{background:#f3f3f3}
tr.baseline td{color:#666}
.redact{color:#b00}
.muted{color:#888}`

// Page renders every item report as one HTML document.
func Page(reports []ItemReport) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		b.WriteString("<title>Redaction Report</title>\n<style>" + pageStyle + "</style>\n</head>\n<body>\n")
		b.WriteString("<h1>Redaction Report</h1>\n")
		if len(reports) == 0 {
			b.WriteString("<p class=\"muted\">No items.</p>\n")
		}
		for _, rep := range reports {
			writeItem(&b, rep)
		}
		b.WriteString("</body>\n</html>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RenderHTML renders the report page into a string.
func RenderHTML(ctx context.Context, reports []ItemReport) (string, error) {
	var builder strings.Builder
	if err := Page(reports).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func writeItem(b *strings.Builder, rep ItemReport) {
	esc := templ.EscapeString[string]
	fmt.Fprintf(b, "<section id=\"item-%s\">\n<h2>Item %d <small class=\"muted\">%s</small></h2>\n", esc(rep.Item.ID), rep.Position, esc(rep.Item.ID))
	if rep.Item.Policy != "" {
		fmt.Fprintf(b, "<p><strong>Policy:</strong> %s</p>\n", esc(rep.Item.Policy))
	}

	b.WriteString("<table class=\"scores\">\n<tr>")
	for _, column := range Columns {
		fmt.Fprintf(b, "<th>%s</th>", esc(column))
	}
	b.WriteString("</tr>\n")
	for i, row := range Rows(rep) {
		if i == 0 {
			b.WriteString("<tr class=\"baseline\">")
		} else {
			b.WriteString("<tr>")
		}
		for _, cell := range row {
			fmt.Fprintf(b, "<td>%s</td>", esc(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")

	if len(rep.Item.QA) > 0 {
		writeAnswers(b, rep.Item)
	}
	b.WriteString("</section>\n")
}

// writeAnswers renders the question by text answer grid.
func writeAnswers(b *strings.Builder, item record.Item) {
	esc := templ.EscapeString[string]
	b.WriteString("<table class=\"answers\">\n<tr><th>question</th><th>gold</th>")
	for i, text := range item.Texts {
		fmt.Fprintf(b, "<th>%s</th>", esc(record.TextName(i, text.Label)))
	}
	b.WriteString("</tr>\n")
	for _, qa := range item.QA {
		class := ""
		if qa.Redact {
			class = " class=\"redact\""
		}
		fmt.Fprintf(b, "<tr><td%s>%s</td><td>%s</td>", class, esc(qa.Q), esc(qa.A))
		for _, text := range item.Texts {
			rec, ok := item.Answer(text.ID, qa.ID)
			switch {
			case !ok:
				b.WriteString("<td class=\"muted\">-</td>")
			case rec.Scored():
				fmt.Fprintf(b, "<td>%s <span class=\"muted\">(%.2f)</span></td>", esc(rec.Value), *rec.Score)
			default:
				fmt.Fprintf(b, "<td>%s <span class=\"muted\">(pending)</span></td>", esc(rec.Value))
			}
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")
}
