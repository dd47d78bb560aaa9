package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var headers = table.Row{"CDR ID", "Processing"}

func (r *Report) writer() table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(headers)
	for _, row := range r.rows {
		tw.AppendRow(table.Row{row.ID, row.Message})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 120},
	})
	return tw
}

// RenderText writes the report as a rounded console table followed by the
// summary. Headers keep their case so both renderings read the same.
func (r *Report) RenderText(w io.Writer) error {
	tw := r.writer()
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	if _, err := io.WriteString(w, tw.Render()+"\n"+r.Summary()+"\n"); err != nil {
		return err
	}
	return nil
}

// RenderHTML writes the report as a two-column HTML table.
func (r *Report) RenderHTML(w io.Writer) error {
	tw := r.writer()
	style := table.StyleDefault
	style.Format.Header = text.FormatDefault
	style.HTML = table.HTMLOptions{
		CSSClass:   "report",
		EscapeText: true,
		Newline:    "<br/>",
	}
	tw.SetStyle(style)
	_, err := io.WriteString(w, tw.RenderHTML()+"\n")
	return err
}
