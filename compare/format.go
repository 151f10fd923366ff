// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/cerfacs/coprof/internal/texttab"
)

// FormatText writes sel to w as a fixed-width table with one column per
// profile. With two profiles a delta column shows the relative change
// from the first to the second; with more, mean and standard deviation
// columns summarize each function.
func FormatText(w io.Writer, sel *Selection) error {
	var tab texttab.Table
	n := len(sel.Names)
	tab.Row().Cell("name \\ " + sel.Metric.String())
	for _, name := range sel.Names {
		tab.Cell(name, texttab.Right)
	}
	switch {
	case n == 2:
		tab.Cell("delta", texttab.Right)
	case n > 2:
		tab.Cell("mean", texttab.Right).Cell("stddev", texttab.Right)
	}
	for _, s := range sel.Series {
		tab.Row().Cell(s.Function)
		for _, c := range s.Costs {
			tab.Cell(formatCost(c), texttab.Right)
		}
		switch {
		case n == 2:
			tab.Cell(formatDelta(s), texttab.Right)
		case n > 2:
			sum := s.Summary()
			if sum.N == 0 {
				tab.Cell("-", texttab.Right).Cell("-", texttab.Right)
				continue
			}
			tab.Cell(formatValue(sum.Mean), texttab.Right)
			tab.Cell(fmt.Sprintf("±%.4g", sum.StdDev), texttab.Right)
		}
	}
	return tab.Format(w)
}

// FormatCSV writes sel to w as CSV: a header row of profile names, then
// one row per function. Absent costs are empty cells.
func FormatCSV(w io.Writer, sel *Selection) error {
	cw := csv.NewWriter(w)
	header := append([]string{sel.Metric.String()}, sel.Names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, 1+len(sel.Names))
	for _, s := range sel.Series {
		row = row[:1]
		row[0] = s.Function
		for _, c := range s.Costs {
			if c.OK {
				row = append(row, strconv.FormatFloat(c.Value, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var htmlTemplate = template.Must(template.New("").Funcs(htmlFuncs).Parse(`
<table class='coprof'>
<thead>
<tr><th>name \ {{.Metric}}{{range .Names}}<th>{{.}}{{end}}{{if eq (len .Names) 2}}<th>delta{{end}}
</thead>
<tbody>
{{- $two := eq (len .Names) 2}}
{{range .Series -}}
<tr><td>{{.Function}}{{range .Costs}}<td{{if not .OK}} class='absent'{{end}}>{{cost .}}{{end}}{{if $two}}<td class='delta'>{{delta .}}{{end}}
{{end -}}
</tbody>
</table>
`))

var htmlFuncs = template.FuncMap{
	"cost":  formatCost,
	"delta": formatDelta,
}

// FormatHTML appends an HTML table of sel to buf.
func FormatHTML(buf *bytes.Buffer, sel *Selection) {
	if err := htmlTemplate.Execute(buf, sel); err != nil {
		// Only possible errors here are template not matching data structure.
		panic(err)
	}
}

// MarshalJSON encodes c as a number, or null if c is absent.
func (c Cost) MarshalJSON() ([]byte, error) {
	if !c.OK {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON decodes a number or null.
func (c *Cost) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*c = Cost{}
	} else {
		*c = Cost{*v, true}
	}
	return nil
}

// FormatJSON writes sel to w as a JSON document.
func FormatJSON(w io.Writer, sel *Selection) error {
	type series struct {
		Function string `json:"function"`
		Costs    []Cost `json:"costs"`
	}
	doc := struct {
		Metric   string   `json:"metric"`
		Profiles []string `json:"profiles"`
		Series   []series `json:"functions"`
	}{
		Metric:   sel.Metric.String(),
		Profiles: sel.Names,
		Series:   make([]series, len(sel.Series)),
	}
	for i, s := range sel.Series {
		doc.Series[i] = series{s.Function, s.Costs}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
