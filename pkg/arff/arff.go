// Package arff renders feature columns as an ARFF relation, the input
// format of the Weka toolkit.
package arff

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/leowmjw/go-tutor-featex/pkg/features"
)

// Attribute is one output column: a name, an ARFF type declaration and
// the column's cells.
type Attribute struct {
	Name   string           `json:"name"`
	Type   string           `json:"type"`
	Values []features.Value `json:"values"`
}

// DataComment is a comment emitted immediately before data row Index,
// used to mark where each source log file's rows begin.
type DataComment struct {
	Index   int    `json:"index"`
	Comment string `json:"comment"`
}

// Writer assembles a complete relation and renders it in one pass.
// Columns must all be the same length.
type Writer struct {
	Relation   string
	Attributes []Attribute
	Comments   []DataComment
}

// New returns a writer for the named relation.
func New(relation string) *Writer {
	return &Writer{Relation: relation}
}

// Write renders the relation. Missing cells render as "?".
func (w *Writer) Write(out io.Writer) error {
	if len(w.Attributes) == 0 {
		return fmt.Errorf("arff: relation %q has no attributes", w.Relation)
	}
	rows := len(w.Attributes[0].Values)
	for _, attr := range w.Attributes {
		if len(attr.Values) != rows {
			return fmt.Errorf("arff: attribute %q has %d rows, want %d", attr.Name, len(attr.Values), rows)
		}
	}

	buf := bufio.NewWriter(out)
	fmt.Fprintf(buf, "@relation %s\n\n", w.Relation)
	for _, attr := range w.Attributes {
		fmt.Fprintf(buf, "@attribute %s %s\n", attr.Name, attr.Type)
	}
	buf.WriteString("\n@data\n")

	comments := map[int][]string{}
	for _, c := range w.Comments {
		comments[c.Index] = append(comments[c.Index], c.Comment)
	}
	for i := 0; i < rows; i++ {
		for _, c := range comments[i] {
			fmt.Fprintf(buf, "%% %s\n", c)
		}
		for j, attr := range w.Attributes {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(attr.Values[i].Format())
		}
		buf.WriteByte('\n')
	}
	return buf.Flush()
}

// WriteFile renders the relation to the named file.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
