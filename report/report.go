// Package report renders the end-of-run summary.
package report

import (
	"embed"
	"io"
	"text/template"
	"time"

	"vid2mid/midi"
	"vid2mid/pipeline"
	"vid2mid/sequencer"

	"github.com/Masterminds/sprig"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Summary is everything the report shows.
type Summary struct {
	Title  string
	Input  string
	Output string
	Preset string
	Timing sequencer.Timing
	Result *pipeline.Result
}

// Length is the playing time of the merged sequence.
func (s Summary) Length() time.Duration {
	return s.Result.Sequence.Duration().Round(time.Millisecond)
}

func parse() (*template.Template, error) {
	funcs := sprig.TxtFuncMap()
	funcs["noteName"] = midi.NoteName
	return template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/*.txt")
}

// Write renders s to w.
func Write(w io.Writer, s Summary) error {
	tmpl, err := parse()
	if err != nil {
		return err
	}
	if s.Title == "" {
		s.Title = "vid2mid summary"
	}
	if err := tmpl.ExecuteTemplate(w, "summary", s); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
