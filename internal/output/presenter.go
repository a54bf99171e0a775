// Package output renders attribution results: a styled table for people,
// json/csv/yaml for machines.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/lastmod/internal/models"
)

// Report is the full outcome of one resolution, in the shape the json and
// yaml formats emit.
type Report struct {
	Ref          string               `json:"ref" yaml:"ref"`
	Commit       string               `json:"commit" yaml:"commit"`
	Attributions []models.Attribution `json:"attributions" yaml:"attributions"`
	Unresolved   []string             `json:"unresolved" yaml:"unresolved"`
}

var (
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dateStyle    = lipgloss.NewStyle().Faint(true)
	pathStyle    = lipgloss.NewStyle().Bold(true)
	subjectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Presenter formats attribution reports onto a writer.
type Presenter struct {
	format string // "table", "json", "csv", "yaml"
	color  bool
}

// NewPresenter creates a presenter. color only affects the table format.
func NewPresenter(format string, color bool) *Presenter {
	return &Presenter{format: format, color: color}
}

// ColorEnabled decides whether styled output is appropriate for w: the
// writer must be an interactive terminal, color must not be disabled by
// flag, and NO_COLOR must be unset.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Print renders the report in the configured format.
func (p *Presenter) Print(w io.Writer, report *Report) error {
	switch p.format {
	case "json":
		return p.printJSON(w, report)
	case "csv":
		return p.printCSV(w, report)
	case "yaml":
		return p.printYAML(w, report)
	default:
		return p.printTable(w, report)
	}
}

// PrintUnresolved reports paths the engine could not attribute, one per
// line. The caller sends this to stderr; an unresolved path is a hard
// failure, never silently swallowed.
func (p *Presenter) PrintUnresolved(w io.Writer, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(w, "%d path(s) could not be attributed:\n", len(paths))
	for _, path := range paths {
		fmt.Fprintf(w, "  %s\n", path)
	}
}

func (p *Presenter) printTable(w io.Writer, report *Report) error {
	for _, a := range report.Attributions {
		hash := abbrev(a.CommitSHA)
		date := a.AuthoredAt.Format("2006-01-02")
		if p.color {
			fmt.Fprintf(w, "%s  %s  %-20s  %s  %s\n",
				hashStyle.Render(hash),
				dateStyle.Render(date),
				a.Author,
				pathStyle.Render(a.Path),
				subjectStyle.Render(a.Subject))
			continue
		}
		fmt.Fprintf(w, "%s  %s  %-20s  %s  %s\n", hash, date, a.Author, a.Path, a.Subject)
	}
	return nil
}

func (p *Presenter) printJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (p *Presenter) printYAML(w io.Writer, report *Report) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(report)
}

func (p *Presenter) printCSV(w io.Writer, report *Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"path", "commit", "author", "author_email", "authored_at", "change_type", "subject",
	}); err != nil {
		return err
	}

	for _, a := range report.Attributions {
		if err := writer.Write([]string{
			a.Path,
			a.CommitSHA,
			a.Author,
			a.AuthorEmail,
			a.AuthoredAt.Format("2006-01-02T15:04:05Z07:00"),
			string(a.ChangeType),
			a.Subject,
		}); err != nil {
			return err
		}
	}

	return writer.Error()
}

func abbrev(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
