package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/acarl005/stripansi"

	"scriptest/internal/domain"
)

//go:embed templates/report.tmpl.html
var templatesFS embed.FS

// HTMLSink renders a single self-contained HTML page
type HTMLSink struct {
	tmpl *template.Template
}

type htmlUnit struct {
	Name     string
	Path     string
	Dir      string
	Passed   bool
	Duration string
	Message  string
	Stack    []string
	Output   string
	LogPath  string
}

type htmlData struct {
	RunID     string
	Timestamp string
	Duration  string
	Total     int
	Passed    int
	Failed    int
	PassRate  string
	OK        bool
	Units     []htmlUnit
}

// NewHTMLSink parses the embedded template
func NewHTMLSink() (*HTMLSink, error) {
	tmpl, err := template.New("report.tmpl.html").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/report.tmpl.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template: %w", err)
	}
	return &HTMLSink{tmpl: tmpl}, nil
}

func (s *HTMLSink) Format() string { return "html" }

func (s *HTMLSink) Filename(stem string) string { return stem + ".html" }

func (s *HTMLSink) Render(result domain.RunResult, failures []domain.TestFailure) ([]byte, error) {
	byPath := make(map[string]domain.TestFailure)
	for _, f := range failures {
		byPath[f.FilePath] = f
	}

	data := htmlData{
		RunID:     result.RunID,
		Timestamp: result.StartedAt.Format(time.RFC1123),
		Duration:  formatDuration(result.Duration.Seconds()),
		Total:     result.Total(),
		Passed:    result.Passed(),
		Failed:    result.Failed(),
		PassRate:  "0.0%",
		OK:        result.OK(),
	}
	if result.Total() > 0 {
		data.PassRate = fmt.Sprintf("%.1f%%", float64(result.Passed())*100/float64(result.Total()))
	}

	for _, u := range result.Units {
		hu := htmlUnit{
			Name:     u.Ref.Name,
			Path:     u.Ref.Path,
			Dir:      u.Ref.Dir,
			Passed:   u.Outcome.Passed(),
			Duration: formatDuration(u.Outcome.Duration.Seconds()),
			LogPath:  u.LogPath,
		}
		if !hu.Passed {
			hu.Message = u.Outcome.ErrorMessage()
			if f, ok := byPath[u.Ref.Path]; ok {
				if f.Message != "" {
					hu.Message = f.Message
				}
				hu.Stack = f.StackTrace
			}
			hu.Output = stripansi.Strip(u.Outcome.Output)
		}
		data.Units = append(data.Units, hu)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}
