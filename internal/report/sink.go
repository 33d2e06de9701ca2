package report

import (
	"fmt"

	"scriptest/internal/domain"
)

// Sink renders a finished run into one artifact format
type Sink interface {
	Format() string
	Filename(stem string) string
	Render(result domain.RunResult, failures []domain.TestFailure) ([]byte, error)
}

// ArtifactWriter stores rendered artifacts, e.g. a workspace.Workspace
type ArtifactWriter interface {
	WriteFile(name string, data []byte) (string, error)
}

// NewSinks builds the sinks for the given format names, in order
func NewSinks(formats []string) ([]Sink, error) {
	var sinks []Sink
	seen := make(map[string]bool)
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case "json":
			sinks = append(sinks, JSONSink{})
		case "html":
			sink, err := NewHTMLSink()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)
		case "junit":
			sinks = append(sinks, JUnitSink{})
		default:
			return nil, fmt.Errorf("unknown report format %q", f)
		}
	}
	return sinks, nil
}

// WriteAll renders every sink and writes it, returning the written paths
func WriteAll(w ArtifactWriter, stem string, sinks []Sink, result domain.RunResult, failures []domain.TestFailure) ([]string, error) {
	var paths []string
	for _, s := range sinks {
		data, err := s.Render(result, failures)
		if err != nil {
			return paths, fmt.Errorf("render %s report: %w", s.Format(), err)
		}
		path, err := w.WriteFile(s.Filename(stem), data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
