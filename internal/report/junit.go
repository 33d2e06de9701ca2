package report

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/acarl005/stripansi"

	"scriptest/internal/domain"
)

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Tests   int                 `xml:"tests,attr"`
	Failure int                 `xml:"failures,attr"`
	Time    string              `xml:"time,attr"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Timestamp  string             `xml:"timestamp,attr,omitempty"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName   xml.Name         `xml:"testcase"`
	Classname string           `xml:"classname,attr"`
	Name      string           `xml:"name,attr"`
	Time      string           `xml:"time,attr"`
	Failure   *jUnitXMLFailure `xml:"failure,omitempty"`
	SystemOut string           `xml:"system-out,omitempty"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// JUnitSink writes one testsuite per scanned directory, one testcase per unit
type JUnitSink struct{}

func (JUnitSink) Format() string { return "junit" }

func (JUnitSink) Filename(stem string) string { return stem + ".xml" }

func (JUnitSink) Render(result domain.RunResult, failures []domain.TestFailure) ([]byte, error) {
	byPath := make(map[string]domain.TestFailure)
	for _, f := range failures {
		byPath[f.FilePath] = f
	}

	doc := jUnitXMLDocument{
		Tests:   result.Total(),
		Failure: result.Failed(),
		Time:    jUnitDurationString(result.Duration),
	}
	suiteIndex := make(map[string]int)
	var suiteDurations []time.Duration

	for _, u := range result.Units {
		idx, ok := suiteIndex[u.Ref.Dir]
		if !ok {
			idx = len(doc.Suites)
			suiteIndex[u.Ref.Dir] = idx
			doc.Suites = append(doc.Suites, jUnitXMLTestSuite{
				Name:      u.Ref.Dir,
				Timestamp: result.StartedAt.Format("2006-01-02T15:04:05"),
				Properties: []jUnitXMLProperty{
					{Name: "run.id", Value: result.RunID},
				},
			})
			suiteDurations = append(suiteDurations, 0)
		}
		suite := &doc.Suites[idx]

		suite.Tests++
		suiteDurations[idx] += u.Outcome.Duration

		testCase := jUnitXMLTestCase{
			Classname: u.Ref.Dir,
			Name:      u.Ref.Name,
			Time:      jUnitDurationString(u.Outcome.Duration),
		}
		if !u.Outcome.Passed() {
			suite.Failures++
			message := u.Outcome.ErrorMessage()
			if f, ok := byPath[u.Ref.Path]; ok && f.Message != "" {
				message = f.Message
			}
			testCase.Failure = &jUnitXMLFailure{
				Message:  message,
				Type:     "TestLoadError",
				Contents: stripansi.Strip(u.Outcome.Output),
			}
		}
		suite.TestCases = append(suite.TestCases, testCase)
	}
	for i := range doc.Suites {
		doc.Suites[i].Time = jUnitDurationString(suiteDurations[i])
	}

	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	bytes = append([]byte(xml.Header), bytes...)
	return append(bytes, '\n'), nil
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
