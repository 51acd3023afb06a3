package reporter

import (
	"encoding/xml"
	"fmt"
	"time"

	"gauntlet/internal/events"
)

// junitReport is the <testsuites> document root.
type junitReport struct {
	XMLName   xml.Name     `xml:"testsuites"`
	Name      string       `xml:"name,attr"`
	UUID      string       `xml:"uuid,attr"`
	Timestamp string       `xml:"timestamp,attr"`
	Time      string       `xml:"time,attr"`
	Tests     int          `xml:"tests,attr"`
	Failures  int          `xml:"failures,attr"`
	Errors    int          `xml:"errors,attr"`
	Suites    []*junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Disabled int         `xml:"disabled,attr"`
	Errors   int         `xml:"errors,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Timestamp string        `xml:"timestamp,attr,omitempty"`
	Time      string        `xml:"time,attr,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Type        string `xml:"type,attr"`
	Description string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

// junitReporter buffers one testcase per trial and writes a single JUnit
// XML file when the run finishes.
type junitReporter struct {
	path       string
	reportName string
	runID      string
	startTime  time.Time
	suite      *junitSuite
}

// NewJUnit creates a reporter that writes a JUnit XML report to path. The
// report name labels the document root and runID becomes its uuid
// attribute.
func NewJUnit(path, reportName, runID string) Reporter {
	return &junitReporter{
		path:       path,
		reportName: reportName,
		runID:      runID,
	}
}

func (r *junitReporter) Report(ev events.Event) error {
	switch ev.Kind {
	case events.KindRunStarted:
		r.startTime = ev.Time
	case events.KindTestFinished:
		suite := r.testSuite()
		tc := junitCase{
			Name:      ev.TestName,
			Classname: classname(ev.TestKind),
			Timestamp: junitTimestamp(ev.Start),
			Time:      junitSeconds(ev.Elapsed),
		}
		if ev.Outcome.Failed() {
			tc.Failure = &junitFailure{
				Type:        "test failure",
				Description: failureText(ev.Outcome),
			}
			suite.Failures++
		}
		suite.Tests++
		suite.Cases = append(suite.Cases, tc)
	case events.KindTestSkipped:
		suite := r.testSuite()
		suite.Tests++
		suite.Disabled++
		suite.Cases = append(suite.Cases, junitCase{
			Name:      ev.TestName,
			Classname: classname(ev.TestKind),
			Skipped:   &junitSkipped{Message: "Skipped: " + string(ev.Reason)},
		})
	case events.KindRunFinished:
		return r.write(ev.Elapsed)
	}
	return nil
}

func (r *junitReporter) testSuite() *junitSuite {
	if r.suite == nil {
		r.suite = &junitSuite{Name: "test"}
	}
	return r.suite
}

func (r *junitReporter) write(elapsed time.Duration) error {
	doc := junitReport{
		Name:      r.reportName,
		UUID:      r.runID,
		Timestamp: junitTimestamp(r.startTime),
		Time:      junitSeconds(elapsed),
	}
	if r.suite != nil {
		doc.Tests = r.suite.Tests
		doc.Failures = r.suite.Failures
		doc.Errors = r.suite.Errors
		doc.Suites = append(doc.Suites, r.suite)
	}

	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return &WriteError{Err: err}
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := writeFileAtomic(r.path, data); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func classname(kind string) string {
	if kind == "" {
		return "test"
	}
	return kind
}

func junitTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func junitSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
