package datarecording

import (
	"os"
	"strings"
	"time"

	"github.com/sarchlab/nftest/result"
)

// Table names.
const (
	SessionTable = "session"
	ResultTable  = "result"
)

const timeLayout = "2006-01-02 15:04:05.000000000"

// SessionEntry is the row describing one test session.
type SessionEntry struct {
	ID        string
	Name      string
	Mode      string
	Design    string
	Command   string
	WorkDir   string
	StartTime string
	EndTime   string
	Total     int
	Passed    int
	Failed    int
	ExitCode  int
}

// ResultEntry is the row of one check.
type ResultEntry struct {
	SessionID   string
	ID          string
	Kind        string
	Description string
	Expected    string
	Actual      string
	Pass        bool
}

// SessionInfo describes the session being recorded.
type SessionInfo struct {
	ID     string
	Name   string
	Mode   string
	Design string
}

// ResultRecorder writes a session and its results.
type ResultRecorder struct {
	recorder DataRecorder
	session  SessionEntry
}

// NewResultRecorder creates the session and result tables.
func NewResultRecorder(r DataRecorder) (*ResultRecorder, error) {
	if err := r.CreateTable(SessionTable, SessionEntry{}); err != nil {
		return nil, err
	}

	if err := r.CreateTable(ResultTable, ResultEntry{}); err != nil {
		return nil, err
	}

	return &ResultRecorder{recorder: r}, nil
}

// Start notes when and how the session was launched.
func (r *ResultRecorder) Start(info SessionInfo) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	r.session = SessionEntry{
		ID:        info.ID,
		Name:      info.Name,
		Mode:      info.Mode,
		Design:    info.Design,
		Command:   strings.Join(os.Args, " "),
		WorkDir:   wd,
		StartTime: time.Now().Format(timeLayout),
	}
}

// RecordResults buffers results.
func (r *ResultRecorder) RecordResults(results []result.Result) error {
	for _, res := range results {
		err := r.recorder.InsertData(ResultTable, ResultEntry{
			SessionID:   r.session.ID,
			ID:          res.ID,
			Kind:        res.Kind.String(),
			Description: res.Description,
			Expected:    res.Expected,
			Actual:      res.Actual,
			Pass:        res.Pass,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// End writes the session row with its outcome and flushes.
func (r *ResultRecorder) End(sum result.Summary, exitCode int) error {
	entry := r.session
	entry.EndTime = time.Now().Format(timeLayout)
	entry.Total = sum.Total
	entry.Passed = sum.Passed
	entry.Failed = sum.Failed
	entry.ExitCode = exitCode

	if err := r.recorder.InsertData(SessionTable, entry); err != nil {
		return err
	}

	return r.recorder.Flush()
}

// Close releases the database.
func (r *ResultRecorder) Close() error {
	return r.recorder.Close()
}
