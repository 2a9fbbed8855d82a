package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/testutil/mocks"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

func newREPLController(t *testing.T) (*session.Controller, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ex := mocks.NewMockExtractor().
		WithRow("Jane Doe", mocks.Candidate("Jane Doe", "555-123-4567", "Engineer", "85000")).
		WithRow("John Smith", mocks.Candidate("John Smith", "555-987-6543", "Analyst", "62000"))
	ctrl := session.NewController(session.DefaultConfig(), func(id string) *workflow.Workflow {
		return workflow.New(id, workflow.DefaultConfig(), nil, ex, st)
	})
	t.Cleanup(func() { _ = ctrl.Close() })
	return ctrl, st
}

func noFiles(string) ([]byte, error) { return nil, errors.New("no files") }

func TestREPL_ManualOnboarding(t *testing.T) {
	ctrl, st := newREPLController(t)
	in := strings.NewReader("Onboard\nmanual\nJane Doe\n555-123-4567\nEngineer\n85000\nsave\n/quit\nignored\n")
	var out bytes.Buffer

	require.NoError(t, repl(context.Background(), ctrl, in, &out, noFiles))

	recs, err := st.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Jane Doe", recs[0].Name)
	assert.Contains(t, out.String(), "options: upload / manual")

	snap, err := ctrl.Snapshot(chatSessionID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Committed(), snap.State)
}

func TestREPL_UploadCommand(t *testing.T) {
	ctrl, _ := newREPLController(t)
	files := map[string][]byte{
		"/tmp/staff.csv": []byte("Name,Phone,Designation,Salary\nJane Doe,555-123-4567,Engineer,85000\nJohn Smith,555-987-6543,Analyst,62000\n"),
	}
	readFile := func(p string) ([]byte, error) {
		if b, ok := files[p]; ok {
			return b, nil
		}
		return nil, errors.New("not found")
	}

	in := strings.NewReader("Onboard\nupload\n/upload /tmp/missing.csv\n/upload /tmp/staff.csv\n")
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), ctrl, in, &out, readFile))

	assert.Contains(t, out.String(), "read /tmp/missing.csv")
	assert.Contains(t, out.String(), "1 more row(s) waiting for review")

	snap, err := ctrl.Snapshot(chatSessionID)
	require.NoError(t, err)
	assert.Equal(t, workflow.ReviewingDraft(), snap.State)
}

func TestREPL_StopsWhenControllerCloses(t *testing.T) {
	ctrl, _ := newREPLController(t)
	require.NoError(t, ctrl.Close())

	var out bytes.Buffer
	err := repl(context.Background(), ctrl, strings.NewReader("Onboard\nmanual\n"), &out, noFiles)
	assert.NoError(t, err)
}

func TestParseLine(t *testing.T) {
	ev, err := parseLine("hello", noFiles)
	require.NoError(t, err)
	assert.Equal(t, workflow.Text("hello"), ev)

	ev, err = parseLine("/edit phone 555-000-1111", noFiles)
	require.NoError(t, err)
	assert.Equal(t, workflow.FieldEdit(types.FieldPhone, "555-000-1111"), ev)

	ev, err = parseLine("/confirm", noFiles)
	require.NoError(t, err)
	assert.Equal(t, workflow.EventConfirm, ev.Kind)

	ev, err = parseLine("/cancel", noFiles)
	require.NoError(t, err)
	assert.Equal(t, workflow.EventCancel, ev.Kind)

	for _, bad := range []string{"/edit", "/edit age 3", "/upload", "/dance"} {
		_, err := parseLine(bad, noFiles)
		assert.Error(t, err, bad)
	}
}
