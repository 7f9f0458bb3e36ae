package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/repcoach/callscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineReader hands out one line per Read, like answers typed at a prompt.
type lineReader struct {
	lines []string
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.lines) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.lines[0]+"\n")
	r.lines = r.lines[1:]
	return n, nil
}

func runRubricNew(t *testing.T, answers []string, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"rubric", "new"}, args...))
	cmd.SetIn(&lineReader{lines: answers})
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return stdout.String(), err
}

var rubricAnswers = []string{
	"",             // goal weight
	"",             // closing phrases
	"1",            // required phrases weight
	"pricing, roi", // phrases
	"2",            // open questions weight
	"3",            // minimum questions
	"",             // objections weight
	"",             // objection types
	"",             // quality weight
}

func TestRubricNew_Stdout(t *testing.T) {
	workDir(t, nil)

	out, err := runRubricNew(t, rubricAnswers)
	require.NoError(t, err)
	assert.Contains(t, out, "required_phrases:")
	assert.Contains(t, out, "minimum_count: 3")
	assert.NotContains(t, out, "goal_achievement")
}

func TestRubricNew_OutputFileScores(t *testing.T) {
	dir := workDir(t, map[string]string{"call.yaml": sampleAttemptYAML})
	path := filepath.Join(dir, "rubric.yaml")

	_, err := runRubricNew(t, rubricAnswers, "-o", path)
	require.NoError(t, err)

	r, err := models.LoadRubric(path)
	require.NoError(t, err)
	assert.Len(t, r.Criteria, 2)

	_, err = runCLI(t, "validate", path)
	require.NoError(t, err)
	_, err = runCLI(t, "score", "call.yaml", "--rubric", path)
	require.NoError(t, err)
}

func TestRubricNew_RefusesOverwrite(t *testing.T) {
	dir := workDir(t, map[string]string{"rubric.yaml": "existing"})

	_, err := runRubricNew(t, rubricAnswers, "-o", filepath.Join(dir, "rubric.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(filepath.Join(dir, "rubric.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestRubricNew_NoWeights(t *testing.T) {
	workDir(t, nil)
	_, err := runRubricNew(t, nil)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidRubric, exitCode(err))
}
