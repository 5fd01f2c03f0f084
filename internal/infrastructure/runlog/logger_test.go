package runlog

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_AppendsTimestampedLines(t *testing.T) {
	home := t.TempDir()

	logger, err := New(home, nil)
	require.NoError(t, err)

	logger.Printf("run %s started: %d entries", "abc123", 3)
	logger.Printf("trailing newline is trimmed\n")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(home, "logs", "plugup.log"))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)

	// [RFC3339] message
	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[^\]]*\] `)
	for _, line := range lines {
		assert.Regexp(t, pattern, string(line))
	}
	assert.Contains(t, string(lines[0]), "run abc123 started: 3 entries")
	assert.Contains(t, string(lines[1]), "trailing newline is trimmed")
}

func TestLogger_AppendsAcrossReopens(t *testing.T) {
	home := t.TempDir()

	first, err := New(home, nil)
	require.NoError(t, err)
	first.Printf("first session")
	require.NoError(t, first.Close())

	second, err := New(home, nil)
	require.NoError(t, err)
	second.Printf("second session")
	require.NoError(t, second.Close())

	data, err := os.ReadFile(filepath.Join(home, "logs", "plugup.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first session")
	assert.Contains(t, string(data), "second session")
}

func TestLogger_DebugEcho(t *testing.T) {
	home := t.TempDir()

	var echo bytes.Buffer
	logger, err := New(home, log.New(&echo, "[plugup] ", 0))
	require.NoError(t, err)
	defer logger.Close()

	logger.Printf("echoed line")
	assert.Contains(t, echo.String(), "[plugup] echoed line")
}

func TestLogger_NilIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("goes nowhere")
	assert.NoError(t, logger.Close())
}
