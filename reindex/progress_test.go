package reindex

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 10, 5)
	p.Start()

	p.Add(3)
	assert.Empty(t, buf.String(), "below interval, no report yet")

	p.Add(2)
	assert.Contains(t, buf.String(), "5/10")

	p.Add(5)
	assert.Contains(t, buf.String(), "10/10")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 4, 100)
	p.Start()

	p.Add(2)
	assert.Empty(t, buf.String(), "interval larger than total, nothing reported")

	p.Finish()
	out := buf.String()
	assert.Contains(t, out, "4/4")
	assert.True(t, strings.HasSuffix(out, "\n"), "finish ends the progress line")
}

func TestProgressTracker_NotStartedIgnoresUpdates(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 10, 1)

	p.Add(5)
	p.Finish()

	assert.Empty(t, buf.String())
	assert.Equal(t, time.Duration(0), p.Elapsed())
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, 3, 1)
	p.Start()

	p.Add(10)
	assert.Contains(t, buf.String(), "3/3")
}

func TestProgressTracker_Elapsed(t *testing.T) {
	p := NewProgressTracker(io.Discard, 1, 1)
	p.Start()

	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, p.Elapsed(), 5*time.Millisecond)
}
