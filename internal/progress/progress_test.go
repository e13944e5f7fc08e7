package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewLineProgress(&buf)

	p.Start(2, "Deleting 2 courses")
	p.Step("c1", nil)
	p.Step("c2", errors.New("boom"))
	p.Finish()

	assert.Equal(t, "Deleting 2 courses\n[1/2] c1: ok\n[2/2] c2: failed: boom\n", buf.String())
}

func TestBarProgressWritesFailures(t *testing.T) {
	var buf bytes.Buffer
	p := NewBarProgress(&buf)

	p.Step("ignored before start", errors.New("x"))
	assert.Empty(t, buf.String())

	p.Start(2, "Deleting")
	p.Step("c1", errors.New("not found"))
	p.Step("c2", nil)
	p.Finish()

	assert.Contains(t, buf.String(), "✖ c1: not found")
}

func TestNewPicksReporter(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &NoOpProgress{}, New(&buf, true, true))
	assert.IsType(t, &BarProgress{}, New(&buf, true, false))
	assert.IsType(t, &LineProgress{}, New(&buf, false, false))
}
