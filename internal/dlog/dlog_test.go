package dlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewHonorsLevelAndFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")

	l.Debug("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "json formatter must emit a JSON object")
}

func TestNewDefaultsOnUnrecognisedInput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", "")

	l.Debug("should not appear at info level")
	assert.Empty(t, buf.String())

	l.SetLevel(log.InfoLevel)
	l.Info("should appear")
	assert.Contains(t, buf.String(), "should appear")
}
