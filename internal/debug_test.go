package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags, out := log.Flags(), log.Writer()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
	})
	return &buf
}

func TestEnvironmentVars(t *testing.T) {
	buf := captureLog(t)
	t.Setenv("PIXELS_FILE", "/tmp/pixels.txt")
	t.Setenv("VIEWER_API_KEY", "hunter2")

	EnvironmentVars("VIEWER_API_KEY", "PIXELS_FILE", "INFO_FILE_NOT_SET_ANYWHERE")

	out := buf.String()
	assert.Contains(t, out, "PIXELS_FILE: /tmp/pixels.txt")
	assert.Contains(t, out, "VIEWER_API_KEY: ********")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "INFO_FILE_NOT_SET_ANYWHERE: (unset)")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("INFO_FILE")), bytes.Index(buf.Bytes(), []byte("PIXELS_FILE")))
}

func TestShowVersion(t *testing.T) {
	buf := captureLog(t)
	ShowVersion()
	assert.Contains(t, buf.String(), "Version: ")
}
