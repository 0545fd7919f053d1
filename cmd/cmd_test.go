package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wapdec/internal/config"
	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/pipeline"
)

// MockRunner implements runner
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRunner) Stats() pipeline.Stats {
	args := m.Called()
	return args.Get(0).(pipeline.Stats)
}

func TestRunReplay_Success(t *testing.T) {
	r := new(MockRunner)
	r.On("Run", mock.Anything).Return(nil)
	r.On("Stats").Return(pipeline.Stats{Received: 5, Decoded: 4, Fragments: 1, Parsed: 3, Reported: 3})

	var buf bytes.Buffer
	err := runReplay(context.Background(), r, &buf)

	assert.NoError(t, err)
	assert.Equal(t, "5 frames, 4 decoded, 1 fragments held, 3 parsed, 0 dropped, 3 reported\n", buf.String())
	r.AssertExpectations(t)
}

func TestRunReplay_Failure(t *testing.T) {
	r := new(MockRunner)
	r.On("Run", mock.Anything).Return(errors.New("capture failed: bad magic"))
	r.On("Stats").Return(pipeline.Stats{Received: 1, DecodeErrors: 1})

	var buf bytes.Buffer
	err := runReplay(context.Background(), r, &buf)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
	assert.Contains(t, buf.String(), "errors: 1 decode, 0 parse, 0 report")
	r.AssertExpectations(t)
}

func withConfig(t *testing.T, format string) {
	t.Helper()
	c, err := config.Load("")
	require.NoError(t, err)
	c.Output.Format = format
	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
}

func TestRunDecode_WBXML(t *testing.T) {
	withConfig(t, "json")

	var buf bytes.Buffer
	err := runDecode(&buf, nil, "wbxml", decodeOptions{hex: "02 05 6a 00 05"})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hex", rec["source"])
	assert.Equal(t, "wbxml", rec["payload_type"])
	assert.Contains(t, buf.String(), `"text":"si"`)
}

func TestRunDecode_MMSFromFile(t *testing.T) {
	withConfig(t, "text")
	path := filepath.Join(t.TempDir(), "pdu.mms")
	require.NoError(t, os.WriteFile(path, []byte("\x8c\x80\x98TID\x00\x8d\x90"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, runDecode(&buf, nil, "mms", decodeOptions{file: path}))
	out := buf.String()
	assert.Contains(t, out, "[0+2] message_type: m-send-req")
	assert.Contains(t, out, "[2+5] transaction_id: TID")
}

func TestRunDecode_ErrorStillRenders(t *testing.T) {
	withConfig(t, "text")

	var buf bytes.Buffer
	err := runDecode(&buf, nil, "wbxml", decodeOptions{hex: "09 05 6a 00"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedVersion)
	assert.Contains(t, buf.String(), "error: ")
}

func TestRunDecode_Stdin(t *testing.T) {
	withConfig(t, "text")

	var buf bytes.Buffer
	stdin := bytes.NewReader([]byte{0xde, 0xad, 0x02, 0x05, 0x6a, 0x00, 0x05})
	require.NoError(t, runDecode(&buf, stdin, "wbxml", decodeOptions{file: "-", offset: 2}))
	assert.Contains(t, buf.String(), "element: si")
}

func TestRunDecode_BadInput(t *testing.T) {
	withConfig(t, "text")
	var buf bytes.Buffer
	assert.Error(t, runDecode(&buf, nil, "wbxml", decodeOptions{}))
	assert.Error(t, runDecode(&buf, nil, "wbxml", decodeOptions{hex: "0"}))
	assert.Error(t, runDecode(&buf, nil, "wbxml", decodeOptions{hex: "00", file: "x"}))
	assert.Error(t, runDecode(&buf, nil, "wbxml", decodeOptions{hex: "00", offset: 2}))
	assert.Empty(t, buf.String())
}

func TestParseHex(t *testing.T) {
	got, err := parseHex("0x8c 0x80\n98:54,49")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x8c, 0x80, 0x98, 0x54, 0x49}, got)
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte(`
wapdec:
  output:
    format: yaml
  pipeline:
    processors:
      - name: labelfilter
`), 0o644))

	var buf bytes.Buffer
	require.NoError(t, runValidate(good, &buf))
	assert.Equal(t, "VALID: capturer \"pcapfile\", 1 parser(s), 1 processor(s), 1 reporter(s), output yaml\n", buf.String())

	unknown := filepath.Join(dir, "unknown.yml")
	require.NoError(t, os.WriteFile(unknown, []byte(`
wapdec:
  pipeline:
    reporters:
      - name: kafka
`), 0o644))
	err := runValidate(unknown, &buf)
	assert.ErrorIs(t, err, core.ErrPluginNotFound)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("wapdec:\n  log:\n    level: loud\n"), 0o644))
	assert.ErrorIs(t, runValidate(bad, &buf), core.ErrConfigInvalid)
}

func TestRunTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runTables(&buf))
	out := buf.String()
	assert.Contains(t, out, "SI 1.0")
	assert.Contains(t, out, "application/vnd.wap.sic")
	assert.Contains(t, out, "parsers:    wap")
	assert.True(t, strings.HasPrefix(out, "PUBLIC ID"))
}
