package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSheet(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, content, 0600), "failed to set up test file")
	return path
}

func runApp(t *testing.T, cfg Config) (string, string, error) {
	t.Helper()
	config, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	err = NewApp(out, logs, config).Run(context.Background())
	return out.String(), logs.String(), err
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		errContains string
	}{
		{"minimal", Config{SheetPath: "s.txt"}, ""},
		{"yaml", Config{SheetPath: "s.txt", Format: FormatYAML, DecimalPlaces: 3}, ""},
		{"latin1", Config{SheetPath: "s.txt", Encoding: "LATIN1"}, ""},
		{"missing path", Config{}, "SheetPath is a required"},
		{"negative decimal places", Config{SheetPath: "s.txt", DecimalPlaces: -1}, "decimal places"},
		{"too many decimal places", Config{SheetPath: "s.txt", DecimalPlaces: MaxDecimalPlaces + 1}, "decimal places"},
		{"bad format", Config{SheetPath: "s.txt", Format: "csv"}, "invalid format"},
		{"bad encoding", Config{SheetPath: "s.txt", Encoding: "ebcdic"}, "unsupported encoding"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.Format)
			assert.NotEmpty(t, cfg.Encoding)
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{SheetPath: "s.txt"})
	require.NoError(t, err)
	assert.Equal(t, FormatTable, cfg.Format)
	assert.Equal(t, EncodingUTF8, cfg.Encoding)
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name     string
		raw      []byte
		encoding string
		expected string
	}{
		{"utf-8", []byte("\"café\"|"), "utf-8", "\"café\"|"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "1|"...), "utf-8", "1|"},
		{"latin1", []byte{'"', 'c', 'a', 'f', 0xE9, '"', '|'}, "latin1", "\"café\"|"},
		{"windows-1252 euro", []byte{'"', 0x80, '"', '|'}, "windows-1252", "\"€\"|"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decode(tc.raw, tc.encoding)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := decode([]byte("1|"), "koi8")
	require.Error(t, err)
}

func TestRun_Table(t *testing.T) {
	path := writeSheet(t, []byte("5|=@a1*2|\n7|^|\n"))

	out, _, err := runApp(t, Config{SheetPath: path, DecimalPlaces: 1})
	require.NoError(t, err)
	assert.Equal(t, "\n 5.0  10.0 \n 7.0  14.0 \n\n", out)
}

func TestRun_YAML(t *testing.T) {
	path := writeSheet(t, []byte("2|\"x\"|\n=@a1/4|@c9|\n"))

	out, _, err := runApp(t, Config{SheetPath: path, DecimalPlaces: 2, Format: FormatYAML})
	require.NoError(t, err)
	assert.Contains(t, out, "decimal_places: 2")
	assert.Contains(t, out, "address: a2")
	assert.Contains(t, out, "value: 0.5")
	assert.Contains(t, out, "kind: error")
}

func TestRun_Latin1Sheet(t *testing.T) {
	path := writeSheet(t, []byte{'"', 'c', 'a', 'f', 0xE9, '"', '|', '1', '|', '\n'})

	out, _, err := runApp(t, Config{SheetPath: path, Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, "\n café  1 \n\n", out)
}

func TestRun_LogsCellFailures(t *testing.T) {
	path := writeSheet(t, []byte("=(|@a1|\n"))

	out, logs, err := runApp(t, Config{SheetPath: path, LogFormat: "json"})
	require.NoError(t, err)
	assert.Contains(t, out, "!malformed")
	assert.Contains(t, logs, `"msg":"Cells failed to resolve."`)
	assert.Contains(t, logs, `"code":"!malformed"`)
	assert.Contains(t, logs, `"count":2`)
}

func TestRun_FailureLogOrder(t *testing.T) {
	path := writeSheet(t, []byte("@z1|=(|^|\n"))

	for i := 0; i < 5; i++ {
		_, logs, err := runApp(t, Config{SheetPath: path, LogFormat: "json"})
		require.NoError(t, err)

		premature := strings.Index(logs, `"code":"!premature"`)
		malformed := strings.Index(logs, `"code":"!malformed"`)
		bounds := strings.Index(logs, `"code":"!bounds"`)
		require.True(t, malformed >= 0 && bounds >= 0 && premature >= 0, "missing failure lines in:\n%s", logs)
		assert.True(t, malformed < bounds && bounds < premature, "failure lines out of code order:\n%s", logs)
	}
}

func TestRun_DebugLogging(t *testing.T) {
	path := writeSheet(t, []byte("1|=@b1|\n"))

	_, logs, err := runApp(t, Config{SheetPath: path, LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)
	assert.Contains(t, logs, "sheet calculated")
	assert.Contains(t, logs, "cell failed to resolve")
	assert.Contains(t, logs, "address=b1")
}

func TestRun_MissingSheet(t *testing.T) {
	_, _, err := runApp(t, Config{SheetPath: filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_TooManyColumns(t *testing.T) {
	path := writeSheet(t, bytes.Repeat([]byte("1|"), 800))

	_, _, err := runApp(t, Config{SheetPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum number of columns")
}

func TestRun_CancelledContext(t *testing.T) {
	path := writeSheet(t, []byte("1|\n"))
	cfg, err := NewConfig(Config{SheetPath: path})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
