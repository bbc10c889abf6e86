package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cgbi "github.com/928799934/cgbi-png-fix"
)

func TestRun(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	m := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 11)
	}
	buf := new(bytes.Buffer)
	require.NoError(t, cgbi.Encode(buf, m))
	require.NoError(t, os.WriteFile(filepath.Join(src, "icon.png"), buf.Bytes(), 0o644))

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := run(context.Background(), []string{"--workers", "2", "--log-format", "json", src, dst}, stdout, stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stderr.String(), `"converted"`)

	f, err := os.Open(filepath.Join(dst, "icon.png"))
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, m.Pix, got.(*image.NRGBA).Pix)
}

func TestRunArgs(t *testing.T) {
	stderr := new(bytes.Buffer)
	require.Equal(t, 1, run(context.Background(), []string{"only-one"}, new(bytes.Buffer), stderr))
	require.Contains(t, stderr.String(), "accepts 2 arg(s)")

	stderr.Reset()
	require.Equal(t, 1, run(context.Background(), []string{"--level", "0", t.TempDir(), t.TempDir()}, new(bytes.Buffer), stderr))
	require.Contains(t, stderr.String(), "level")
}

func TestRunFailure(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("\x89PNG\r\n\x1a\n\x00\x00"), 0o644))
	stderr := new(bytes.Buffer)
	require.Equal(t, 1, run(context.Background(), []string{src, t.TempDir()}, new(bytes.Buffer), stderr))
	require.Contains(t, stderr.String(), "1 of 1 files failed")
}
