package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dasa.cc/primeview/config"
	"dasa.cc/primeview/loader"
)

const exampleJSON = `{
  "kind": "lattice",
  "elements": [{"x": 0, "y": 0, "r": 1}, {"x": 5, "y": 3, "r": 1}],
  "relations": {"0": [{"weight": 1, "targets": [1]}]}
}`

func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.json"), []byte(exampleJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3.yaml"), []byte("kind: scatter\nelements:\n  - {x: 1, y: 1, r: 0.5}\n"), 0o644))
	return dir
}

func testApp(t *testing.T) *app {
	cfg := config.Default()
	cfg.Data.Dir = testDir(t)
	cfg.View.Width, cfg.View.Height = 400, 300
	return &app{cfg: cfg, logger: zap.NewNop()}
}

func decodePNG(t *testing.T, name string) (w, h int) {
	t.Helper()
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestSnapshotCommand(t *testing.T) {
	dir := testDir(t)
	out := filepath.Join(t.TempDir(), "two.png")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--data-dir", dir, "--log-level", "error",
		"snapshot", "2", "-o", out, "--width", "320", "--height", "200", "--thumb", "80"})
	require.NoError(t, cmd.Execute())

	w, h := decodePNG(t, out)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
	w, h = decodePNG(t, filepath.Join(filepath.Dir(out), "two.thumb.png"))
	assert.Equal(t, 80, w)
	assert.Equal(t, 50, h)
}

func TestSnapshotErrors(t *testing.T) {
	dir := testDir(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--data-dir", dir, "snapshot", "9", "-o", filepath.Join(t.TempDir(), "x.png")})
	assert.ErrorIs(t, cmd.Execute(), loader.ErrNotFound)

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--data-dir", dir, "snapshot", "2", "--interp", "Lanzcos3"})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--data-dir", dir, "--log-level", "loud", "snapshot", "2"})
	assert.Error(t, cmd.Execute())
}

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		l, err := newLogger(config.LogConfig{Level: lvl})
		require.NoError(t, err, lvl)
		assert.NotNil(t, l)
	}
	_, err := newLogger(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestFirstSelector(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	sess, err := a.session(ctx, 0, 0)
	require.NoError(t, err)

	sel, err := a.firstSelector(ctx, sess, "")
	require.NoError(t, err)
	assert.Equal(t, "2", sel)

	a.cfg.View.Selector = "3"
	sel, _ = a.firstSelector(ctx, sess, "")
	assert.Equal(t, "3", sel)
	sel, _ = a.firstSelector(ctx, sess, "7")
	assert.Equal(t, "7", sel)

	a.cfg.View.Selector = ""
	a.cfg.Data.Dir = t.TempDir()
	empty, err := a.session(ctx, 0, 0)
	require.NoError(t, err)
	_, err = a.firstSelector(ctx, empty, "")
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestRepl(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	var out bytes.Buffer
	r, err := a.newRepl(ctx, &out)
	require.NoError(t, err)

	run := func(line string) string {
		t.Helper()
		out.Reset()
		require.NoError(t, r.exec(ctx, line), line)
		return out.String()
	}

	run("load 2")
	assert.Contains(t, run("status"), "2  lattice  2 elements  1 lines")
	assert.False(t, r.sess.Renderer.Busy(), "frames are drained after each command")

	run("select 0")
	assert.Contains(t, run("status"), "selected 0  targets [1]")
	run("clear")
	assert.NotContains(t, run("status"), "selected")

	assert.Equal(t, "lines visible: false\n", run("toggle lines"))
	assert.Contains(t, run("list"), "* 2\n")
	run("next")
	assert.Equal(t, "3", r.sess.Selector())
	run("prev")
	assert.Equal(t, "2", r.sess.Selector())
	run("scale 60")
	assert.InDelta(t, 60, r.sess.Camera.Scale, 1e-9)
	assert.Contains(t, run("labels"), "step 1")
	assert.Contains(t, run("help"), "snapshot <file.png>")

	file := filepath.Join(t.TempDir(), "r.png")
	run("snapshot " + file)
	w, h := decodePNG(t, file)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestReplErrors(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	var out bytes.Buffer
	r, err := a.newRepl(ctx, &out)
	require.NoError(t, err)

	require.NoError(t, r.exec(ctx, "   "))
	assert.ErrorContains(t, r.exec(ctx, "selcet 0"), `did you mean "select"`)
	assert.ErrorContains(t, r.exec(ctx, "xyzzy"), "try help")
	assert.EqualError(t, r.exec(ctx, "scale"), "usage: scale <pixels per unit>")
	assert.EqualError(t, r.exec(ctx, "pan 1"), "usage: pan <dx> <dy>")
	assert.ErrorIs(t, r.exec(ctx, "load 9"), loader.ErrNotFound)
	assert.ErrorContains(t, r.exec(ctx, "select 0"), "no element 0")
	assert.ErrorIs(t, r.exec(ctx, "quit"), errQuit)
}

func TestReplComplete(t *testing.T) {
	a := testApp(t)
	r, err := a.newRepl(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)

	line := []rune("lo")
	have, n := r.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("ad ")}, have)
	assert.Equal(t, 2, n)

	line = []rune("load ")
	have, n = r.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("2 "), []rune("3 ")}, have)
	assert.Equal(t, 0, n)

	line = []rune("toggle h")
	have, _ = r.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("ighlight "), []rune("over ")}, have)

	line = []rune("status x")
	have, _ = r.Do(line, len(line))
	assert.Empty(t, have)
}
