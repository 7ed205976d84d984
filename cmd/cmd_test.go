package cmd

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-harmony/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{DefaultStyle: "pop-8beat", MinNotes: 3, MaxMovement: 7}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(cfg, "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExecuteLogsFailure(t *testing.T) {
	var logs bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&logs)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	root := newRootCmd(testConfig(), "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	root.SetArgs([]string{"recognize", "C4"})
	require.Error(t, execute(root))
	assert.Contains(t, logs.String(), "[ERROR] Command failed")
	assert.Contains(t, logs.String(), "command=magda-harmony recognize")

	logs.Reset()
	root.SetArgs([]string{"recognize", "60", "64", "67"})
	require.NoError(t, execute(root))
	assert.NotContains(t, logs.String(), "[ERROR]")
}

func TestRecognize(t *testing.T) {
	out, err := run(t, testConfig(), "recognize", "43", "47", "50", "53")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "G7\t"), out)

	out, err = run(t, testConfig(), "recognize", "60")
	require.NoError(t, err)
	assert.Equal(t, "no chord\n", out)

	_, err = run(t, testConfig(), "recognize", "C4")
	assert.Error(t, err)
}

func TestVoicelead(t *testing.T) {
	out, err := run(t, testConfig(), "voicelead", "C,Am", "F", "G7")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "C "))
	assert.Contains(t, lines[0], "moved=0")
	assert.True(t, strings.HasPrefix(lines[3], "G7 "))
}

func TestReharm(t *testing.T) {
	out, err := run(t, testConfig(), "reharm", "--sub", "tritone", "G7")
	require.NoError(t, err)
	assert.Equal(t, "G7 -> C#7\n", out)

	out, err = run(t, testConfig(), "reharm", "--chain", "G7")
	require.NoError(t, err)
	assert.Equal(t, "G7 -> C\n", out)

	_, err = run(t, testConfig(), "reharm", "H7")
	assert.Error(t, err)
}

func TestSong(t *testing.T) {
	out, err := run(t, testConfig(), "song", "--template", "edm", "--style", "edm-house", "--part", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "House Track")
	assert.Contains(t, out, "[>Drop 1<]")
	assert.Contains(t, out, "Drop 2")
}

func TestStyles(t *testing.T) {
	out, err := run(t, testConfig(), "styles", "--category", "jazz")
	require.NoError(t, err)
	assert.Contains(t, out, "jazz-swing")
	assert.NotContains(t, out, "pop-8beat")

	out, err = run(t, testConfig(), "styles", "--search", "no-such-style")
	require.NoError(t, err)
	assert.Equal(t, "no styles\n", out)
}

func TestDemo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.mid")
	out, err := run(t, testConfig(), "demo", "--bars", "6", "--ending", "cadence", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "bar   6")
	assert.Contains(t, out, "ending   cadence")
	assert.Contains(t, out, "wrote "+path)
	// the four-bar intro queues a fill on its last bar
	assert.Contains(t, out, "fill")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDemoStopsAtSongEnd(t *testing.T) {
	out, err := run(t, testConfig(), "demo", "--template", "edm", "--style", "edm-house", "--bars", "500", "--fills=false")
	require.NoError(t, err)
	assert.Contains(t, out, "bar  64 ")
	assert.NotContains(t, out, "bar  65 ")
	assert.NotContains(t, out, "fill")
}

func TestUnknownStyle(t *testing.T) {
	_, err := run(t, testConfig(), "demo", "--style", "polka")
	assert.Error(t, err)
}

func TestBadCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := run(t, cfg, "styles")
	assert.Error(t, err)
}
