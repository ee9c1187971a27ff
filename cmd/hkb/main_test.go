package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hkb3d/gohkb/netbuf"
	"github.com/hkb3d/gohkb/worldgen"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func writeWorld(t *testing.T, text string) string {
	t.Helper()
	pathname := filepath.Join(t.TempDir(), "w.hkb")
	require.NoError(t, os.WriteFile(pathname, []byte(text), 0644))
	return pathname
}

const defaultBox = "--box=0,-1,-1,16,15,15"

func TestVisibleDefaultWorld(t *testing.T) {
	out := run(t, newVisibleCmd(), defaultBox)
	assert.True(t, strings.HasPrefix(out, "130 edges visible in (0,-1,-1)..(16,15,15)\n"), out)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 131)
}

func TestVisibleEncode(t *testing.T) {
	out := run(t, newVisibleCmd(), defaultBox, "--encode")
	frame, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)

	buf, err := netbuf.ParseFrame(frame)
	require.NoError(t, err)
	n, err := buf.PopUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(130), n)
	for i := uint32(0); i < n; i++ {
		_, err = buf.PopEdge()
		require.NoError(t, err)
	}
	assert.Zero(t, buf.Len())
}

func TestVisibleBadBox(t *testing.T) {
	cmd := newVisibleCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--box=0,0,0"})
	assert.Error(t, cmd.Execute())
}

func TestChop(t *testing.T) {
	pathname := writeWorld(t, "b r 0 0 0 -> 0 1 0\n")

	out := run(t, newChopCmd(), pathname, "--player=blue")
	assert.Contains(t, out, "blue may not chop red")

	out = run(t, newChopCmd(), pathname, "--player=red")
	assert.Contains(t, out, "red chopped red")
	assert.Contains(t, out, "0 edges remain visible")

	cmd := newChopCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{pathname, "--player=green"})
	assert.Error(t, cmd.Execute())
}

func TestFraction(t *testing.T) {
	out := run(t, newFractionCmd(), "1", "3", "--orders=4")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1/3 = 0 + 0.(01)", lines[0])
	assert.Len(t, lines[1], 4)

	// a persisted expansion reads back the same
	catDir := t.TempDir()
	first := run(t, newFractionCmd(), "2", "7", "--catalog="+catDir)
	second := run(t, newFractionCmd(), "2", "7", "--catalog="+catDir)
	assert.Equal(t, first, second)

	cmd := newFractionCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"1", "4"})
	assert.Error(t, cmd.Execute())
}

func TestWorldgenOutput(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "gen.hkb")
	run(t, newWorldgenCmd(), "--seed=7", "-o", pathname)

	desc, skipped, err := worldgen.ParseFile(pathname)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.NotEmpty(t, desc.Nodes)

	out := run(t, newVisibleCmd(), pathname, "--box=-20,-1,-20,20,20,20")
	assert.False(t, strings.HasPrefix(out, "0 edges"), out)
}

func TestReportWorld(t *testing.T) {
	pathname := writeWorld(t, "b g 0 0 0 -> 0 1 0\nb b 0 1 0 -> 0 2 0\n")
	bf := boxFlags{at: []float64{0, 0, 0}}

	var out bytes.Buffer
	require.NoError(t, reportWorld(pathname, &bf, &out))
	assert.Equal(t, "w.hkb: 1 grounded, 0 chains, 3 nodes and 2 edges visible\n", out.String())
}

func TestScriptExec(t *testing.T) {
	run(t, newScriptCmd(), "-c", "if hkb.FractionExpansion(2, 3) != '0.(10)': raise ValueError('bad expansion')")
	run(t, newScriptCmd(), "learn/02-fractions.py")

	cmd := newScriptCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", "raise ValueError('bad')"})
	assert.Error(t, cmd.Execute())

	cmd = newScriptCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", "pass", "learn/02-fractions.py"})
	assert.Error(t, cmd.Execute())
}
