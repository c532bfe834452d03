package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/go-faster/ttree/internal/gold"
	"github.com/go-faster/ttree/interp"
)

func TestMain(m *testing.M) {
	// Explicitly registering flags for golden files.
	gold.Init()

	os.Exit(m.Run())
}

func writeManifest(t *testing.T) string {
	t.Helper()
	var n, pt, px, py interp.Buffer
	for i := 0; i < 4; i++ {
		n.PutInt32(int32(i))
		for j := 0; j < i; j++ {
			pt.PutFloat32(float32(j))
		}
		px.PutInt32(int32(i * 10))
		py.PutInt32(int32(i))
	}
	enc := base64.StdEncoding.EncodeToString
	data := fmt.Sprintf(`entries: 4
branches:
  - name: n
    title: n/I
    data: %s
  - name: pt
    title: pt[n]/F
    data: %s
  - name: P.x
    path: P/P.x
    type: Int_t
    data: %s
  - name: P.y
    path: P/P.y
    type: Int_t
    data: %s
  - name: P
    type: Point
    split: true
    members: [P.x, P.y]
`, enc(n.Buf), enc(pt.Buf), enc(px.Buf), enc(py.Buf))

	p := filepath.Join(t.TempDir(), "tree.yml")
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRoot(zaptest.NewLogger(t))
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBranches(t *testing.T) {
	out, err := run(t, "branches", "-m", writeManifest(t))
	require.NoError(t, err)
	require.Contains(t, out, "4 entries")
	require.Regexp(t, `(?m)^pt\s+pt\s+AsJagged\(AsDtype\('>f4'\)\)\s+var \* float32\s+24 B$`, out)
	require.Regexp(t, `(?m)^P\.x\s+P/P\.x\s+`, out)
}

func TestEval(t *testing.T) {
	p := writeManifest(t)
	out, err := run(t, "eval", "-m", p, "-n", "2", "P.x + P.y", "pt")
	require.NoError(t, err)
	gold.Str(t, out, "eval")

	t.Run("Arrow", func(t *testing.T) {
		out, err := run(t, "eval", "-m", p, "-n", "0", "--library", "arrow", "P")
		require.NoError(t, err)
		require.Contains(t, out, "P: {x: int32, y: int32} (4 entries)\n")
		require.Contains(t, out, "  arrow: struct<")
	})
	t.Run("Error", func(t *testing.T) {
		out, err := run(t, "eval", "-m", p, "-n", "1", "n", "missing")
		require.Error(t, err)
		require.Contains(t, out, "n: int32 (4 entries)\n  [0] 0\n")
		require.Contains(t, out, "missing: error: ")
	})
	t.Run("Library", func(t *testing.T) {
		_, err := run(t, "eval", "-m", p, "--library", "numpy", "n")
		require.Error(t, err)
	})
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Regexp(t, `^ttree/\S+\n$`, out)
}

func TestManifestMissing(t *testing.T) {
	_, err := run(t, "branches", "-m", filepath.Join(t.TempDir(), "none.yml"))
	require.Error(t, err)
}
