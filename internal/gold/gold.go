// Package gold implements golden files.
package gold

import (
	"flag"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const defaultDir = "_golden"

// Update reports whether golden files update is requested.
//
// Call Init() in TestMain to propagate.
var Update bool

// Init should be called in TestMain.
func Init() {
	flag.BoolVar(&Update, "update", false, "update golden files")
}

// Path returns path to golden file.
func Path(elems ...string) string {
	return filepath.Join(
		append([]string{defaultDir}, elems...)...,
	)
}

// ReadFile reads golden file.
func ReadFile(t testing.TB, elems ...string) []byte {
	t.Helper()

	p := Path(elems...)
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("golden file %s: %+v", path.Join(elems...), err)
	}

	return data
}

// name returns golden file name of test, using elems if provided.
func name(t testing.TB, ext string, elems []string) []string {
	if len(elems) == 0 {
		elems = []string{filepath.FromSlash(t.Name())}
	}
	last := len(elems) - 1
	if filepath.Ext(elems[last]) == "" {
		elems = append(elems[:last:last], elems[last]+ext)
	}
	return elems
}

func write(t testing.TB, data []byte, elems []string) {
	t.Helper()

	p := Path(elems...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o600))
}

// Str compares s with golden file, writing it on Update.
//
// File name is test name with ".txt" extension if elems are empty.
func Str(t testing.TB, s string, elems ...string) {
	t.Helper()

	elems = name(t, ".txt", elems)
	if Update {
		write(t, []byte(s), elems)
		return
	}
	require.Equal(t, string(ReadFile(t, elems...)), s, "golden file %s", path.Join(elems...))
}

// Bytes compares data with golden file, writing it on Update.
//
// File name is test name with ".raw" extension if elems are empty.
func Bytes(t testing.TB, data []byte, elems ...string) {
	t.Helper()

	elems = name(t, ".raw", elems)
	if Update {
		write(t, data, elems)
		return
	}
	require.Equal(t, ReadFile(t, elems...), data, "golden file %s", path.Join(elems...))
}
