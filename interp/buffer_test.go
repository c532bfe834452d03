package interp

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-faster/ttree/internal/gold"
)

func TestMain(m *testing.M) {
	// Explicitly registering flags for golden files.
	gold.Init()

	os.Exit(m.Run())
}

func TestBuffer(t *testing.T) {
	var b Buffer
	b.NewEntry()
	b.PutHeader(2+4+2*4, 9)
	b.PutInt32(2)
	b.PutInt32(1)
	b.PutInt32(2)
	b.NewEntry()
	b.PutString(Length1To5, "hi")

	gold.Bytes(t, b.Buf, "buffer_vector")
	require.Equal(t, []int64{0, 18, 21}, b.EntryOffsets())

	b.Reset()
	require.Empty(t, b.Buf)
	require.Empty(t, b.Offsets)
}
