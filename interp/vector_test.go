package interp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// putVector writes streamed std::vector<double>.
func putVector(b *Buffer, header bool, values []float64) {
	if header {
		b.PutHeader(2+4+8*len(values), 9)
	}
	b.PutInt32(int32(len(values)))
	for _, v := range values {
		b.PutFloat64(v)
	}
}

func TestAsVector(t *testing.T) {
	t.Parallel()
	t.Run("VectorVectorDouble", func(t *testing.T) {
		entries := [][][]float64{
			{},
			{{}, {}},
			{{10}, {}, {10, 20}},
			{{20, -21, -22}},
			{{200}, {-201}, {202}},
		}
		var b Buffer
		for _, entry := range entries {
			b.NewEntry()
			b.PutHeader(0, 9) // byte count is not checked
			b.PutInt32(int32(len(entry)))
			for _, inner := range entry {
				putVector(&b, false, inner)
			}
		}
		v := AsVector{Header: true, Elem: AsVector{Elem: AsDtype{Elem: KindFloat64}}}
		require.Equal(t, "AsVector(True, AsVector(False, AsDtype('>f8')))", v.String())
		require.Equal(t, Type("var * var * float64"), v.Type())

		arr, err := Decode(v, Input{Data: b.Buf, Entries: len(entries), Offsets: b.EntryOffsets()})
		require.NoError(t, err)
		require.Equal(t, v.Type(), arr.Type())
		require.Equal(t, []interface{}{
			[]interface{}{},
			[]interface{}{[]float64{}, []float64{}},
			[]interface{}{[]float64{10}, []float64{}, []float64{10, 20}},
			[]interface{}{[]float64{20, -21, -22}},
			[]interface{}{[]float64{200}, []float64{-201}, []float64{202}},
		}, Interface(arr))

		t.Run("Sequential", func(t *testing.T) {
			arr, err := Decode(v, Input{Data: b.Buf, Entries: -1})
			require.NoError(t, err)
			require.Equal(t, len(entries), arr.Rows())
		})
	})
	t.Run("VectorString", func(t *testing.T) {
		var (
			b        Buffer
			expected []interface{}
		)
		for i := 0; i < 100; i++ {
			s := fmt.Sprintf("vec-%03d", i)
			entry := []string{}
			b.NewEntry()
			b.PutHeader(0, 6)
			b.PutInt32(int32(i % 10))
			for j := 0; j < i%10; j++ {
				b.PutString(Length1To5, s)
				entry = append(entry, s)
			}
			expected = append(expected, entry)
		}
		v := AsVector{Header: true, Elem: AsStrings{}}
		require.Equal(t, Type("var * string"), v.Type())
		arr, err := Decode(v, Input{Data: b.Buf, Entries: 100, Offsets: b.EntryOffsets()})
		require.NoError(t, err)
		require.Equal(t, expected, Interface(arr))
	})
	t.Run("Codec", func(t *testing.T) {
		c := Codec{Format: Float16, Low: -2.71, High: 10, Bits: 16}
		var b Buffer
		b.NewEntry()
		b.PutInt32(2)
		b.PutRaw(putRaw(codecRaw[16][:2], 1))
		arr, err := Decode(AsVector{Elem: c}, Input{Data: b.Buf, Entries: 1, Offsets: b.EntryOffsets()})
		require.NoError(t, err)
		require.Equal(t, []float32{float32(float16Bits16[0]), float32(float16Bits16[1])}, arr.Row(0))
	})
	t.Run("Malformed", func(t *testing.T) {
		v := AsVector{Header: true, Elem: AsDtype{Elem: KindFloat64}}
		for _, tt := range []struct {
			Name   string
			Buffer func(b *Buffer)
		}{
			{"NoHeaderFlag", func(b *Buffer) {
				b.PutUInt32(10)
				b.PutUInt16(9)
				b.PutInt32(0)
			}},
			{"NegativeSize", func(b *Buffer) {
				b.PutHeader(4, 9)
				b.PutInt32(-1)
			}},
			{"Short", func(b *Buffer) {
				b.PutHeader(4, 9)
				b.PutInt32(2)
				b.PutFloat64(1)
			}},
			{"Trailing", func(b *Buffer) {
				putVector(b, true, []float64{1})
				b.PutUInt8(0)
			}},
		} {
			t.Run(tt.Name, func(t *testing.T) {
				var b Buffer
				b.NewEntry()
				tt.Buffer(&b)
				_, err := Decode(v, Input{Data: b.Buf, Entries: 1, Offsets: b.EntryOffsets()})
				require.Error(t, err)
			})
		}
	})
	t.Run("Unsupported", func(t *testing.T) {
		_, err := Decode(AsVector{Elem: AsObject{Class: "TLorentzVector"}}, Input{Entries: 0})
		require.True(t, IsUnsupported(err))
	})
}
