package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePrimitive(t *testing.T) {
	t.Parallel()
	var b Buffer
	for _, v := range []float64{1, -2.5, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		b.PutFloat64(v)
	}
	src := append([]byte{}, b.Buf...)

	t.Run("Float64", func(t *testing.T) {
		arr, err := DecodePrimitive(b.Buf, KindFloat64, 4)
		require.NoError(t, err)
		require.Equal(t, Numbers[float64]{1, -2.5, math.MaxFloat64, math.SmallestNonzeroFloat64}, arr)
		require.Equal(t, src, b.Buf, "input must not be modified")
	})
	t.Run("Int64", func(t *testing.T) {
		var b Buffer
		b.PutInt64(-1)
		b.PutInt64(math.MaxInt64)
		b.PutUInt64(1 << 40)
		arr, err := DecodePrimitive(b.Buf, KindInt64, -1)
		require.NoError(t, err)
		require.Equal(t, Numbers[int64]{-1, math.MaxInt64, 1 << 40}, arr)

		arr, err = DecodePrimitive(b.Buf, KindUInt64, 3)
		require.NoError(t, err)
		require.Equal(t, Numbers[uint64]{math.MaxUint64, math.MaxInt64, 1 << 40}, arr)
	})
	t.Run("Narrow", func(t *testing.T) {
		data := []byte{0xff, 0xfe, 0x00, 0x01}
		for _, tt := range []struct {
			Kind     Kind
			Expected Array
		}{
			{KindInt8, Numbers[int8]{-1, -2, 0, 1}},
			{KindUInt8, Numbers[uint8]{255, 254, 0, 1}},
			{KindInt16, Numbers[int16]{-2, 1}},
			{KindUInt16, Numbers[uint16]{0xfffe, 1}},
			{KindInt32, Numbers[int32]{-131071}},
			{KindUInt32, Numbers[uint32]{0xfffe0001}},
			{KindBool, Bools{true, true, false, true}},
		} {
			arr, err := DecodePrimitive(data, tt.Kind, -1)
			require.NoError(t, err, "%s", tt.Kind)
			require.Equal(t, tt.Expected, arr, "%s", tt.Kind)
			require.Equal(t, tt.Kind.Type(), arr.Type())
		}
	})
	t.Run("Float32", func(t *testing.T) {
		var b Buffer
		b.PutFloat32(0.5)
		b.PutFloat32(-8)
		arr, err := DecodePrimitive(b.Buf, KindFloat32, 2)
		require.NoError(t, err)
		require.Equal(t, Numbers[float32]{0.5, -8}, arr)
	})
	t.Run("Empty", func(t *testing.T) {
		arr, err := DecodePrimitive(nil, KindFloat64, 0)
		require.NoError(t, err)
		require.Equal(t, 0, arr.Rows())
		require.Equal(t, []float64{}, Interface(arr))
	})
	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodePrimitive(make([]byte, 7), KindFloat64, 1)
		require.True(t, IsMalformed(err))
		_, err = DecodePrimitive(make([]byte, 7), KindInt32, -1)
		require.True(t, IsMalformed(err))
		_, err = DecodePrimitive(make([]byte, 8), KindInvalid, -1)
		require.Error(t, err)
	})
}

func TestAsDtype(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		Dtype  AsDtype
		String string
		Type   Type
		Width  int
	}{
		{AsDtype{Elem: KindFloat64}, "AsDtype('>f8')", "float64", 8},
		{AsDtype{Elem: KindInt32, Dims: []int{3}}, "AsDtype('>i4', to_dims=(3,))", "3 * int32", 12},
		{AsDtype{Elem: KindBool}, "AsDtype('|?')", "bool", 1},
		{AsDtype{Elem: KindUInt8, Dims: []int{2, 2}}, "AsDtype('|u1', to_dims=(2, 2))", "2 * 2 * uint8", 4},
	} {
		require.Equal(t, tt.String, tt.Dtype.String())
		require.Equal(t, tt.Type, tt.Dtype.Type())
		require.Equal(t, tt.Width, tt.Dtype.Width())
	}

	var b Buffer
	for i := int32(0); i < 6; i++ {
		b.PutInt32(i)
	}
	arr, err := Decode(AsDtype{Elem: KindInt32, Dims: []int{3}}, Input{Data: b.Buf, Entries: 2})
	require.NoError(t, err)
	require.Equal(t, 2, arr.Rows())
	require.Equal(t, Type("3 * int32"), arr.Type())
	require.Equal(t, []interface{}{
		[]int32{0, 1, 2},
		[]int32{3, 4, 5},
	}, Interface(arr))

	_, err = Decode(AsDtype{Elem: KindInt32, Dims: []int{3}}, Input{Data: b.Buf, Entries: 3})
	require.True(t, IsMalformed(err))
}
