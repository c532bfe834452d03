package interp

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Values written to reference tree, with range [-2.71, 10.0].
var codecValues = []float64{-2, -1.5, -1, -0.5, -0.1, 0, 0.1, 0.5, 1, 2, 3, 4, 5, 6, 7, 8, 9}

// Stored raw values of codecValues per bit count.
var codecRaw = map[int][]uint32{
	3:  {0, 1, 1, 1, 2, 2, 2, 2, 2, 3, 4, 4, 5, 5, 6, 7, 7},
	5:  {2, 3, 4, 6, 7, 7, 7, 8, 9, 12, 14, 17, 19, 22, 24, 27, 29},
	10: {57, 97, 138, 178, 210, 218, 226, 259, 299, 379, 460, 541, 621, 702, 782, 863, 943},
	16: {3661, 6239, 8817, 11395, 13458, 13973, 14489, 16552, 19130, 24286, 29442, 34598, 39755, 44911, 50067, 55223, 60380},
	20: {58575, 99825, 141075, 182325, 215325, 223575, 231825, 264825, 306075, 388575, 471075, 553576, 636076, 718576, 801076, 883576, 966076},
}

func putRaw(raw []uint32, repeat int) []byte {
	var b Buffer
	for _, v := range raw {
		for i := 0; i < repeat; i++ {
			b.PutUInt32(v)
		}
	}
	return b.Buf
}

var (
	double32Bits3 = []float64{
		-2.71,
		-1.1212499999999999,
		-1.1212499999999999,
		-1.1212499999999999,
		0.46750000000000025,
		0.46750000000000025,
		0.46750000000000025,
		0.46750000000000025,
		0.46750000000000025,
		2.0562500000000004,
		3.6450000000000005,
		3.6450000000000005,
		5.233750000000001,
		5.233750000000001,
		6.822500000000001,
		8.411249999999999,
		8.411249999999999,
	}
	double32Bits5 = []float64{
		-1.9156249999999999,
		-1.5184374999999999,
		-1.1212499999999999,
		-0.3268749999999998,
		0.0703125,
		0.0703125,
		0.0703125,
		0.46750000000000025,
		0.8646875000000005,
		2.0562500000000004,
		2.850625,
		4.0421875000000007,
		4.8365625000000003,
		6.0281250000000002,
		6.8225000000000007,
		8.0140625000000014,
		8.8084375000000001,
	}
	double32Bits10 = []float64{
		-2.0025097656249997,
		-1.5060253906249998,
		-0.99712890624999995,
		-0.50064453124999986,
		-0.10345703124999961,
		-0.0041601562499997691,
		0.095136718750000071,
		0.50473632812500036,
		1.0012207031250004,
		1.9941894531250002,
		2.9995703125000004,
		4.0049511718750006,
		4.9979199218750008,
		6.0033007812500001,
		6.9962695312500012,
		8.0016503906250023,
		8.9946191406250016,
	}
	double32Bits20 = []float64{
		-2.0000006771087646,
		-1.5000011539459228,
		-1.0000016307830808,
		-0.50000210762023922,
		-0.10000248908996578,
		-2.5844573974254104e-06,
		0.099997320175170934,
		0.49999693870544437,
		0.99999646186828661,
		1.9999955081939698,
		2.9999945545196534,
		4.0000057220458993,
		5.0000047683715829,
		6.0000038146972665,
		7.0000028610229501,
		8.0000019073486328,
		9.0000009536743164,
	}
	float16Bits3 = []float64{
		-2.7100000381469727,
		-1.1212500333786011,
		-1.1212500333786011,
		-1.1212500333786011,
		0.46749997138977051,
		0.46749997138977051,
		0.46749997138977051,
		0.46749997138977051,
		0.46749997138977051,
		2.0562500953674316,
		3.6449999809265137,
		3.6449999809265137,
		5.2337498664855957,
		5.2337498664855957,
		6.8225002288818359,
		8.411250114440918,
		8.411250114440918,
	}
	float16Bits5 = []float64{
		-1.9156250953674316,
		-1.5184375047683716,
		-1.1212500333786011,
		-0.32687497138977051,
		0.0703125,
		0.0703125,
		0.0703125,
		0.46749997138977051,
		0.86468744277954102,
		2.0562500953674316,
		2.8506250381469727,
		4.0421876907348633,
		4.8365626335144043,
		6.0281248092651367,
		6.8225002288818359,
		8.0140628814697266,
		8.8084373474121094,
	}
	float16Bits10 = []float64{
		-2.0025098323822021,
		-1.5060254335403442,
		-0.99712896347045898,
		-0.50064444541931152,
		-0.10345697402954102,
		-0.0041601657867431641,
		0.095136642456054688,
		0.50473618507385254,
		1.001220703125,
		1.9941892623901367,
		2.999570369720459,
		4.004951000213623,
		4.997920036315918,
		6.003300666809082,
		6.9962692260742188,
		8.0016508102416992,
		8.9946193695068359,
	}
	float16Bits16 = []float64{
		-1.9999885559082031,
		-1.5000133514404297,
		-1.0000380277633667,
		-0.50006270408630371,
		-0.099966049194335938,
		-8.7499618530273438e-05,
		0.099985122680664062,
		0.50008177757263184,
		1.0000569820404053,
		2.0000076293945312,
		2.9999580383300781,
		3.9999089241027832,
		5.0000534057617188,
		6.0000038146972656,
		6.9999542236328125,
		7.9999046325683594,
		9.0000495910644531,
	}
)

func TestCodec_String(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		Codec    Codec
		Expected string
	}{
		{Codec{Format: Double32, Low: -2.71, High: 10, Bits: 32}, "AsDouble32(-2.71, 10.0, 32)"},
		{Codec{Format: Double32, Low: -2.71, High: 10, Bits: 30}, "AsDouble32(-2.71, 10.0, 30)"},
		{Codec{Format: Double32, Low: -2.71, High: 10, Bits: 3}, "AsDouble32(-2.71, 10.0, 3)"},
		{Codec{Format: Float16, Low: -2.71, High: 10, Bits: 16}, "AsFloat16(-2.71, 10.0, 16)"},
		{Codec{Format: Double32, Low: -2.71, High: 10, Bits: 30, Dims: []int{3}}, "AsDouble32(-2.71, 10.0, 30, to_dims=(3,))"},
		{Codec{Format: Float16, Low: -2.71, High: 10, Bits: 10, Dims: []int{3}}, "AsFloat16(-2.71, 10.0, 10, to_dims=(3,))"},
		{Codec{Format: Float16, Bits: 12}, "AsFloat16(0.0, 0.0, 12)"},
		{Codec{Format: Double32, Low: 0, High: 1e-05, Bits: 8, Dims: []int{2, 3}}, "AsDouble32(0.0, 1e-05, 8, to_dims=(2, 3))"},
	} {
		assert.Equal(t, tt.Expected, tt.Codec.String())
	}
	a := Codec{Format: Double32, Low: -2.71, High: 10, Bits: 30}
	b := a
	require.True(t, a.Equal(b))
	b.Bits = 20
	require.False(t, a.Equal(b))
	b = a
	b.Format = Float16
	require.False(t, a.Equal(b))
}

func TestCodec_Reference(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		Format   CodecFormat
		Bits     int
		Expected []float64
	}{
		{Double32, 3, double32Bits3},
		{Double32, 5, double32Bits5},
		{Double32, 10, double32Bits10},
		{Double32, 20, double32Bits20},
		{Float16, 3, float16Bits3},
		{Float16, 5, float16Bits5},
		{Float16, 10, float16Bits10},
		{Float16, 16, float16Bits16},
	} {
		tt := tt
		c := Codec{Format: tt.Format, Low: -2.71, High: 10, Bits: tt.Bits}
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()
			raw := codecRaw[tt.Bits]
			require.Len(t, raw, len(tt.Expected))

			arr, err := Decode(c, Input{Data: putRaw(raw, 1), Entries: len(raw)})
			require.NoError(t, err)
			require.Equal(t, len(raw), arr.Rows())
			switch tt.Format {
			case Double32:
				require.Equal(t, Type("float64"), arr.Type())
				require.Equal(t, Numbers[float64](tt.Expected), arr)
			case Float16:
				require.Equal(t, Type("float32"), arr.Type())
				expected := make(Numbers[float32], len(tt.Expected))
				for i, v := range tt.Expected {
					expected[i] = float32(v)
				}
				require.Equal(t, expected, arr)
			}
		})
	}
}

// encode is inverse of quantized decoding, as done by writer.
func encode(c Codec, v float64) uint32 {
	levels := uint64(1) << uint(c.Bits)
	x := (v-c.Low)/(c.High-c.Low)*float64(levels) + 0.5
	if x < 0 {
		return 0
	}
	if x >= float64(levels) {
		return uint32(levels - 1)
	}
	return uint32(x)
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, bits := range []int{3, 5, 10, 16, 20, 30, 32} {
		bits := bits
		c := Codec{Format: Double32, Low: -2.71, High: 10, Bits: bits}
		t.Run(fmt.Sprintf("Bits%d", bits), func(t *testing.T) {
			t.Parallel()
			bound := (c.High - c.Low) / (math.Pow(2, float64(bits)) - 2)
			var raw []uint32
			for _, v := range codecValues {
				raw = append(raw, encode(c, v))
			}
			arr, err := c.DecodeArray(putRaw(raw, 1), len(raw))
			require.NoError(t, err)
			got := arr.(Numbers[float64])
			distinct := make(map[float64]struct{})
			for i, v := range codecValues {
				require.InDelta(t, v, got[i], bound, "value %v", v)
				require.Equal(t, got[i], c.Decode(raw[i]), "deterministic")
				distinct[got[i]] = struct{}{}
			}
			if bits == 3 {
				require.LessOrEqual(t, len(distinct), 8)
			}
		})
	}
	t.Run("Float16", func(t *testing.T) {
		t.Parallel()
		c := Codec{Format: Float16, Low: -2.71, High: 10, Bits: 16}
		bound := (c.High - c.Low) / (math.Pow(2, 16) - 2)
		for i, raw := range codecRaw[16] {
			require.InDelta(t, codecValues[i], c.Decode(raw), bound)
		}
	})
}

func TestCodec_Truncated(t *testing.T) {
	t.Parallel()
	t.Run("Mantissa", func(t *testing.T) {
		t.Parallel()
		c := Codec{Format: Double32, Bits: 10}
		require.NoError(t, c.Validate())
		require.True(t, c.Truncated())
		require.False(t, c.Plain())
		require.Equal(t, 3, c.Width())

		// 1.5 is exponent 0x7f and mantissa 0x400000, 10 bits are 0x200.
		data := []byte{
			0x7f, 0x02, 0x00,
			0x7f, 0x0a, 0x00, // sign bit set
			0x80, 0x00, 0x00,
		}
		arr, err := c.DecodeArray(data, 3)
		require.NoError(t, err)
		require.Equal(t, Numbers[float64]{1.5, -1.5, 2}, arr)
	})
	t.Run("Plain", func(t *testing.T) {
		t.Parallel()
		c := Codec{Format: Float16, Bits: 32}
		require.True(t, c.Plain())
		require.Equal(t, 4, c.Width())

		var b Buffer
		b.PutFloat32(1.25)
		b.PutFloat32(-3.5)
		arr, err := c.DecodeArray(b.Buf, -1)
		require.NoError(t, err)
		require.Equal(t, Numbers[float32]{1.25, -3.5}, arr)
	})
}

func TestCodec_Dims(t *testing.T) {
	t.Parallel()
	c := Codec{Format: Float16, Low: -2.71, High: 10, Bits: 10, Dims: []int{3}}
	require.Equal(t, Type("3 * float32"), c.Type())

	raw := codecRaw[10]
	arr, err := Decode(c, Input{Data: putRaw(raw, 3), Entries: len(raw)})
	require.NoError(t, err)
	require.Equal(t, len(raw), arr.Rows())
	require.Equal(t, Type("3 * float32"), arr.Type())
	for i, v := range float16Bits10 {
		require.Equal(t, []float32{float32(v), float32(v), float32(v)}, arr.Row(i))
	}

	t.Run("NotDivisible", func(t *testing.T) {
		_, err := c.DecodeArray(putRaw(raw[:4], 1), -1)
		require.True(t, IsMalformed(err), "%v", err)
	})
	t.Run("Shape", func(t *testing.T) {
		c := Codec{Format: Double32, Low: 0, High: 1, Bits: 8, Dims: []int{2, 3}}
		require.Equal(t, Type("2 * 3 * float64"), c.Type())
		arr, err := c.DecodeArray(putRaw(make([]uint32, 12), 1), 2)
		require.NoError(t, err)
		require.Equal(t, 2, arr.Rows())
		require.Equal(t, []interface{}{
			[]float64{0, 0, 0},
			[]float64{0, 0, 0},
		}, arr.Row(1))
	})
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()
	c := Codec{Format: Double32, Low: -2.71, High: 10, Bits: 10}
	for _, tt := range []struct {
		Name  string
		Data  []byte
		Count int
	}{
		{"Width", make([]byte, 5), -1},
		{"Count", make([]byte, 8), 3},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			_, err := Decode(c, Input{Data: tt.Data, Entries: tt.Count})
			require.True(t, IsMalformed(err), "%v", err)
		})
	}
	t.Run("Empty", func(t *testing.T) {
		arr, err := c.DecodeArray(nil, 0)
		require.NoError(t, err)
		require.Equal(t, 0, arr.Rows())
	})
}

func TestCodec_Validate(t *testing.T) {
	t.Parallel()
	for _, c := range []Codec{
		{Format: Double32, Low: 0, High: 1, Bits: 1},
		{Format: Double32, Low: 0, High: 1, Bits: 33},
		{Format: Double32, Low: 1, High: 1, Bits: 10},
		{Format: Double32, Low: 2, High: 1, Bits: 10},
		{Format: Float16, Bits: 20},
		{Format: CodecFormat(10), Low: 0, High: 1, Bits: 10},
		{Format: Double32, Low: 0, High: 1, Bits: 10, Dims: []int{0}},
	} {
		require.Error(t, c.Validate(), "%s", c)
		_, err := Decode(c, Input{Entries: -1})
		require.Error(t, err)
	}
}
