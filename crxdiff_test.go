/*------------------------------------------------------------------------------
* gnsscrx unit test driver : numeric difference codec
*-----------------------------------------------------------------------------*/
package gnsscrx_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnsscrx"
)

func encodeSeries(t *testing.T, order int, vals []int64) []string {
	ds := gnsscrx.NewDiffState(order)
	syms := make([]string, len(vals))
	for i, v := range vals {
		sym, err := ds.Encode(v)
		require.NoError(t, err)
		syms[i] = sym.String()
	}
	return syms
}

func decodeSeries(t *testing.T, syms []string) []int64 {
	var ds gnsscrx.DiffState
	vals := make([]int64, len(syms))
	for i, s := range syms {
		sym, err := gnsscrx.ParseSymbol(s)
		require.NoError(t, err)
		vals[i], err = ds.Decode(sym)
		require.NoError(t, err)
	}
	return vals
}

/* first order scenario ------------------------------------------------------*/
func Test_crxdiff_order1(t *testing.T) {
	assert := assert.New(t)
	syms := encodeSeries(t, 1, []int64{123456, 123460, 123465})
	assert.Equal([]string{"1&123456", "4", "5"}, syms)

	vals := decodeSeries(t, syms)
	assert.Equal("123.456", gnsscrx.FormatFixed(vals[0], 3))
	assert.Equal("123.460", gnsscrx.FormatFixed(vals[1], 3))
	assert.Equal("123.465", gnsscrx.FormatFixed(vals[2], 3))
}

/* warm-up caps the order at the samples seen --------------------------------*/
func Test_crxdiff_warmup(t *testing.T) {
	assert := assert.New(t)
	syms := encodeSeries(t, 3, []int64{0, 1, 4, 9, 16, 25})
	assert.Equal([]string{"3&0", "1", "2", "0", "0", "0"}, syms)
	assert.Equal([]int64{0, 1, 4, 9, 16, 25}, decodeSeries(t, syms))
}

/* decode(encode(x)) == x for orders 0..3 ------------------------------------*/
func Test_crxdiff_idempotence(t *testing.T) {
	assert := assert.New(t)
	vals := []int64{23619095450, 23619095123, 23619096001, -17, 0, 99999999999999,
		-99999999999999, 5, 5, 5, 124120000123, 124120012345, 124120024690}
	for order := 0; order <= 3; order++ {
		syms := encodeSeries(t, order, vals)
		assert.Equal(vals, decodeSeries(t, syms), "order=%d", order)
	}
}

/* reset forces an absolute symbol -------------------------------------------*/
func Test_crxdiff_reset(t *testing.T) {
	assert := assert.New(t)
	ds := gnsscrx.NewDiffState(2)
	for _, v := range []int64{100, 110, 125} {
		_, err := ds.Encode(v)
		assert.NoError(err)
	}
	ds.Reset()
	sym, err := ds.Encode(130)
	assert.NoError(err)
	assert.Equal("2&130", sym.String())

	dec := gnsscrx.NewDiffState(2)
	_, err = dec.Decode(gnsscrx.Symbol{Val: 5})
	assert.True(errors.Is(err, gnsscrx.ErrDecodeState))
	assert.False(dec.Valid())
}

func Test_crxdiff_symbol(t *testing.T) {
	assert := assert.New(t)
	sym, err := gnsscrx.ParseSymbol("3&-1234567")
	assert.NoError(err)
	assert.Equal(gnsscrx.Symbol{Init: true, Order: 3, Val: -1234567}, sym)

	sym, err = gnsscrx.ParseSymbol("")
	assert.NoError(err)
	assert.True(sym.Blank)
	assert.Equal("", sym.String())

	for _, s := range []string{"12&5", "6&1", "&5", "1&", "x", "1.5"} {
		_, err = gnsscrx.ParseSymbol(s)
		assert.True(errors.Is(err, gnsscrx.ErrFormat), "symbol %q", s)
	}
	_, err = gnsscrx.ParseSymbol("99999999999999999999")
	assert.True(errors.Is(err, gnsscrx.ErrOverflow))
}

func Test_crxdiff_overflow(t *testing.T) {
	assert := assert.New(t)
	ds := gnsscrx.NewDiffState(1)
	_, err := ds.Encode(math.MaxInt64)
	assert.NoError(err)
	_, err = ds.Encode(-2)
	assert.True(errors.Is(err, gnsscrx.ErrOverflow))

	var dec gnsscrx.DiffState
	_, err = dec.Decode(gnsscrx.Symbol{Init: true, Order: 1, Val: math.MaxInt64})
	assert.NoError(err)
	_, err = dec.Decode(gnsscrx.Symbol{Val: 1})
	assert.True(errors.Is(err, gnsscrx.ErrOverflow))
}

func Test_crxdiff_fixed(t *testing.T) {
	assert := assert.New(t)
	v, err := gnsscrx.ParseFixed("  123.456", 3)
	assert.NoError(err)
	assert.Equal(int64(123456), v)
	v, err = gnsscrx.ParseFixed("-0.005", 3)
	assert.NoError(err)
	assert.Equal(int64(-5), v)
	assert.Equal("-0.005", gnsscrx.FormatFixed(v, 3))
	assert.Equal("0.000123456789", gnsscrx.FormatFixed(123456789, 12))

	for _, s := range []string{"12.34", ".500", "1.2345", "1a.000", "-", "-0.000"} {
		_, err = gnsscrx.ParseFixed(s, 3)
		assert.True(errors.Is(err, gnsscrx.ErrFormat), "value %q", s)
	}
	_, err = gnsscrx.ParseFixed("12345678901234567.890", 3)
	assert.True(errors.Is(err, gnsscrx.ErrOverflow))
}
