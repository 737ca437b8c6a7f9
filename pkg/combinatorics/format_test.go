package combinatorics

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactorials(t *testing.T) {
	var f Factorials

	assert.Equal(t, "1", f.Of(0).String())
	assert.Equal(t, "1", f.Of(1).String())

	want := big.NewInt(1)
	for n := 2; n <= 30; n++ {
		want.Mul(want, big.NewInt(int64(n)))
		assert.Equal(t, want.String(), f.Of(n).String(), "%d!", n)
	}
	assert.Equal(t, "265252859812191058636308480000000", f.Of(30).String())
	assert.Equal(t, 31, f.Size())
}

func TestFactorialsReturnsCopies(t *testing.T) {
	var f Factorials
	v := f.Of(5)
	v.SetInt64(0)
	assert.Equal(t, "120", f.Of(5).String())
}

func TestFactorialsPanicsOnNegative(t *testing.T) {
	var f Factorials
	assert.Panics(t, func() { f.Of(-1) })
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{65536, "65,536"},
		{253146, "253,146"},
		{1000000, "1,000,000"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatWithCommas(big.NewInt(tt.in)))
	}

	huge, _ := new(big.Int).SetString("265252859812191058636308480000000", 10)
	assert.Equal(t, "265,252,859,812,191,058,636,308,480,000,000", FormatWithCommas(huge))
}

func TestResultLines(t *testing.T) {
	res := Result{
		ParameterGraphSize: big.NewInt(253146),
		Reorderings:        big.NewInt(24),
		AllOrderings:       big.NewInt(6075504),
	}

	assert.Equal(t, []string{
		"Parameter Graph Size for fixed threshold ordering = 253,146",
		"Number of threshold reorderings = 24",
		"Parameter Graph Size including all threshold orderings = 6,075,504",
	}, res.Lines())

	figs := res.Figures()
	assert.Equal(t, "6075504", figs[2].Value)
}
