package combinatorics

import (
	"fmt"
	"math/big"
)

// Factorials is a memo of n! values. The zero value is ready to use.
// It is owned by one Engine and is not safe for concurrent use.
type Factorials struct {
	memo []*big.Int
}

// Of returns n! as a fresh big.Int the caller may modify.
func (f *Factorials) Of(n int) *big.Int {
	if n < 0 {
		panic(fmt.Sprintf("combinatorics: factorial of negative number %d", n))
	}
	if len(f.memo) == 0 {
		f.memo = append(f.memo, big.NewInt(1))
	}
	for k := len(f.memo); k <= n; k++ {
		next := new(big.Int).Mul(f.memo[k-1], big.NewInt(int64(k)))
		f.memo = append(f.memo, next)
	}
	return new(big.Int).Set(f.memo[n])
}

// Size reports how many values are memoised.
func (f *Factorials) Size() int {
	return len(f.memo)
}
