package value

import (
	"fmt"
	"math/big"
)

// BigInt is an arbitrary precision integer.
type BigInt struct {
	n *big.Int
}

func (BigInt) Kind() Kind { return KindBigInt }
func (BigInt) sealed()    {}

// NewBigInt copies n into a BigInt. A nil n is zero.
func NewBigInt(n *big.Int) BigInt {
	c := new(big.Int)
	if n != nil {
		c.Set(n)
	}
	return BigInt{n: c}
}

// BigIntFromInt64 builds a BigInt from an int64.
func BigIntFromInt64(i int64) BigInt {
	return BigInt{n: big.NewInt(i)}
}

// ParseBigInt parses a base 10 integer literal.
func ParseBigInt(s string) (BigInt, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigInt{}, fmt.Errorf("invalid bigint literal %q", s)
	}
	return BigInt{n: n}, nil
}

// Big returns a copy of the underlying integer.
func (b BigInt) Big() *big.Int {
	c := new(big.Int)
	if b.n != nil {
		c.Set(b.n)
	}
	return c
}

// String renders the decimal form.
func (b BigInt) String() string {
	if b.n == nil {
		return "0"
	}
	return b.n.String()
}

// Cmp compares b and o like big.Int.Cmp.
func (b BigInt) Cmp(o BigInt) int {
	return b.Big().Cmp(o.Big())
}
