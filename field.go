package poseidon2

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/holiman/uint256"
)

// ErrInvalidFieldElement is returned for inputs that are not non-negative integers.
var ErrInvalidFieldElement = errors.New("poseidon2: invalid field element")

// Modulus returns the BLS12-381 scalar field order.
func Modulus() *big.Int {
	return fr.Modulus()
}

// ParseElement parses a non-negative integer given in decimal or, with a 0x
// prefix, in hexadecimal. The value is not reduced.
func ParseElement(s string) (*big.Int, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldElement, s)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldElement, s)
	}
	return v, nil
}

// reduceWord maps an arbitrary non-negative integer to a canonical 256-bit word.
func reduceWord(v *big.Int) (*uint256.Int, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFieldElement, v)
	}
	if v.BitLen() > 256 {
		v = new(big.Int).Mod(v, fr.Modulus())
	}
	w, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %v does not fit in 256 bits", ErrInvalidFieldElement, v)
	}
	return w, nil
}

// sbox raises x to the fifth power in place.
func sbox(x *fr.Element) {
	var sq, quad fr.Element
	sq.Mul(x, x)
	quad.Mul(&sq, &sq)
	x.Mul(&quad, x)
}
