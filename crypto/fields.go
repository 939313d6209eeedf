package crypto

import (
	"errors"
	"fmt"
	"math/big"
)

// FieldElementLen is the exact byte width of an encoded field element.
const FieldElementLen = 32

// ShareFieldOrder defines the finite field order for share operations.
var ShareFieldOrder *big.Int

func init() {
	// 2^256 - 189, the largest 256-bit prime; a chunk encodes 32 bytes
	ShareFieldOrder, _ = big.NewInt(0).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639747", 10)
}

// ErrInvalidEncoding is returned when a byte chunk does not decode to a
// valid field element.
var ErrInvalidEncoding = errors.New("invalid field element encoding")

// DecodeFieldElement decodes a fixed-width big-endian byte chunk into a
// field element. The encoding is canonical: the chunk must be exactly
// FieldElementLen bytes and its value must be below the field order.
func DecodeFieldElement(chunk []byte) (*big.Int, error) {
	if len(chunk) != FieldElementLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidEncoding, len(chunk), FieldElementLen)
	}
	el := new(big.Int).SetBytes(chunk)
	if el.Cmp(ShareFieldOrder) >= 0 {
		return nil, fmt.Errorf("%w: value exceeds field order", ErrInvalidEncoding)
	}
	return el, nil
}

// EncodeFieldElement encodes a field element into its canonical
// fixed-width big-endian form. The element must already be reduced.
func EncodeFieldElement(el *big.Int) []byte {
	buf := make([]byte, FieldElementLen)
	el.FillBytes(buf)
	return buf
}

// FieldAddInplace performs modular addition in-place: l = (l + r) mod fieldOrder.
// The result is stored in l and also returned.
func FieldAddInplace(l *big.Int, r *big.Int, fieldOrder *big.Int) *big.Int {
	l.Add(l, r)
	if l.Cmp(fieldOrder) >= 0 {
		l.Sub(l, fieldOrder)
	}

	if l.Sign() < 0 {
		l.Add(l, fieldOrder)
	}

	return l
}

// FieldSubInplace performs modular subtraction in-place: l = (l - r) mod fieldOrder.
// The result is stored in l and also returned.
func FieldSubInplace(l *big.Int, r *big.Int, fieldOrder *big.Int) *big.Int {
	l.Sub(l, r)
	if l.Cmp(fieldOrder) >= 0 {
		l.Sub(l, fieldOrder)
	}
	if l.Sign() < 0 {
		l.Add(l, fieldOrder)
	}
	return l
}

// FieldMul returns (l * r) mod fieldOrder in a fresh big.Int.
func FieldMul(l *big.Int, r *big.Int, fieldOrder *big.Int) *big.Int {
	res := new(big.Int).Mul(l, r)
	return res.Mod(res, fieldOrder)
}

// FieldInverse returns the multiplicative inverse of el mod fieldOrder,
// or an error for zero (which has no inverse).
func FieldInverse(el *big.Int, fieldOrder *big.Int) (*big.Int, error) {
	if el.Sign() == 0 {
		return nil, errors.New("zero has no field inverse")
	}
	return new(big.Int).ModInverse(el, fieldOrder), nil
}
