package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// randomPolynomial generates the coefficients of a random polynomial of
// the given degree with f(0) = evalAtZero. The remaining coefficients
// are drawn uniformly from the field using the provided entropy source.
func randomPolynomial(evalAtZero *big.Int, deg int, rng io.Reader) ([]*big.Int, error) {
	as := make([]*big.Int, deg+1)

	// a[0] = evalAtZero so that f(0) = evalAtZero
	as[0] = new(big.Int).Set(evalAtZero)

	for i := 1; i <= deg; i++ {
		coeff, err := rand.Int(rng, ShareFieldOrder)
		if err != nil {
			return nil, fmt.Errorf("sampling polynomial coefficient: %w", err)
		}
		as[i] = coeff
	}

	return as, nil
}

// evalPolynomial evaluates the polynomial with the given coefficients at
// x using Horner's rule, reduced modulo the share field order.
func evalPolynomial(as []*big.Int, x *big.Int) *big.Int {
	res := new(big.Int)
	for i := len(as) - 1; i >= 0; i-- {
		res.Mul(res, x)
		res.Add(res, as[i])
		res.Mod(res, ShareFieldOrder)
	}
	return res
}

// InterpolateAtZero reconstructs f(0) from the given evaluation points
// via Lagrange interpolation over the share field. The xs must be
// pairwise distinct; interpolation with deg(f)+1 points is exact.
func InterpolateAtZero(xs []*big.Int, ys []*big.Int) (*big.Int, error) {
	sum := new(big.Int)
	num := new(big.Int)
	den := new(big.Int)
	tmp := new(big.Int)

	for i := range xs {
		// Lagrange basis at zero: prod_{j!=i} x_j / (x_j - x_i)
		num.SetInt64(1)
		den.SetInt64(1)
		for j := range xs {
			if j == i {
				continue
			}
			num.Mul(num, xs[j])
			num.Mod(num, ShareFieldOrder)
			den.Mul(den, FieldSubInplace(tmp.Set(xs[j]), xs[i], ShareFieldOrder))
			den.Mod(den, ShareFieldOrder)
		}

		denInv, err := FieldInverse(den, ShareFieldOrder)
		if err != nil {
			return nil, fmt.Errorf("interpolation points not distinct: %w", err)
		}

		num.Mul(num, denInv)
		num.Mod(num, ShareFieldOrder)
		num.Mul(num, ys[i])
		num.Mod(num, ShareFieldOrder)
		FieldAddInplace(sum, num, ShareFieldOrder)
	}

	return sum, nil
}
