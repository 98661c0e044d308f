// Package fixedpoint implements the deterministic 32.32 fixed-point scalar
// used throughout the resource economy. Physics keeps its own doubles and
// never back-propagates through here; see internal/physics.
package fixedpoint

import (
	"math/bits"

	"github.com/novaforge/cosmos-core/internal/gameerrors"
)

// FracBits is the number of fractional bits: F represents value/2^FracBits.
const FracBits = 32

// Scale is 2^FracBits as a float64, used for float conversions.
const Scale = 1 << FracBits

// F is a signed 64-bit fixed-point scalar, value = raw / 2^32. Ordering,
// addition and subtraction are inherited directly from int64.
type F int64

// Zero and One are the two constants every caller reaches for.
const (
	Zero F = 0
	One  F = 1 << FracBits
)

// FromFloat64 converts a double to F, truncating toward zero.
func FromFloat64(v float64) F {
	return F(v * Scale)
}

// ToFloat64 converts F back to a double.
func (f F) ToFloat64() float64 {
	return float64(f) / Scale
}

// FromInt lifts a plain integer into F (n.0 in fixed-point).
func FromInt(n int64) F {
	return F(n << FracBits)
}

// Add and Sub are bit-exact integer operations; no saturation is performed
// here (Resources saturate, F itself does not — see internal/economy).
func Add(a, b F) F { return a + b }
func Sub(a, b F) F { return a - b }

// Mul computes (a*b) >> 32 using a 128-bit intermediate product so large
// magnitudes don't silently truncate before the shift.
func Mul(a, b F) F {
	neg := false
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		neg = !neg
		ua = uint64(-a)
	}
	if b < 0 {
		neg = !neg
		ub = uint64(-b)
	}
	hi, lo := bits.Mul64(ua, ub)
	result := (hi << (64 - FracBits)) | (lo >> FracBits)
	if neg {
		return -F(result)
	}
	return F(result)
}

// Div computes (a<<32)/b. Division by zero returns ArithmeticError.
func Div(a, b F) (F, error) {
	if b == 0 {
		return 0, gameerrors.Wrap(gameerrors.ErrArithmeticError, "divide %d by zero", a)
	}
	neg := false
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		neg = !neg
		ua = uint64(-a)
	}
	if b < 0 {
		neg = !neg
		ub = uint64(-b)
	}
	hi := ua >> (64 - FracBits)
	lo := ua << FracBits
	q, _ := bits.Div64(hi, lo, ub)
	if neg {
		return -F(q), nil
	}
	return F(q), nil
}

// IntPart returns the integer (non-fractional) part of f, truncated toward
// negative infinity — used by accumulate() to settle whole units.
func (f F) IntPart() int64 {
	return int64(f >> FracBits)
}

// FracPart returns the strictly-fractional remainder, f - IntPart(f)*One.
func (f F) FracPart() F {
	return f - F(f.IntPart())<<FracBits
}

// MulF64 multiplies F by a plain float64 factor, e.g. "1 + level*factor"
// upgrade multipliers. Conversions cross at the boundary, not mid-formula.
func MulF64(f F, factor float64) F {
	return FromFloat64(f.ToFloat64() * factor)
}
