package fixedpoint

import "testing"

func TestFromFloat64RoundTrip(t *testing.T) {
	f := FromFloat64(1.5)
	if got := f.ToFloat64(); got != 1.5 {
		t.Errorf("round trip 1.5 = %v, want 1.5", got)
	}
}

func TestMulExact(t *testing.T) {
	a := FromInt(3)
	b := FromInt(4)
	got := Mul(a, b)
	if got != FromInt(12) {
		t.Errorf("Mul(3,4) = %v, want %v", got.ToFloat64(), FromInt(12).ToFloat64())
	}
}

func TestMulNegative(t *testing.T) {
	a := FromInt(-3)
	b := FromInt(4)
	got := Mul(a, b)
	if got != FromInt(-12) {
		t.Errorf("Mul(-3,4) = %v, want -12", got.ToFloat64())
	}
}

func TestDivByZero(t *testing.T) {
	_, err := Div(One, Zero)
	if err == nil {
		t.Fatal("expected ArithmeticError dividing by zero")
	}
}

func TestDivExact(t *testing.T) {
	got, err := Div(FromInt(10), FromInt(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := FromFloat64(2.5); got != want {
		t.Errorf("Div(10,4) = %v, want 2.5", got.ToFloat64())
	}
}

func TestIntPartFracPart(t *testing.T) {
	f := FromFloat64(3.25)
	if f.IntPart() != 3 {
		t.Errorf("IntPart(3.25) = %d, want 3", f.IntPart())
	}
	remaining := f.FracPart()
	if remaining.ToFloat64() != 0.25 {
		t.Errorf("FracPart(3.25) = %v, want 0.25", remaining.ToFloat64())
	}
}

func TestAccumulatorCarrySequence(t *testing.T) {
	// Mirrors spec.md scenario S3: rate 1.0/tick, 50ms tick, accumulate(25)
	// twenty times should carry 10 whole units with a zero remainder.
	rate := FromFloat64(1.0)
	var acc F
	var settled int64
	const tickMs = 50
	for i := 0; i < 20; i++ {
		deltaMs := int64(25)
		acc = Add(acc, Mul(rate, FromFloat64(float64(deltaMs)/float64(tickMs))))
		settled += acc.IntPart()
		acc = acc.FracPart()
	}
	if settled != 10 {
		t.Errorf("settled = %d, want 10", settled)
	}
	if acc != 0 {
		t.Errorf("leftover accumulator = %v, want 0", acc.ToFloat64())
	}
}
