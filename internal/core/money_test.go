package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1", 100, nil},
		{"1.0", 100, nil},
		{"1.23", 123, nil},
		{"1,23", 123, nil},
		{"0.01", 1, nil},
		{"1.005", 101, nil}, // half-up rounding
		{"12.344", 1234, nil},
		{" 2.50 ", 250, nil},
		{"1500.5", 150050, nil},
		{"", 0, ErrMissingAmount},
		{"   ", 0, ErrMissingAmount},
		{"-1", 0, ErrInvalidAmount},
		{"+1", 0, ErrInvalidAmount},
		{"0", 0, ErrInvalidAmount},
		{"0.004", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.2.3", 0, ErrInvalidAmount},
		{"99999999999999999999", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got.Cents != tc.out {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
		}
	}
}

func TestMoneyStrings(t *testing.T) {
	cases := []struct {
		m     Money
		plain string
		fixed string
	}{
		{Money{Cents: 150050}, "1500.5", "1500.50"},
		{Money{Cents: 100}, "1", "1.00"},
		{Money{Cents: 7}, "0.07", "0.07"},
		{Money{Cents: -2500}, "-25", "-25.00"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.plain {
			t.Errorf("String(%d) = %q, want %q", tc.m.Cents, got, tc.plain)
		}
		if got := tc.m.Fixed(); got != tc.fixed {
			t.Errorf("Fixed(%d) = %q, want %q", tc.m.Cents, got, tc.fixed)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	for in, want := range map[string]int64{
		`100.5`:   10050,
		`"100.5"`: 10050,
		`42`:      4200,
		`null`:    0,
	} {
		if err := m.UnmarshalJSON([]byte(in)); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if m.Cents != want {
			t.Fatalf("%s: got %d cents, want %d", in, m.Cents, want)
		}
	}
	if err := m.UnmarshalJSON([]byte(`"abc"`)); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Cents(1000), Cents(2500)
	if got := a.Sub(b); got.Cents != -1500 {
		t.Fatalf("Sub = %d", got.Cents)
	}
	if got := a.Add(b); got.Cents != 3500 {
		t.Fatalf("Add = %d", got.Cents)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("Compare broken")
	}
	if f := Cents(150050).Float64(); f != 1500.5 {
		t.Fatalf("Float64 = %v", f)
	}
}

func TestMoneySaturates(t *testing.T) {
	big := Cents(maxCents)
	var total Money
	for range 200 {
		total = total.Add(big)
	}
	if total.Cents != math.MaxInt64 {
		t.Fatalf("sum of large amounts wrapped to %d", total.Cents)
	}
	if got := Cents(-maxCents).Sub(Cents(math.MaxInt64)); got.Cents != math.MinInt64 {
		t.Fatalf("Sub underflow = %d", got.Cents)
	}
	if got := Cents(maxCents).Sub(Cents(-maxCents * 100)); got.Cents != math.MaxInt64 {
		t.Fatalf("Sub overflow = %d", got.Cents)
	}
}
