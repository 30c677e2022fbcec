package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"local with trunk prefix", "01012345678", "201012345678", true},
		{"already international", "201012345678", "201012345678", true},
		{"formatting stripped", "+2 010 1234-5678", "201012345678", true},
		{"spaces and dashes", "0101 234 5678", "201012345678", true},
		{"ten digits kept as-is", "1012345678", "1012345678", true},
		{"too short", "123456789", "", false},
		{"no digits", "call me", "", false},
		{"empty", "", "", false},
		{"eleven digits without trunk prefix", "91012345678", "91012345678", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeNumber(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("NormalizeNumber(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeNumberIdempotent(t *testing.T) {
	first, ok := NormalizeNumber("01012345678")
	if !ok {
		t.Fatal("expected valid number")
	}
	second, ok := NormalizeNumber(first)
	if !ok || second != first {
		t.Fatalf("normalization not idempotent: %q -> %q", first, second)
	}
}

func TestNormalizeNumbersDedup(t *testing.T) {
	in := []string{
		"01012345678",
		"0101-234-5678",  // same number, different formatting
		"201012345678",   // same number, international form
		"junk",           // dropped
		"201098765432",
		"01012345678",    // repeat
	}
	want := []string{"201012345678", "201098765432"}
	got := NormalizeNumbers(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeNumbers(%v) = %v, want %v", in, got, want)
	}
}

func TestNormalizeNumbersAllInvalid(t *testing.T) {
	if got := NormalizeNumbers([]string{"abc", "12"}); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
