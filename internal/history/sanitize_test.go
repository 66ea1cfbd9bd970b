package history

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSanitizeScore(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{in: -5, want: 1},
		{in: 0, want: 1},
		{in: 0.5, want: 1},
		{in: 5, want: 5},
		{in: 10, want: 10},
		{in: 11, want: 1},
		{in: math.NaN(), want: 1},
		{in: "abc", want: 1},
		{in: "7", want: 7},
		{in: 6.6, want: 7},
		{in: json.Number("3"), want: 3},
		{in: nil, want: 1},
	}
	for _, tc := range cases {
		if got := SanitizeScore(tc.in); got != tc.want {
			t.Fatalf("SanitizeScore(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeOverallScore(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{in: 10.07, want: 10.0},
		{in: 0.3, want: 1.0},
		{in: 7.349, want: 7.3},
		{in: 42.0, want: 10.0},
		{in: "8.25", want: 8.3},
		{in: "n/a", want: 1.0},
		{in: math.Inf(1), want: 1.0},
	}
	for _, tc := range cases {
		if got := SanitizeOverallScore(tc.in); got != tc.want {
			t.Fatalf("SanitizeOverallScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeYears(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{in: 8.9, want: 8},
		{in: -2.0, want: 0},
		{in: "4.5", want: 4},
		{in: "many", want: 0},
		{in: nil, want: 0},
	}
	for _, tc := range cases {
		if got := SanitizeYears(tc.in); got != tc.want {
			t.Fatalf("SanitizeYears(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	in := "Jane\x00 Doe\x07\r\n\tGo\x1b engineer\xff"
	want := "Jane Doe\n\tGo engineer"
	if got := SanitizeText(in); got != want {
		t.Fatalf("SanitizeText = %q, want %q", got, want)
	}
}
