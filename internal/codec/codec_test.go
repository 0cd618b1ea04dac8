// internal/codec/codec_test.go
package codec

import (
	"errors"
	"math"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestSigned16_Boundaries(t *testing.T) {
	cases := []struct {
		in   uint16
		want int16
	}{
		{0x0000, 0},
		{0x7FFF, 32767},
		{0x8000, -32768},
		{0xFFFF, -1},
		{0xFF38, -200},
	}
	for _, tc := range cases {
		if got := Signed16(tc.in); got != tc.want {
			t.Fatalf("Signed16(%#04x) = %d want %d", tc.in, got, tc.want)
		}
	}
}

func TestSigned16_RoundTrip(t *testing.T) {
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		if got := Signed16(uint16(int16(v))); int(got) != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestSigned32_Boundaries(t *testing.T) {
	cases := []struct {
		in   uint32
		want int32
	}{
		{0x00000000, 0},
		{0x7FFFFFFF, math.MaxInt32},
		{0x80000000, math.MinInt32},
		{0xFFFFFFFF, -1},
	}
	for _, tc := range cases {
		if got := Signed32(tc.in); got != tc.want {
			t.Fatalf("Signed32(%#08x) = %d want %d", tc.in, got, tc.want)
		}
	}

	for _, v := range []int32{-1, -1000, math.MinInt32 + 1, 12345} {
		if got := Signed32(uint32(v)); got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestCombine32_HighWordFirst(t *testing.T) {
	if got := Combine32(0x0001, 0x0002); got != 0x00010002 {
		t.Fatalf("got %#08x", got)
	}
	if got := Combine32(0xFFFF, 0x0000); got != 0xFFFF0000 {
		t.Fatalf("got %#08x", got)
	}
}

func TestScaled_Text(t *testing.T) {
	cases := []struct {
		raw  int64
		exp  int32
		want string
	}{
		{2305, -1, "230.5"},
		{5000, -2, "50.00"},
		{5001, -2, "50.01"},
		{-200, -3, "-0.200"},
		{123456, -2, "1234.56"},
		{0, -1, "0.0"},
	}
	for _, tc := range cases {
		got := Scaled(tc.raw, tc.exp).StringFixed(-tc.exp)
		if got != tc.want {
			t.Fatalf("Scaled(%d, %d) = %s want %s", tc.raw, tc.exp, got, tc.want)
		}
	}
}

func TestASCIIPairs_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "AB", "R6X2K0123456789A", "HELLO-WORLD!"} {
		if got := ASCIIPairs(PackASCIIPairs(s)); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
}

func TestASCIIPairs_StripsTrailingNULOnly(t *testing.T) {
	words := []uint16{
		'A'<<8 | 0x00, // embedded NUL
		'B'<<8 | 'C',
		0x0000,
		0x0000,
	}
	if got := ASCIIPairs(words); got != "A\x00BC" {
		t.Fatalf("got %q", got)
	}

	// odd length leaves a NUL in the low byte of the last word
	if got := ASCIIPairs([]uint16{'X'<<8 | 'Y', 'Z' << 8}); got != "XYZ" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDatetime_Golden(t *testing.T) {
	words := []uint16{2024, 1<<8 | 15, 10<<8 | 30, 45 << 8}

	got, err := ParseDatetime(words, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if s := got.Format("2006-01-02T15:04:05"); s != "2024-01-15T10:30:45" {
		t.Fatalf("format got %s", s)
	}
}

func TestParseDatetime_InvalidCalendar(t *testing.T) {
	cases := map[string][]uint16{
		"month 13": {2024, 13<<8 | 1, 0, 0},
		"month 0":  {2024, 0<<8 | 1, 0, 0},
		"day 32":   {2024, 1<<8 | 32, 0, 0},
		"feb 30":   {2024, 2<<8 | 30, 0, 0},
		"hour 24":  {2024, 1<<8 | 1, 24 << 8, 0},
		"second":   {2024, 1<<8 | 1, 0, 60 << 8},
		"year 0":   {0, 1<<8 | 1, 0, 0},
		"short":    {2024, 1<<8 | 1},
	}
	for name, words := range cases {
		_, err := ParseDatetime(words, time.UTC)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("%s: expected *DecodeError, got %v", name, err)
		}
	}
}

func TestParseDatetime_LeapDay(t *testing.T) {
	if _, err := ParseDatetime([]uint16{2024, 2<<8 | 29, 0, 0}, time.UTC); err != nil {
		t.Fatalf("2024-02-29 should be valid: %v", err)
	}
}

func TestParseDatetime_DSTGapAccepted(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	// 2024-03-31 02:30 does not exist on a Berlin wall clock
	got, err := ParseDatetime([]uint16{2024, 3<<8 | 31, 2<<8 | 30, 0}, berlin)
	if err != nil {
		t.Fatalf("gap wall time must decode: %v", err)
	}

	want := time.Date(2024, 3, 31, 2, 30, 0, 0, berlin)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got.Location() != berlin {
		t.Fatalf("result must be in the inverter zone, got %v", got.Location())
	}
}
