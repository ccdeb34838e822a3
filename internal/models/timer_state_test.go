package models

import "testing"

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		9:    "0:09",
		60:   "1:00",
		90:   "1:30",
		125:  "2:05",
		3600: "60:00",
		-4:   "0:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Fatalf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}
