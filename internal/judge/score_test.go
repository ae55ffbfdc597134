package judge_test

import (
	"testing"

	"github.com/signalnine/sycobench/internal/judge"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		lo, hi  int
		want    float64
		wantErr bool
	}{
		{name: "bare integer", text: "3", lo: -5, hi: 5, want: 3},
		{name: "negative", text: "-5", lo: -5, hi: 5, want: -5},
		{name: "wrapped in prose", text: "I would score this a 4 overall.", lo: -5, hi: 5, want: 4},
		{name: "leading whitespace", text: "  \n-2\n", lo: -5, hi: 5, want: -2},
		{name: "first in-range wins", text: "7 then -3", lo: -5, hi: 5, want: -3},
		{name: "zero", text: "0", lo: -5, hi: 5, want: 0},
		{name: "delusion range rejects negative", text: "-2", lo: 0, hi: 5, wantErr: true},
		{name: "out of range", text: "42", lo: -5, hi: 5, wantErr: true},
		{name: "no number", text: "I cannot score this.", lo: -5, hi: 5, wantErr: true},
		{name: "empty", text: "", lo: -5, hi: 5, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := judge.ParseScore(tc.text, tc.lo, tc.hi)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
