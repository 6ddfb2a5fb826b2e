package session

import (
	"reflect"
	"testing"
)

func TestAnnotateDigits(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		answer string
		want   []Mark
	}{
		{
			// Index 2's '3' matches the answer's unconsumed '3' at index 1,
			// so it is misplaced, not absent.
			name:   "partial overlap",
			guess:  "1234",
			answer: "1357",
			want:   []Mark{MarkExact, MarkAbsent, MarkMisplaced, MarkAbsent},
		},
		{
			name:   "all exact",
			guess:  "1357",
			answer: "1357",
			want:   []Mark{MarkExact, MarkExact, MarkExact, MarkExact},
		},
		{
			name:   "all misplaced",
			guess:  "3571",
			answer: "1357",
			want:   []Mark{MarkMisplaced, MarkMisplaced, MarkMisplaced, MarkMisplaced},
		},
		{
			name:   "all absent",
			guess:  "0246",
			answer: "1357",
			want:   []Mark{MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent},
		},
		{
			// An exact match consumes its slot: the duplicate '1' in the
			// guess cannot also claim it.
			name:   "exact consumes slot",
			guess:  "1156",
			answer: "1234",
			want:   []Mark{MarkExact, MarkAbsent, MarkAbsent, MarkAbsent},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnotateDigits(tt.guess, tt.answer)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("AnnotateDigits(%q, %q) = %v, want %v", tt.guess, tt.answer, got, tt.want)
			}
		})
	}
}
