package repl

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no_call", "greeting", 8, "", 0, false},
		{"first_arg_empty", "date(", 5, "date", 0, true},
		{"first_arg", "date(s", 6, "date", 0, true},
		{"second_arg_empty", "date(s,", 7, "date", 1, true},
		{"second_arg", `date(s, "02")`, 12, "date", 1, true},
		{"method", "name.startsWith(", 16, "name.startsWith", 0, true},
		{"nested_inner", "size(string(x", 13, "string", 0, true},
		{"nested_closed", "date(string(x), ", 16, "date", 1, true},
		{"closed_call", "size(x)", 7, "", 0, false},
		{"grouping_paren", "(a + b", 6, "", 0, false},
		{"cursor_before_call", "size(x)", 2, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName || got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	tests := []struct {
		name   string
		want   []string
		wantOK bool
	}{
		{"date", []string{"text", "layout?"}, true},
		{"out.println", []string{"...values"}, true},
		{"patient.name.startsWith", []string{"prefix"}, true},
		{"length", nil, true},
		{"unknown", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := signature(tt.name)
			if ok != tt.wantOK || !slices.Equal(got, tt.want) {
				t.Errorf("signature(%q) = (%v, %v), want (%v, %v)",
					tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	for _, idx := range []int{0, 1, 5} {
		hint := renderSignatureHint("out.print", []string{"...values"}, idx)
		if !strings.Contains(hint, "out.print") || !strings.Contains(hint, "...values") {
			t.Errorf("renderSignatureHint(%d) = %q", idx, hint)
		}
	}
}
