package util

import (
	"strings"
	"testing"

	dbutil "github.com/ValentinKolb/kvlayout/lib/db/util"
	"github.com/ValentinKolb/kvlayout/lib/key"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line longer than %d characters: %q", Wrap, line)
		}
	}
	if got := WrapString(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestParseClusterMembers(t *testing.T) {
	members, err := ParseClusterMembers("node-1=localhost:63001, node-2=localhost:63002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := members[dbutil.HashString("node-2", 0)]; got != "localhost:63002" {
		t.Errorf("expected localhost:63002, got %q", got)
	}

	for _, bad := range []string{"", "node-1", "a=b=c"} {
		if _, err := ParseClusterMembers(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want key.Key
		ok   bool
	}{
		{"345", key.FromUint64(345), true},
		{"0x159", key.FromUint64(345), true},
		{"0xzz", key.Key{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("unexpected error state: %v", err)
			}
			if tt.ok && got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
