package util

import "testing"

func TestHasGlob(t *testing.T) {
	cases := map[string]bool{
		"user:1":     false,
		"":           false,
		"user:*":     true,
		"user:?":     true,
		"a*b?c":      true,
		"ns:[ab]:1":  false,
		"user.find:": false,
	}
	for k, want := range cases {
		if got := HasGlob(k); got != want {
			t.Fatalf("HasGlob(%q)=%v want %v", k, got, want)
		}
	}
}

func TestDigestStableAndShort(t *testing.T) {
	a := Digest([]byte("args"))
	b := Digest([]byte("args"))
	if a != b {
		t.Fatalf("digest not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("len=%d want 16", len(a))
	}
	if a == Digest([]byte("args2")) {
		t.Fatalf("different inputs produced same digest")
	}
}
