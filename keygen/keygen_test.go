package keygen

import (
	"errors"
	"strings"
	"testing"
)

type query struct {
	Name  string
	Limit int
	Tags  map[string]string
}

func TestDefaultKeyShape(t *testing.T) {
	g := New()
	prefix, err := g.DefaultKeyPrefix("UserService", "find", []any{7}, "")
	if err != nil {
		t.Fatal(err)
	}
	if prefix != "UserService.find" {
		t.Fatalf("prefix=%q", prefix)
	}
	key, err := g.DefaultKey("UserService", "find", []any{7}, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, prefix+":") || len(key) != len(prefix)+1+16 {
		t.Fatalf("key=%q", key)
	}
}

func TestDefaultKeyDependsOnArgsOnly(t *testing.T) {
	g := New()
	a := []any{"x", 1, query{Name: "n", Tags: map[string]string{"b": "2", "a": "1"}}}
	b := []any{"x", 1, query{Name: "n", Tags: map[string]string{"a": "1", "b": "2"}}}
	ka, _ := g.DefaultKey("T", "m", a, "")
	kb, _ := New().DefaultKey("T", "m", b, "")
	if ka != kb {
		t.Fatalf("equal args produced %q and %q", ka, kb)
	}
	kc, _ := g.DefaultKey("T", "m", []any{"x", 2}, "")
	if kc == ka {
		t.Fatalf("different args produced the same key")
	}

	nilKey, _ := g.DefaultKey("T", "m", nil, "")
	emptyKey, _ := g.DefaultKey("T", "m", []any{}, "")
	if nilKey != emptyKey {
		t.Fatalf("nil and empty args differ: %q vs %q", nilKey, emptyKey)
	}
}

func TestSubKeyExpression(t *testing.T) {
	g := New()
	prefix, err := g.DefaultKeyPrefix("Orders", "list", []any{"acme", 3}, "{{index .Args 0}}")
	if err != nil {
		t.Fatal(err)
	}
	if prefix != "Orders.list.acme" {
		t.Fatalf("prefix=%q", prefix)
	}

	// blank evaluation leaves the prefix alone
	prefix, err = g.DefaultKeyPrefix("Orders", "list", []any{""}, "{{index .Args 0}}")
	if err != nil || prefix != "Orders.list" {
		t.Fatalf("prefix=%q err=%v", prefix, err)
	}

	if _, err := g.DefaultKeyPrefix("Orders", "list", nil, "{{index .Args 5}}"); err == nil {
		t.Fatalf("expected evaluation error for missing argument")
	}
}

func TestDefinedKey(t *testing.T) {
	g := New()
	k, err := g.DefinedKey("user:{{index .Args 0}}:*", []any{42})
	if err != nil || k != "user:42:*" {
		t.Fatalf("k=%q err=%v", k, err)
	}
	if _, err := g.DefinedKey("{{if false}}x{{end}}", nil); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := g.DefinedKey("{{", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCustomEvaluator(t *testing.T) {
	boom := errors.New("boom")
	g := NewWithEvaluator(func(expr string, _ []any) (string, error) {
		if expr == "bad" {
			return "", boom
		}
		return strings.ToUpper(expr), nil
	})
	k, err := g.DefinedKey("abc", nil)
	if err != nil || k != "ABC" {
		t.Fatalf("k=%q err=%v", k, err)
	}
	if _, err := g.DefinedKey("bad", nil); !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
}
