// Package keygen derives cache keys from method calls.
//
//	<type>.<method>[.<subKey>]:<digest(args)>
//
// The digest is taken over the Core Deterministic CBOR encoding of the argument
// list, so equal arguments produce equal keys across processes. Sub-key and
// defined-key expressions are handed to an Evaluator; Template is the default.
package keygen

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/unkn0wn-root/autocache/codec"
	"github.com/unkn0wn-root/autocache/internal/util"
)

// Evaluator turns a key expression and the call arguments into a key fragment.
type Evaluator func(expr string, args []any) (string, error)

type Generator struct {
	args codec.CBOR[[]any]
	eval Evaluator
}

func New() *Generator { return NewWithEvaluator(Template()) }

func NewWithEvaluator(eval Evaluator) *Generator {
	return &Generator{args: codec.MustCBOR[[]any](true), eval: eval}
}

func (g *Generator) DefaultKeyPrefix(typeName, method string, args []any, subKeyExpr string) (string, error) {
	var b strings.Builder
	b.WriteString(typeName)
	b.WriteByte('.')
	b.WriteString(method)
	if subKeyExpr != "" {
		sub, err := g.eval(subKeyExpr, args)
		if err != nil {
			return "", fmt.Errorf("keygen: sub-key %q: %w", subKeyExpr, err)
		}
		if sub = strings.TrimSpace(sub); sub != "" {
			b.WriteByte('.')
			b.WriteString(sub)
		}
	}
	return b.String(), nil
}

func (g *Generator) DefaultKey(typeName, method string, args []any, subKeyExpr string) (string, error) {
	prefix, err := g.DefaultKeyPrefix(typeName, method, args, subKeyExpr)
	if err != nil {
		return "", err
	}
	sum, err := g.ArgsDigest(args)
	if err != nil {
		return "", err
	}
	return prefix + ":" + sum, nil
}

func (g *Generator) DefinedKey(keyExpr string, args []any) (string, error) {
	k, err := g.eval(keyExpr, args)
	if err != nil {
		return "", fmt.Errorf("keygen: key %q: %w", keyExpr, err)
	}
	if strings.TrimSpace(k) == "" {
		return "", fmt.Errorf("keygen: key %q evaluated to an empty key", keyExpr)
	}
	return k, nil
}

// ArgsDigest hashes an argument list. nil and empty lists hash alike.
func (g *Generator) ArgsDigest(args []any) (string, error) {
	if args == nil {
		args = []any{}
	}
	b, err := g.args.Encode(args)
	if err != nil {
		return "", fmt.Errorf("keygen: encode args: %w", err)
	}
	return util.Digest(b), nil
}

// Template evaluates expressions as text/template bodies with the arguments
// available as .Args, e.g. "user:{{index .Args 0}}". Parsed templates are cached.
func Template() Evaluator {
	var parsed sync.Map // expr -> *template.Template
	return func(expr string, args []any) (string, error) {
		t, ok := parsed.Load(expr)
		if !ok {
			nt, err := template.New("key").Option("missingkey=error").Parse(expr)
			if err != nil {
				return "", err
			}
			t, _ = parsed.LoadOrStore(expr, nt)
		}
		var b strings.Builder
		if err := t.(*template.Template).Execute(&b, struct{ Args []any }{args}); err != nil {
			return "", err
		}
		return b.String(), nil
	}
}
