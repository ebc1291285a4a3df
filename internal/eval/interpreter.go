// Package eval evaluates input lines as Go expressions in a sandboxed yaegi
// interpreter. Only a whitelist of side-effect-free stdlib packages is
// exposed; everything touching the filesystem, the network or the process
// stays out of reach of typed input.
package eval

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var allowedPackages = map[string]bool{
	"bytes":           true,
	"encoding/base64": true,
	"encoding/hex":    true,
	"encoding/json":   true,
	"errors":          true,
	"fmt":             true,
	"math":            true,
	"math/bits":       true,
	"math/cmplx":      true,
	"regexp":          true,
	"sort":            true,
	"strconv":         true,
	"strings":         true,
	"time":            true,
	"unicode":         true,
	"unicode/utf8":    true,
}

type Interpreter struct {
	timeout time.Duration
	symbols interp.Exports
	imports string
}

func New(timeout time.Duration) *Interpreter {
	syms := make(interp.Exports)
	var paths []string
	for key, pkg := range stdlib.Symbols {
		if allowedPackages[importPath(key)] {
			syms[key] = pkg
			paths = append(paths, importPath(key))
		}
	}
	var b strings.Builder
	b.WriteString("import (\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "\t%q\n", p)
	}
	b.WriteString(")\n")
	return &Interpreter{
		timeout: timeout,
		symbols: syms,
		imports: b.String(),
	}
}

// importPath strips the trailing package-name segment from a yaegi symbol
// key ("math/bits/bits" -> "math/bits").
func importPath(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[:i]
	}
	return key
}

// Eval evaluates expr and returns its printed value. Every failure mode,
// including syntax errors, runtime panics and timeouts, reports ok=false.
// A fresh interpreter per call keeps state from leaking between cycles.
func (ip *Interpreter) Eval(ctx context.Context, expr string) (string, bool) {
	if strings.TrimSpace(expr) == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, ip.timeout)
	defer cancel()

	type result struct {
		out string
		ok  bool
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if recover() != nil {
				ch <- result{}
			}
		}()
		i := interp.New(interp.Options{})
		if err := i.Use(ip.symbols); err != nil {
			ch <- result{}
			return
		}
		if _, err := i.Eval(ip.imports); err != nil {
			ch <- result{}
			return
		}
		v, err := i.EvalWithContext(ctx, expr)
		if err != nil || !v.IsValid() {
			ch <- result{}
			return
		}
		if !printable(v) {
			ch <- result{}
			return
		}
		ch <- result{out: fmt.Sprint(v.Interface()), ok: true}
	}()

	select {
	case r := <-ch:
		return r.out, r.ok
	case <-ctx.Done():
		return "", false
	}
}

// printable filters out values whose printed form is an opaque reference.
func printable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.Ptr, reflect.UnsafePointer, reflect.Invalid:
		return false
	}
	return true
}
