package eval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvalArithmetic(t *testing.T) {
	ip := New(5 * time.Second)

	out, ok := ip.Eval(context.Background(), "2+2")
	assert.True(t, ok)
	assert.Equal(t, "4", out)
}

func TestEvalWhitelistedPackage(t *testing.T) {
	ip := New(5 * time.Second)

	out, ok := ip.Eval(context.Background(), `strings.ToUpper("go")`)
	assert.True(t, ok)
	assert.Equal(t, "GO", out)
}

func TestEvalSyntaxError(t *testing.T) {
	ip := New(5 * time.Second)

	_, ok := ip.Eval(context.Background(), "1 +")
	assert.False(t, ok)
}

func TestEvalBlockedPackage(t *testing.T) {
	ip := New(5 * time.Second)

	for _, expr := range []string{
		"os.Getpid()",
		`os.ReadFile("/etc/passwd")`,
		`exec.Command("sh")`,
		`net.Dial("tcp", "example.com:80")`,
	} {
		if _, ok := ip.Eval(context.Background(), expr); ok {
			t.Errorf("Eval(%q) = true, want sandbox rejection", expr)
		}
	}
}

func TestEvalEmptyInput(t *testing.T) {
	ip := New(5 * time.Second)

	_, ok := ip.Eval(context.Background(), "   ")
	assert.False(t, ok)
}

func TestEvalUnprintableValue(t *testing.T) {
	ip := New(5 * time.Second)

	_, ok := ip.Eval(context.Background(), "func() int { return 1 }")
	assert.False(t, ok)
}

func TestEvalTimeout(t *testing.T) {
	ip := New(100 * time.Millisecond)

	start := time.Now()
	_, ok := ip.Eval(context.Background(), "for {}")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEvalStateDoesNotLeak(t *testing.T) {
	ip := New(5 * time.Second)

	_, ok := ip.Eval(context.Background(), "x := 41")
	assert.True(t, ok)

	// A fresh interpreter per call: x must be gone.
	_, ok = ip.Eval(context.Background(), "x + 1")
	assert.False(t, ok)
}
