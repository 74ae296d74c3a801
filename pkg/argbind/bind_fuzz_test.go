package argbind

import (
	"errors"
	"strings"
	"testing"
)

// FuzzBind feeds arbitrary token streams through an open scope. Tokens are
// separated by spaces in the fuzz input.
func FuzzBind(f *testing.F) {
	f.Add("-a files -s name -- -a x y -s hi")
	f.Add("-d opts -- -d -k a b -v 1 2")
	f.Add("-d opts -- -d -k a -v")
	f.Add("-i n -- -i 12x")
	f.Add("-s a -- -s")
	f.Add("-s __argbind_ref -- -s x")
	f.Add("-a a -- -a \\-x \\y -- ")
	f.Add("--")
	f.Add("-s")

	f.Fuzz(func(t *testing.T, input string) {
		tokens := strings.Split(input, " ")
		res, err := Bind(tokens, OpenScope())
		if res == nil {
			t.Fatal("Bind returned a nil result")
		}
		if len(res.Bindings) > len(res.Declarations) {
			t.Fatalf("%d bindings for %d declarations", len(res.Bindings), len(res.Declarations))
		}
		for i, b := range res.Bindings {
			d := res.Declarations[i]
			if b.Index != i || b.Name != d.Name || b.Value.Type != d.Type {
				t.Fatalf("binding %d = %+v does not match declaration %+v", i, b, d)
			}
			if b.Value.Type == Integer && !isDigits(b.Value.Text) {
				t.Fatalf("integer binding %q is not a digit string", b.Value.Text)
			}
		}
		if err == nil {
			return
		}
		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("error %v is not an *Error", err)
		}
		if e.Code == "" || e.Message == "" {
			t.Fatalf("incomplete error %+v", e)
		}
	})
}
