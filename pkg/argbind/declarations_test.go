package argbind

import (
	"errors"
	"testing"
)

func TestDeclarations_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		code   ErrorCode
		index  int
	}{
		{"unknown flag", []string{"--foo", "x", "--", "-s", "a"}, CodeUnexpectedArgument, 0},
		{"bare word", []string{"-s", "x", "name", "--", "-s", "a"}, CodeUnexpectedArgument, 1},
		{"reserved", []string{"-s", DefaultReservedName, "--", "-s", "a"}, CodeReservedName, 0},
		{"undefined", []string{"-s", "x", "-s", "nope", "--", "-s", "a"}, CodeUndefinedVariable, 1},
		{"incompatible", []string{"-a", "x", "--", "-a", "a"}, CodeIncompatibleSlot, 0},
		{"no separator", []string{"-s", "x"}, CodeMissingSeparator, 1},
		{"flag without name", []string{"-s"}, CodeMissingSeparator, 0},
		{"empty input", nil, CodeMissingSeparator, 0},
		{"no values", []string{"-s", "x", "--"}, CodeMissingArguments, -1},
		{"nothing declared", []string{"--"}, CodeMissingArguments, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var x string
			scope := NewScope().Declare("x", StringVar(&x))
			_, err := Bind(tt.tokens, scope)
			e := expectCode(t, err, tt.code)
			if e.Index != tt.index {
				t.Errorf("index = %d, want %d", e.Index, tt.index)
			}
			if x != "" {
				t.Errorf("x written during declaration failure: %q", x)
			}
		})
	}
}

func TestDeclarations_ExtraReserved(t *testing.T) {
	var self string
	scope := NewScope().Declare("self", StringVar(&self))
	b := New(WithReserved("self"))
	_, err := b.Bind([]string{"-s", "self", "--", "-s", "a"}, scope)
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("expected ReservedNameError, got %v", err)
	}

	// The default binder does not know about "self".
	if _, err := Bind([]string{"-s", "self", "--", "-s", "a"}, scope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if self != "a" {
		t.Errorf("self = %q, want a", self)
	}
}

func TestDeclarations_ReservedCheckedBeforeScope(t *testing.T) {
	var v string
	scope := NewScope().Declare(DefaultReservedName, StringVar(&v))
	_, err := Bind([]string{"-s", DefaultReservedName, "--", "-s", "a"}, scope)
	expectCode(t, err, CodeReservedName)
}

func TestDeclarations_TableKeptOnFailure(t *testing.T) {
	var a, b string
	scope := NewScope().Declare("a", StringVar(&a)).Declare("b", StringVar(&b))
	res, err := Bind([]string{"-s", "a", "-i", "b", "-s", "c", "--", "-s", "x"}, scope)
	expectCode(t, err, CodeUndefinedVariable)
	if len(res.Declarations) != 2 {
		t.Fatalf("declarations = %d, want 2", len(res.Declarations))
	}
	if res.Declarations[1].Type != Integer || res.Declarations[1].Name != "b" {
		t.Errorf("declaration 1 = %+v", res.Declarations[1])
	}
}

func TestOpenScope(t *testing.T) {
	scope := OpenScope()
	res, err := Bind([]string{"-a", "xs", "-d", "m", "--", "-a", "1", "2", "-d", "-k", "a", "-v", "b"}, scope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := scope.Names(); len(got) != 2 || got[0] != "m" || got[1] != "xs" {
		t.Errorf("names = %q, want [m xs]", got)
	}
	if res.Bindings[0].Value.Type != Array || len(res.Bindings[0].Value.Items) != 2 {
		t.Errorf("binding 0 = %+v", res.Bindings[0])
	}
	if res.Bindings[1].Value.Entries["a"] != "b" {
		t.Errorf("binding 1 = %+v", res.Bindings[1])
	}
}

func TestOpenScope_RejectsNonIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
	}{
		{"separator as name", []string{"-s", "--", "--", "-s", "hi"}},
		{"flag as name", []string{"-s", "-a", "--", "-s", "hi"}},
		{"empty name", []string{"-s", "", "--", "-s", "hi"}},
		{"shell syntax", []string{"-s", "x;touch pwned;y", "--", "-s", "hi"}},
		{"leading digit", []string{"-s", "1x", "--", "-s", "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := OpenScope()
			res, err := Bind(tt.tokens, scope)
			e := expectCode(t, err, CodeUndefinedVariable)
			if e.Index != 0 {
				t.Errorf("index = %d, want 0", e.Index)
			}
			if len(res.Bindings) != 0 || len(scope.Names()) != 0 {
				t.Errorf("bound %+v, scope %q", res.Bindings, scope.Names())
			}
		})
	}
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"x", "_", "_x1", "Files", "a_b_9"} {
		if !ValidName(name) {
			t.Errorf("ValidName(%q) = false", name)
		}
	}
	for _, name := range []string{"", "--", "-a", "9x", "a-b", "a b", "x;y", "$x", "é"} {
		if ValidName(name) {
			t.Errorf("ValidName(%q) = true", name)
		}
	}
}

func TestValueVar(t *testing.T) {
	var v Value
	scope := NewScope().Declare("v", ValueVar(&v))
	if _, err := Bind([]string{"-i", "v", "--", "-i", "9"}, scope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Type != Integer || v.Text != "9" {
		t.Errorf("v = %+v", v)
	}
}

func TestLookupFlag(t *testing.T) {
	for _, typ := range []Type{Array, String, Integer, Dictionary} {
		got, ok := LookupFlag(typ.Flag())
		if !ok || got != typ {
			t.Errorf("LookupFlag(%q) = %v, %v", typ.Flag(), got, ok)
		}
		got, ok = LookupFlag("--" + typ.String())
		if !ok || got != typ {
			t.Errorf("LookupFlag(--%s) = %v, %v", typ, got, ok)
		}
	}
	if _, ok := LookupFlag("-k"); ok {
		t.Error("-k is not a type flag")
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Array, String, Integer, Dictionary} {
		got, ok := ParseType(typ.String())
		if !ok || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ.String(), got, ok)
		}
	}
	if _, ok := ParseType("float"); ok {
		t.Error("float is not a type")
	}
}
