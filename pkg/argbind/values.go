package argbind

import (
	"fmt"
	"strings"
)

// consumeValues decodes one value per declaration, in order, and writes
// each into its slot before moving on.
func (b *Binder) consumeValues(s *stream, decls []Declaration, res *Result) error {
	for i := 0; !s.empty(); i++ {
		tag, _ := s.next()
		if i >= len(decls) {
			return unexpectedValue(i, tag)
		}
		d := decls[i]
		if t, ok := LookupFlag(tag); !ok || t != d.Type {
			return typeMismatch(i, d.Type, tag)
		}
		v, err := b.decode(s, i, d.Type)
		if err != nil {
			return err
		}
		d.Slot.Set(v)
		res.Bindings = append(res.Bindings, Binding{Index: i, Name: d.Name, Value: v})
	}
	return nil
}

func (b *Binder) decode(s *stream, i int, t Type) (Value, error) {
	switch t {
	case Array:
		items := s.sequence()
		if b.echo != nil {
			fmt.Fprintln(b.echo, strings.Join(items, " "))
		}
		return Value{Type: Array, Items: items}, nil

	case String:
		tok, ok := s.next()
		if !ok {
			return Value{}, missingValue(i, t)
		}
		return Value{Type: String, Text: tok}, nil

	case Integer:
		tok, ok := s.next()
		if !ok {
			return Value{}, missingValue(i, t)
		}
		if !isDigits(tok) {
			return Value{}, invalidInteger(i, tok)
		}
		return Value{Type: Integer, Text: tok}, nil

	case Dictionary:
		return decodeDictionary(s, i)
	}
	return Value{}, fmt.Errorf("argbind: unknown type %d", int(t))
}

func decodeDictionary(s *stream, i int) (Value, error) {
	tok, ok := s.next()
	if !ok || !isKeysFlag(tok) {
		return Value{}, missingKeysFlag(i, tok, !ok)
	}
	keys := s.sequence()

	tok, ok = s.next()
	if !ok || !isValuesFlag(tok) {
		return Value{}, missingValuesFlag(i, tok, !ok)
	}
	values := s.sequence()

	if len(keys) != len(values) {
		return Value{}, unbalanced(i, keys, values)
	}
	entries := make(map[string]string, len(keys))
	for j, k := range keys {
		entries[k] = values[j]
	}
	return Value{Type: Dictionary, Entries: entries}, nil
}

// isDigits reports whether tok is one or more ASCII digits.
func isDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}
