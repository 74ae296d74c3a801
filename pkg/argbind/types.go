// Package argbind binds a positional, type-tagged token stream into
// caller-owned variables.
//
// A call has two sections separated by "--". The first declares, in order,
// the expected types and the variables that receive them:
//
//	-a files -s name -d opts --
//
// The second supplies the values, tagged with the same type flags in the
// same order:
//
//	-a one two \-three -s hello -d -k color size -v red 10
//
// Arrays and dictionary sequences run until the next token that starts with
// an unescaped dash. A literal leading dash is written as "\-".
package argbind

import "fmt"

// Type is the declared type of one positional argument.
type Type int

const (
	Array Type = iota
	String
	Integer
	Dictionary
)

// Separator ends the declaration section.
const Separator = "--"

var typeNames = [...]string{
	Array:      "array",
	String:     "string",
	Integer:    "int",
	Dictionary: "dictionary",
}

func (t Type) String() string {
	if t < Array || t > Dictionary {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType maps a type name as printed by String back to its Type.
func ParseType(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return Type(t), true
		}
	}
	return 0, false
}

// Flag returns the short flag that tags t.
func (t Type) Flag() string {
	switch t {
	case Array:
		return "-a"
	case String:
		return "-s"
	case Integer:
		return "-i"
	case Dictionary:
		return "-d"
	}
	return ""
}

// LookupFlag maps a type flag, short or long, to its Type.
func LookupFlag(token string) (Type, bool) {
	switch token {
	case "-a", "--array":
		return Array, true
	case "-s", "--string":
		return String, true
	case "-i", "--int":
		return Integer, true
	case "-d", "--dictionary":
		return Dictionary, true
	}
	return 0, false
}

func isKeysFlag(token string) bool   { return token == "-k" || token == "--keys" }
func isValuesFlag(token string) bool { return token == "-v" || token == "--values" }

// Value is one decoded argument. Text holds String and Integer values,
// Items holds Array values and Entries holds Dictionary values.
type Value struct {
	Type    Type
	Text    string
	Items   []string
	Entries map[string]string
}

// Declaration pairs a declared type with the variable that receives it.
type Declaration struct {
	Type Type
	Name string
	Slot Slot
}

// Binding records a value written during a call.
type Binding struct {
	Index int
	Name  string
	Value Value
}

// Result describes one call. After a failure it still lists the bindings
// that were written before the failing step.
type Result struct {
	CallSite     string
	Declarations []Declaration
	Bindings     []Binding
}

// Signature returns the declared types in order.
func (r *Result) Signature() []Type {
	types := make([]Type, len(r.Declarations))
	for i, d := range r.Declarations {
		types[i] = d.Type
	}
	return types
}
