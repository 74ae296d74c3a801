package argbind

import "sort"

// Slot is a caller-owned output variable. The binder only writes through it.
type Slot interface {
	// Accepts reports whether values of type t can be stored in the slot.
	Accepts(t Type) bool
	// Set stores v. It is called at most once per call, with a type the
	// slot accepts.
	Set(v Value)
}

type stringSlot struct{ p *string }

// StringVar returns a slot that receives String and Integer values.
func StringVar(p *string) Slot { return stringSlot{p} }

func (s stringSlot) Accepts(t Type) bool { return t == String || t == Integer }
func (s stringSlot) Set(v Value)         { *s.p = v.Text }

type arraySlot struct{ p *[]string }

// ArrayVar returns a slot that receives Array values.
func ArrayVar(p *[]string) Slot { return arraySlot{p} }

func (s arraySlot) Accepts(t Type) bool { return t == Array }
func (s arraySlot) Set(v Value)         { *s.p = v.Items }

type dictSlot struct{ p *map[string]string }

// DictVar returns a slot that receives Dictionary values.
func DictVar(p *map[string]string) Slot { return dictSlot{p} }

func (s dictSlot) Accepts(t Type) bool { return t == Dictionary }
func (s dictSlot) Set(v Value)         { *s.p = v.Entries }

type valueSlot struct{ p *Value }

// ValueVar returns a slot that receives any value.
func ValueVar(p *Value) Slot { return valueSlot{p} }

func (s valueSlot) Accepts(Type) bool { return true }
func (s valueSlot) Set(v Value)       { *s.p = v }

// Scope is the set of variables a call may bind, keyed by name.
type Scope struct {
	slots map[string]Slot
	open  bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{slots: make(map[string]Slot)}
}

// OpenScope returns a scope that declares a fresh ValueVar for every valid
// name it is asked about. The bound values are reported in the call's Result.
func OpenScope() *Scope {
	return &Scope{slots: make(map[string]Slot), open: true}
}

// Declare adds a variable. Declaring a name twice replaces the earlier slot.
func (s *Scope) Declare(name string, slot Slot) *Scope {
	s.slots[name] = slot
	return s
}

// Lookup returns the slot declared under name.
func (s *Scope) Lookup(name string) (Slot, bool) {
	if slot, ok := s.slots[name]; ok {
		return slot, true
	}
	if !s.open || !ValidName(name) {
		return nil, false
	}
	slot := ValueVar(new(Value))
	s.slots[name] = slot
	return slot, true
}

// Names returns the declared names in sorted order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidName reports whether name is a shell identifier:
// a letter or underscore followed by letters, digits or underscores.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
