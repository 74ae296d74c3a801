package argbind

// parseDeclarations reads (type-flag, name) pairs up to the separator and
// leaves the stream positioned on the first value token.
func (b *Binder) parseDeclarations(s *stream, scope *Scope) ([]Declaration, error) {
	var decls []Declaration
	for {
		tok, ok := s.next()
		if !ok {
			return decls, missingSeparator(len(decls))
		}
		if tok == Separator {
			break
		}
		t, ok := LookupFlag(tok)
		if !ok {
			return decls, unexpectedDeclaration(len(decls), tok)
		}
		name, ok := s.next()
		if !ok {
			return decls, missingSeparator(len(decls))
		}
		if b.reserved.Contains(name) {
			return decls, reservedName(len(decls), name)
		}
		slot, ok := scope.Lookup(name)
		if !ok {
			return decls, undefinedVariable(len(decls), name)
		}
		if !slot.Accepts(t) {
			return decls, incompatibleSlot(len(decls), name, t)
		}
		decls = append(decls, Declaration{Type: t, Name: name, Slot: slot})
	}
	if s.empty() {
		return decls, noValues()
	}
	return decls, nil
}
