package annotation

import "slices"

// Mutation operations. Each call either fully applies or returns an error
// with the set untouched; applying the same fact twice is a no-op so that
// repeated imports of unchanged data are safe.

// AddFunction records a function start and its symbol name. The two tables
// are mutated together: a name conflict leaves functions untouched too.
func (s *Set) AddFunction(addr uint64, name string) error {
	if err := s.create(NameSlot, addr, name); err != nil {
		return err
	}
	s.insertFunction(addr)
	return nil
}

// MarkFunction records a function start without touching names. Inserting
// an already-known start is a no-op.
func (s *Set) MarkFunction(addr uint64) {
	s.insertFunction(addr)
}

// AddVariable records a data symbol name.
func (s *Set) AddVariable(addr uint64, name string) error {
	return s.create(NameSlot, addr, name)
}

// AddLineComment records a comment attached to a single address.
func (s *Set) AddLineComment(addr uint64, comment string) error {
	return s.create(LineCommentSlot, addr, comment)
}

// AddFuncComment records a comment attached to the function at addr.
func (s *Set) AddFuncComment(addr uint64, comment string) error {
	return s.create(FuncCommentSlot, addr, comment)
}

// RenameName updates an existing symbol name. An empty replacement deletes
// the name; the address stays in functions if it was a function start.
func (s *Set) RenameName(addr uint64, name string) error {
	return s.rename(NameSlot, addr, name)
}

// RenameLineComment updates an existing line comment; empty deletes.
func (s *Set) RenameLineComment(addr uint64, comment string) error {
	return s.rename(LineCommentSlot, addr, comment)
}

// RenameFuncComment updates an existing function comment; empty deletes.
func (s *Set) RenameFuncComment(addr uint64, comment string) error {
	return s.rename(FuncCommentSlot, addr, comment)
}

func (s *Set) slot(kind SlotKind) map[uint64]string {
	switch kind {
	case LineCommentSlot:
		return s.LineComments
	case FuncCommentSlot:
		return s.FuncComments
	default:
		return s.Names
	}
}

func (s *Set) create(kind SlotKind, addr uint64, value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	table := s.slot(kind)
	if existing, ok := table[addr]; ok && existing != value {
		return &ConflictError{Slot: kind, Addr: addr, Existing: existing, Proposed: value}
	}
	table[addr] = value
	return nil
}

func (s *Set) rename(kind SlotKind, addr uint64, value string) error {
	table := s.slot(kind)
	if _, ok := table[addr]; !ok {
		return &NotFoundError{Slot: kind, Addr: addr}
	}
	if value == "" {
		delete(table, addr)
		return nil
	}
	table[addr] = value
	return nil
}

// insertFunction keeps Functions sorted and duplicate free.
func (s *Set) insertFunction(addr uint64) {
	if i, found := slices.BinarySearch(s.Functions, addr); !found {
		s.Functions = slices.Insert(s.Functions, i, addr)
	}
}
