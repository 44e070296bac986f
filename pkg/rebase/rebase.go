// Package rebase translates addresses between two differently-based loads
// of the same binary. An address is resolved to an offset within its
// covering source section, then re-anchored at the start of the same-named
// section in the target layout.
package rebase

import "fmt"

// Section is a named contiguous address range, [Start, End).
type Section struct {
	Name  string
	Start uint64
	End   uint64
}

// Contains reports whether addr falls inside the section.
func (s Section) Contains(addr uint64) bool {
	return s.Start <= addr && addr < s.End
}

// Lookup resolves a section by name in the target layout.
type Lookup interface {
	SectionByName(name string) (Section, bool)
}

// Sections is a plain slice target layout.
type Sections []Section

func (ss Sections) SectionByName(name string) (Section, bool) {
	for _, s := range ss {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// NotMappableError is an address with no covering source section, or whose
// section has no same-named counterpart in the target. Callers choose
// whether to skip the one annotation or abort the import.
type NotMappableError struct {
	Addr    uint64
	Section string // empty when no source section covers Addr
}

func (e *NotMappableError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("address %#x is not covered by any source section", e.Addr)
	}
	return fmt.Sprintf("address %#x: no section %q in target layout", e.Addr, e.Section)
}

// Rebase maps addr from the source section layout into the target layout.
// It is pure: no side effects, no partial work.
func Rebase(src []Section, target Lookup, addr uint64) (uint64, error) {
	for _, sec := range src {
		if !sec.Contains(addr) {
			continue
		}
		tsec, ok := target.SectionByName(sec.Name)
		if !ok {
			return 0, &NotMappableError{Addr: addr, Section: sec.Name}
		}
		return tsec.Start + (addr - sec.Start), nil
	}
	return 0, &NotMappableError{Addr: addr}
}
