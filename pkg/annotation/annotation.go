// Package annotation implements the canonical store for portable
// reverse-engineering annotations: symbol names, function starts, line and
// function comments, struct layouts and section bounds, keyed by virtual
// address and interchanged as deterministic JSON.
//
// Addresses are uint64 everywhere inside the package; the decimal-string
// object keys of the interchange format exist only at the parse/marshal
// boundary.
package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/jsonc"
)

// Section is a named contiguous address range within a binary image.
// Start is inclusive, End exclusive.
type Section struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Contains reports whether addr falls inside the section.
func (s Section) Contains(addr uint64) bool {
	return s.Start <= addr && addr < s.End
}

// StructMember is a single field of a struct layout.
type StructMember struct {
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
	Type   string `json:"type"`
}

// FallbackType is the opaque byte-array type to substitute when a
// consumer's type system rejects the member's declared type string. The
// member survives as raw bytes instead of being dropped.
func (m StructMember) FallbackType() string {
	return fmt.Sprintf("uint8_t [%d]", m.Size)
}

// Struct is a struct layout keyed by member name.
type Struct struct {
	Size    uint64                  `json:"size"`
	Members map[string]StructMember `json:"members"`
}

// Extra is an unrecognized top-level key carried through untouched so that
// newer producers can round-trip data older consumers don't understand.
type Extra struct {
	Key   string
	Value json.RawMessage
}

// Set is a normalized annotation set. Functions is always sorted and
// duplicate free; the address-keyed maps carry at most one value per
// address by construction.
type Set struct {
	Sections     map[string]Section
	Names        map[uint64]string
	Functions    []uint64
	FuncComments map[uint64]string
	LineComments map[uint64]string
	Structs      map[string]Struct

	extras []Extra
}

// NewSet returns an empty annotation set.
func NewSet() *Set {
	return &Set{
		Sections:     make(map[string]Section),
		Names:        make(map[uint64]string),
		FuncComments: make(map[uint64]string),
		LineComments: make(map[uint64]string),
		Structs:      make(map[string]Struct),
	}
}

// Clone returns a deep copy of the struct layout.
func (st Struct) Clone() Struct {
	out := Struct{Size: st.Size, Members: make(map[string]StructMember, len(st.Members))}
	maps.Copy(out.Members, st.Members)
	return out
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	out := NewSet()
	maps.Copy(out.Sections, s.Sections)
	maps.Copy(out.Names, s.Names)
	out.Functions = slices.Clone(s.Functions)
	maps.Copy(out.FuncComments, s.FuncComments)
	maps.Copy(out.LineComments, s.LineComments)
	for name, st := range s.Structs {
		out.Structs[name] = st.Clone()
	}
	for _, extra := range s.extras {
		out.extras = append(out.extras, Extra{Key: extra.Key, Value: slices.Clone(extra.Value)})
	}
	return out
}

// Extras returns the passthrough top-level keys in input order.
func (s *Set) Extras() []Extra {
	return s.extras
}

// SetExtra adds or replaces a passthrough key.
func (s *Set) SetExtra(key string, value json.RawMessage) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err == nil {
		value = append(json.RawMessage(nil), compact.Bytes()...)
	}
	for i, e := range s.extras {
		if e.Key == key {
			s.extras[i].Value = value
			return
		}
	}
	s.extras = append(s.extras, Extra{Key: key, Value: value})
}

// Open reads and normalizes an annotation file. Comments and trailing
// commas are tolerated on input (hand-edited files); everything written
// back out is strict JSON.
func Open(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(jsonc.ToJSONInPlace(data))
}

// Save serializes the set and writes it via a temp file rename so a failed
// write never leaves a half-serialized annotation file behind.
func (s *Set) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".annot.*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
