package annotation

import "slices"

// Entry is the read-only projection of everything known about one address,
// assembled by probing each table independently. An address with only a
// comment and no name is legal, as is the reverse.
type Entry struct {
	Addr           uint64
	Name           string
	HasName        bool
	Function       bool
	LineComment    string
	HasLineComment bool
	FuncComment    string
	HasFuncComment bool
}

// Empty reports whether nothing is recorded at the entry's address.
func (e Entry) Empty() bool {
	return !e.HasName && !e.Function && !e.HasLineComment && !e.HasFuncComment
}

// Index is the sorted, deduplicated union of every address referenced by
// any annotation table, with per-address entries. It is a snapshot: mutate
// the set and rebuild.
type Index struct {
	addrs   []uint64
	entries map[uint64]Entry
}

// Result is one windowed lookup. On an exact match Current carries the full
// entry and both windows strictly exclude it; on a miss Current is a bare
// synthetic entry and After starts at the first recorded address past the
// query point.
type Result struct {
	Addr    uint64
	Before  []Entry
	Current Entry
	After   []Entry
}

// Index builds the address index over the set.
func (s *Set) Index() *Index {
	seen := make(map[uint64]struct{}, len(s.Names)+len(s.LineComments)+len(s.FuncComments)+len(s.Functions))
	for addr := range s.Names {
		seen[addr] = struct{}{}
	}
	for addr := range s.LineComments {
		seen[addr] = struct{}{}
	}
	for addr := range s.FuncComments {
		seen[addr] = struct{}{}
	}
	for _, addr := range s.Functions {
		seen[addr] = struct{}{}
	}

	idx := &Index{
		addrs:   make([]uint64, 0, len(seen)),
		entries: make(map[uint64]Entry, len(seen)),
	}
	for addr := range seen {
		idx.addrs = append(idx.addrs, addr)
	}
	slices.Sort(idx.addrs)

	for _, addr := range idx.addrs {
		entry := Entry{Addr: addr}
		if name, ok := s.Names[addr]; ok {
			entry.Name, entry.HasName = name, true
		}
		if _, found := slices.BinarySearch(s.Functions, addr); found {
			entry.Function = true
		}
		if c, ok := s.LineComments[addr]; ok {
			entry.LineComment, entry.HasLineComment = c, true
		}
		if c, ok := s.FuncComments[addr]; ok {
			entry.FuncComment, entry.HasFuncComment = c, true
		}
		idx.entries[addr] = entry
	}
	return idx
}

// Len returns the number of distinct annotated addresses.
func (i *Index) Len() int { return len(i.addrs) }

// Addresses returns the ascending annotated addresses view. Callers must
// not mutate it.
func (i *Index) Addresses() []uint64 { return i.addrs }

// Entry returns the projection for addr, if any annotation references it.
func (i *Index) Entry(addr uint64) (Entry, bool) {
	e, ok := i.entries[addr]
	return e, ok
}

// Query returns up to before entries preceding addr and up to after entries
// following it, truncating silently at either end of the index. Negative
// window counts are a caller bug, rejected at the CLI boundary.
func (i *Index) Query(addr uint64, before, after int) Result {
	pos, found := slices.BinarySearch(i.addrs, addr)

	res := Result{Addr: addr, Current: Entry{Addr: addr}}
	if found {
		res.Current = i.entries[addr]
	}

	lo := pos - before
	if lo < 0 {
		lo = 0
	}
	for _, a := range i.addrs[lo:pos] {
		res.Before = append(res.Before, i.entries[a])
	}

	// on a miss nothing is displaced, so the window starts at the
	// insertion point itself
	start := pos
	if found {
		start = pos + 1
	}
	hi := start + after
	if hi > len(i.addrs) {
		hi = len(i.addrs)
	}
	for _, a := range i.addrs[start:hi] {
		res.After = append(res.After, i.entries[a])
	}

	return res
}
