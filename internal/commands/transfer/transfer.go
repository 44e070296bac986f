// Package transfer moves whole annotation sets between differently-based
// loads: rebasing every address-keyed table into a target section layout,
// and merging one set into another under the conflict-aware mutation rules.
package transfer

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/apex/log"

	"github.com/blacktop/annot/pkg/annotation"
	"github.com/blacktop/annot/pkg/rebase"
)

// Target is a rebasing destination that can also enumerate its sections,
// so the output file's section table reflects the layout it was rebased
// into.
type Target interface {
	rebase.Lookup
	SectionList() []rebase.Section
}

// Stats counts what one transfer did and what it had to leave behind.
type Stats struct {
	Functions int
	Names     int
	Comments  int
	Structs   int
	Unmapped  int // addresses with no home in the target layout
	Conflicts int // slots already holding a different value
}

// Skipped reports whether anything was left behind.
func (s Stats) Skipped() bool { return s.Unmapped > 0 || s.Conflicts > 0 }

// SetLayout exposes an annotation set's recorded section table as a
// rebasing target.
func SetLayout(set *annotation.Set) Target {
	return setLayout{set: set}
}

type setLayout struct {
	set *annotation.Set
}

func (l setLayout) SectionByName(name string) (rebase.Section, bool) {
	sec, ok := l.set.Sections[name]
	if !ok {
		return rebase.Section{}, false
	}
	return rebase.Section{Name: name, Start: sec.Start, End: sec.End}, true
}

func (l setLayout) SectionList() []rebase.Section {
	return SourceSections(l.set)
}

// SourceSections converts a set's recorded section table into the sorted
// slice form the rebaser walks. Deterministic order keeps ties between
// overlapping sections stable.
func SourceSections(set *annotation.Set) []rebase.Section {
	var out []rebase.Section
	names := maps.Keys(set.Sections)
	slices.Sort(names)
	for _, name := range names {
		sec := set.Sections[name]
		out = append(out, rebase.Section{Name: name, Start: sec.Start, End: sec.End})
	}
	return out
}

// RebaseSet rewrites every address-keyed annotation from the set's own
// recorded section layout into target, replacing the section table with
// the target layout. Unmappable addresses are skipped and counted unless
// strict, in which case the first one aborts with nothing produced.
func RebaseSet(set *annotation.Set, target Target, strict bool) (*annotation.Set, Stats, error) {
	var stats Stats

	src := SourceSections(set)
	if len(src) == 0 {
		return nil, stats, fmt.Errorf("annotation file records no sections to rebase from")
	}

	out := annotation.NewSet()
	for _, sec := range target.SectionList() {
		out.Sections[sec.Name] = annotation.Section{Start: sec.Start, End: sec.End}
	}
	maps.Copy(out.Structs, set.Structs)
	for _, extra := range set.Extras() {
		out.SetExtra(extra.Key, extra.Value)
	}

	adjust := func(table string, addr uint64) (uint64, bool, error) {
		mapped, err := rebase.Rebase(src, target, addr)
		if err == nil {
			return mapped, true, nil
		}
		if strict {
			return 0, false, fmt.Errorf("%s: %w", table, err)
		}
		log.WithError(err).Debugf("skipping %s entry", table)
		stats.Unmapped++
		return 0, false, nil
	}

	for _, addr := range set.Functions {
		mapped, ok, err := adjust("functions", addr)
		if err != nil {
			return nil, stats, err
		}
		if ok {
			out.MarkFunction(mapped)
			stats.Functions++
		}
	}
	for addr, name := range set.Names {
		mapped, ok, err := adjust("names", addr)
		if err != nil {
			return nil, stats, err
		}
		if ok {
			out.Names[mapped] = name
			stats.Names++
		}
	}
	for addr, comment := range set.LineComments {
		mapped, ok, err := adjust("line_comments", addr)
		if err != nil {
			return nil, stats, err
		}
		if ok {
			out.LineComments[mapped] = comment
			stats.Comments++
		}
	}
	for addr, comment := range set.FuncComments {
		mapped, ok, err := adjust("func_comments", addr)
		if err != nil {
			return nil, stats, err
		}
		if ok {
			out.FuncComments[mapped] = comment
			stats.Comments++
		}
	}

	return out, stats, nil
}

// Merge imports src into dst under the create-operation rules: identical
// facts are no-ops, differing facts are conflicts (skipped and counted, or
// fatal when strict). When both sets record sections, src addresses are
// rebased into dst's layout first; unmappable ones follow the same
// skip-or-abort policy. dst is mutated in place only on success.
func Merge(dst, src *annotation.Set, strict bool) (Stats, error) {
	var stats Stats

	adjust := identity
	if len(src.Sections) > 0 && len(dst.Sections) > 0 {
		srcSecs := SourceSections(src)
		layout := SetLayout(dst)
		adjust = func(addr uint64) (uint64, error) {
			return rebase.Rebase(srcSecs, layout, addr)
		}
	}

	// stage against a copy so a strict failure leaves dst untouched
	staged := dst.Clone()

	apply := func(addr uint64, do func(mapped uint64) error) error {
		mapped, err := adjust(addr)
		if err != nil {
			if strict {
				return err
			}
			log.WithError(err).Debug("skipping entry")
			stats.Unmapped++
			return nil
		}
		if err := do(mapped); err != nil {
			var conflict *annotation.ConflictError
			if !errors.As(err, &conflict) && !errors.Is(err, annotation.ErrEmptyValue) {
				return err
			}
			if strict {
				return err
			}
			log.WithError(err).Debug("skipping entry")
			stats.Conflicts++
			return nil
		}
		return nil
	}

	for _, addr := range src.Functions {
		if err := apply(addr, func(mapped uint64) error {
			staged.MarkFunction(mapped)
			stats.Functions++
			return nil
		}); err != nil {
			return stats, err
		}
	}
	for addr, name := range src.Names {
		if err := apply(addr, func(mapped uint64) error {
			if err := staged.AddVariable(mapped, name); err != nil {
				return err
			}
			stats.Names++
			return nil
		}); err != nil {
			return stats, err
		}
	}
	for addr, comment := range src.LineComments {
		if err := apply(addr, func(mapped uint64) error {
			if err := staged.AddLineComment(mapped, comment); err != nil {
				return err
			}
			stats.Comments++
			return nil
		}); err != nil {
			return stats, err
		}
	}
	for addr, comment := range src.FuncComments {
		if err := apply(addr, func(mapped uint64) error {
			if err := staged.AddFuncComment(mapped, comment); err != nil {
				return err
			}
			stats.Comments++
			return nil
		}); err != nil {
			return stats, err
		}
	}

	for name, st := range src.Structs {
		existing, ok := staged.Structs[name]
		if !ok {
			staged.Structs[name] = st.Clone()
			stats.Structs++
			continue
		}
		if structsEqual(existing, st) {
			continue
		}
		err := fmt.Errorf("struct %q already defined differently", name)
		if strict {
			return stats, err
		}
		log.WithError(err).Debug("skipping struct")
		stats.Conflicts++
	}

	// passthrough keys: dst wins, src-only keys are appended
	have := make(map[string]bool)
	for _, extra := range staged.Extras() {
		have[extra.Key] = true
	}
	for _, extra := range src.Extras() {
		if !have[extra.Key] {
			staged.SetExtra(extra.Key, extra.Value)
		}
	}

	*dst = *staged
	return stats, nil
}

func identity(addr uint64) (uint64, error) { return addr, nil }

func structsEqual(a, b annotation.Struct) bool {
	return a.Size == b.Size && maps.Equal(a.Members, b.Members)
}
