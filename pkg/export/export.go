// Package export enumerates sections, symbols and function starts out of a
// Mach-O image into an annotation set, and exposes a Mach-O image as a
// rebasing target layout.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/go-macho"

	"github.com/blacktop/annot/pkg/annotation"
	"github.com/blacktop/annot/pkg/rebase"
)

// Open opens a Mach-O, selecting a slice of fat/universal files by CPU name
// (empty arch picks the last slice, usually the most capable one).
func Open(path, arch string) (*macho.File, error) {
	fat, err := macho.OpenFat(path)
	if err != nil {
		if errors.Is(err, macho.ErrNotFat) {
			return macho.Open(path)
		}
		return nil, fmt.Errorf("failed to open MachO file: %v", err)
	}
	// NOTE: the fat container stays open; closing it would close the
	// returned slice's reader out from under the caller
	if arch == "" {
		return fat.Arches[len(fat.Arches)-1].File, nil
	}
	for _, a := range fat.Arches {
		if strings.EqualFold(a.File.CPU.String(), arch) {
			return a.File, nil
		}
	}
	return nil, fmt.Errorf("architecture %q not found in fat MachO", arch)
}

// Annotations builds a fresh annotation set from the image: every section
// as SEGMENT.section with its mapped range, every named symbol, and every
// function start.
func Annotations(m *macho.File) (*annotation.Set, error) {
	set := annotation.NewSet()

	for _, sec := range m.Sections {
		set.Sections[sec.Seg+"."+sec.Name] = annotation.Section{
			Start: sec.Addr,
			End:   sec.Addr + sec.Size,
		}
	}

	if m.Symtab != nil {
		for _, sym := range m.Symtab.Syms {
			if sym.Name == "" || sym.Name == "<redacted>" || sym.Value == 0 {
				continue
			}
			if existing, ok := set.Names[sym.Value]; ok && existing != sym.Name {
				log.Debugf("keeping %s over %s at %#x", existing, sym.Name, sym.Value)
				continue
			}
			set.Names[sym.Value] = sym.Name
		}
	}

	if fns := m.GetFunctions(); fns != nil {
		for _, fn := range fns {
			if err := setFunction(set, fn.StartAddr); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}

// setFunction records a function start, naming unnamed ones sub_ADDR the
// way disassemblers render anonymous functions.
func setFunction(set *annotation.Set, addr uint64) error {
	name, ok := set.Names[addr]
	if !ok {
		name = fmt.Sprintf("sub_%x", addr)
	}
	if err := set.AddFunction(addr, name); err != nil {
		return fmt.Errorf("failed to add function at %#x: %w", addr, err)
	}
	return nil
}

// Layout exposes the image's sections as a rebasing target.
func Layout(m *macho.File) ImageLayout {
	return ImageLayout{m: m}
}

// ImageLayout adapts a Mach-O image to the rebaser's section lookup.
type ImageLayout struct {
	m *macho.File
}

func (l ImageLayout) SectionByName(name string) (rebase.Section, bool) {
	seg, sec, ok := strings.Cut(name, ".")
	if !ok {
		return rebase.Section{}, false
	}
	s := l.m.Section(seg, sec)
	if s == nil {
		return rebase.Section{}, false
	}
	return rebase.Section{Name: name, Start: s.Addr, End: s.Addr + s.Size}, true
}

// SectionList enumerates the image's sections in file order, so a rebased
// annotation file can adopt the target layout wholesale.
func (l ImageLayout) SectionList() []rebase.Section {
	out := make([]rebase.Section, 0, len(l.m.Sections))
	for _, s := range l.m.Sections {
		out = append(out, rebase.Section{
			Name:  s.Seg + "." + s.Name,
			Start: s.Addr,
			End:   s.Addr + s.Size,
		})
	}
	return out
}
