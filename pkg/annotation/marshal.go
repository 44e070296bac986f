package annotation

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"

	"golang.org/x/exp/maps"
)

// Marshal serializes the set deterministically: recognized tables first in
// canonical order, address keys as ascending decimal strings, functions as
// an ascending integer array, section/struct/member names sorted,
// passthrough keys last in input order. Serializing twice without an
// intervening mutation is byte-identical, and Parse(Marshal(s)) == s.
func (s *Set) Marshal() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')

	writeKey(&b, "sections", false)
	writeSections(&b, s.Sections)

	writeKey(&b, "names", true)
	writeAddrMap(&b, s.Names)

	writeKey(&b, "functions", true)
	writeFunctions(&b, s.Functions)

	writeKey(&b, "func_comments", true)
	writeAddrMap(&b, s.FuncComments)

	writeKey(&b, "line_comments", true)
	writeAddrMap(&b, s.LineComments)

	writeKey(&b, "structs", true)
	writeStructs(&b, s.Structs)

	for _, extra := range s.extras {
		writeKey(&b, extra.Key, true)
		var compact bytes.Buffer
		if err := json.Compact(&compact, extra.Value); err != nil {
			return nil, err
		}
		b.Write(compact.Bytes())
	}

	b.WriteByte('}')

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, b.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	pretty.WriteByte('\n')
	return pretty.Bytes(), nil
}

func writeKey(b *bytes.Buffer, key string, comma bool) {
	if comma {
		b.WriteByte(',')
	}
	writeString(b, key)
	b.WriteByte(':')
}

// writeString JSON-escapes via the stdlib encoder so comments with
// newlines, quotes and control characters survive untouched.
func writeString(b *bytes.Buffer, s string) {
	enc, _ := json.Marshal(s)
	b.Write(enc)
}

func writeAddrMap(b *bytes.Buffer, m map[uint64]string) {
	b.WriteByte('{')
	for i, addr := range sortedAddrKeys(m) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, strconv.FormatUint(addr, 10))
		b.WriteByte(':')
		writeString(b, m[addr])
	}
	b.WriteByte('}')
}

func writeFunctions(b *bytes.Buffer, funcs []uint64) {
	b.WriteByte('[')
	for i, addr := range funcs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(addr, 10))
	}
	b.WriteByte(']')
}

func writeSections(b *bytes.Buffer, sections map[string]Section) {
	b.WriteByte('{')
	for i, name := range sortedStrKeys(sections) {
		if i > 0 {
			b.WriteByte(',')
		}
		sec := sections[name]
		writeString(b, name)
		b.WriteString(`:{"start":`)
		b.WriteString(strconv.FormatUint(sec.Start, 10))
		b.WriteString(`,"end":`)
		b.WriteString(strconv.FormatUint(sec.End, 10))
		b.WriteByte('}')
	}
	b.WriteByte('}')
}

func writeStructs(b *bytes.Buffer, structs map[string]Struct) {
	b.WriteByte('{')
	for i, name := range sortedStrKeys(structs) {
		if i > 0 {
			b.WriteByte(',')
		}
		st := structs[name]
		writeString(b, name)
		b.WriteString(`:{"size":`)
		b.WriteString(strconv.FormatUint(st.Size, 10))
		b.WriteString(`,"members":{`)
		for j, memberName := range sortedStrKeys(st.Members) {
			if j > 0 {
				b.WriteByte(',')
			}
			member := st.Members[memberName]
			writeString(b, memberName)
			b.WriteString(`:{"offset":`)
			b.WriteString(strconv.FormatUint(member.Offset, 10))
			b.WriteString(`,"size":`)
			b.WriteString(strconv.FormatUint(member.Size, 10))
			b.WriteString(`,"type":`)
			writeString(b, member.Type)
			b.WriteByte('}')
		}
		b.WriteString(`}}`)
	}
	b.WriteByte('}')
}

func sortedAddrKeys[V any](m map[uint64]V) []uint64 {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func sortedStrKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
