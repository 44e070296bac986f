package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// known top-level tables, in canonical output order.
var knownKeys = []string{
	"sections",
	"names",
	"functions",
	"func_comments",
	"line_comments",
	"structs",
}

// ParseError is a malformed address or top-level shape. It aborts the whole
// load: a silently skipped address corrupts the index, which is worse than
// a refused file.
type ParseError struct {
	Table string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("parse %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("parse %s: bad address %q: %v", e.Table, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse normalizes raw interchange JSON into a Set.
//
// Address keys/values in names, functions, func_comments and line_comments
// accept JSON integers and decimal or 0x-hex strings; anything else is
// fatal. Sections and structs degrade malformed sub-fields to zero values
// instead (annotation recovery beats strictness for the auxiliary tables).
// Unrecognized top-level keys are kept verbatim, in input order.
func Parse(data []byte) (*Set, error) {
	set := NewSet()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &ParseError{Table: "document", Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ParseError{Table: "document", Err: fmt.Errorf("top level must be a JSON object, got %v", tok)}
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Table: "document", Err: err}
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &ParseError{Table: key, Err: err}
		}

		switch key {
		case "sections":
			if err := parseSections(raw, set); err != nil {
				return nil, err
			}
		case "names":
			if set.Names, err = parseAddrMap(key, raw); err != nil {
				return nil, err
			}
		case "functions":
			if err := parseFunctions(raw, set); err != nil {
				return nil, err
			}
		case "func_comments":
			if set.FuncComments, err = parseAddrMap(key, raw); err != nil {
				return nil, err
			}
		case "line_comments":
			if set.LineComments, err = parseAddrMap(key, raw); err != nil {
				return nil, err
			}
		case "structs":
			if err := parseStructs(raw, set); err != nil {
				return nil, err
			}
		default:
			set.SetExtra(key, raw)
		}
	}

	return set, nil
}

// parseAddr decodes an address given as a JSON integer, a decimal string
// or a 0x-prefixed hex string.
func parseAddr(table string, raw json.RawMessage) (uint64, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if !strings.ContainsAny(num.String(), ".eE") {
			if addr, perr := strconv.ParseUint(num.String(), 10, 64); perr == nil {
				return addr, nil
			}
		}
		return 0, &ParseError{Table: table, Value: num.String(), Err: fmt.Errorf("not a non-negative integer")}
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, &ParseError{Table: table, Value: string(raw), Err: fmt.Errorf("address must be an integer or string")}
	}
	addr, err := parseAddrString(str)
	if err != nil {
		return 0, &ParseError{Table: table, Value: str, Err: err}
	}
	return addr, nil
}

func parseAddrString(s string) (uint64, error) {
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseAddrMap(table string, raw json.RawMessage) (map[uint64]string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ParseError{Table: table, Err: fmt.Errorf("expected an object: %v", err)}
	}
	out := make(map[uint64]string, len(m))
	for key, val := range m {
		addr, err := parseAddrString(key)
		if err != nil {
			return nil, &ParseError{Table: table, Value: key, Err: err}
		}
		out[addr] = lenientString(val)
	}
	return out, nil
}

func parseFunctions(raw json.RawMessage, set *Set) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return &ParseError{Table: "functions", Err: fmt.Errorf("expected an array: %v", err)}
	}
	for _, item := range items {
		addr, err := parseAddr("functions", item)
		if err != nil {
			return err
		}
		set.insertFunction(addr)
	}
	return nil
}

func parseSections(raw json.RawMessage, set *Set) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ParseError{Table: "sections", Err: fmt.Errorf("expected an object: %v", err)}
	}
	for name, val := range m {
		fields := lenientObject(val)
		set.Sections[name] = Section{
			Start: lenientUint(fields["start"]),
			End:   lenientUint(fields["end"]),
		}
	}
	return nil
}

func parseStructs(raw json.RawMessage, set *Set) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ParseError{Table: "structs", Err: fmt.Errorf("expected an object: %v", err)}
	}
	for name, val := range m {
		fields := lenientObject(val)
		st := Struct{
			Size:    lenientUint(fields["size"]),
			Members: make(map[string]StructMember),
		}
		for memberName, memberVal := range lenientObject(fields["members"]) {
			mfields := lenientObject(memberVal)
			st.Members[memberName] = StructMember{
				Offset: lenientUint(mfields["offset"]),
				Size:   lenientUint(mfields["size"]),
				Type:   lenientString(mfields["type"]),
			}
		}
		set.Structs[name] = st
	}
	return nil
}

// lenient decoders for the auxiliary tables: wrong-typed or missing fields
// become zero values, never errors.

func lenientObject(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if raw == nil || json.Unmarshal(raw, &m) != nil {
		return nil
	}
	return m
}

func lenientString(raw json.RawMessage) string {
	var s string
	if raw == nil || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func lenientUint(raw json.RawMessage) uint64 {
	if raw == nil {
		return 0
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
			return u
		}
		return 0
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if u, err := parseAddrString(str); err == nil {
			return u
		}
	}
	return 0
}
