package annotation

import (
	"errors"
	"testing"
)

func TestParseAddressEncodings(t *testing.T) {
	data := []byte(`{
		"names": {"4096": "main", "0x1010": "helper"},
		"functions": [4096, "0x1010", "4128"],
		"line_comments": {"0X1020": "tail"}
	}`)

	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if got := set.Names[0x1000]; got != "main" {
		t.Errorf("names[0x1000] = %q, want %q", got, "main")
	}
	if got := set.Names[0x1010]; got != "helper" {
		t.Errorf("names[0x1010] = %q, want %q", got, "helper")
	}
	wantFuncs := []uint64{0x1000, 0x1010, 0x1020}
	if len(set.Functions) != len(wantFuncs) {
		t.Fatalf("functions = %#x, want %#x", set.Functions, wantFuncs)
	}
	for i, addr := range wantFuncs {
		if set.Functions[i] != addr {
			t.Errorf("functions[%d] = %#x, want %#x", i, set.Functions[i], addr)
		}
	}
	if got := set.LineComments[0x1020]; got != "tail" {
		t.Errorf("line_comments[0x1020] = %q, want %q", got, "tail")
	}
}

func TestParseAbsentTablesAreEmpty(t *testing.T) {
	set, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(set.Sections) != 0 || len(set.Names) != 0 || len(set.Functions) != 0 ||
		len(set.FuncComments) != 0 || len(set.LineComments) != 0 || len(set.Structs) != 0 {
		t.Errorf("empty document should normalize to empty tables, got %+v", set)
	}
}

func TestParseBadAddressIsFatal(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage name key", `{"names": {"xyzzy": "main"}}`},
		{"negative function", `{"functions": [-1]}`},
		{"float function", `{"functions": [4096.5]}`},
		{"bool address value", `{"functions": [true]}`},
		{"garbage comment key", `{"line_comments": {"0xnope": "c"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatalf("Parse(%s) should have failed", tt.data)
			} else {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("expected *ParseError, got %T: %v", err, err)
				}
			}
		})
	}
}

func TestParseTopLevelMustBeObject(t *testing.T) {
	for _, data := range []string{`[]`, `42`, `"str"`} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%s) should have failed", data)
		}
	}
}

func TestParseLenientSections(t *testing.T) {
	data := []byte(`{
		"sections": {
			".text": {"start": 4096, "end": "0x2000"},
			".data": {"start": "bogus"},
			".bss": "not even an object"
		}
	}`)

	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if sec := set.Sections[".text"]; sec.Start != 0x1000 || sec.End != 0x2000 {
		t.Errorf(".text = %+v, want {4096 8192}", sec)
	}
	// malformed sub-fields degrade to zero, the file is not rejected
	if sec := set.Sections[".data"]; sec.Start != 0 || sec.End != 0 {
		t.Errorf(".data = %+v, want zero section", sec)
	}
	if sec, ok := set.Sections[".bss"]; !ok || sec.Start != 0 {
		t.Errorf(".bss = %+v (ok=%v), want zero section", sec, ok)
	}
}

func TestParseLenientStructs(t *testing.T) {
	data := []byte(`{
		"structs": {
			"Header": {
				"size": 8,
				"members": {
					"magic": {"offset": 0, "size": 4, "type": "uint32_t"},
					"crippled": {"offset": "4", "type": 17}
				}
			}
		}
	}`)

	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	st, ok := set.Structs["Header"]
	if !ok {
		t.Fatal("missing struct Header")
	}
	if st.Size != 8 {
		t.Errorf("Header.size = %d, want 8", st.Size)
	}
	if m := st.Members["magic"]; m.Offset != 0 || m.Size != 4 || m.Type != "uint32_t" {
		t.Errorf("magic = %+v", m)
	}
	m := st.Members["crippled"]
	if m.Offset != 4 || m.Size != 0 || m.Type != "" {
		t.Errorf("crippled = %+v, want {4 0 \"\"}", m)
	}
}

func TestParsePreservesUnknownKeys(t *testing.T) {
	data := []byte(`{
		"names": {"4096": "main"},
		"future_table": {"anything": ["goes", 1, true]},
		"another": 42
	}`)

	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	extras := set.Extras()
	if len(extras) != 2 {
		t.Fatalf("got %d extras, want 2", len(extras))
	}
	if extras[0].Key != "future_table" || extras[1].Key != "another" {
		t.Errorf("extras out of input order: %q, %q", extras[0].Key, extras[1].Key)
	}
	if string(extras[1].Value) != "42" {
		t.Errorf("extras[1].Value = %s, want 42", extras[1].Value)
	}
}

func TestStructMemberFallbackType(t *testing.T) {
	m := StructMember{Offset: 4, Size: 4, Type: "bad_type"}
	if got := m.FallbackType(); got != "uint8_t [4]" {
		t.Errorf("FallbackType() = %q, want %q", got, "uint8_t [4]")
	}
}
