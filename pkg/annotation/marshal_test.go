package annotation

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	set, err := Parse([]byte(`{
		"leftover": {"from": "the future"},
		"sections": {".text": {"start": 4096, "end": 8192}},
		"names": {"0x1010": "helper", "4096": "main"},
		"functions": ["0x1000", 4112, 4112],
		"func_comments": {"4096": "entry point"},
		"line_comments": {"4100": "the \"tricky\" bit\nspans lines"},
		"structs": {
			"Header": {
				"size": 8,
				"members": {
					"magic": {"offset": 0, "size": 4, "type": "uint32_t"},
					"len": {"offset": 4, "size": 4, "type": "uint32_t"}
				}
			}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return set
}

func TestMarshalRoundTrip(t *testing.T) {
	set := testSet(t)

	data, err := set.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	again, err := Parse(data)
	if err != nil {
		t.Fatalf("re-Parse returned error: %v", err)
	}
	if !reflect.DeepEqual(set, again) {
		t.Errorf("round trip changed the set:\n before: %+v\n after:  %+v", set, again)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	set := testSet(t)

	first, err := set.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	second, err := set.Marshal()
	if err != nil {
		t.Fatalf("second Marshal returned error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two marshals of an unmutated set differ")
	}
}

func TestMarshalKeyOrder(t *testing.T) {
	set := testSet(t)

	data, err := set.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	out := string(data)

	// recognized keys first, in canonical order, passthrough keys last
	order := []string{`"sections"`, `"names"`, `"functions"`, `"func_comments"`, `"line_comments"`, `"structs"`, `"leftover"`}
	last := -1
	for _, key := range order {
		pos := strings.Index(out, key)
		if pos < 0 {
			t.Fatalf("output is missing %s", key)
		}
		if pos < last {
			t.Errorf("%s appears out of order", key)
		}
		last = pos
	}

	// address keys are ascending decimal strings
	if strings.Contains(out, `"0x`) {
		t.Error("output contains hex address keys")
	}
	if strings.Index(out, `"4096"`) > strings.Index(out, `"4112"`) {
		t.Error("names keys are not in ascending numeric order")
	}
}

func TestMarshalFunctionsSortedDeduped(t *testing.T) {
	set := testSet(t)

	data, err := set.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var doc struct {
		Functions []uint64 `json:"functions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	want := []uint64{4096, 4112}
	if !reflect.DeepEqual(doc.Functions, want) {
		t.Errorf("functions = %v, want %v", doc.Functions, want)
	}
}

func TestMarshalEmptySet(t *testing.T) {
	data, err := NewSet().Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range knownKeys {
		if _, ok := doc[key]; !ok {
			t.Errorf("empty set output is missing %q", key)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	set := testSet(t)
	clone := set.Clone()

	if !reflect.DeepEqual(set, clone) {
		t.Fatal("clone differs from original")
	}

	clone.Names[0xdead] = "beef"
	clone.Structs["Header"].Members["magic"] = StructMember{Offset: 1}
	clone.MarkFunction(0xdead)

	if _, ok := set.Names[0xdead]; ok {
		t.Error("mutating clone names leaked into original")
	}
	if set.Structs["Header"].Members["magic"].Offset == 1 {
		t.Error("mutating clone structs leaked into original")
	}
	if len(set.Functions) == len(clone.Functions) {
		t.Error("mutating clone functions leaked into original")
	}
}
