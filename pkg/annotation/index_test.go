package annotation

import (
	"reflect"
	"testing"
)

func indexedSet(t *testing.T) *Set {
	t.Helper()
	set, err := Parse([]byte(`{
		"functions": [4096, 4112, 4128],
		"line_comments": {"4096": "first", "4112": "second", "4128": "third"},
		"names": {"4096": "entry"},
		"func_comments": {"4160": "orphan function comment"}
	}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return set
}

func TestIndexUnion(t *testing.T) {
	idx := indexedSet(t).Index()

	want := []uint64{0x1000, 0x1010, 0x1020, 0x1040}
	if !reflect.DeepEqual(idx.Addresses(), want) {
		t.Errorf("addresses = %#x, want %#x", idx.Addresses(), want)
	}

	// entry assembly probes each table independently
	e, ok := idx.Entry(0x1040)
	if !ok {
		t.Fatal("missing entry for 0x1040")
	}
	if e.HasName || e.Function || e.HasLineComment {
		t.Errorf("0x1040 should only have a func comment: %+v", e)
	}
	if !e.HasFuncComment || e.FuncComment != "orphan function comment" {
		t.Errorf("0x1040 func comment = %+v", e)
	}
}

func TestQueryExactMatch(t *testing.T) {
	idx := indexedSet(t).Index()

	res := idx.Query(0x1010, 1, 1)

	if res.Current.Addr != 0x1010 || !res.Current.HasLineComment || res.Current.LineComment != "second" {
		t.Errorf("current = %+v", res.Current)
	}
	if len(res.Before) != 1 || res.Before[0].Addr != 0x1000 {
		t.Errorf("before = %+v, want [entry(0x1000)]", res.Before)
	}
	if len(res.After) != 1 || res.After[0].Addr != 0x1020 {
		t.Errorf("after = %+v, want [entry(0x1020)]", res.After)
	}
}

func TestQueryMiss(t *testing.T) {
	idx := indexedSet(t).Index()

	res := idx.Query(0x1015, 1, 2)

	// synthetic current: bare address, nothing recorded
	if res.Current.Addr != 0x1015 || !res.Current.Empty() {
		t.Errorf("current = %+v, want bare synthetic entry", res.Current)
	}
	if len(res.Before) != 1 || res.Before[0].Addr != 0x1010 {
		t.Errorf("before = %+v", res.Before)
	}
	// the first recorded address at/after the query point lands in after
	if len(res.After) != 2 || res.After[0].Addr != 0x1020 || res.After[1].Addr != 0x1040 {
		t.Errorf("after = %+v", res.After)
	}
}

func TestQueryWindowTruncation(t *testing.T) {
	idx := indexedSet(t).Index()

	res := idx.Query(0x1000, 5, 100)
	if len(res.Before) != 0 {
		t.Errorf("before = %+v, want empty at the low end", res.Before)
	}
	if len(res.After) != 3 {
		t.Errorf("after has %d entries, want 3", len(res.After))
	}

	res = idx.Query(0x2000, 2, 2)
	if !res.Current.Empty() {
		t.Errorf("current = %+v, want synthetic", res.Current)
	}
	if len(res.Before) != 2 || res.Before[0].Addr != 0x1020 || res.Before[1].Addr != 0x1040 {
		t.Errorf("before = %+v", res.Before)
	}
	if len(res.After) != 0 {
		t.Errorf("after = %+v, want empty past the high end", res.After)
	}
}

func TestQueryZeroWindows(t *testing.T) {
	idx := indexedSet(t).Index()

	res := idx.Query(0x1010, 0, 0)
	if len(res.Before) != 0 || len(res.After) != 0 {
		t.Errorf("zero windows should be empty: before=%+v after=%+v", res.Before, res.After)
	}
	if res.Current.Addr != 0x1010 || !res.Current.HasLineComment {
		t.Errorf("current = %+v", res.Current)
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	res := NewSet().Index().Query(0x1000, 3, 3)
	if len(res.Before) != 0 || len(res.After) != 0 || !res.Current.Empty() {
		t.Errorf("query against empty index = %+v", res)
	}
}

func TestQueryWindowsAreStrictlyIncreasing(t *testing.T) {
	idx := indexedSet(t).Index()

	for _, addr := range []uint64{0x0, 0x1000, 0x1011, 0x1020, 0x9999} {
		res := idx.Query(addr, 4, 4)
		var all []uint64
		for _, e := range res.Before {
			all = append(all, e.Addr)
		}
		for _, e := range res.After {
			all = append(all, e.Addr)
		}
		for i := 1; i < len(all); i++ {
			if all[i-1] >= all[i] {
				t.Errorf("query(%#x): window addresses not strictly increasing: %#x", addr, all)
			}
		}
		for _, e := range res.Before {
			if e.Addr >= addr {
				t.Errorf("query(%#x): before contains %#x", addr, e.Addr)
			}
		}
	}
}
