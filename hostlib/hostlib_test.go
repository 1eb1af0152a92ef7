package hostlib

import "testing"

func TestTable(t *testing.T) {
	tbl := NewTable[string]()

	h1 := tbl.Insert("first")
	h2 := tbl.Insert("second")
	if h1 == 0 || h2 == 0 {
		t.Fatal("handle 0 is reserved")
	}
	if h1 == h2 {
		t.Fatal("handles must be distinct")
	}

	if v, ok := tbl.Get(h1); !ok || v != "first" {
		t.Errorf("Get(h1) = %q, %v", v, ok)
	}
	if _, ok := tbl.Get(0); ok {
		t.Error("handle 0 resolved")
	}
	if _, ok := tbl.Get(99); ok {
		t.Error("unknown handle resolved")
	}

	if v, ok := tbl.Remove(h2); !ok || v != "second" {
		t.Errorf("Remove(h2) = %q, %v", v, ok)
	}
	if _, ok := tbl.Get(h2); ok {
		t.Error("removed handle still resolves")
	}
	if tbl.Len() != 1 {
		t.Errorf("len = %d", tbl.Len())
	}

	tbl.Clear()
	if tbl.Len() != 0 {
		t.Error("Clear left values behind")
	}
}

func TestTable_HandlesNotReused(t *testing.T) {
	tbl := NewTable[int]()
	h1 := tbl.Insert(1)
	tbl.Remove(h1)
	h2 := tbl.Insert(2)
	if h1 == h2 {
		t.Error("handle reused after removal")
	}
}
