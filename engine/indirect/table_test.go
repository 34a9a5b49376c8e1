package indirect

import (
	"bytes"
	"encoding/binary"
	"slices"
	"testing"
)

func TestCommandLayout(t *testing.T) {
	c := Command{IndexCount: 36, InstanceCount: 1, FirstIndex: 6, BaseVertex: -4, FirstInstance: 2}
	if got := c.Size(); got != CommandStride {
		t.Fatalf("Size() = %d, want %d", got, CommandStride)
	}
	buf := c.Marshal()
	want := []uint32{36, 1, 6, uint32(0xfffffffc), 2}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(buf[i*4:]); got != w {
			t.Errorf("word %d = %#x, want %#x", i, got, w)
		}
	}
	if got := UnmarshalCommand(buf); got != c {
		t.Errorf("UnmarshalCommand() = %+v, want %+v", got, c)
	}
}

func TestNewTableFillsEveryRecord(t *testing.T) {
	tbl := NewTable(5, 36, WithFirstIndex(3), WithBaseVertex(1))

	if tbl.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", tbl.Len())
	}
	if tbl.VisibleCount() != 5 {
		t.Errorf("VisibleCount() = %d, want 5", tbl.VisibleCount())
	}
	want := Command{IndexCount: 36, InstanceCount: 1, FirstIndex: 3, BaseVertex: 1}
	data := tbl.Marshal()
	if len(data) != 5*CommandStride {
		t.Fatalf("len(Marshal()) = %d, want %d", len(data), 5*CommandStride)
	}
	for i := range tbl.Len() {
		if got := tbl.Command(i); got != want {
			t.Errorf("Command(%d) = %+v, want %+v", i, got, want)
		}
		if got := UnmarshalCommand(data[tbl.Offset(i):]); got != want {
			t.Errorf("Marshal() record %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestSetVisibleOnlyTouchesInstanceCount(t *testing.T) {
	tbl := NewTable(4, 36, WithFirstIndex(9))
	before := bytes.Clone(tbl.Marshal())

	tbl.SetVisible(2, false)

	after := tbl.Marshal()
	for i := range after {
		inCount := i >= 2*CommandStride+4 && i < 2*CommandStride+8
		if !inCount && after[i] != before[i] {
			t.Fatalf("byte %d changed from %#x to %#x", i, before[i], after[i])
		}
	}
	if got := tbl.Command(2).InstanceCount; got != 0 {
		t.Errorf("Command(2).InstanceCount = %d, want 0", got)
	}
	if got := tbl.InstanceCounts(); !slices.Equal(got, []uint32{1, 1, 0, 1}) {
		t.Errorf("InstanceCounts() = %v, want [1 1 0 1]", got)
	}
	if got := tbl.VisibleCount(); got != 3 {
		t.Errorf("VisibleCount() = %d, want 3", got)
	}
}

func TestForceAllVisible(t *testing.T) {
	tbl := NewTable(70, 36)
	for i := range 70 {
		tbl.SetVisible(i, i%3 == 0)
	}
	tbl.ForceAllVisible()
	for i, c := range tbl.InstanceCounts() {
		if c != 1 {
			t.Fatalf("InstanceCounts()[%d] = %d, want 1", i, c)
		}
	}
	if tbl.VisibleCount() != 70 {
		t.Errorf("VisibleCount() = %d, want 70", tbl.VisibleCount())
	}
}

func TestFlush(t *testing.T) {
	tbl := NewTable(130, 36)

	initial := tbl.Flush()
	if len(initial) != 1 || initial[0].Offset != 0 || len(initial[0].Data) != 130*CommandStride {
		t.Fatalf("first Flush() = %d writes, want one full-table write", len(initial))
	}
	if got := tbl.Flush(); got != nil {
		t.Fatalf("Flush() with nothing dirty = %v, want nil", got)
	}

	// 63 and 64 straddle a bitset word and must coalesce into one run.
	for _, i := range []int{5, 6, 7, 63, 64, 129} {
		tbl.SetVisible(i, false)
	}
	tbl.SetVisible(100, true) // unchanged, not dirty

	writes := tbl.Flush()
	want := []struct {
		offset  uint64
		records int
	}{
		{5 * CommandStride, 3},
		{63 * CommandStride, 2},
		{129 * CommandStride, 1},
	}
	if len(writes) != len(want) {
		t.Fatalf("Flush() = %d writes, want %d", len(writes), len(want))
	}
	for i, w := range want {
		if writes[i].Offset != w.offset {
			t.Errorf("writes[%d].Offset = %d, want %d", i, writes[i].Offset, w.offset)
		}
		if got := len(writes[i].Data) / CommandStride; got != w.records {
			t.Errorf("writes[%d] covers %d records, want %d", i, got, w.records)
		}
		if got := UnmarshalCommand(writes[i].Data).InstanceCount; got != 0 {
			t.Errorf("writes[%d] InstanceCount = %d, want 0", i, got)
		}
	}
}

func TestMarkAllDirty(t *testing.T) {
	tbl := NewTable(3, 36)
	tbl.Flush()
	tbl.MarkAllDirty()
	writes := tbl.Flush()
	if len(writes) != 1 || len(writes[0].Data) != 3*CommandStride {
		t.Errorf("Flush() after MarkAllDirty = %v, want one full-table write", writes)
	}
}
