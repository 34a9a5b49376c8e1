package indirect

import (
	"encoding/binary"
	"math/bits"
)

// Write is a contiguous run of changed records ready for a partial buffer upload.
type Write struct {
	Offset uint64
	Data   []byte
}

type tableImpl struct {
	template Command
	counts   []uint32

	// data mirrors the GPU indirect buffer byte for byte.
	data []byte

	// 1 bit per record; word = index/64, bit = index%64
	dirty      []uint64
	dirtyCount int
	visible    int
}

// Table is the indirect command table: one draw record per instance, filled once at
// construction. Only InstanceCount ever changes afterwards.
//
// A Table is not safe for concurrent use.
type Table interface {
	// Len returns the number of records.
	//
	// Returns:
	//   - int: the record count
	Len() int

	// SetVisible sets the InstanceCount of record i to 1 or 0.
	//
	// Parameters:
	//   - i: the record index
	//   - visible: whether the instance is drawn
	SetVisible(i int, visible bool)

	// ForceAllVisible sets every InstanceCount to 1.
	ForceAllVisible()

	// InstanceCounts returns a copy of every InstanceCount in index order.
	//
	// Returns:
	//   - []uint32: the visibility flags
	InstanceCounts() []uint32

	// VisibleCount returns how many records currently have InstanceCount 1.
	//
	// Returns:
	//   - int: the visible record count
	VisibleCount() int

	// Command returns record i.
	//
	// Parameters:
	//   - i: the record index
	//
	// Returns:
	//   - Command: the draw record
	Command(i int) Command

	// Offset returns the byte offset of record i in the indirect buffer.
	//
	// Parameters:
	//   - i: the record index
	//
	// Returns:
	//   - uint64: i * 20
	Offset(i int) uint64

	// Marshal returns the whole table as Len()*20 little-endian bytes.
	// The returned slice is owned by the table and changes with it.
	//
	// Returns:
	//   - []byte: the serialized table
	Marshal() []byte

	// MarkAllDirty schedules every record for upload on the next Flush.
	MarkAllDirty()

	// Flush returns the records changed since the last Flush, coalesced into contiguous runs
	// in ascending offset order, and clears the dirty state.
	//
	// Returns:
	//   - []Write: the pending uploads, nil when nothing changed
	Flush() []Write
}

var _ Table = &tableImpl{}

// NewTable creates a table of n records drawing indexCount indices each. Every record starts
// visible and dirty, so the first Flush uploads the whole table.
//
// Parameters:
//   - n: the number of records
//   - indexCount: the index count of the shared mesh
//   - options: functional options for the fixed record fields
//
// Returns:
//   - Table: the filled table
func NewTable(n int, indexCount uint32, options ...TableBuilderOption) Table {
	t := &tableImpl{
		template: Command{IndexCount: indexCount, InstanceCount: 1},
	}
	for _, option := range options {
		option(t)
	}
	t.template.InstanceCount = 1

	n = max(n, 0)
	t.counts = make([]uint32, n)
	t.data = make([]byte, n*CommandStride)
	t.dirty = make([]uint64, (n+63)/64)
	for i := range n {
		t.counts[i] = 1
		t.template.MarshalInto(t.data[i*CommandStride:])
	}
	t.visible = n
	t.MarkAllDirty()
	return t
}

func (t *tableImpl) Len() int {
	return len(t.counts)
}

func (t *tableImpl) SetVisible(i int, visible bool) {
	var v uint32
	if visible {
		v = 1
	}
	if t.counts[i] == v {
		return
	}
	t.counts[i] = v
	if visible {
		t.visible++
	} else {
		t.visible--
	}
	binary.LittleEndian.PutUint32(t.data[i*CommandStride+4:], v)
	t.markDirty(i)
}

func (t *tableImpl) ForceAllVisible() {
	if t.visible == len(t.counts) {
		return
	}
	for i := range t.counts {
		t.SetVisible(i, true)
	}
}

func (t *tableImpl) InstanceCounts() []uint32 {
	out := make([]uint32, len(t.counts))
	copy(out, t.counts)
	return out
}

func (t *tableImpl) VisibleCount() int {
	return t.visible
}

func (t *tableImpl) Command(i int) Command {
	c := t.template
	c.InstanceCount = t.counts[i]
	return c
}

func (t *tableImpl) Offset(i int) uint64 {
	return uint64(i) * CommandStride
}

func (t *tableImpl) Marshal() []byte {
	return t.data
}

func (t *tableImpl) MarkAllDirty() {
	n := len(t.counts)
	for w := range t.dirty {
		t.dirty[w] = ^uint64(0)
	}
	if r := n % 64; r != 0 {
		t.dirty[len(t.dirty)-1] = (uint64(1) << r) - 1
	}
	t.dirtyCount = n
}

func (t *tableImpl) Flush() []Write {
	if t.dirtyCount == 0 {
		return nil
	}

	var writes []Write
	runStart, runEnd := -1, -1
	for w, word := range t.dirty {
		for word != 0 {
			idx := w*64 + bits.TrailingZeros64(word)
			word &= word - 1
			if idx == runEnd {
				runEnd++
				continue
			}
			if runStart >= 0 {
				writes = append(writes, t.run(runStart, runEnd))
			}
			runStart, runEnd = idx, idx+1
		}
		t.dirty[w] = 0
	}
	if runStart >= 0 {
		writes = append(writes, t.run(runStart, runEnd))
	}
	t.dirtyCount = 0
	return writes
}

// run returns the upload covering records [start, end).
func (t *tableImpl) run(start, end int) Write {
	return Write{
		Offset: t.Offset(start),
		Data:   t.data[start*CommandStride : end*CommandStride],
	}
}

// markDirty adds a record index to the dirty set if not already present.
func (t *tableImpl) markDirty(i int) {
	word := i / 64
	bit := uint64(1) << (i % 64)
	if t.dirty[word]&bit != 0 {
		return
	}
	t.dirty[word] |= bit
	t.dirtyCount++
}
