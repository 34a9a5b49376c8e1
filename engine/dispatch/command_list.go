package dispatch

import (
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
)

// Submitter receives draw calls for the current render pass.
type Submitter interface {
	// BindInstance selects the model-data record used by the next draw.
	//
	// Parameters:
	//   - i: the instance index
	BindInstance(i uint32)

	// DrawIndexed issues a direct indexed draw with the arguments of cmd.
	//
	// Parameters:
	//   - cmd: the draw arguments
	DrawIndexed(cmd indirect.Command)

	// DrawIndexedIndirect issues an indexed draw whose arguments live in the indirect buffer.
	//
	// Parameters:
	//   - offset: byte offset of the record in the indirect buffer
	DrawIndexedIndirect(offset uint64)
}

type opKind uint8

const (
	opBind opKind = iota
	opDrawIndexed
	opDrawIndirect
)

type op struct {
	kind   opKind
	index  uint32
	offset uint64
	cmd    indirect.Command
}

// CommandList is a recorded sequence of submitter calls that can be replayed verbatim.
// It implements Submitter so it can stand in for the real one while recording.
type CommandList struct {
	ops   []op
	draws int
}

var _ Submitter = &CommandList{}

// BindInstance records a bind call.
func (l *CommandList) BindInstance(i uint32) {
	l.ops = append(l.ops, op{kind: opBind, index: i})
}

// DrawIndexed records a direct draw.
func (l *CommandList) DrawIndexed(cmd indirect.Command) {
	l.ops = append(l.ops, op{kind: opDrawIndexed, cmd: cmd})
	l.draws++
}

// DrawIndexedIndirect records an indirect draw.
func (l *CommandList) DrawIndexedIndirect(offset uint64) {
	l.ops = append(l.ops, op{kind: opDrawIndirect, offset: offset})
	l.draws++
}

// Len returns the number of recorded calls.
func (l *CommandList) Len() int {
	return len(l.ops)
}

// Draws returns the number of recorded draw calls.
func (l *CommandList) Draws() int {
	return l.draws
}

// Reset empties the list, keeping its storage.
func (l *CommandList) Reset() {
	l.ops = l.ops[:0]
	l.draws = 0
}

// Replay issues every recorded call to sub in order.
//
// Parameters:
//   - sub: the submitter receiving the calls
//
// Returns:
//   - int: the number of draw calls issued
func (l *CommandList) Replay(sub Submitter) int {
	for i := range l.ops {
		o := &l.ops[i]
		switch o.kind {
		case opBind:
			sub.BindInstance(o.index)
		case opDrawIndexed:
			sub.DrawIndexed(o.cmd)
		case opDrawIndirect:
			sub.DrawIndexedIndirect(o.offset)
		}
	}
	return l.draws
}
