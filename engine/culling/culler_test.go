package culling

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/indirect"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
	"github.com/go-gl/mathgl/mgl32"
)

func scenarioStore() instance.Store {
	one := mgl32.Vec3{1, 1, 1}
	return instance.NewStore(instance.WithInstances([]instance.Instance{
		instance.New(0, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}, one, mgl32.Vec3{}),
		instance.New(1, mgl32.Vec3{0, 0, -5000}, mgl32.Vec3{}, one, mgl32.Vec3{}),
		instance.New(2, mgl32.Vec3{100000, 0, -5}, mgl32.Vec3{}, one, mgl32.Vec3{}),
	}))
}

func scenarioFrustum() common.Frustum {
	return common.FrustumFromMatrix(common.Perspective(60, 1, 0.1, 1000))
}

func TestCullersScenario(t *testing.T) {
	tests := []struct {
		name   string
		culler Culler
		want   []uint32
	}{
		{"serial", NewSerial(), []uint32{1, 0, 0}},
		{"bulk", NewBulk(WithWorkers(2), WithChunkSize(1)), []uint32{1, 0, 0}},
		{"disabled", NewDisabled(), []uint32{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := scenarioStore()
			table := indirect.NewTable(store.Len(), 36)
			if err := tt.culler.Cull(store, table, scenarioFrustum(), 0); err != nil {
				t.Fatalf("Cull() error = %v", err)
			}
			if got := table.InstanceCounts(); !slices.Equal(got, tt.want) {
				t.Errorf("InstanceCounts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSerialAndBulkAgree(t *testing.T) {
	view := common.ViewMatrix(mgl32.Vec3{4, -2, 15}, mgl32.Vec3{0.1, 0.35, 0})
	frustum := common.FrustumFromMatrix(common.Perspective(50, 16.0/9.0, 0.1, 120).Mul4(view))

	serialStore := instance.NewStore(instance.WithCount(5000), instance.WithSeed(7))
	bulkStore := instance.NewStore(instance.WithCount(5000), instance.WithSeed(7))
	serialTable := indirect.NewTable(serialStore.Len(), 36)
	bulkTable := indirect.NewTable(bulkStore.Len(), 36)

	serial := NewSerial()
	bulk := NewBulk(WithWorkers(4), WithChunkSize(333))

	for frame := range 5 {
		ts := float64(frame) * 0.75
		if err := serial.Cull(serialStore, serialTable, frustum, ts); err != nil {
			t.Fatalf("serial Cull() error = %v", err)
		}
		if err := bulk.Cull(bulkStore, bulkTable, frustum, ts); err != nil {
			t.Fatalf("bulk Cull() error = %v", err)
		}
		if !slices.Equal(serialTable.InstanceCounts(), bulkTable.InstanceCounts()) {
			t.Fatalf("frame %d: serial and bulk InstanceCounts() differ", frame)
		}
		for i := range serialStore.Len() {
			if serialStore.At(i) != bulkStore.At(i) {
				t.Fatalf("frame %d: instance %d differs between serial and bulk", frame, i)
			}
		}
	}
	if v := serialTable.VisibleCount(); v == 0 || v == serialTable.Len() {
		t.Errorf("VisibleCount() = %d, want a partial view of the population", v)
	}
}

func TestCullAdvancesAnimation(t *testing.T) {
	for _, c := range []struct {
		name   string
		culler Culler
	}{
		{"serial", NewSerial()},
		{"bulk", NewBulk(WithWorkers(2))},
		{"disabled", NewDisabled()},
		{"gpu", NewGPU(&fakeEncoder{})},
	} {
		t.Run(c.name, func(t *testing.T) {
			store := instance.NewStore(instance.WithCount(10))
			before := store.Snapshot()
			table := indirect.NewTable(store.Len(), 36)
			if err := c.culler.Cull(store, table, scenarioFrustum(), 2.5); err != nil {
				t.Fatalf("Cull() error = %v", err)
			}
			for i, inst := range before {
				if want := instance.Advance(inst, 2.5, store.Period()); store.At(i) != want {
					t.Fatalf("At(%d) = %v, want %v", i, store.At(i), want)
				}
			}
		})
	}
}

func TestCullSizeMismatch(t *testing.T) {
	store := scenarioStore()
	table := indirect.NewTable(2, 36)
	for _, c := range []Culler{NewSerial(), NewBulk(), NewDisabled(), NewGPU(&fakeEncoder{})} {
		if err := c.Cull(store, table, scenarioFrustum(), 0); !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("%T.Cull() error = %v, want ErrSizeMismatch", c, err)
		}
	}
}

type fakeEncoder struct {
	globals   []byte
	calls     []Kernel
	groups    []uint32
	failAfter int
}

func (f *fakeEncoder) WriteGlobals(data []byte) error {
	f.globals = data
	return nil
}

func (f *fakeEncoder) Dispatch(k Kernel, workgroups uint32) error {
	if f.failAfter > 0 && len(f.calls) >= f.failAfter {
		return errors.New("no frame open")
	}
	f.calls = append(f.calls, k)
	f.groups = append(f.groups, workgroups)
	return nil
}

func TestGPUCullerEncodesUpdateThenCull(t *testing.T) {
	store := instance.NewStore(instance.WithCount(130), instance.WithPeriod(2))
	table := indirect.NewTable(store.Len(), 36)
	before := store.Snapshot()
	enc := &fakeEncoder{}
	frustum := scenarioFrustum()

	if err := NewGPU(enc).Cull(store, table, frustum, 3.5); err != nil {
		t.Fatalf("Cull() error = %v", err)
	}

	if !slices.Equal(enc.calls, []Kernel{KernelUpdate, KernelCull}) {
		t.Errorf("dispatch order = %v, want [update cull]", enc.calls)
	}
	if !slices.Equal(enc.groups, []uint32{3, 3}) {
		t.Errorf("workgroups = %v, want [3 3]", enc.groups)
	}

	if len(enc.globals) != 112 {
		t.Fatalf("len(globals) = %d, want 112", len(enc.globals))
	}
	if got := binary.LittleEndian.Uint32(enc.globals[0:]); got != 130 {
		t.Errorf("globals.instance_count = %d, want 130", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(enc.globals[4:])); got != 3.5 {
		t.Errorf("globals.time = %v, want 3.5", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(enc.globals[8:])); got != 2 {
		t.Errorf("globals.period = %v, want 2", got)
	}
	planes := frustum.MarshalPlanes()
	if !bytes.Equal(enc.globals[16:], planes) {
		t.Errorf("globals.planes differ from MarshalPlanes()")
	}

	// The host store mirrors the update kernel; visibility stays on the device.
	for i, inst := range before {
		if want := instance.Advance(inst, 3.5, store.Period()); store.At(i) != want {
			t.Fatalf("At(%d) = %v, want %v", i, store.At(i), want)
		}
	}
	if table.VisibleCount() != table.Len() {
		t.Errorf("table was modified on the host")
	}
}

func TestGPUCullerKeepsHostInStep(t *testing.T) {
	start := instance.New(0, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0})
	store := instance.NewStore(instance.WithInstances([]instance.Instance{start}), instance.WithPeriod(10))
	table := indirect.NewTable(store.Len(), 36)
	gpu := NewGPU(&fakeEncoder{})
	serial := NewSerial()

	for frame := range 5 {
		if err := gpu.Cull(store, table, scenarioFrustum(), float64(frame)); err != nil {
			t.Fatalf("gpu Cull() error = %v", err)
		}
	}
	if err := serial.Cull(store, table, scenarioFrustum(), 5); err != nil {
		t.Fatalf("serial Cull() error = %v", err)
	}
	if got := store.At(0).Position.X(); got != 6 {
		t.Errorf("Position.X() after 5 gpu frames and 1 serial frame = %v, want 6", got)
	}
}

func TestGPUCullerDispatchError(t *testing.T) {
	store := instance.NewStore(instance.WithCount(4))
	table := indirect.NewTable(store.Len(), 36)
	err := NewGPU(&fakeEncoder{failAfter: 1}).Cull(store, table, scenarioFrustum(), 0)
	if err == nil {
		t.Fatalf("Cull() error = nil, want dispatch failure")
	}
}

func TestKernelSourceDefinesEntryPoints(t *testing.T) {
	src := KernelSource()
	for _, want := range []string{"@gd:include model_data", "@gd:include indirect_command", "@gd:include globals", "fn update(", "fn cull("} {
		if !strings.Contains(src, want) {
			t.Errorf("KernelSource() missing %q", want)
		}
	}
	if KernelUpdate.EntryPoint() != "update" || KernelCull.EntryPoint() != "cull" {
		t.Errorf("EntryPoint() = %q, %q, want update, cull", KernelUpdate.EntryPoint(), KernelCull.EntryPoint())
	}
}
