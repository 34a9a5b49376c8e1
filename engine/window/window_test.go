package window

import (
	"testing"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/common"
)

func TestNewEngineWindowSize(t *testing.T) {
	tests := []struct {
		name       string
		opts       []WindowBuilderOption
		wantWidth  int
		wantHeight int
	}{
		{"defaults", nil, 1280, 720},
		{"explicit", []WindowBuilderOption{WithSize(800, 600)}, 800, 600},
		{"below min", []WindowBuilderOption{WithSize(10, 10)}, 320, 240},
		{"above max", []WindowBuilderOption{WithSize(1000, 1000), WithMaxSize(900, 500)}, 900, 500},
		{"custom min", []WindowBuilderOption{WithSize(100, 100), WithMinSize(200, 150)}, 200, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEngineWindow(tt.opts...)
			if w.Width() != tt.wantWidth || w.Height() != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", w.Width(), w.Height(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestKeyEventRouting(t *testing.T) {
	w := newEngineWindow(WithTitle("test"))
	var down, up []uint32
	closes := 0
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })
	w.SetCloseCallback(func() { closes++ })

	if w.keyEvent(common.KeyW, true) {
		t.Error("W press requested close")
	}
	w.keyEvent(common.KeyW, false)
	w.keyEvent(common.KeyC, true)

	if len(down) != 2 || down[0] != common.KeyW || down[1] != common.KeyC {
		t.Errorf("down = %v, want [W C]", down)
	}
	if len(up) != 1 || up[0] != common.KeyW {
		t.Errorf("up = %v, want [W]", up)
	}

	if w.keyEvent(common.KeyEsc, false) {
		t.Error("Escape release requested close")
	}
	if !w.keyEvent(common.KeyEsc, true) {
		t.Error("Escape press did not request close")
	}
	w.keyEvent(common.KeyEsc, true)
	if closes != 1 {
		t.Errorf("close callback ran %d times, want 1", closes)
	}
	if len(down) != 2 {
		t.Errorf("Escape reached the key down callback: %v", down)
	}
}

func TestResizeEvent(t *testing.T) {
	w := newEngineWindow()
	var gotW, gotH int
	w.SetResizeCallback(func(width, height int) { gotW, gotH = width, height })
	w.resizeEvent(640, 480)
	if gotW != 640 || gotH != 480 {
		t.Errorf("callback got %dx%d, want 640x480", gotW, gotH)
	}
	if w.Width() != 640 || w.Height() != 480 {
		t.Errorf("stored size = %dx%d, want 640x480", w.Width(), w.Height())
	}
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()
	if w.IsRunning() {
		t.Error("IsRunning() = true before the platform window exists")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("SurfaceDescriptor() != nil before the platform window exists")
	}
	if err := w.Close(); err == nil {
		t.Error("Close() = nil, want error")
	}
}
