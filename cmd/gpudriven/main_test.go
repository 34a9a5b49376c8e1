package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/dispatch"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/instance"
	"github.com/LeonYuanYao/orillusion-webgpu-samples/engine/renderer"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.config != dispatch.DefaultConfig() {
		t.Errorf("config = %v, want %v", opts.config, dispatch.DefaultConfig())
	}
	if opts.instances != instance.DefaultCount {
		t.Errorf("instances = %d, want %d", opts.instances, instance.DefaultCount)
	}
	if opts.msaa != renderer.MSAA4x {
		t.Errorf("msaa = %d, want %d", opts.msaa, renderer.MSAA4x)
	}
	if opts.logLevel != slog.LevelInfo {
		t.Errorf("logLevel = %v, want %v", opts.logLevel, slog.LevelInfo)
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    dispatch.Config
		wantErr error
	}{
		{
			name: "culling off",
			args: []string{"-culling", "off"},
			want: dispatch.Config{Backend: dispatch.BackendSerial, IndirectDraw: true},
		},
		{
			name: "gpu",
			args: []string{"-culling", "gpu"},
			want: dispatch.Config{CullingEnabled: true, Backend: dispatch.BackendGPU, IndirectDraw: true},
		},
		{
			name: "bulk direct",
			args: []string{"-culling=bulk", "-indirect=false"},
			want: dispatch.Config{CullingEnabled: true, Backend: dispatch.BackendBulk},
		},
		{
			name: "replay without culling",
			args: []string{"-culling", "off", "-indirect=false", "-replay"},
			want: dispatch.Config{Backend: dispatch.BackendSerial, StaticReplay: true},
		},
		{
			name:    "gpu without indirect",
			args:    []string{"-culling", "gpu", "-indirect=false"},
			wantErr: dispatch.ErrGPUCullingNeedsIndirect,
		},
		{
			name:    "replay with host culling and direct draws",
			args:    []string{"-indirect=false", "-replay"},
			wantErr: dispatch.ErrReplayWithCPUSkip,
		},
		{
			name:    "unknown backend",
			args:    []string{"-culling", "octree"},
			wantErr: dispatch.ErrUnknownBackend,
		},
		{
			name:    "bad msaa",
			args:    []string{"-msaa", "3"},
			wantErr: renderer.ErrInvalidSampleCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseFlags() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if opts.config != tt.want {
				t.Errorf("config = %v, want %v", opts.config, tt.want)
			}
		})
	}
}

func TestParseFlagsRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero instances", []string{"-instances", "0"}},
		{"negative period", []string{"-period", "-1"}},
		{"negative workers", []string{"-workers", "-2"}},
		{"zero fov", []string{"-fov", "0"}},
		{"fov past 180", []string{"-fov", "190"}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"stray argument", []string{"extra"}},
		{"unknown flag", []string{"-fast"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args, io.Discard); err == nil {
				t.Errorf("parseFlags(%v) error = nil, want error", tt.args)
			}
		})
	}
}
