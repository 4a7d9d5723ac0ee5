//go:build !windows

package engine

import "testing"

func TestCpuGpuContext_InitRoundsDimensionsUpToEven(t *testing.T) {
	c := &cpuGpuContext{}
	tex, err := c.Init(3, 5)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if tex.NV12Width != 4 || tex.NV12Height != 6 {
		t.Fatalf("NV12 dims = %dx%d, want 4x6", tex.NV12Width, tex.NV12Height)
	}
	if tex.BGRAStaging == nil || tex.NV12Target == nil {
		t.Fatal("Init must allocate both textures")
	}
}

func TestCpuGpuContext_IsHardwareFalse(t *testing.T) {
	c := &cpuGpuContext{}
	if c.IsHardware() {
		t.Fatal("the CPU fallback context must never report hardware")
	}
}

func TestCpuGpuContext_CloseIsSafeWithoutInit(t *testing.T) {
	c := &cpuGpuContext{}
	c.Close() // must not panic
}

func TestCpuGpuContext_StagingBufferSizedForSourceResolution(t *testing.T) {
	c := &cpuGpuContext{}
	tex, err := c.Init(10, 20)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	staged, ok := tex.BGRAStaging.(*hostBackedTexture)
	if !ok {
		t.Fatal("BGRAStaging is not host-backed")
	}
	if len(staged.Buf) != 10*20*4 {
		t.Fatalf("staging buffer = %d bytes, want %d", len(staged.Buf), 10*20*4)
	}
}

func TestHostBackedTexture_ReleaseClearsBuffer(t *testing.T) {
	tex := &hostBackedTexture{Buf: []byte{1, 2, 3}}
	tex.Release()
	if tex.Buf != nil {
		t.Fatal("Release should clear the backing buffer")
	}
}
