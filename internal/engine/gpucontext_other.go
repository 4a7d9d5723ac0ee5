//go:build !windows

package engine

// cpuGpuContext is the degrade path used on every non-Windows build
// target. It hands ColorConverter and VideoEncoder plain
// host buffers instead of GPU surfaces; per §9's redesign note this engine
// treats that as a normal operating mode, not a startup failure, as long as
// the pipeline still meets its frame budget on CPU alone.
type cpuGpuContext struct {
	staging bgraStagingPool
	nv12    nv12BufferPool
	w, h    int
}

func newPlatformGpuContext() GpuContext {
	return &cpuGpuContext{}
}

func (c *cpuGpuContext) Init(width, height int) (GpuTextures, error) {
	c.w, c.h = width, height
	nv12W, nv12H := RoundUpEven(width), RoundUpEven(height)
	return GpuTextures{
		BGRAStaging: &hostBackedTexture{Buf: c.staging.Get(width, height)},
		NV12Target:  &hostBackedTexture{Buf: c.nv12.Get(nv12W, nv12H)},
		NV12Width:   nv12W,
		NV12Height:  nv12H,
	}, nil
}

func (c *cpuGpuContext) IsHardware() bool { return false }

func (c *cpuGpuContext) Close() {}
