package engine

// GpuContext (C1) owns the one GPU device used for color conversion and
// hardware encode, and the pair of textures allocated once per session and
// reused every frame (§4.1). A session runs at a single resolution for its
// whole life; a resolution change means closing the context and opening a
// fresh one, it never reallocates mid-session.
type GpuContext interface {
	// Init creates the device (if not already created) and allocates
	// GpuTextures: the BGRA staging texture at width x height, the NV12
	// target at width x height rounded up to even dimensions.
	Init(width, height int) (GpuTextures, error)
	// IsHardware reports whether Init produced a real GPU device: true for
	// the Windows D3D11 context, false for the CPU context used on other
	// platforms. The Windows context has no CPU fallback; its Init returns
	// ErrGpuInitFailed when no device can be created.
	IsHardware() bool
	// Close releases the device and both textures. Idempotent.
	Close()
}

// newGpuContext constructs the platform GpuContext. Platform build files
// provide the implementation; see gpucontext_windows.go for the D3D11 path
// and gpucontext_other.go for the CPU fallback used everywhere else.
func newGpuContext() GpuContext {
	return newPlatformGpuContext()
}

// hostBackedTexture is a GPUTexture backed by a plain byte slice, used by
// the CPU fallback GpuContext and by the pure-Go ColorConverter path.
type hostBackedTexture struct {
	Buf []byte
}

func (t *hostBackedTexture) Release() { t.Buf = nil }
