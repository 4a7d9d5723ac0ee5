//go:build windows

package engine

import (
	"fmt"
	"syscall"
	"unsafe"
)

// COM vtable calling infrastructure shared by the GPU context, color
// converter, and hardware encoder backend. Same pure-Go syscall pattern the
// teacher package uses for Media Foundation and D3D11 interop — no cgo.

type comGUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// comCall invokes a COM vtable method at the given index. obj is a pointer
// to a COM interface (pointer to pointer to vtable).
func comCall(obj uintptr, vtableIdx int, args ...uintptr) (uintptr, error) {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	fnPtr := *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(vtableIdx)*unsafe.Sizeof(uintptr(0))))

	allArgs := make([]uintptr, 0, 1+len(args))
	allArgs = append(allArgs, obj)
	allArgs = append(allArgs, args...)
	ret, _, _ := syscall.SyscallN(fnPtr, allArgs...)

	if int32(ret) < 0 {
		return ret, fmt.Errorf("COM vtable[%d] HRESULT 0x%08X", vtableIdx, uint32(ret))
	}
	return ret, nil
}

// comVtblFn resolves a vtable slot to a raw function pointer for direct
// syscall.SyscallN use when the caller needs the raw HRESULT (not wrapped
// into an error), e.g. on a hot per-frame path.
func comVtblFn(obj uintptr, vtableIdx int) uintptr {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(vtableIdx)*unsafe.Sizeof(uintptr(0))))
}

// comRelease calls IUnknown::Release (vtable index 2). It is the caller's
// responsibility to call this for every COM object it acquires — this is
// the mechanism ColorConverter.Convert uses to release its per-call input
// and output views before returning, per the no-leak invariant.
func comRelease(obj uintptr) {
	if obj != 0 {
		fn := comVtblFn(obj, 2)
		syscall.SyscallN(fn, obj)
	}
}

var (
	d3d11DLL = syscall.NewLazyDLL("d3d11.dll")

	procD3D11CreateDevice = d3d11DLL.NewProc("D3D11CreateDevice")
)

const (
	d3dDriverTypeHardware = 1

	d3d11CreateDeviceBGRASupport      = 0x20
	d3d11CreateDeviceVideoSupport     = 0x800
	d3d11CreateDeviceSingleThreaded   = 0x1
	// Multi-thread protection is the default for a device created without
	// D3D11_CREATE_DEVICE_SINGLETHREADED — GpuContext relies on that default
	// because the converter and the hardware encoder issue commands from
	// different goroutines (§5).

	dxgiFormatNV12        = 103
	dxgiFormatB8G8R8A8UNorm = 87

	d3d11BindRenderTarget  = 0x20
	d3d11BindVideoEncoder  = 0x200
	d3d11UsageDefault      = 0
	d3d11UsageStaging      = 3
	d3d11CPUAccessRead     = 0x20000
)

var (
	iidID3D11Device        = comGUID{0xdb6f6ddb, 0xac77, 0x4e88, [8]byte{0x82, 0x53, 0x81, 0x9d, 0xf9, 0xbb, 0xf1, 0x40}}
	iidID3D11DeviceContext = comGUID{0xc0bfa96c, 0xe089, 0x44fb, [8]byte{0x8e, 0xaf, 0x26, 0xf8, 0x79, 0x61, 0x90, 0xda}}
	iidID3D11VideoDevice   = comGUID{0x10ec4d5b, 0x975a, 0x4689, [8]byte{0xb9, 0xe4, 0xd0, 0xaa, 0xc3, 0x0f, 0xe3, 0x33}}
	iidID3D11VideoContext  = comGUID{0x61f21c45, 0x3c0e, 0x4a74, [8]byte{0x9c, 0xea, 0x67, 0x10, 0x0d, 0x9a, 0xd5, 0xe4}}
	iidID3D11Texture2D     = comGUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
)

// d3d11Texture2DDesc matches D3D11_TEXTURE2D_DESC.
type d3d11Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32
	SampleQuality  uint32
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// vtable offsets, fixed by the COM ABI.
const (
	vtblQueryInterface = 0

	// ID3D11Device (IUnknown 0-2)
	d3d11DeviceCreateTexture2D = 5

	// ID3D11DeviceContext
	d3d11CtxMap               = 14
	d3d11CtxUnmap             = 15
	d3d11CtxCopyResource      = 47
	d3d11CtxUpdateSubresource = 48

	// ID3D11VideoDevice
	vtblVidDevCreateVideoProcessor           = 4
	vtblVidDevCreateVideoProcessorInputView  = 8
	vtblVidDevCreateVideoProcessorOutputView = 9
	vtblVidDevCreateVideoProcessorEnumerator = 10

	// ID3D11VideoContext
	vtblVidCtxVideoProcessorBlt = 53
)

// d3d11VideoProcessorContentDesc matches D3D11_VIDEO_PROCESSOR_CONTENT_DESC.
type d3d11VideoProcessorContentDesc struct {
	InputFrameFormat uint32
	InputFrameRateN  uint32
	InputFrameRateD  uint32
	InputWidth       uint32
	InputHeight      uint32
	OutputFrameRateN uint32
	OutputFrameRateD uint32
	OutputWidth      uint32
	OutputHeight     uint32
	Usage            uint32
}

// d3d11VideoProcessorStream matches D3D11_VIDEO_PROCESSOR_STREAM.
type d3d11VideoProcessorStream struct {
	Enable                int32
	OutputIndex           uint32
	InputFrameOrField     uint32
	PastFrames            uint32
	FutureFrames          uint32
	PPastSurfaces         uintptr
	PInputSurface         uintptr
	PPFutureSurfaces      uintptr
	PPPastSurfacesRight   uintptr
	PInputSurfaceRight    uintptr
	PPFutureSurfacesRight uintptr
}
