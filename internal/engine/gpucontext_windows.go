//go:build windows

package engine

import (
	"fmt"
	"log/slog"
	"unsafe"
)

// d3d11GpuContext is the hardware GpuContext. It owns the ID3D11Device,
// ID3D11DeviceContext, and the video-device/video-context interfaces
// ColorConverter and the MFT hardware encoder both need — they recover
// those interfaces by type-asserting the GpuContext to *d3d11GpuContext and
// reading its fields rather than through the public GpuContext interface, since no other platform
// has an equivalent.
type d3d11GpuContext struct {
	device        uintptr
	deviceCtx     uintptr
	videoDevice   uintptr
	videoContext  uintptr

	// deviceManager is an IMFDXGIDeviceManager bound to device. The hardware
	// MFT backend sends it to the transform via MFT_MESSAGE_SET_D3D_MANAGER
	// so ProcessInput can take DXGI surface samples directly instead of a
	// host-memory round trip. Zero if MFCreateDXGIDeviceManager or
	// ResetDevice failed; the encoder falls back to host-resident NV12 in
	// that case.
	deviceManager uintptr
	resetToken    uint32

	stagingTex uintptr
	nv12Tex    uintptr

	w, h         int
	nv12W, nv12H int
}

func newPlatformGpuContext() GpuContext {
	return &d3d11GpuContext{}
}

func (c *d3d11GpuContext) Init(width, height int) (GpuTextures, error) {
	if c.device == 0 {
		if err := c.createDevice(); err != nil {
			return GpuTextures{}, fmt.Errorf("%w: %v", ErrGpuInitFailed, err)
		}
	}

	c.w, c.h = width, height
	c.nv12W, c.nv12H = RoundUpEven(width), RoundUpEven(height)

	staging, err := c.createTexture2D(uint32(width), uint32(height), dxgiFormatB8G8R8A8UNorm,
		d3d11BindRenderTarget, d3d11UsageDefault, 0)
	if err != nil {
		return GpuTextures{}, fmt.Errorf("%w: staging texture: %v", ErrTextureCreationFailed, err)
	}
	c.stagingTex = staging

	nv12, err := c.createTexture2D(uint32(c.nv12W), uint32(c.nv12H), dxgiFormatNV12,
		d3d11BindVideoEncoder, d3d11UsageDefault, 0)
	if err != nil {
		comRelease(staging)
		return GpuTextures{}, fmt.Errorf("%w: nv12 texture: %v", ErrTextureCreationFailed, err)
	}
	c.nv12Tex = nv12

	return GpuTextures{
		BGRAStaging: &d3d11Texture{handle: staging},
		NV12Target:  &d3d11Texture{handle: nv12},
		NV12Width:   c.nv12W,
		NV12Height:  c.nv12H,
	}, nil
}

func (c *d3d11GpuContext) IsHardware() bool { return c.device != 0 }

func (c *d3d11GpuContext) Close() {
	comRelease(c.stagingTex)
	comRelease(c.nv12Tex)
	comRelease(c.deviceManager)
	comRelease(c.videoContext)
	comRelease(c.videoDevice)
	comRelease(c.deviceCtx)
	comRelease(c.device)
	c.stagingTex, c.nv12Tex, c.deviceManager, c.videoContext, c.videoDevice, c.deviceCtx, c.device = 0, 0, 0, 0, 0, 0, 0
}

// createDevice creates a single-adapter hardware D3D11 device with BGRA and
// video support, then recovers the ID3D11VideoDevice/ID3D11VideoContext
// interfaces the converter and hardware encoder need. Multithread
// protection is the default D3D11CreateDevice grants when
// D3D11_CREATE_DEVICE_SINGLETHREADED is not requested, which is required
// here since T_encode_publish and the hardware encoder's worker thread both
// issue device-context calls (§5).
func (c *d3d11GpuContext) createDevice() error {
	flags := uint32(d3d11CreateDeviceBGRASupport | d3d11CreateDeviceVideoSupport)
	var device, deviceCtx uintptr

	ret, _, _ := procD3D11CreateDevice.Call(
		0, // default adapter
		uintptr(d3dDriverTypeHardware),
		0,
		uintptr(flags),
		0, 0, // default feature levels
		7, // D3D11_SDK_VERSION
		uintptr(unsafe.Pointer(&device)),
		0,
		uintptr(unsafe.Pointer(&deviceCtx)),
	)
	if int32(ret) < 0 {
		return fmt.Errorf("D3D11CreateDevice HRESULT 0x%08X", uint32(ret))
	}
	c.device, c.deviceCtx = device, deviceCtx

	var videoDevice uintptr
	if _, err := comCall(c.device, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidID3D11VideoDevice)), uintptr(unsafe.Pointer(&videoDevice))); err != nil {
		return fmt.Errorf("query ID3D11VideoDevice: %w", err)
	}
	c.videoDevice = videoDevice

	var videoContext uintptr
	if _, err := comCall(c.deviceCtx, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidID3D11VideoContext)), uintptr(unsafe.Pointer(&videoContext))); err != nil {
		comRelease(videoDevice)
		return fmt.Errorf("query ID3D11VideoContext: %w", err)
	}
	c.videoContext = videoContext

	c.createDeviceManager()

	return nil
}

// createDeviceManager binds device to a fresh IMFDXGIDeviceManager so the
// hardware MFT backend can encode straight from this context's DXGI
// surfaces. Failure here is non-fatal to GpuContext.Init — the encoder still
// works, just by reading NV12 bytes back to host memory first — so errors
// are logged rather than propagated.
func (c *d3d11GpuContext) createDeviceManager() {
	var resetToken uint32
	var mgr uintptr
	hr, _, _ := procMFCreateDXGIDeviceManager.Call(uintptr(unsafe.Pointer(&resetToken)), uintptr(unsafe.Pointer(&mgr)))
	if int32(hr) < 0 || mgr == 0 {
		slog.Warn("MFCreateDXGIDeviceManager failed, hardware encoder will use host-memory samples", "hresult", fmt.Sprintf("0x%08X", uint32(hr)))
		return
	}

	if _, err := comCall(mgr, vtblDevMgrResetDevice, c.device, uintptr(resetToken)); err != nil {
		slog.Warn("IMFDXGIDeviceManager.ResetDevice failed, hardware encoder will use host-memory samples", "error", err)
		comRelease(mgr)
		return
	}

	c.deviceManager = mgr
	c.resetToken = resetToken
}

func (c *d3d11GpuContext) createTexture2D(w, h, format, bindFlags, usage, miscFlags uint32) (uintptr, error) {
	desc := d3d11Texture2DDesc{
		Width: w, Height: h, MipLevels: 1, ArraySize: 1,
		Format: format, SampleCount: 1, SampleQuality: 0,
		Usage: usage, BindFlags: bindFlags, MiscFlags: miscFlags,
	}
	var tex uintptr
	_, err := comCall(c.device, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&desc)), 0, uintptr(unsafe.Pointer(&tex)))
	if err != nil {
		return 0, err
	}
	return tex, nil
}

// d3d11Texture is the GPUTexture wrapping a raw ID3D11Texture2D COM pointer.
type d3d11Texture struct{ handle uintptr }

func (t *d3d11Texture) Release() {
	comRelease(t.handle)
	t.handle = 0
}
