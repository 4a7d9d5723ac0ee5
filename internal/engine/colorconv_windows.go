//go:build windows

package engine

import "unsafe"

// hardwareColorConverter drives the D3D11 video processor to convert BGRA
// into NV12 entirely on the GPU. The enumerator and processor are
// configuration objects sized once for the session's resolution and kept
// for the session's life, but the input and output VIEWS are created and
// released on every Convert call. A view is cheap to create and, unlike the
// enumerator/processor, wraps a specific texture at a specific moment —
// keeping one alive across frames is what leaks GPU handles over a long
// session, so this type never holds one outside the body of Convert.
type hardwareColorConverter struct {
	gctx *d3d11GpuContext

	enumerator uintptr
	processor  uintptr
	w, h       int

	readbackTex uintptr
}

func newHardwareColorConverter(ctx GpuContext) (ColorConverter, bool) {
	gctx, ok := ctx.(*d3d11GpuContext)
	if !ok || !gctx.IsHardware() {
		return nil, false
	}
	return &hardwareColorConverter{gctx: gctx}, true
}

func (c *hardwareColorConverter) Convert(tex GpuTextures, frame *CapturedFrame) error {
	staging, ok := tex.BGRAStaging.(*d3d11Texture)
	if !ok {
		return newEncodeErrorf("hardware color converter requires a d3d11 BGRA staging texture")
	}
	nv12, ok := tex.NV12Target.(*d3d11Texture)
	if !ok {
		return newEncodeErrorf("hardware color converter requires a d3d11 NV12 target texture")
	}

	if _, err := comCall(c.gctx.deviceCtx, d3d11CtxUpdateSubresource,
		staging.handle, 0, 0, uintptr(unsafe.Pointer(&frame.Data[0])), uintptr(frame.RowPitch), 0); err != nil {
		return newEncodeErrorf("upload bgra frame: %v", err)
	}

	if c.processor == 0 {
		if err := c.createProcessor(tex.NV12Width, tex.NV12Height); err != nil {
			return newEncodeErrorf("create video processor: %v", err)
		}
	}

	inputView, err := c.createInputView(staging.handle)
	if err != nil {
		return newEncodeErrorf("create input view: %v", err)
	}
	defer comRelease(inputView)

	outputView, err := c.createOutputView(nv12.handle)
	if err != nil {
		return newEncodeErrorf("create output view: %v", err)
	}
	defer comRelease(outputView)

	stream := d3d11VideoProcessorStream{Enable: 1, PInputSurface: inputView}
	if _, err := comCall(c.gctx.videoContext, vtblVidCtxVideoProcessorBlt,
		c.processor, outputView, 0, 1, uintptr(unsafe.Pointer(&stream))); err != nil {
		return newEncodeErrorf("video processor blt: %v", err)
	}
	return nil
}

func (c *hardwareColorConverter) ReadbackNV12(tex GpuTextures) ([]byte, error) {
	nv12, ok := tex.NV12Target.(*d3d11Texture)
	if !ok {
		return nil, newEncodeErrorf("hardware color converter requires a d3d11 NV12 target texture")
	}
	if c.readbackTex == 0 {
		t, err := c.gctx.createTexture2D(uint32(tex.NV12Width), uint32(tex.NV12Height), dxgiFormatNV12,
			0, d3d11UsageStaging, d3d11CPUAccessRead)
		if err != nil {
			return nil, newEncodeErrorf("create readback texture: %v", err)
		}
		c.readbackTex = t
	}

	if _, err := comCall(c.gctx.deviceCtx, d3d11CtxCopyResource, c.readbackTex, nv12.handle); err != nil {
		return nil, newEncodeErrorf("copy to readback texture: %v", err)
	}

	var mapped d3d11MappedSubresource
	if _, err := comCall(c.gctx.deviceCtx, d3d11CtxMap, c.readbackTex, 0, 1, 0, uintptr(unsafe.Pointer(&mapped))); err != nil {
		return nil, newEncodeErrorf("map readback texture: %v", err)
	}
	defer comCall(c.gctx.deviceCtx, d3d11CtxUnmap, c.readbackTex, 0)

	out := make([]byte, nv12BufferSize(tex.NV12Width, tex.NV12Height))
	rowPitch := int(mapped.RowPitch)
	ySize := tex.NV12Width * tex.NV12Height
	for y := 0; y < tex.NV12Height; y++ {
		src := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData+uintptr(y*rowPitch))), tex.NV12Width)
		copy(out[y*tex.NV12Width:(y+1)*tex.NV12Width], src)
	}
	uvBase := mapped.PData + uintptr(tex.NV12Height*rowPitch)
	for y := 0; y < tex.NV12Height/2; y++ {
		src := unsafe.Slice((*byte)(unsafe.Pointer(uvBase+uintptr(y*rowPitch))), tex.NV12Width)
		copy(out[ySize+y*tex.NV12Width:ySize+(y+1)*tex.NV12Width], src)
	}
	return out, nil
}

func (c *hardwareColorConverter) Close() {
	comRelease(c.readbackTex)
	comRelease(c.processor)
	comRelease(c.enumerator)
	c.readbackTex, c.processor, c.enumerator = 0, 0, 0
}

func (c *hardwareColorConverter) createProcessor(w, h int) error {
	desc := d3d11VideoProcessorContentDesc{
		InputFrameFormat: 0, // D3D11_VIDEO_FRAME_FORMAT_PROGRESSIVE
		InputFrameRateN:  60, InputFrameRateD: 1,
		InputWidth: uint32(w), InputHeight: uint32(h),
		OutputFrameRateN: 60, OutputFrameRateD: 1,
		OutputWidth: uint32(w), OutputHeight: uint32(h),
		Usage: 0,
	}
	var enumerator uintptr
	if _, err := comCall(c.gctx.videoDevice, vtblVidDevCreateVideoProcessorEnumerator,
		uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&enumerator))); err != nil {
		return err
	}

	var processor uintptr
	if _, err := comCall(c.gctx.videoDevice, vtblVidDevCreateVideoProcessor,
		enumerator, 0, uintptr(unsafe.Pointer(&processor))); err != nil {
		comRelease(enumerator)
		return err
	}

	c.enumerator, c.processor, c.w, c.h = enumerator, processor, w, h
	return nil
}

func (c *hardwareColorConverter) createInputView(texture uintptr) (uintptr, error) {
	var view uintptr
	_, err := comCall(c.gctx.videoDevice, vtblVidDevCreateVideoProcessorInputView,
		texture, c.enumerator, 0, uintptr(unsafe.Pointer(&view)))
	return view, err
}

func (c *hardwareColorConverter) createOutputView(texture uintptr) (uintptr, error) {
	var view uintptr
	_, err := comCall(c.gctx.videoDevice, vtblVidDevCreateVideoProcessorOutputView,
		texture, c.enumerator, 0, uintptr(unsafe.Pointer(&view)))
	return view, err
}
