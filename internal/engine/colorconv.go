package engine

// ColorConverter (C2) converts a BGRA CapturedFrame into the NV12 texture
// GpuContext allocated for the session. Convert must leave no per-frame GPU
// state behind: any view or intermediate resource it creates is released
// before it returns, so steady-state GPU memory usage after N frames equals
// usage after 1 frame (§8 invariant 6).
type ColorConverter interface {
	// Convert writes frame into tex.NV12Target. frame is not scaled: it is
	// placed at the top-left corner and clipped to tex's dimensions.
	Convert(tex GpuTextures, frame *CapturedFrame) error
	// ReadbackNV12 copies tex.NV12Target into a host buffer for a software
	// encoder backend that cannot read GPU memory directly.
	ReadbackNV12(tex GpuTextures) ([]byte, error)
	// Close releases any conversion-scoped resources held across calls
	// (e.g. a cached video processor). Idempotent.
	Close()
}

// newColorConverter picks the converter for ctx: the hardware path when ctx
// is backed by a real GPU device, the CPU path otherwise.
func newColorConverter(ctx GpuContext) ColorConverter {
	if hw, ok := newHardwareColorConverter(ctx); ok {
		return hw
	}
	return &cpuColorConverter{}
}

// cpuColorConverter performs BT.709 BGRA->NV12 conversion entirely on the
// CPU. It is the converter paired with the non-Windows GpuContext; it
// accepts only a host-backed NV12 target and returns an error for any other.
type cpuColorConverter struct{}

func (c *cpuColorConverter) Convert(tex GpuTextures, frame *CapturedFrame) error {
	dst, ok := tex.NV12Target.(*hostBackedTexture)
	if !ok {
		return newEncodeErrorf("cpu color converter requires a host-backed NV12 target")
	}
	bgraToNV12BT709(dst.Buf, tex.NV12Width, tex.NV12Height, frame.Data, frame.RowPitch, frame.Width, frame.Height)
	return nil
}

func (c *cpuColorConverter) ReadbackNV12(tex GpuTextures) ([]byte, error) {
	dst, ok := tex.NV12Target.(*hostBackedTexture)
	if !ok {
		return nil, newEncodeErrorf("cpu color converter requires a host-backed NV12 target")
	}
	return dst.Buf, nil
}

func (c *cpuColorConverter) Close() {}

// bgraToNV12BT709 converts a BGRA image into a pre-allocated NV12 buffer
// using BT.709 coefficients (full-size desktop capture is treated as HD
// content, not the BT.601 coefficients a 4:3/SD source would use). Source
// dimensions smaller than the destination are placed unscaled at the
// top-left corner; the remainder of the destination keeps whatever it held
// before (the caller only ever shrinks within one session, never grows).
func bgraToNV12BT709(dst []byte, dstW, dstH int, src []byte, srcRowPitch, srcW, srcH int) {
	w, h := srcW, srcH
	if w > dstW {
		w = dstW
	}
	if h > dstH {
		h = dstH
	}

	ySize := dstW * dstH
	yPlane := dst[:ySize]
	uvPlane := dst[ySize : ySize+(dstW/2)*(dstH/2)*2]

	for y := 0; y < h; y++ {
		srcRow := src[y*srcRowPitch : y*srcRowPitch+w*4]
		dstRow := yPlane[y*dstW : y*dstW+w]
		for x := 0; x < w; x++ {
			b, g, r := srcRow[x*4], srcRow[x*4+1], srcRow[x*4+2]
			dstRow[x] = clampByte(16 + (int(r)*187+int(g)*629+int(b)*63)>>10)
		}
	}

	for y := 0; y < h; y += 2 {
		dstRow := uvPlane[(y/2)*dstW : (y/2)*dstW+(w/2)*2+(w%2)*2]
		for x := 0; x < w; x += 2 {
			srcRow := src[y*srcRowPitch : y*srcRowPitch+srcRowPitch]
			b, g, r := int(srcRow[x*4]), int(srcRow[x*4+1]), int(srcRow[x*4+2])
			u := clampByte(128 + (-int(r)*103-int(g)*347+int(b)*450)>>10)
			v := clampByte(128 + (int(r)*450-int(g)*409-int(b)*41)>>10)
			dstRow[x] = u
			dstRow[x+1] = v
		}
	}
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
