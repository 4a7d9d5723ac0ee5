package engine

import "testing"

func TestBgraToNV12BT709_BlackMapsToLimitedRangeFloor(t *testing.T) {
	src := make([]byte, 4*4) // 2x2 BGRA, all zero (black, opaque)
	dst := make([]byte, nv12BufferSize(2, 2))
	bgraToNV12BT709(dst, 2, 2, src, 2*4, 2, 2)

	for i, y := range dst[:4] {
		if y != 16 {
			t.Fatalf("Y[%d] = %d, want 16 (BT.709 limited-range black floor)", i, y)
		}
	}
	for _, uv := range dst[4:6] {
		if uv != 128 {
			t.Fatalf("neutral chroma = %d, want 128", uv)
		}
	}
}

func TestBgraToNV12BT709_WhiteMapsNearCeiling(t *testing.T) {
	src := []byte{255, 255, 255, 255} // 1x1 BGRA white
	dst := make([]byte, nv12BufferSize(2, 2))
	bgraToNV12BT709(dst, 2, 2, src, 4, 1, 1)

	if dst[0] < 225 {
		t.Fatalf("Y = %d, want close to 235 (limited-range white ceiling)", dst[0])
	}
}

func TestBgraToNV12BT709_SourceSmallerThanDestLeavesRestUntouched(t *testing.T) {
	dst := make([]byte, nv12BufferSize(4, 4))
	for i := range dst {
		dst[i] = 0xAA
	}
	src := make([]byte, 2*4) // 2x1 BGRA black
	bgraToNV12BT709(dst, 4, 4, src, 2*4, 2, 1)

	ySize := 4 * 4
	// Row 0, columns 2-3 were not written by the 2-wide source.
	if dst[2] != 0xAA || dst[3] != 0xAA {
		t.Fatalf("untouched Y columns were overwritten: %v", dst[:4])
	}
	// Rows 1-3 are entirely untouched.
	if dst[ySize-1] != 0xAA {
		t.Fatalf("untouched Y row was overwritten")
	}
}

func TestClampByte(t *testing.T) {
	cases := []struct {
		in   int
		want byte
	}{
		{-10, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := clampByte(c.in); got != c.want {
			t.Errorf("clampByte(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCpuColorConverter_ConvertRequiresHostBackedTarget(t *testing.T) {
	c := &cpuColorConverter{}
	tex := GpuTextures{NV12Target: nil}
	if err := c.Convert(tex, &CapturedFrame{}); err == nil {
		t.Fatal("expected an error when NV12Target is not host-backed")
	}
}

func TestCpuColorConverter_ConvertAndReadback(t *testing.T) {
	c := &cpuColorConverter{}
	nv12W, nv12H := 2, 2
	tex := GpuTextures{
		NV12Target: &hostBackedTexture{Buf: make([]byte, nv12BufferSize(nv12W, nv12H))},
		NV12Width:  nv12W,
		NV12Height: nv12H,
	}
	frame := &CapturedFrame{Data: []byte{255, 255, 255, 255}, RowPitch: 4, Width: 1, Height: 1}

	if err := c.Convert(tex, frame); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	out, err := c.ReadbackNV12(tex)
	if err != nil {
		t.Fatalf("ReadbackNV12: %v", err)
	}
	if len(out) != nv12BufferSize(nv12W, nv12H) {
		t.Fatalf("readback length %d, want %d", len(out), nv12BufferSize(nv12W, nv12H))
	}
}
