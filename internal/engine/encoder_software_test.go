package engine

import (
	"runtime"
	"strings"
	"testing"

	"github.com/y9o/go-openh264"
)

func TestOpenh264SearchPaths_IncludesPlatformConventionalName(t *testing.T) {
	paths := openh264SearchPaths()
	if len(paths) != 2 {
		t.Fatalf("got %d search paths, want 2", len(paths))
	}
	want := "libopenh264.so"
	switch runtime.GOOS {
	case "windows":
		want = "openh264-2.4.1-win64.dll"
	case "darwin":
		want = "libopenh264.dylib"
	}
	if !strings.HasSuffix(paths[0], want) || paths[1] != want {
		t.Fatalf("search paths %v do not reference %q", paths, want)
	}
}

func TestNv12ToI420_DeinterleavesChromaPlanes(t *testing.T) {
	w, h := 2, 2
	ySize := w * h
	nv12 := make([]byte, ySize+ySize/2)
	for i := 0; i < ySize; i++ {
		nv12[i] = byte(i + 1)
	}
	// one interleaved U/V pair for the 2x2 block
	nv12[ySize] = 0x0A   // U
	nv12[ySize+1] = 0x0B // V

	dst := make([]byte, ySize+ySize/2)
	nv12ToI420(dst, nv12, w, h)

	for i := 0; i < ySize; i++ {
		if dst[i] != nv12[i] {
			t.Fatalf("Y plane not copied verbatim at %d: got %d want %d", i, dst[i], nv12[i])
		}
	}
	cSize := ySize / 4
	if dst[ySize] != 0x0A {
		t.Fatalf("Cb[0] = %#x, want 0x0A", dst[ySize])
	}
	if dst[ySize+cSize] != 0x0B {
		t.Fatalf("Cr[0] = %#x, want 0x0B", dst[ySize+cSize])
	}
}

func TestIsOpenH264Keyframe(t *testing.T) {
	if !isOpenH264Keyframe(openh264.VideoFrameTypeIDR) {
		t.Fatal("IDR must be reported as a keyframe")
	}
	if isOpenH264Keyframe(openh264.VideoFrameTypeSkip) {
		t.Fatal("a skip frame must not be reported as a keyframe")
	}
}
