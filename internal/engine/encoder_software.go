package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/y9o/go-openh264"
)

// openh264SearchPaths lists the locations this engine tries the shared
// library in, in order: next to the running executable, then the bare
// platform-conventional filename (letting the OS loader's own search path
// take over).
func openh264SearchPaths() []string {
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	name := "libopenh264.so"
	if runtime.GOOS == "windows" {
		name = "openh264-2.4.1-win64.dll"
	} else if runtime.GOOS == "darwin" {
		name = "libopenh264.dylib"
	}
	return []string{filepath.Join(exeDir, name), name}
}

var (
	openh264LoadOnce sync.Once
	openh264LoadErr  error
)

// loadOpenH264 opens the shared library once per process. The library path
// list mirrors how other agents in this fleet locate the DLL: next to the
// executable first, then the bare library name, which lets the OS loader
// search its default path.
func loadOpenH264() error {
	openh264LoadOnce.Do(func() {
		for _, path := range openh264SearchPaths() {
			if err := openh264.Open(path); err == nil {
				return
			}
		}
		openh264LoadErr = fmt.Errorf("openh264: library not found in any search path")
	})
	return openh264LoadErr
}

// softwareEncoderBackend wraps the openh264 SVC encoder. It is the fallback
// backend on every platform, and the only backend at all on platforms with
// no hardware factory registered.
type softwareEncoderBackend struct {
	enc    *openh264.ISVCEncoder
	width  int32
	height int32

	i420      []byte
	frameIdx  int64
	forceNext bool
}

func newSoftwareBackend(cfg EncoderConfig) (encoderBackend, error) {
	if err := loadOpenH264(); err != nil {
		return nil, newEncodeErrorf("software encoder unavailable: %v", err)
	}

	var enc *openh264.ISVCEncoder
	if ret := openh264.WelsCreateSVCEncoder(&enc); ret != 0 || enc == nil {
		return nil, newEncodeErrorf("WelsCreateSVCEncoder failed: %d", ret)
	}

	params := openh264.SEncParamBase{
		IUsageType:     openh264.SCREEN_CONTENT_REAL_TIME,
		IPicWidth:      int32(cfg.Width),
		IPicHeight:     int32(cfg.Height),
		ITargetBitrate: int32(cfg.BitrateKbps * 1000),
		FMaxFrameRate:  float32(cfg.FPS),
	}
	if ret := enc.Initialize(&params); ret != 0 {
		openh264.WelsDestroySVCEncoder(enc)
		return nil, newEncodeErrorf("openh264 Initialize failed: %d", ret)
	}

	return &softwareEncoderBackend{
		enc:    enc,
		width:  int32(cfg.Width),
		height: int32(cfg.Height),
		i420:   make([]byte, int(cfg.Width)*int(cfg.Height)*3/2),
	}, nil
}

func (b *softwareEncoderBackend) Encode(tex GpuTextures, nv12 []byte, forceKeyframe bool) (*EncodedUnit, error) {
	if nv12 == nil {
		return nil, newEncodeErrorf("software backend requires host-resident nv12 bytes")
	}
	nv12ToI420(b.i420, nv12, int(b.width), int(b.height))

	src := openh264.SSourcePicture{
		IColorFormat: openh264.VideoFormatI420,
		IStride:      [4]int32{b.width, b.width / 2, b.width / 2, 0},
		IPicWidth:    b.width,
		IPicHeight:   b.height,
		UiTimeStamp:  b.frameIdx * int64(1000/30),
	}
	ySize := int(b.width) * int(b.height)
	cSize := ySize / 4
	src.PData[0] = (*uint8)(unsafe.Pointer(&b.i420[0]))
	src.PData[1] = (*uint8)(unsafe.Pointer(&b.i420[ySize]))
	src.PData[2] = (*uint8)(unsafe.Pointer(&b.i420[ySize+cSize]))

	if forceKeyframe || b.forceNext {
		b.forceNext = false
		b.enc.ForceIntraFrame()
	}

	info := openh264.SFrameBSInfo{}
	if ret := b.enc.EncodeFrame(&src, &info); ret != openh264.CmResultSuccess {
		return nil, newEncodeErrorf("EncodeFrame failed: %d", ret)
	}
	b.frameIdx++

	if info.EFrameType == openh264.VideoFrameTypeSkip {
		return nil, nil
	}

	bufPtr := getEncodedUnitBuffer()
	for layer := 0; layer < int(info.ILayerNum); layer++ {
		layerInfo := &info.SLayerInfo[layer]
		var layerSize int32
		nalLens := unsafe.Slice(layerInfo.PNalLengthInByte, layerInfo.INalCount)
		for _, l := range nalLens {
			layerSize += l
		}
		nals := unsafe.Slice(layerInfo.PBsBuf, layerSize)
		*bufPtr = append(*bufPtr, nals...)
	}

	return &EncodedUnit{
		Bytes:      *bufPtr,
		IsKeyframe: info.EFrameType != openh264.VideoFrameTypeSkip && isOpenH264Keyframe(info.EFrameType),
	}, nil
}

func isOpenH264Keyframe(t openh264.EVideoFrameType) bool {
	return t == openh264.VideoFrameTypeIDR || t == openh264.VideoFrameTypeI
}

func (b *softwareEncoderBackend) SetBitrateKbps(kbps int) error {
	opt := openh264.SBitrateInfo{ITemporalLayerBitrate: 0, ITargetBitrate: int32(kbps * 1000)}
	b.enc.SetOption(openh264.ENCODER_OPTION_BITRATE, unsafe.Pointer(&opt))
	return nil
}

func (b *softwareEncoderBackend) ForceKeyframe() { b.forceNext = true }

func (b *softwareEncoderBackend) Flush() ([]*EncodedUnit, error) { return nil, nil }

func (b *softwareEncoderBackend) Close() {
	if b.enc != nil {
		b.enc.Uninitialize()
		openh264.WelsDestroySVCEncoder(b.enc)
		b.enc = nil
	}
}

func (b *softwareEncoderBackend) Name() string   { return "openh264" }
func (b *softwareEncoderBackend) IsHardware() bool { return false }

// nv12ToI420 deinterleaves the packed NV12 UV plane into the two planar
// Cb/Cr planes openh264 expects.
func nv12ToI420(dst, nv12 []byte, w, h int) {
	ySize := w * h
	copy(dst[:ySize], nv12[:ySize])
	uv := nv12[ySize:]
	cSize := ySize / 4
	cbPlane := dst[ySize : ySize+cSize]
	crPlane := dst[ySize+cSize : ySize+2*cSize]
	for i := 0; i < cSize; i++ {
		cbPlane[i] = uv[i*2]
		crPlane[i] = uv[i*2+1]
	}
}
