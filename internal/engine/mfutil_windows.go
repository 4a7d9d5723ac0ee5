//go:build windows

package engine

import "syscall"

// Media Foundation interop constants shared by the hardware H.264 backend.
// Same pure-Go vtable-call approach as comutil_windows.go; no cgo.

var (
	ole32DLL  = syscall.NewLazyDLL("ole32.dll")
	mfplatDLL = syscall.NewLazyDLL("mfplat.dll")
	mfDLL     = syscall.NewLazyDLL("mf.dll")

	procCoInitializeEx = ole32DLL.NewProc("CoInitializeEx")
	procCoUninitialize = ole32DLL.NewProc("CoUninitialize")
	procCoTaskMemFree  = ole32DLL.NewProc("CoTaskMemFree")

	procMFStartup               = mfplatDLL.NewProc("MFStartup")
	procMFShutdown              = mfplatDLL.NewProc("MFShutdown")
	procMFCreateMediaType       = mfplatDLL.NewProc("MFCreateMediaType")
	procMFCreateSample          = mfplatDLL.NewProc("MFCreateSample")
	procMFCreateMemoryBuffer    = mfplatDLL.NewProc("MFCreateMemoryBuffer")
	procMFTEnumEx               = mfplatDLL.NewProc("MFTEnumEx")
	procMFCreateDXGIDeviceManager = mfplatDLL.NewProc("MFCreateDXGIDeviceManager")
	procMFCreateDXGISurfaceBuffer = mfplatDLL.NewProc("MFCreateDXGISurfaceBuffer")
)

const (
	coinitMultithreaded = 0x0

	mfVersion      = 0x00020070
	mfStartupFull  = 0x0

	mftEnumFlagSyncMFT      = 0x1
	mftEnumFlagHardware     = 0x8
	mftEnumFlagSortAndFilter = 0x100
	mftEnumFlagAll          = mftEnumFlagSyncMFT | mftEnumFlagHardware

	mftOutputStreamProvidesSamples = 0x1
	mftOutputDataBufferIncomplete  = 0x1000

	mftMessageCommandFlush          = 0
	mftMessageSetD3DManager         = 1
	mftMessageNotifyBeginStreaming  = 2
	mftMessageNotifyStartOfStream   = 3
	mftMessageNotifyEndStreaming    = 4

	mfENotAccepting       = 0xC00D36B5
	mfETransformNeedInput = 0xC00D6D72
	mfETransformStreamChange = 0xC00D6D61
	mfEBufferTooSmall     = 0xC00D6D76
	eUnexpected           = 0x8000FFFF

	mfVideoInterlaceProgressive = 2
	mfVideoFrameFormatProgressive = 2

	eAVEncCommonRateControlMode_CBR = 0
	eAVEncH264VProfileMain          = 77

	mfLowLatency            = 0
	mfTransformAsyncUnlock  = 0

	vtUI4 = 19
)

// vtable offsets.
const (
	// IMFAttributes
	vtblSetUINT32      = 20
	vtblSetUINT64      = 22
	vtblSetGUID        = 24
	vtblGetAttributes  = 3

	// IMFTransform
	vtblSetInputType    = 10
	vtblSetOutputType   = 12
	vtblGetOutputStreamInfo = 9
	vtblGetOutputAvailType  = 11
	vtblProcessMessage  = 19
	vtblProcessInput    = 20
	vtblProcessOutput   = 21

	// IMFSample / IMFMediaBuffer
	vtblSetSampleTime     = 16
	vtblSetSampleDuration = 18
	vtblAddBuffer         = 20
	vtblConvertToContiguous = 22
	vtblBufLock               = 5
	vtblBufUnlock             = 6
	vtblBufSetCurrentLength   = 8

	// IMFActivate
	vtblActivateObject = 9

	// ICodecAPI
	vtblCodecAPISetValue = 6

	// IMFDXGIDeviceManager
	vtblDevMgrResetDevice = 7
)

type mftRegisterTypeInfo struct {
	guidMajorType comGUID
	guidSubtype   comGUID
}

type mftOutputDataBuffer struct {
	dwStreamID uint32
	pSample    uintptr
	dwStatus   uint32
	pEvents    uintptr
}

type mftOutputStreamInfo struct {
	dwFlags uint32
	cbSize  uint32
	cbAlignment uint32
}

type comVariant struct {
	vt  uint16
	_   [6]byte
	val uint64
}

var (
	mftCategoryVideoEncoder   = comGUID{0xf79eac7d, 0xe545, 0x4387, [8]byte{0x82, 0x96, 0x0c, 0xe0, 0x09, 0x8d, 0x14, 0x6e}}
	iidIMFTransform           = comGUID{0xbf94c121, 0x5b05, 0x4e6f, [8]byte{0x80, 0x00, 0xba, 0x59, 0x89, 0x61, 0x41, 0x4d}}
	iidICodecAPI              = comGUID{0x901db4c7, 0x31ce, 0x41a2, [8]byte{0x85, 0xdc, 0x8f, 0xa0, 0xbf, 0x41, 0xb8, 0xda}}
	iidIMFDXGIDeviceManager   = comGUID{0xeb533d5d, 0x2db6, 0x11d3, [8]byte{0xa4, 0xcf, 0x00, 0xc0, 0x4f, 0x79, 0xf9, 0xdb}}

	mfMediaTypeVideo  = comGUID{0x73646976, 0x0000, 0x0010, [8]byte{0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}}
	mfVideoFormatH264 = comGUID{0x34363248, 0x0000, 0x0010, [8]byte{0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}}
	mfVideoFormatNV12 = comGUID{0x3231564E, 0x0000, 0x0010, [8]byte{0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}}

	mfMTMajorType        = comGUID{0x48eba18e, 0xf8c9, 0x4687, [8]byte{0xbf, 0x11, 0x0a, 0x74, 0xc9, 0xf9, 0x6a, 0x8f}}
	mfMTSubtype          = comGUID{0xf7e34c9a, 0x42e8, 0x4714, [8]byte{0xb7, 0x4b, 0xcb, 0x29, 0xd7, 0x2c, 0x35, 0xe5}}
	mfMTAvgBitrate       = comGUID{0x20332624, 0xfb0d, 0x4d9e, [8]byte{0xbd, 0x0d, 0xcb, 0xf6, 0x78, 0x6c, 0x10, 0x2e}}
	mfMTInterlaceMode    = comGUID{0xe2724bb8, 0xe676, 0x4806, [8]byte{0xb4, 0xb2, 0xa8, 0xd6, 0xef, 0xb4, 0x4c, 0xcd}}
	mfMTFrameSize        = comGUID{0x1652c33d, 0xd6b2, 0x4012, [8]byte{0xb8, 0x34, 0x72, 0x03, 0x08, 0x49, 0xa3, 0x7d}}
	mfMTFrameRate        = comGUID{0xc459a2e8, 0x3d2c, 0x4e44, [8]byte{0xb1, 0x32, 0xfe, 0xe5, 0x15, 0x6c, 0x7b, 0xb0}}
	mfMTMpeg2Profile     = comGUID{0xad76a80b, 0x2d5c, 0x4e0b, [8]byte{0xb3, 0x75, 0x64, 0xe5, 0x20, 0x13, 0x3a, 0x30}}
	mfMTPixelAspectRatio = comGUID{0xc6376a1e, 0x8d0a, 0x4027, [8]byte{0xbe, 0x45, 0x6d, 0x9a, 0x0a, 0xd3, 0x9b, 0xb6}}
	mfMTDefaultStride    = comGUID{0x644b4e48, 0x1e02, 0x4516, [8]byte{0xb0, 0xeb, 0xc0, 0x1c, 0xa9, 0xd4, 0x9a, 0xc6}}

	codecAPIAVEncVideoForceKeyFrame        = comGUID{0x73d1072d, 0x1870, 0x4174, [8]byte{0xa0, 0x63, 0x29, 0xff, 0x4f, 0xf6, 0xc1, 0x1e}}
	codecAPIAVEncMPVGOPSize                = comGUID{0x96f66574, 0x18ba, 0x4e21, [8]byte{0x9f, 0xa4, 0xa6, 0x2a, 0x1c, 0x2b, 0xb5, 0x57}}
	codecAPIAVEncMPVDefaultBPictureCount   = comGUID{0x43222be5, 0x37a3, 0x4c5e, [8]byte{0x8a, 0xd4, 0xbd, 0x6c, 0xa0, 0xb2, 0x2a, 0xac}}
	codecAPIAVEncCommonRateControlMode     = comGUID{0x1c0608e9, 0x370c, 0x4710, [8]byte{0x8a, 0x58, 0xcb, 0x61, 0x81, 0xc4, 0x24, 0x23}}
	codecAPIAVEncCommonBufferSize          = comGUID{0x1da4d389, 0xb4e5, 0x4dc4, [8]byte{0xa1, 0x05, 0x24, 0x68, 0x83, 0x32, 0x01, 0x9a}}
	codecAPIAVEncCommonMeanBitRate         = comGUID{0xf7222374, 0x2144, 0x4815, [8]byte{0xb5, 0x50, 0xa3, 0x7f, 0x8e, 0x12, 0xee, 0x52}}
)

func pack64(lo, hi uint32) uintptr {
	return uintptr(lo) | uintptr(hi)<<32
}
