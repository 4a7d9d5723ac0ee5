//go:build windows

package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

// mftEncoderBackend implements encoderBackend on top of a Windows Media
// Foundation Transform, preferring a hardware H.264 encoder (NVENC,
// QuickSync, AMD VCE) and falling back to the software H264 MFT if none is
// available or the hardware one cannot be unlocked for async use. A
// transform that rejects the configured media types fails construction.
type mftEncoderBackend struct {
	mu sync.Mutex

	cfg    EncoderConfig
	width  int
	height int

	transform       uintptr // IMFTransform
	codecAPI        uintptr // ICodecAPI, may be 0
	inited          bool
	isHW            bool
	providesSamples bool
	outputBufSize   int

	// deviceManager is the IMFDXGIDeviceManager recovered from gctx, if any.
	// usesD3D is only set once the transform has actually accepted
	// MFT_MESSAGE_SET_D3D_MANAGER for it — a hardware encoder can still
	// reject the manager, in which case Encode falls back to nv12 bytes.
	deviceManager uintptr
	usesD3D       bool

	frameIdx     uint64
	threadLocked bool

	forceKeyframePending bool
}

func init() {
	registerHardwareFactory(newMFTEncoderBackend)
}

func newMFTEncoderBackend(cfg EncoderConfig, gctx GpuContext) (encoderBackend, error) {
	if cfg.Codec != CodecH264 {
		return nil, newEncodeErrorf("mft backend only supports h264")
	}
	b := &mftEncoderBackend{cfg: cfg, width: cfg.Width, height: cfg.Height}
	if d3dCtx, ok := gctx.(*d3d11GpuContext); ok {
		b.deviceManager = d3dCtx.deviceManager
	}
	if err := b.initialize(); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *mftEncoderBackend) initialize() error {
	if !m.threadLocked {
		runtime.LockOSThread()
		m.threadLocked = true
	}

	hr, _, _ := procCoInitializeEx.Call(0, coinitMultithreaded)
	if int32(hr) < 0 && uint32(hr) != 0x80010106 {
		return newEncodeErrorf("CoInitializeEx failed: 0x%08X", uint32(hr))
	}

	hr, _, _ = procMFStartup.Call(mfVersion, mfStartupFull)
	if int32(hr) < 0 {
		return newEncodeErrorf("MFStartup failed: 0x%08X", uint32(hr))
	}

	transform, isHW, err := m.findEncoder()
	if err != nil {
		procMFShutdown.Call()
		return newEncodeErrorf("no h264 mft available: %v", err)
	}

	if isHW {
		if err := m.unlockAsyncMFT(transform); err != nil {
			slog.Warn("hardware MFT async unlock failed, retrying with sync MFT only", "error", err)
			comRelease(transform)
			transform, err = m.enumAndActivate(mftEnumFlagSyncMFT | mftEnumFlagSortAndFilter)
			if err != nil {
				procMFShutdown.Call()
				return newEncodeErrorf("software mft fallback: %v", err)
			}
			isHW = false
		}
	}

	if isHW && m.deviceManager != 0 {
		if _, err := comCall(transform, vtblProcessMessage, mftMessageSetD3DManager, m.deviceManager); err != nil {
			slog.Warn("hardware MFT rejected D3D device manager, encoding via host-memory samples", "error", err)
		} else {
			m.usesD3D = true
		}
	}

	if err := m.setOutputType(transform); err != nil {
		comRelease(transform)
		procMFShutdown.Call()
		return newEncodeErrorf("set output type: %v", err)
	}
	if err := m.setInputType(transform); err != nil {
		comRelease(transform)
		procMFShutdown.Call()
		return newEncodeErrorf("set input type: %v", err)
	}

	m.setLowLatency(transform)

	comCall(transform, vtblProcessMessage, mftMessageNotifyBeginStreaming, 0)
	comCall(transform, vtblProcessMessage, mftMessageNotifyStartOfStream, 0)

	m.transform = transform
	m.isHW = isHW
	m.inited = true

	var streamInfo mftOutputStreamInfo
	hr, _, _ = syscall.SyscallN(comVtblFn(transform, vtblGetOutputStreamInfo), transform, 0, uintptr(unsafe.Pointer(&streamInfo)))
	if int32(hr) >= 0 {
		m.providesSamples = streamInfo.dwFlags&mftOutputStreamProvidesSamples != 0
		m.outputBufSize = int(streamInfo.cbSize)
	}
	if m.outputBufSize <= 0 {
		m.outputBufSize = m.width * m.height * 3 / 2
	}

	var codecAPI uintptr
	if _, err := comCall(transform, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidICodecAPI)), uintptr(unsafe.Pointer(&codecAPI))); err == nil && codecAPI != 0 {
		m.codecAPI = codecAPI
		m.configureLowLatencyRateControl()
	}

	hwStr := "software"
	if isHW {
		hwStr = "hardware"
	}
	slog.Info("mft h264 encoder initialized", "type", hwStr, "width", m.width, "height", m.height)
	return nil
}

func (m *mftEncoderBackend) configureLowLatencyRateControl() {
	gopSize := uint32(m.cfg.FPS * 2)
	if gopSize < 20 {
		gopSize = 20
	}
	m.setCodecAPIUI4(codecAPIAVEncMPVGOPSize, uint64(gopSize))
	m.setCodecAPIUI4(codecAPIAVEncMPVDefaultBPictureCount, 0)
	m.setCodecAPIUI4(codecAPIAVEncCommonRateControlMode, eAVEncCommonRateControlMode_CBR)

	bitsPerFrame := uint32(m.cfg.BitrateKbps * 1000 / max(m.cfg.FPS, 1))
	if bitsPerFrame < 50000 {
		bitsPerFrame = 50000
	}
	m.setCodecAPIUI4(codecAPIAVEncCommonBufferSize, uint64(bitsPerFrame))
}

func (m *mftEncoderBackend) setCodecAPIUI4(prop comGUID, val uint64) {
	if m.codecAPI == 0 {
		return
	}
	v := comVariant{vt: vtUI4, val: val}
	if _, err := comCall(m.codecAPI, vtblCodecAPISetValue, uintptr(unsafe.Pointer(&prop)), uintptr(unsafe.Pointer(&v))); err != nil {
		slog.Debug("ICodecAPI SetValue failed (non-fatal)", "error", err)
	}
}

func (m *mftEncoderBackend) findEncoder() (uintptr, bool, error) {
	if t, err := m.enumAndActivate(mftEnumFlagHardware | mftEnumFlagSortAndFilter); err == nil {
		return t, true, nil
	}
	if t, err := m.enumAndActivate(mftEnumFlagSyncMFT | mftEnumFlagSortAndFilter); err == nil {
		return t, false, nil
	}
	if t, err := m.enumAndActivate(mftEnumFlagAll); err == nil {
		return t, false, nil
	}
	return 0, false, fmt.Errorf("no h264 encoder found")
}

func (m *mftEncoderBackend) enumAndActivate(flags uint32) (uintptr, error) {
	inputType := mftRegisterTypeInfo{guidMajorType: mfMediaTypeVideo, guidSubtype: mfVideoFormatNV12}
	outputType := mftRegisterTypeInfo{guidMajorType: mfMediaTypeVideo, guidSubtype: mfVideoFormatH264}

	var activateArray uintptr
	var count uint32
	hr, _, _ := procMFTEnumEx.Call(
		uintptr(unsafe.Pointer(&mftCategoryVideoEncoder)), uintptr(flags),
		uintptr(unsafe.Pointer(&inputType)), uintptr(unsafe.Pointer(&outputType)),
		uintptr(unsafe.Pointer(&activateArray)), uintptr(unsafe.Pointer(&count)))
	if int32(hr) < 0 || count == 0 {
		return 0, fmt.Errorf("MFTEnumEx found 0 encoders (flags=0x%X)", flags)
	}

	first := *(*uintptr)(unsafe.Pointer(activateArray))
	var transform uintptr
	_, err := comCall(first, vtblActivateObject, uintptr(unsafe.Pointer(&iidIMFTransform)), uintptr(unsafe.Pointer(&transform)))

	entries := unsafe.Slice((*uintptr)(unsafe.Pointer(activateArray)), count)
	for _, a := range entries {
		comRelease(a)
	}
	procCoTaskMemFree.Call(activateArray)

	if err != nil {
		return 0, err
	}
	return transform, nil
}

func (m *mftEncoderBackend) setOutputType(transform uintptr) error {
	var mediaType uintptr
	hr, _, _ := procMFCreateMediaType.Call(uintptr(unsafe.Pointer(&mediaType)))
	if int32(hr) < 0 {
		return fmt.Errorf("MFCreateMediaType: 0x%08X", uint32(hr))
	}
	defer comRelease(mediaType)

	comCall(mediaType, vtblSetGUID, uintptr(unsafe.Pointer(&mfMTMajorType)), uintptr(unsafe.Pointer(&mfMediaTypeVideo)))
	comCall(mediaType, vtblSetGUID, uintptr(unsafe.Pointer(&mfMTSubtype)), uintptr(unsafe.Pointer(&mfVideoFormatH264)))
	comCall(mediaType, vtblSetUINT32, uintptr(unsafe.Pointer(&mfMTAvgBitrate)), uintptr(uint32(m.cfg.BitrateKbps*1000)))
	comCall(mediaType, vtblSetUINT32, uintptr(unsafe.Pointer(&mfMTInterlaceMode)), uintptr(uint32(mfVideoInterlaceProgressive)))
	comCall(mediaType, vtblSetUINT64, uintptr(unsafe.Pointer(&mfMTFrameSize)), pack64(uint32(m.width), uint32(m.height)))
	comCall(mediaType, vtblSetUINT64, uintptr(unsafe.Pointer(&mfMTFrameRate)), pack64(uint32(m.cfg.FPS), 1))
	comCall(mediaType, vtblSetUINT32, uintptr(unsafe.Pointer(&mfMTMpeg2Profile)), uintptr(eAVEncH264VProfileMain))
	comCall(mediaType, vtblSetUINT64, uintptr(unsafe.Pointer(&mfMTPixelAspectRatio)), pack64(1, 1))

	if _, err := comCall(transform, vtblSetOutputType, 0, mediaType, 0); err != nil {
		return fmt.Errorf("SetOutputType: %w", err)
	}
	return nil
}

func (m *mftEncoderBackend) setInputType(transform uintptr) error {
	var mediaType uintptr
	hr, _, _ := procMFCreateMediaType.Call(uintptr(unsafe.Pointer(&mediaType)))
	if int32(hr) < 0 {
		return fmt.Errorf("MFCreateMediaType: 0x%08X", uint32(hr))
	}
	defer comRelease(mediaType)

	comCall(mediaType, vtblSetGUID, uintptr(unsafe.Pointer(&mfMTMajorType)), uintptr(unsafe.Pointer(&mfMediaTypeVideo)))
	comCall(mediaType, vtblSetGUID, uintptr(unsafe.Pointer(&mfMTSubtype)), uintptr(unsafe.Pointer(&mfVideoFormatNV12)))
	comCall(mediaType, vtblSetUINT32, uintptr(unsafe.Pointer(&mfMTInterlaceMode)), uintptr(uint32(mfVideoInterlaceProgressive)))
	comCall(mediaType, vtblSetUINT64, uintptr(unsafe.Pointer(&mfMTFrameSize)), pack64(uint32(m.width), uint32(m.height)))
	comCall(mediaType, vtblSetUINT64, uintptr(unsafe.Pointer(&mfMTFrameRate)), pack64(uint32(m.cfg.FPS), 1))
	comCall(mediaType, vtblSetUINT64, uintptr(unsafe.Pointer(&mfMTPixelAspectRatio)), pack64(1, 1))
	comCall(mediaType, vtblSetUINT32, uintptr(unsafe.Pointer(&mfMTDefaultStride)), uintptr(uint32(m.width)))

	if _, err := comCall(transform, vtblSetInputType, 0, mediaType, 0); err != nil {
		return fmt.Errorf("SetInputType: %w", err)
	}
	return nil
}

func (m *mftEncoderBackend) setLowLatency(transform uintptr) {
	var attrs uintptr
	if _, err := comCall(transform, vtblGetAttributes, uintptr(unsafe.Pointer(&attrs))); err != nil || attrs == 0 {
		return
	}
	defer comRelease(attrs)
	comCall(attrs, vtblSetUINT32, uintptr(unsafe.Pointer(&mfLowLatency)), 1)
}

func (m *mftEncoderBackend) unlockAsyncMFT(transform uintptr) error {
	var attrs uintptr
	if _, err := comCall(transform, vtblGetAttributes, uintptr(unsafe.Pointer(&attrs))); err != nil || attrs == 0 {
		return fmt.Errorf("GetAttributes: %w", err)
	}
	defer comRelease(attrs)
	_, err := comCall(attrs, vtblSetUINT32, uintptr(unsafe.Pointer(&mfTransformAsyncUnlock)), 1)
	return err
}

// Encode feeds one GPU-converted NV12 frame to the transform and returns
// whatever access unit(s) drain out synchronously. Ownership of tex is the
// caller's (GpuContext); this backend only reads its NV12 target.
//
// When usesD3D is set, the sample is built directly from tex.NV12Target via
// MFCreateDXGISurfaceBuffer — the transform reads the DXGI surface itself
// and nv12 is ignored. Otherwise nv12 is the required host-resident source,
// the same path the software backend uses.
func (m *mftEncoderBackend) Encode(tex GpuTextures, nv12 []byte, forceKeyframe bool) (*EncodedUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sample uintptr
	var err error
	if m.usesD3D {
		d3dTex, ok := tex.NV12Target.(*d3d11Texture)
		if !ok || d3dTex.handle == 0 {
			return nil, newEncodeErrorf("mft hardware backend requires a D3D11 NV12 target")
		}
		sample, err = m.createSampleFromTexture(d3dTex.handle)
	} else {
		if nv12 == nil {
			return nil, newEncodeErrorf("mft backend requires host-resident nv12 bytes")
		}
		sample, err = m.createSample(nv12)
	}
	if err != nil {
		return nil, newEncodeErrorf("create sample: %v", err)
	}
	defer comRelease(sample)

	if forceKeyframe || m.forceKeyframePending {
		_ = m.forceKeyframeLocked()
	}

	ret, _, _ := syscall.SyscallN(comVtblFn(m.transform, vtblProcessInput), m.transform, 0, sample, 0)
	if uint32(ret) == mfENotAccepting {
		if _, err := m.drainOutput(); err != nil {
			return nil, err
		}
		ret, _, _ = syscall.SyscallN(comVtblFn(m.transform, vtblProcessInput), m.transform, 0, sample, 0)
	}
	if int32(ret) < 0 {
		return nil, newEncodeErrorf("ProcessInput: 0x%08X", uint32(ret))
	}

	bytes, err := m.drainOutput()
	if err != nil || bytes == nil {
		return nil, err
	}
	m.frameIdx++
	return &EncodedUnit{Bytes: bytes, IsKeyframe: forceKeyframe || m.forceKeyframePending}, nil
}

func (m *mftEncoderBackend) createSample(nv12 []byte) (uintptr, error) {
	var buf uintptr
	hr, _, _ := procMFCreateMemoryBuffer.Call(uintptr(uint32(len(nv12))), uintptr(unsafe.Pointer(&buf)))
	if int32(hr) < 0 {
		return 0, fmt.Errorf("MFCreateMemoryBuffer: 0x%08X", uint32(hr))
	}

	var pData uintptr
	if _, err := comCall(buf, vtblBufLock, uintptr(unsafe.Pointer(&pData)), 0, 0); err != nil {
		comRelease(buf)
		return 0, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(pData)), len(nv12)), nv12)
	comCall(buf, vtblBufUnlock)
	comCall(buf, vtblBufSetCurrentLength, uintptr(uint32(len(nv12))))

	var sample uintptr
	hr, _, _ = procMFCreateSample.Call(uintptr(unsafe.Pointer(&sample)))
	if int32(hr) < 0 {
		comRelease(buf)
		return 0, fmt.Errorf("MFCreateSample: 0x%08X", uint32(hr))
	}

	frameDuration100ns := int64(10_000_000 / max(m.cfg.FPS, 1))
	comCall(sample, vtblSetSampleTime, uintptr(int64(m.frameIdx)*frameDuration100ns))
	comCall(sample, vtblSetSampleDuration, uintptr(frameDuration100ns))

	_, err := comCall(sample, vtblAddBuffer, buf)
	comRelease(buf)
	if err != nil {
		comRelease(sample)
		return 0, err
	}
	return sample, nil
}

// createSampleFromTexture wraps texHandle (an ID3D11Texture2D) directly into
// an IMFSample via MFCreateDXGISurfaceBuffer, letting the transform pull the
// frame off the GPU without a CPU round trip. Requires the device manager to
// have been accepted by the transform first (usesD3D).
func (m *mftEncoderBackend) createSampleFromTexture(texHandle uintptr) (uintptr, error) {
	var buf uintptr
	hr, _, _ := procMFCreateDXGISurfaceBuffer.Call(
		uintptr(unsafe.Pointer(&iidID3D11Texture2D)), texHandle, 0, 0, uintptr(unsafe.Pointer(&buf)))
	if int32(hr) < 0 {
		return 0, fmt.Errorf("MFCreateDXGISurfaceBuffer: 0x%08X", uint32(hr))
	}

	var sample uintptr
	hr, _, _ = procMFCreateSample.Call(uintptr(unsafe.Pointer(&sample)))
	if int32(hr) < 0 {
		comRelease(buf)
		return 0, fmt.Errorf("MFCreateSample: 0x%08X", uint32(hr))
	}

	frameDuration100ns := int64(10_000_000 / max(m.cfg.FPS, 1))
	comCall(sample, vtblSetSampleTime, uintptr(int64(m.frameIdx)*frameDuration100ns))
	comCall(sample, vtblSetSampleDuration, uintptr(frameDuration100ns))

	_, err := comCall(sample, vtblAddBuffer, buf)
	comRelease(buf)
	if err != nil {
		comRelease(sample)
		return 0, err
	}
	return sample, nil
}

func (m *mftEncoderBackend) drainOutput() ([]byte, error) {
	var allNALs []byte
	streamChangeRetries := 0

	for {
		var callerSample uintptr
		outputData := mftOutputDataBuffer{dwStreamID: 0}

		if !m.providesSamples {
			var outBuf uintptr
			hr, _, _ := procMFCreateMemoryBuffer.Call(uintptr(uint32(m.outputBufSize)), uintptr(unsafe.Pointer(&outBuf)))
			if int32(hr) < 0 {
				return allNALs, fmt.Errorf("MFCreateMemoryBuffer(out): 0x%08X", uint32(hr))
			}
			hr, _, _ = procMFCreateSample.Call(uintptr(unsafe.Pointer(&callerSample)))
			if int32(hr) < 0 {
				comRelease(outBuf)
				return allNALs, fmt.Errorf("MFCreateSample(out): 0x%08X", uint32(hr))
			}
			comCall(callerSample, vtblAddBuffer, outBuf)
			comRelease(outBuf)
			outputData.pSample = callerSample
		}

		var status uint32
		ret, _, _ := syscall.SyscallN(comVtblFn(m.transform, vtblProcessOutput), m.transform, 0, 1,
			uintptr(unsafe.Pointer(&outputData)), uintptr(unsafe.Pointer(&status)))

		resultSample := outputData.pSample
		callerOwned := !m.providesSamples

		switch uint32(ret) {
		case mfETransformNeedInput, eUnexpected:
			if callerOwned && callerSample != 0 {
				comRelease(callerSample)
			}
			if len(allNALs) > 0 {
				return allNALs, nil
			}
			return nil, nil
		case mfETransformStreamChange:
			if callerOwned && callerSample != 0 {
				comRelease(callerSample)
			}
			streamChangeRetries++
			if streamChangeRetries > 5 {
				m.shutdownLocked()
				return allNALs, fmt.Errorf("too many stream changes, encoder reset")
			}
			var streamInfo mftOutputStreamInfo
			hr2, _, _ := syscall.SyscallN(comVtblFn(m.transform, vtblGetOutputStreamInfo), m.transform, 0, uintptr(unsafe.Pointer(&streamInfo)))
			if int32(hr2) >= 0 {
				m.providesSamples = streamInfo.dwFlags&mftOutputStreamProvidesSamples != 0
				if int(streamInfo.cbSize) > m.outputBufSize {
					m.outputBufSize = int(streamInfo.cbSize)
				}
			}
			continue
		case mfEBufferTooSmall:
			if callerOwned && callerSample != 0 {
				comRelease(callerSample)
			}
			m.outputBufSize *= 2
			continue
		}
		if int32(ret) < 0 {
			if callerOwned && callerSample != 0 {
				comRelease(callerSample)
			}
			return allNALs, fmt.Errorf("ProcessOutput: 0x%08X", uint32(ret))
		}

		if resultSample == 0 {
			return allNALs, fmt.Errorf("ProcessOutput succeeded with no output sample")
		}
		nal, err := m.extractSampleData(resultSample)
		if m.providesSamples {
			comRelease(resultSample)
		} else if callerSample != 0 {
			comRelease(callerSample)
		}
		if err != nil {
			return allNALs, err
		}
		allNALs = append(allNALs, nal...)

		if outputData.dwStatus&mftOutputDataBufferIncomplete == 0 {
			break
		}
	}
	return allNALs, nil
}

func (m *mftEncoderBackend) extractSampleData(sample uintptr) ([]byte, error) {
	var contiguous uintptr
	if _, err := comCall(sample, vtblConvertToContiguous, uintptr(unsafe.Pointer(&contiguous))); err != nil {
		return nil, err
	}
	defer comRelease(contiguous)

	var pData uintptr
	var dataLen uint32
	if _, err := comCall(contiguous, vtblBufLock, uintptr(unsafe.Pointer(&pData)), 0, uintptr(unsafe.Pointer(&dataLen))); err != nil {
		return nil, err
	}
	out := make([]byte, dataLen)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(pData)), dataLen))
	comCall(contiguous, vtblBufUnlock)
	return out, nil
}

func (m *mftEncoderBackend) ForceKeyframe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.forceKeyframeLocked()
}

func (m *mftEncoderBackend) forceKeyframeLocked() error {
	if m.codecAPI == 0 {
		m.forceKeyframePending = false
		return nil
	}
	v := comVariant{vt: vtUI4, val: 1}
	_, err := comCall(m.codecAPI, vtblCodecAPISetValue, uintptr(unsafe.Pointer(&codecAPIAVEncVideoForceKeyFrame)), uintptr(unsafe.Pointer(&v)))
	if err != nil {
		m.forceKeyframePending = true
		return err
	}
	m.forceKeyframePending = false
	return nil
}

// Flush drops buffered input/output and forces an IDR on the next frame, so
// a viewer that just joined never has to wait behind stale queued frames.
func (m *mftEncoderBackend) Flush() ([]*EncodedUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inited {
		return nil, nil
	}
	comCall(m.transform, vtblProcessMessage, mftMessageCommandFlush, 0)
	comCall(m.transform, vtblProcessMessage, mftMessageNotifyBeginStreaming, 0)
	comCall(m.transform, vtblProcessMessage, mftMessageNotifyStartOfStream, 0)
	m.forceKeyframePending = true
	_ = m.forceKeyframeLocked()
	return nil, nil
}

func (m *mftEncoderBackend) SetBitrateKbps(kbps int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.BitrateKbps = kbps
	if m.codecAPI == 0 || !m.inited {
		return nil
	}
	m.setCodecAPIUI4(codecAPIAVEncCommonMeanBitRate, uint64(uint32(kbps*1000)))
	return nil
}

func (m *mftEncoderBackend) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownLocked()
}

func (m *mftEncoderBackend) shutdownLocked() {
	if !m.inited {
		return
	}
	if m.codecAPI != 0 {
		comRelease(m.codecAPI)
		m.codecAPI = 0
	}
	comCall(m.transform, vtblProcessMessage, mftMessageCommandFlush, 0)
	comCall(m.transform, vtblProcessMessage, mftMessageNotifyEndStreaming, 0)
	comRelease(m.transform)
	m.transform = 0
	m.inited = false
	m.frameIdx = 0

	procMFShutdown.Call()
	procCoUninitialize.Call()
	// threadLocked intentionally left set: the OS thread this goroutine holds
	// is released when the goroutine exits, not here — shutdownLocked may run
	// from a different goroutine than initialize did.
}

func (m *mftEncoderBackend) Name() string {
	if m.isHW {
		return "mft-hardware"
	}
	return "mft-software"
}

func (m *mftEncoderBackend) IsHardware() bool { return m.isHW }
