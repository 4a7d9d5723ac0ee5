//go:build !windows

package engine

func newHardwareColorConverter(ctx GpuContext) (ColorConverter, bool) { return nil, false }
