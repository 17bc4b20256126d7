//go:build !linux

package hostinfo

func kernelVersion() string { return "" }
