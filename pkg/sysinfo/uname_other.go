//go:build !unix

package sysinfo

func kernelVersion() string {
	return "unknown"
}
