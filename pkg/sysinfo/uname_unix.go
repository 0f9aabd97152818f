//go:build unix

package sysinfo

import (
	"golang.org/x/sys/unix"
)

func kernelVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "unknown"
	}
	return unix.ByteSliceToString(uts.Release[:])
}
