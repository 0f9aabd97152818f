package sysinfo

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinuxRelease(t *testing.T) {
	osRelease := `NAME="Ubuntu"
VERSION="24.04.1 LTS (Noble Numbat)"
ID=ubuntu
`
	require.Equal(t, "Ubuntu 24.04.1 LTS (Noble Numbat)", linuxRelease(strings.NewReader(osRelease)))

	require.Equal(t, "Alpine Linux 3.20.3",
		linuxRelease(strings.NewReader("NAME=\"Alpine Linux\"\nVERSION_ID=3.20.3\n")))

	require.Equal(t, "unknown", linuxRelease(strings.NewReader("")))
}

func TestDarwinRelease(t *testing.T) {
	out := "ProductName:\t\tmacOS\nProductVersion:\t\t14.5\nBuildVersion:\t\t23F79\n"
	require.Equal(t, "macOS 14.5", darwinRelease(strings.NewReader(out)))
}

func TestStat(t *testing.T) {
	info, err := Stat()
	require.NoError(t, err)
	require.Equal(t, runtime.GOOS, info.Name)
	require.NotEmpty(t, info.Release)
	require.NotEmpty(t, info.Version)
}
