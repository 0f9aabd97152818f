// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package sysinfo describes the operating system the process runs on.
package sysinfo

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var SysUnknown = SysInfo{
	Name:    runtime.GOOS,
	Release: "unknown",
	Version: "unknown",
}

type SysInfo struct {
	Name    string // runtime.GOOS
	Release string // distribution or product name and version
	Version string // kernel or build version
}

func Stat() (*SysInfo, error) {
	info := SysInfo{Name: runtime.GOOS, Release: "unknown", Version: kernelVersion()}

	switch runtime.GOOS {
	case "linux":
		if f, err := os.Open("/etc/os-release"); err == nil {
			info.Release = linuxRelease(f)
			f.Close()
		}
	case "darwin":
		if out, err := exec.Command("sw_vers").Output(); err == nil {
			info.Release = darwinRelease(bytes.NewReader(out))
		}
	case "windows":
		if out, err := exec.Command("cmd", "/c", "ver").Output(); err == nil {
			info.Release = strings.TrimSpace(string(out))
		}
	}
	return &info, nil
}

// linuxRelease reads an os-release file.
func linuxRelease(r io.Reader) string {
	kv := parseKeyValues(r, "=")
	name, version := kv["NAME"], kv["VERSION"]
	if version == "" {
		version = kv["VERSION_ID"]
	}
	return joinNonEmpty(name, version, "unknown")
}

// darwinRelease reads the output of sw_vers.
func darwinRelease(r io.Reader) string {
	kv := parseKeyValues(r, ":")
	return joinNonEmpty(kv["ProductName"], kv["ProductVersion"], "macOS")
}

func parseKeyValues(r io.Reader, sep string) map[string]string {
	kv := make(map[string]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), sep)
		if !ok {
			continue
		}
		kv[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return kv
}

func joinNonEmpty(a, b, fallback string) string {
	s := strings.TrimSpace(a + " " + b)
	if s == "" {
		return fallback
	}
	return s
}
