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

//go:build linux
// +build linux

package fuse

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/fatscope/internal/logger"
	osutils "github.com/ostafen/fatscope/pkg/util/os"
)

const maxUnmountRetries = 3

// Mount serves v read-only at mountpoint until a termination signal
// unmounts it. A mountpoint created by Mount is removed afterwards.
func Mount(mountpoint string, v Volume, log *logger.Logger, diag *slog.Logger) error {
	created, err := osutils.EnsureDir(mountpoint, true)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("fatscope"), fuse.Subtype("fatscope"))
	if err != nil {
		return err
	}
	defer c.Close()

	served := make(chan error, 1)
	go func() {
		served <- fusefs.New(c, nil).Serve(NewImageFS(v, diag))
	}()

	log.Infof("Mounted at %s", mountpoint)
	return waitForUnmount(mountpoint, served, log)
}

func waitForUnmount(mountpoint string, served <-chan error, log *logger.Logger) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Waiting for termination signal...")

	attempts := 0
	for {
		select {
		case err := <-served:
			if err != nil {
				return fmt.Errorf("serve error: %w", err)
			}
			log.Info("Filesystem unmounted.")
			return nil

		case sig := <-sigc:
			log.Infof("Signal received: %v.", sig)

			if attempts >= maxUnmountRetries {
				return fmt.Errorf("unable to unmount %s after %d attempts", mountpoint, maxUnmountRetries)
			}
			attempts++

			log.Infof("Attempting unmount of %s (attempt %d/%d)...", mountpoint, attempts, maxUnmountRetries)
			if err := fuse.Unmount(mountpoint); err != nil {
				log.Warnf("Unmount failed: %v. Remaining retries: %d.", err, maxUnmountRetries-attempts)
				continue
			}
			log.Info("Unmounted successfully, exiting.")
			return nil
		}
	}
}
