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
package extract

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ostafen/fatscope/internal/logger"
	"github.com/ostafen/fatscope/internal/tree"
	"github.com/ostafen/fatscope/internal/volume"
	"github.com/ostafen/fatscope/pkg/pbar"
	osutils "github.com/ostafen/fatscope/pkg/util/os"
)

type Options struct {
	OutputDir string
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
	Logger   *logger.Logger
	Diag     *slog.Logger
}

// Summary describes a finished extraction.
type Summary struct {
	OutputDir string
	Dirs      int
	Files     int
	Failed    int
	Skipped   int // files shadowed by an earlier entry with the same path
	Bytes     int64
	Duration  time.Duration
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = logger.New(io.Discard, logger.ErrorLevel)
	}
	if o.Diag == nil {
		o.Diag = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
}

// GenSessionID returns a name for an extraction session, of the form
// YYYYMMDD_HHMMSS.
func GenSessionID() string {
	return time.Now().Format("20060102_150405")
}

// localPath maps an absolute image path to a path below dir, or fails if
// the entry names would escape it.
func localPath(dir, imagePath string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(imagePath, tree.Separator))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("refusing to write %q outside of %s", imagePath, dir)
	}
	return filepath.Join(dir, rel), nil
}

// Extract recreates the directory tree of v below opts.OutputDir and
// writes the content of every file. A file that cannot be read or written
// is reported and skipped.
func Extract(v *volume.Volume, opts Options) (Summary, error) {
	opts.setDefaults()

	if _, err := osutils.EnsureDir(opts.OutputDir, false); err != nil {
		return Summary{}, err
	}

	records := v.Index().Records()

	var totalBytes int64
	totalFiles := 0
	for _, rec := range records {
		if rec.IsDir() {
			continue
		}
		totalFiles++
		if size, err := v.ContentSize(rec.FirstBlock); err == nil {
			totalBytes += size
		}
	}

	start := time.Now()
	sum := Summary{OutputDir: opts.OutputDir}
	bar := pbar.NewProgressBarState(opts.Progress, totalBytes, totalFiles)

	for _, rec := range records {
		if first, _ := v.Index().Lookup(rec.Path); first != rec {
			opts.Diag.Warn("skipping shadowed entry", "path", rec.Path, "first_block", rec.FirstBlock)
			if !rec.IsDir() {
				bar.Advance(0, true)
				sum.Skipped++
			}
			continue
		}

		dest, err := localPath(opts.OutputDir, rec.Path)
		if err != nil {
			opts.Diag.Warn("skipping entry", "path", rec.Path, "err", err)
			opts.Logger.Warnf("skipping %s: %v", rec.Path, err)
			sum.Failed++
			if !rec.IsDir() {
				bar.Advance(0, true)
			}
			continue
		}

		if rec.IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return sum, fmt.Errorf("failed to create directory %q: %w", dest, err)
			}
			sum.Dirs++
			continue
		}

		n, err := extractFile(v, rec, dest)
		if err != nil {
			opts.Diag.Error("unable to extract file", "path", rec.Path, "first_block", rec.FirstBlock, "err", err)
			opts.Logger.Warnf("unable to extract %s: %v", rec.Path, err)
			sum.Failed++
			bar.Advance(n, true)
			continue
		}

		opts.Diag.Debug("extracted file", "path", rec.Path, "dest", dest, "bytes", n)
		sum.Files++
		sum.Bytes += n
		bar.Advance(n, false)
	}
	bar.Finish()

	sum.Duration = time.Since(start)
	return sum, nil
}

func extractFile(v *volume.Volume, rec tree.PathRecord, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, err
	}

	r, err := v.OpenContent(rec.FirstBlock)
	if err != nil {
		return 0, err
	}
	return dumpFile(dest, r)
}

// SaveFile writes the file at imagePath of v into dir, under its base name,
// and returns the path written.
func SaveFile(v *volume.Volume, imagePath, dir string) (string, int64, error) {
	if _, err := osutils.EnsureDir(dir, false); err != nil {
		return "", 0, err
	}

	rec, err := v.Lookup(imagePath)
	if err != nil {
		return "", 0, err
	}
	if rec.IsDir() {
		return "", 0, fmt.Errorf("%w: %s is a directory", volume.ErrNotAFile, imagePath)
	}

	name := filepath.Base(filepath.FromSlash(rec.Name))
	if !filepath.IsLocal(name) {
		return "", 0, fmt.Errorf("refusing to write %q outside of %s", imagePath, dir)
	}
	dest := filepath.Join(dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file %q: %w", dest, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1024*1024)
	n, err := v.SaveFile(imagePath, w)
	if err != nil {
		f.Close()
		os.Remove(dest)
		return "", n, err
	}
	if err := w.Flush(); err != nil {
		return "", n, err
	}
	return dest, n, f.Close()
}

func dumpFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1024*1024) // 1MB buffer

	n, err := io.Copy(w, r)
	if err != nil {
		return n, err
	}
	if err := w.Flush(); err != nil {
		return n, err
	}
	return n, f.Close()
}
