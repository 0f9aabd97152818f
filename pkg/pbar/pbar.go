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
package pbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostafen/fatscope/pkg/util/format"
)

const MinRefreshRate = time.Millisecond * 500

const barLength = 20

// ProgressBarState tracks a copy of TotalBytes bytes spread over
// TotalFiles files and renders it on a single terminal line.
type ProgressBarState struct {
	out io.Writer

	TotalBytes     int64
	ProcessedBytes int64
	TotalFiles     int
	FilesDone      int
	FilesFailed    int

	StartTime          time.Time
	LastUpdateTime     time.Time
	LastProcessedBytes int64
}

func NewProgressBarState(out io.Writer, totalBytes int64, totalFiles int) *ProgressBarState {
	return &ProgressBarState{
		out:            out,
		TotalBytes:     totalBytes,
		TotalFiles:     totalFiles,
		StartTime:      time.Now(),
		LastUpdateTime: time.Unix(0, 0),
	}
}

// Advance records a finished file of n bytes.
func (pbs *ProgressBarState) Advance(n int64, failed bool) {
	pbs.ProcessedBytes += n
	if failed {
		pbs.FilesFailed++
	} else {
		pbs.FilesDone++
	}
	pbs.Render(false)
}

func (pbs *ProgressBarState) percentage() float64 {
	if pbs.TotalBytes <= 0 {
		if pbs.TotalFiles == 0 {
			return 100
		}
		return float64(pbs.FilesDone+pbs.FilesFailed) / float64(pbs.TotalFiles) * 100
	}
	return float64(pbs.ProcessedBytes) / float64(pbs.TotalBytes) * 100
}

func bar(percentage float64) string {
	filled := min(int(float64(barLength)*percentage/100), barLength)
	if filled == barLength {
		return strings.Repeat("=", barLength)
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barLength-filled-1)
}

// Render redraws the bar, at most once every MinRefreshRate unless force
// is set.
func (pbs *ProgressBarState) Render(force bool) {
	if !force && time.Since(pbs.LastUpdateTime) < MinRefreshRate {
		return
	}

	percentage := pbs.percentage()

	elapsed := time.Since(pbs.LastUpdateTime).Seconds()
	var speedMBps float64
	if elapsed > 0 {
		speedMBps = float64(pbs.ProcessedBytes-pbs.LastProcessedBytes) / elapsed / (1024 * 1024)
	}

	pbs.LastUpdateTime = time.Now()
	pbs.LastProcessedBytes = pbs.ProcessedBytes

	// \r returns to the start of the line; trailing spaces clear a longer previous line.
	fmt.Fprintf(pbs.out, "\r[INFO] Progress: [%s] %3.0f%% (%s/%s) | Files: %d/%d | Failed: %d | @ %.2fMB/s    ",
		bar(percentage),
		percentage,
		format.FormatBytes(pbs.ProcessedBytes),
		format.FormatBytes(pbs.TotalBytes),
		pbs.FilesDone,
		pbs.TotalFiles,
		pbs.FilesFailed,
		speedMBps,
	)
}

func (pbs *ProgressBarState) Finish() {
	pbs.Render(true)
	fmt.Fprintln(pbs.out)
}
