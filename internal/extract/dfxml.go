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
	"io"
	"log/slog"

	"github.com/ostafen/fatscope/internal/env"
	"github.com/ostafen/fatscope/internal/volume"
	"github.com/ostafen/fatscope/pkg/dfxml"
)

// ExportDFXML writes the file map of v as a DFXML report, with one byte
// run per extent of contiguous blocks. Files whose chain cannot be
// resolved are listed without runs.
func ExportDFXML(v *volume.Volume, w io.Writer, imageName string, diag *slog.Logger) error {
	if diag == nil {
		diag = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sb := v.SuperblockReport()
	layout := v.Layout()

	dw := dfxml.NewDFXMLWriter(w)
	err := dw.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: imageName,
			BlockSize:     int(sb.BlockSize),
			ImageSize:     uint64(sb.ImageSize),
		},
	})
	if err != nil {
		return err
	}

	for _, rec := range v.Index().Records() {
		obj := dfxml.FileObject{Filename: rec.Path, NameType: dfxml.NameTypeRegular}

		if rec.IsDir() {
			obj.NameType = dfxml.NameTypeDirectory
		} else if blocks, err := v.ContentBlocks(rec.FirstBlock); err != nil {
			diag.Warn("unable to resolve byte runs", "path", rec.Path, "err", err)
		} else {
			var runs []dfxml.ByteRun
			for i, b := range blocks {
				runs = dfxml.AppendRun(runs, dfxml.ByteRun{
					Offset:    uint64(int64(i) * layout.BlockSize),
					ImgOffset: uint64(layout.BlockOffset(b)),
					Length:    uint64(layout.BlockSize),
				})
			}
			obj.FileSize = uint64(int64(len(blocks)) * layout.BlockSize)
			obj.ByteRuns.Runs = runs
		}

		if err := dw.WriteFileObject(obj); err != nil {
			return err
		}
	}
	return dw.Close()
}
