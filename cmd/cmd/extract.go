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
package cmd

import (
	"github.com/ostafen/fatscope/internal/extract"
	"github.com/ostafen/fatscope/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract every file of an image",
		Long: `The 'extract' command recreates the directory tree of an image below the output directory
and writes the content of every file. Files whose chain is broken are reported and skipped.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunExtract,
	}
	cmd.Flags().StringP("output-dir", "o", "", "directory the tree is extracted to (default extract_<timestamp>)")
	cmd.Flags().Bool("no-progress", false, "do not draw the progress bar")
	return cmd
}

func RunExtract(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		outDir = "extract_" + extract.GenSessionID()
	}

	opts := extract.Options{
		OutputDir: outDir,
		Logger:    s.log,
		Diag:      s.diag,
	}
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		opts.Progress = cmd.ErrOrStderr()
	}

	s.log.Info("Starting extraction...")
	s.log.Infof("Source: \t%s", absPath(args[0]))
	s.log.Infof("Destination: \t%s", absPath(outDir))

	sum, err := extract.Extract(s.vol, opts)
	if err != nil {
		return err
	}

	s.log.Info("Extraction completed!")
	s.log.Infof("Directories: \t%d", sum.Dirs)
	s.log.Infof("Files: \t%d", sum.Files)
	if sum.Failed > 0 {
		s.log.Warnf("Failed: \t%d", sum.Failed)
	}
	if sum.Skipped > 0 {
		s.log.Infof("Shadowed: \t%d", sum.Skipped)
	}
	s.log.Infof("Total data: \t%s", format.FormatBytes(sum.Bytes))
	s.log.Infof("Duration: \t%s", format.FormatDurationHMS(sum.Duration))
	return nil
}
