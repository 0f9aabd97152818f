package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/ostafen/fatscope/internal/extract"
	"github.com/ostafen/fatscope/pkg/util/format"
	"github.com/spf13/cobra"
)

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func DefineSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "search <image> <substring>",
		Short:        "List the paths of the entries whose name contains a substring",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			return s.emit(cmd, s.vol.SearchReport(args[1]), false)
		},
	}
}

func DefineTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "tree <image>",
		Short:        "Print the file map of an image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			return s.emit(cmd, s.vol.FileMapReport(), false)
		},
	}
}

func DefineSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "save <image> <path>",
		Short:        "Copy the content of one file out of an image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunSave,
	}
	cmd.Flags().StringP("output-dir", "o", ".", "directory the file is written to")
	return cmd
}

func RunSave(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	outDir, _ := cmd.Flags().GetString("output-dir")

	dest, n, err := extract.SaveFile(s.vol, args[1], outDir)
	if err != nil {
		return err
	}
	s.log.Infof("Saved %s (%s) to %s", args[1], format.FormatBytes(n), absPath(dest))
	return nil
}

func DefineCatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <image> [path]",
		Short: "Print the content of a file, or of every .txt file",
		Long: `The 'cat' command prints the content of the file at path. Without a path, it prints
every file whose path contains ".txt", each one preceded by its path.
File content always spans whole blocks: use --trim to drop the trailing NUL padding.`,
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         RunCat,
	}
	cmd.Flags().Bool("trim", false, "strip trailing NUL bytes from the content")
	return cmd
}

func RunCat(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	trim, _ := cmd.Flags().GetBool("trim")
	clean := func(data []byte) []byte {
		if trim {
			return bytes.TrimRight(data, "\x00")
		}
		return data
	}

	if len(args) == 2 {
		data, err := s.vol.ReadTextFile(args[1])
		if err != nil {
			return err
		}
		_, err = s.out.Write(clean(data))
		return err
	}

	for _, rec := range s.vol.Index().TextFiles() {
		data, err := s.vol.ReadContent(rec.FirstBlock)
		if err != nil {
			s.log.Warnf("unable to read %s: %v", rec.Path, err)
			continue
		}
		if _, err := fmt.Fprintf(s.out, "==> %s <==\n%s\n", rec.Path, clean(data)); err != nil {
			return fmt.Errorf("writing %s: %w", rec.Path, err)
		}
	}
	return nil
}
