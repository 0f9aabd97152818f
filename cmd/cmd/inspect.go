package cmd

import (
	"github.com/ostafen/fatscope/internal/report"
	"github.com/ostafen/fatscope/internal/volume"
	"github.com/spf13/cobra"
)

// defineReportCommand returns a command printing one structure of an
// image, in summary or, with --detail, in full.
func defineReportCommand(use, short string, build func(*volume.Volume) report.Report) *cobra.Command {
	cmd := &cobra.Command{
		Use:          use + " <image>",
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			detail, _ := cmd.Flags().GetBool("detail")
			return s.emit(cmd, build(s.vol), detail)
		},
	}
	cmd.Flags().BoolP("detail", "d", false, "print the full content of the structure")
	return cmd
}

func DefineInfoCommand() *cobra.Command {
	return defineReportCommand("info", "Show the superblock of an image", func(v *volume.Volume) report.Report {
		return v.SuperblockReport()
	})
}

func DefineFatCommand() *cobra.Command {
	return defineReportCommand("fat", "Show the chain table of an image", func(v *volume.Volume) report.Report {
		return v.ChainTableReport()
	})
}

func DefineRootDirCommand() *cobra.Command {
	return defineReportCommand("root", "Show the root directory of an image", func(v *volume.Volume) report.Report {
		return v.DirectoryReport()
	})
}
