package cmd

import (
	"fmt"
	"os"

	"github.com/ostafen/fatscope/internal/extract"
	"github.com/spf13/cobra"
)

func DefineExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "export <image>",
		Short:        "Write the file map of an image as a DFXML report",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunExport,
	}
	cmd.Flags().StringP("output", "o", "", "path of the report (default report_<timestamp>.xml)")
	return cmd
}

func RunExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = fmt.Sprintf("report_%s.xml", extract.GenSessionID())
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := extract.ExportDFXML(s.vol, f, absPath(args[0]), s.diag); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.log.Infof("Report saved to: \t%s", absPath(output))
	return nil
}
