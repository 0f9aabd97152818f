package cmd

import (
	"fmt"

	"github.com/ostafen/fatscope/internal/env"
	"github.com/spf13/cobra"
)

func DefineVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			PrintLogo(cmd)
		},
	}
}

func PrintLogo(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "  __       _                            ")
	fmt.Fprintln(out, " / _| __ _| |_ ___  ___ ___  _ __   ___ ")
	fmt.Fprintln(out, "| |_ / _` | __/ __|/ __/ _ \\| '_ \\ / _ \\")
	fmt.Fprintln(out, "|  _| (_| | |_\\__ \\ (_| (_) | |_) |  __/")
	fmt.Fprintln(out, "|_|  \\__,_|\\__|___/\\___\\___/| .__/ \\___|")
	fmt.Fprintln(out, "                            |_|         ")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Chain table image inspection and recovery tool")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Version:    %s\n", env.Version)
	fmt.Fprintf(out, "Commit:     %s\n", env.CommitHash)
	fmt.Fprintf(out, "Build Time: %s\n", env.BuildTime)
}
