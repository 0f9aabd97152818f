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
	"github.com/ostafen/fatscope/internal/disk"
	"github.com/ostafen/fatscope/internal/env"
	"github.com/ostafen/fatscope/internal/tree"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               env.AppName,
		Short:             env.AppName + " - inspect and recover files from chain table images",
		SilenceUsage:      true,
		PersistentPreRunE: applyConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML file with default values for the global flags")
	flags.Int("superblock-size", disk.SuperblockSize, "number of bytes occupied by the superblock")
	flags.Int("max-entries", tree.DefaultMaxEntries, "maximum number of entries of the directory tree")
	flags.Bool("mmap", false, "memory map the image instead of reading it")
	flags.String("log-level", "INFO", "minimum level of console and log file messages (DEBUG, INFO, WARN, ERROR)")
	flags.String("log-file", "", "write a detailed decode log to this file")
	flags.StringP("format", "f", "text", "output format: text, json or yaml")
	flags.String("save-report", "", "also write the report to this file")

	rootCmd.AddCommand(
		DefineInfoCommand(),
		DefineFatCommand(),
		DefineRootDirCommand(),
		DefineSearchCommand(),
		DefineTreeCommand(),
		DefineSaveCommand(),
		DefineCatCommand(),
		DefineExtractCommand(),
		DefineExportCommand(),
		DefineMountCommand(),
		DefineVersionCommand(),
	)
	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

func applyConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return cfg.Apply(cmd)
}
