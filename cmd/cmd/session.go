package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ostafen/fatscope/internal/image"
	"github.com/ostafen/fatscope/internal/logger"
	"github.com/ostafen/fatscope/internal/report"
	"github.com/ostafen/fatscope/internal/volume"
	"github.com/spf13/cobra"
)

// session is an image opened with the global options of a command.
type session struct {
	img     image.Image
	vol     *volume.Volume
	log     *logger.Logger
	diag    *slog.Logger
	logFile *os.File
	format  report.Format
	out     io.Writer
}

func openSession(cmd *cobra.Command, path string) (*session, error) {
	flags := cmd.Flags()
	sbSize, _ := flags.GetInt("superblock-size")
	maxEntries, _ := flags.GetInt("max-entries")
	useMmap, _ := flags.GetBool("mmap")
	logLevel, _ := flags.GetString("log-level")
	logFile, _ := flags.GetString("log-file")
	formatName, _ := flags.GetString("format")

	f, err := report.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(logLevel)
	s := &session{
		log:    logger.New(cmd.ErrOrStderr(), level),
		format: f,
		out:    cmd.OutOrStdout(),
	}

	s.diag, s.logFile, err = logger.NewFileLogger(logFile, level.SlogLevel())
	if err != nil {
		return nil, err
	}

	s.img, err = image.Open(path, useMmap)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open image %q: %w", path, err)
	}

	s.vol, err = volume.Open(s.img, volume.Options{
		SuperblockSize: sbSize,
		Name:           s.img.Name(),
		MaxEntries:     maxEntries,
		Logger:         s.diag.With("image", s.img.Name()),
	})
	if err != nil {
		s.diag.Error("unable to decode image", "err", err)
		s.Close()
		return nil, fmt.Errorf("failed to decode image %q: %w", path, err)
	}
	return s, nil
}

func (s *session) Close() {
	if s.img != nil {
		s.img.Close()
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// emit writes r in the session format and, if requested, to the report
// file.
func (s *session) emit(cmd *cobra.Command, r report.Report, detail bool) error {
	if err := report.Write(s.out, s.format, r, detail); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("save-report")
	if path == "" {
		return nil
	}
	if err := report.Save(path, s.format, r, detail); err != nil {
		return err
	}
	s.log.Infof("Report saved to %s", absPath(path))
	return nil
}
