package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ostafen/fatscope/pkg/util/format"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (supported: text, json, yaml)", s)
}

// Report is a view that can be printed as text. With detail set, the text
// form includes the raw content of the structure as well as its summary.
type Report interface {
	WriteText(w io.Writer, detail bool) error
}

// Write renders r to w in the given format. Machine readable formats always
// carry every field.
func Write(w io.Writer, f Format, r Report, detail bool) error {
	switch f {
	case FormatText:
		return r.WriteText(w, detail)
	case FormatJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatYAML:
		b, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unsupported output format: %s", f)
}

// Save writes r to the file at path, replacing it.
func Save(path string, f Format, r Report, detail bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer file.Close()

	if err := Write(file, f, r, detail); err != nil {
		return err
	}
	return file.Close()
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func (sb Superblock) WriteText(w io.Writer, detail bool) error {
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "Superblock: %d bytes\n", sb.SuperblockSize)
	fmt.Fprintf(tw, "  block size (%d bytes):\t%d\n", sb.FieldSize, sb.BlockSize)
	fmt.Fprintf(tw, "  chain table size (%d bytes):\t%d\n", sb.FieldSize, sb.FATSize)
	fmt.Fprintf(tw, "  root capacity (%d bytes):\t%d\n", sb.FieldSize, sb.RootCapacity)
	if detail {
		if sb.Image != "" {
			fmt.Fprintf(tw, "  image:\t%s\n", sb.Image)
		}
		fmt.Fprintf(tw, "  image size:\t%s (%d bytes)\n", format.FormatBytes(sb.ImageSize), sb.ImageSize)
		fmt.Fprintf(tw, "  data offset:\t%d\n", sb.DataOffset)
		fmt.Fprintf(tw, "  data blocks:\t%d\n", sb.DataBlocks)
	}
	return tw.Flush()
}

func (t ChainTable) WriteText(w io.Writer, detail bool) error {
	fmt.Fprintf(w, "Chain table: %d bytes at offset %d, %d entries of %d bytes\n",
		t.Size, t.Offset, len(t.Entries), t.RecordSize)
	if !detail {
		return nil
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "BLOCK\tTAG\tNEXT\t")
	for i, e := range t.Entries {
		end := ""
		if e.IsLast() {
			end = "end"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", i, e.Tag, e.Next, end)
	}
	return tw.Flush()
}

func (d Directory) WriteText(w io.Writer, detail bool) error {
	fmt.Fprintf(w, "Root directory at offset %d: %d records of %d bytes (name %d, first block %d, attributes %d)\n",
		d.Offset, d.Capacity, d.RecordSize, d.NameSize, d.BlockSize, d.AttrSize)
	fmt.Fprintf(w, "%d entries\n", len(d.Entries))
	if !detail {
		return nil
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "NAME\tFIRST BLOCK\tTYPE\tATTR")
	for _, e := range d.Entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", e.Name, e.FirstBlock, e.Kind, e.Attr)
	}
	return tw.Flush()
}

func (s Search) WriteText(w io.Writer, _ bool) error {
	if len(s.Paths) == 0 {
		_, err := fmt.Fprintf(w, "no entries match %q\n", s.Query)
		return err
	}
	for _, p := range s.Paths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteText prints one line per record, indented by one tab per level.
func (m FileMap) WriteText(w io.Writer, _ bool) error {
	for _, r := range m.Records {
		_, err := fmt.Fprintf(w, "%s%s: first block: %d, type: %s\n",
			strings.Repeat("\t", r.Depth()), r.Path, r.FirstBlock, r.Kind)
		if err != nil {
			return err
		}
	}
	return nil
}
