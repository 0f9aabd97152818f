package dfxml

import (
	"encoding/xml"
	"errors"
	"io"
)

// Document is a decoded DFXML report.
type Document struct {
	Source      Source
	FileObjects []FileObject
}

// Read decodes the source description and every file object of a report,
// skipping any other element.
func Read(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	var doc Document
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "source":
			if err := dec.DecodeElement(&doc.Source, &start); err != nil {
				return nil, err
			}
		case "fileobject":
			var fo FileObject
			if err := dec.DecodeElement(&fo, &start); err != nil {
				return nil, err
			}
			doc.FileObjects = append(doc.FileObjects, fo)
		}
	}
}
