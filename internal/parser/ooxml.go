package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX pulls the document body out of a Word OOXML archive and strips
// the XML markup, keeping paragraph boundaries.
func extractDOCX(data []byte) (string, error) {
	raw, err := readZipEntry(data, "word/document.xml")
	if err != nil {
		return "", err
	}
	return stripWordXML(raw, "p", "br"), nil
}

// extractODT does the same for OpenDocument text archives.
func extractODT(data []byte) (string, error) {
	raw, err := readZipEntry(data, "content.xml")
	if err != nil {
		return "", err
	}
	return stripWordXML(raw, "p", "h"), nil
}

func readZipEntry(data []byte, entryName string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty archive", ErrCorruptDocument)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name != entryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s not found", ErrCorruptDocument, entryName)
}

// Table cell and row elements, Word (tc/tr) and OpenDocument
// (table-cell/table-row) local names.
var tableCellElems = map[string]struct{}{"tc": {}, "table-cell": {}}
var tableRowElems = map[string]struct{}{"tr": {}, "table-row": {}}

// stripWordXML walks the token stream collecting character data. Closing any
// of the given paragraph-like elements emits a paragraph break. Cells of a
// table row are joined with " | " so tabular content survives extraction.
func stripWordXML(raw []byte, paragraphElems ...string) string {
	breaks := make(map[string]struct{}, len(paragraphElems))
	for _, name := range paragraphElems {
		breaks[name] = struct{}{}
	}

	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf, cellBuf strings.Builder
	var cells []string
	inCell := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return string(raw)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if _, ok := tableCellElems[t.Name.Local]; ok {
				inCell = true
				cellBuf.Reset()
			}
		case xml.CharData:
			if inCell {
				cellBuf.Write(t)
			} else {
				buf.Write(t)
			}
		case xml.EndElement:
			if _, ok := tableCellElems[t.Name.Local]; ok {
				cells = append(cells, strings.TrimSpace(cellBuf.String()))
				cellBuf.Reset()
				inCell = false
				continue
			}
			if _, ok := tableRowElems[t.Name.Local]; ok {
				if len(cells) > 0 {
					buf.WriteString(strings.Join(cells, " | "))
					buf.WriteString("\n\n")
					cells = nil
				}
				continue
			}
			if _, ok := breaks[t.Name.Local]; !ok {
				continue
			}
			if inCell {
				if cellBuf.Len() > 0 {
					cellBuf.WriteString(" ")
				}
			} else if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
