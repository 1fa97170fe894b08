package parser

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// docxPlainText turns word/document.xml into text: every body paragraph
// followed by a newline, then every table row as its cell texts each
// followed by a space, ending in a newline.
func docxPlainText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		body, tables strings.Builder
		para         strings.Builder
		cellParas    []string
		row          strings.Builder
		tableDepth   int
		inText       bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tc":
				if tableDepth == 1 {
					cellParas = cellParas[:0]
				}
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 {
					body.WriteString(para.String())
					body.WriteByte('\n')
				} else {
					cellParas = append(cellParas, para.String())
				}
				para.Reset()
			case "tc":
				if tableDepth == 1 {
					row.WriteString(strings.Join(cellParas, "\n"))
					row.WriteByte(' ')
				}
			case "tr":
				if tableDepth == 1 {
					tables.WriteString(row.String())
					tables.WriteByte('\n')
					row.Reset()
				}
			case "tbl":
				tableDepth--
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return body.String() + tables.String(), nil
}
