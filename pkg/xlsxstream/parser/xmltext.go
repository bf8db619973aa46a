package parser

import (
	"encoding/xml"
	"strings"
)

// readElementText concatenates the character data of the element whose
// start tag was just consumed, including nested elements.
func readElementText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return sb.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

// readRichText collects the t runs of an si or is element. Phonetic runs
// are skipped.
func readRichText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return sb.String(), err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPh", "phoneticPr":
				if err := decoder.Skip(); err != nil {
					return sb.String(), err
				}
				continue
			case "t":
				inText = true
			}
			depth++
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			depth--
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

func attrValue(se xml.StartElement, name string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
