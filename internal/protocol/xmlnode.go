package protocol

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// element holds the direct children of one XML element, keyed by lowercased
// tag name. The wire protocol never nests data more than one level below a
// match element, so a flat map is sufficient.
type element map[string]string

// probe returns the first non-empty value among the candidate tags, in
// order. The upstream renames fields between categories and locales, so
// every logical field is resolved through an ordered candidate list rather
// than a single canonical tag.
func (e element) probe(candidates ...string) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(e[strings.ToLower(c)]); v != "" {
			return v
		}
	}
	return ""
}

func newDecoder(body []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(body))
	// Responses declare legacy encodings (gb2312) under some locales.
	d.CharsetReader = charset.NewReaderLabel
	d.Strict = false
	return d
}

// decodeElements collects every element named name anywhere in the document
// and flattens each one's children into an element map.
func decodeElements(body []byte, name string) ([]element, error) {
	d := newDecoder(body)
	var out []element
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, &ParseError{Op: "decode " + name, Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, name) {
			continue
		}
		el, err := decodeChildren(d, start.Name.Local)
		if err != nil {
			return nil, &ParseError{Op: "decode " + name, Err: err}
		}
		out = append(out, el)
	}
}

// decodeChildren reads tokens until the end of the current element,
// collecting each direct child's character data.
func decodeChildren(d *xml.Decoder, parent string) (element, error) {
	el := make(element)
	var (
		child string
		text  strings.Builder
		depth int
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				child = strings.ToLower(t.Name.Local)
				text.Reset()
			}
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 0 {
				return el, nil
			}
			if depth == 1 && child != "" {
				if _, exists := el[child]; !exists {
					el[child] = text.String()
				}
				child = ""
			}
			depth--
		}
	}
}

// decodeFlat flattens every leaf tag in the document into one element map.
// Login responses are a flat key/value document.
func decodeFlat(body []byte) (element, error) {
	d := newDecoder(body)
	el := make(element)
	var (
		current string
		text    strings.Builder
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return el, nil
		}
		if err != nil {
			return nil, &ParseError{Op: "decode flat response", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = strings.ToLower(t.Name.Local)
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if current != "" {
				if v := strings.TrimSpace(text.String()); v != "" {
					el[current] = v
				}
				current = ""
			}
		}
	}
}
