package sidecar

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// splitFrontMatter splits a sidecar document into its YAML front matter
// block (without delimiters) and the remaining markdown body. A document
// without a leading front matter block yields nil front matter and the whole
// input as body.
func splitFrontMatter(data []byte) (fm, body []byte) {
	rest, ok := cutLine(data, delimiter)
	if !ok {
		return nil, data
	}

	// Scan line by line for the closing delimiter.
	offset := len(data) - len(rest)
	search := rest
	for len(search) > 0 {
		line, remainder := nextLine(search)
		if bytes.Equal(bytes.TrimRight(line, "\r"), delimiter) {
			fmEnd := len(data) - len(search)
			return data[offset:fmEnd], remainder
		}
		search = remainder
	}

	// Unterminated front matter block: treat the whole document as body so
	// nothing is silently discarded.
	return nil, data
}

// cutLine strips a line equal to want from the start of data.
func cutLine(data, want []byte) ([]byte, bool) {
	line, rest := nextLine(data)
	if !bytes.Equal(bytes.TrimRight(line, "\r"), want) {
		return nil, false
	}
	return rest, true
}

// nextLine returns the first line of data (without the newline) and the rest.
func nextLine(data []byte) (line, rest []byte) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, nil
}

// renderDocument serializes front matter fields and the preserved body back
// into a sidecar document.
func renderDocument(fields map[string]interface{}, body []byte) ([]byte, error) {
	var buf bytes.Buffer

	if len(fields) > 0 {
		fm, err := yaml.Marshal(fields)
		if err != nil {
			return nil, err
		}
		buf.Write(delimiter)
		buf.WriteByte('\n')
		buf.Write(fm)
		buf.Write(delimiter)
		buf.WriteByte('\n')
	}

	buf.Write(body)
	return buf.Bytes(), nil
}
