package importer

import "strings"

// Delimiter is the fixed field separator for import text. Parsing is a
// plain split: embedded delimiters inside a field are not supported, and
// there is no quote handling. This is a stated design limitation, not a
// bug; exports that need escaping must be pre-processed.
const Delimiter = ","

// ParsedBatch is the result of parsing raw import text: the header names
// in file order plus one value map per data line.
type ParsedBatch struct {
	Headers []string
	Rows    []ParsedRow
}

// ParsedRow holds the 1-based source line number of a data row and its
// values keyed by header name.
type ParsedRow struct {
	Line   int
	Values map[string]string
}

// Parse splits raw delimited text into a header row and value maps. The
// first non-blank line is the header; every following non-blank line is
// a data row. All fields are trimmed. Rows with fewer fields than
// headers simply omit the trailing keys; extra fields are dropped.
// Empty input (no non-blank lines) yields empty headers and zero rows.
func Parse(text string) ParsedBatch {
	var batch ParsedBatch

	line := 0
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		fields := strings.Split(raw, Delimiter)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if batch.Headers == nil {
			batch.Headers = fields
			continue
		}

		line++
		values := make(map[string]string, len(batch.Headers))
		for i, h := range batch.Headers {
			if i >= len(fields) {
				break
			}
			values[h] = fields[i]
		}
		batch.Rows = append(batch.Rows, ParsedRow{Line: line, Values: values})
	}

	return batch
}

// HasHeader reports whether the batch carries the given header name.
func (b ParsedBatch) HasHeader(name string) bool {
	for _, h := range b.Headers {
		if h == name {
			return true
		}
	}
	return false
}
