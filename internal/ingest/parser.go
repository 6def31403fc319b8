// Package ingest turns the on-disk voter dump into the typed, immutable
// snapshot the rest of the pipeline operates on.
package ingest

import (
	"fmt"
	"io"
	"strings"
)

// dumpColumns is the column order of the voters table in the source dump.
var dumpColumns = []string{
	"id", "serial_bn", "serial", "name", "name_normalized",
	"voter_id_bn", "voter_id", "father_name", "father_name_normalized",
	"mother_name", "occupation", "date_of_birth", "address",
	"voter_area_no_bn", "voter_area_no", "union", "ward_bn", "ward",
	"gender", "created_at", "updated_at", "phonetic_name", "phonetic_father_name",
}

// ParseDump extracts raw voter rows from a SQL dump. Each row is a field map
// keyed by column name; NULL columns are absent. Statements carrying an
// explicit column list are mapped by those names; bare INSERTs fall back to
// the full dump column order. A dump with no parseable rows fails fast;
// partial loads are worse than no load.
func ParseDump(r io.Reader) ([]map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	content := string(data)

	var rows []map[string]string
	for {
		stmt, head, rest, found := nextInsert(content)
		if !found {
			break
		}
		content = rest

		cols := parseColumnList(head)
		if cols == nil {
			cols = dumpColumns
		}
		for _, tuple := range scanTuples(stmt) {
			if len(tuple) < len(cols) {
				continue
			}
			row := make(map[string]string, len(cols))
			for i, col := range cols {
				if tuple[i].null {
					continue
				}
				row[col] = tuple[i].value
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no voter rows found in dump")
	}
	return rows, nil
}

// nextInsert locates the next INSERT INTO ... voters ... VALUES statement and
// returns its body (up to the terminating semicolon), the lowercased header
// between INSERT INTO and VALUES, and the remainder.
func nextInsert(content string) (stmt, head, rest string, found bool) {
	lower := strings.ToLower(content)
	search := lower
	offset := 0
	for {
		idx := strings.Index(search, "insert into")
		if idx < 0 {
			return "", "", "", false
		}
		abs := offset + idx
		valIdx := strings.Index(lower[abs:], "values")
		if valIdx < 0 {
			return "", "", "", false
		}
		head = lower[abs : abs+valIdx]
		if strings.Contains(head, "voters") {
			body := content[abs+valIdx+len("values"):]
			end := terminatorIndex(body)
			return body[:end], head, content[abs+valIdx+len("values")+end:], true
		}
		offset = abs + len("insert into")
		search = lower[offset:]
	}
}

// parseColumnList reads the parenthesized column list out of an INSERT
// header. Returns nil when the statement carries no explicit list.
func parseColumnList(head string) []string {
	open := strings.IndexByte(head, '(')
	if open < 0 {
		return nil
	}
	length := strings.IndexByte(head[open:], ')')
	if length < 0 {
		return nil
	}
	parts := strings.Split(head[open+1:open+length], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.Trim(strings.TrimSpace(p), "`\"")
		if name == "" {
			return nil
		}
		cols = append(cols, name)
	}
	return cols
}

// terminatorIndex finds the statement-ending semicolon outside quotes.
func terminatorIndex(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			if inQuote && i+1 < len(s) && s[i+1] == '\'' {
				i++ // escaped quote
				continue
			}
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return i
			}
		}
	}
	return len(s)
}

// field is one raw column value; null marks SQL NULL.
type field struct {
	value string
	null  bool
}

// scanTuples parses the VALUES body into per-row field slices with a
// quote-aware scanner ('' unescapes to ').
func scanTuples(body string) [][]field {
	var (
		tuples  [][]field
		current []field
		buf     strings.Builder
		inTuple bool
		inQuote bool
		quoted  bool
	)

	flushValue := func() {
		raw := strings.TrimSpace(buf.String())
		buf.Reset()
		wasQuoted := quoted
		quoted = false
		if raw == "" && !wasQuoted {
			return
		}
		if !wasQuoted && strings.EqualFold(raw, "NULL") {
			current = append(current, field{null: true})
			return
		}
		current = append(current, field{value: raw})
	}

	for i := 0; i < len(body); i++ {
		ch := body[i]

		if inQuote {
			if ch == '\'' {
				if i+1 < len(body) && body[i+1] == '\'' {
					buf.WriteByte('\'')
					i++
					continue
				}
				inQuote = false
				continue
			}
			buf.WriteByte(ch)
			continue
		}

		switch ch {
		case '\'':
			if inTuple {
				inQuote = true
				quoted = true
			}
		case '(':
			if !inTuple {
				inTuple = true
				current = nil
			}
		case ')':
			if inTuple {
				flushValue()
				if len(current) > 0 {
					tuples = append(tuples, current)
				}
				inTuple = false
			}
		case ',':
			if inTuple {
				flushValue()
			}
		default:
			if inTuple {
				buf.WriteByte(ch)
			}
		}
	}

	return tuples
}
