// Package xref parses classic cross-reference tables from an in-memory PDF
// and checks that every recorded byte offset lands exactly on the object it
// claims to address. The document service runs this check on every generated
// file before handing bytes to a caller.
package xref

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Entry is a single cross-reference line.
type Entry struct {
	Object     int
	Offset     int64
	Generation int
	Free       bool
}

// Table is the parsed cross-reference section plus its trailer keys.
type Table struct {
	Entries   []Entry
	Size      int
	Root      int
	StartXRef int64
}

// Parse locates the startxref pointer at the end of the file and parses the
// cross-reference table and trailer it points at. Incremental-update chains
// and cross-reference streams are out of scope: generated documents carry a
// single classic table.
func Parse(b []byte) (*Table, error) {
	start, err := findStartXRef(b)
	if err != nil {
		return nil, err
	}
	if start < 0 || start >= int64(len(b)) {
		return nil, fmt.Errorf("startxref offset %d out of bounds (file size %d)", start, len(b))
	}

	t := &Table{StartXRef: start}
	scanner := bufio.NewScanner(bytes.NewReader(b[start:]))

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "xref" {
		return nil, fmt.Errorf("expected 'xref' keyword at offset %d", start)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "trailer" {
			break
		}

		// Subsection header: first object number, entry count.
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid xref subsection header: %q", line)
		}
		first, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid subsection start %q: %w", parts[0], err)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid subsection count %q: %w", parts[1], err)
		}

		for i := 0; i < count; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected end of xref entries")
			}
			entry, err := parseEntry(scanner.Text(), first+i)
			if err != nil {
				return nil, err
			}
			t.Entries = append(t.Entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read xref table: %w", err)
	}

	if err := parseTrailer(scanner, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Verify parses the table and confirms that every in-use entry's offset lands
// exactly on the "N G obj" token for object N. Any drift means the file is
// corrupt for strict readers.
func Verify(b []byte) error {
	t, err := Parse(b)
	if err != nil {
		return err
	}
	if t.Root == 0 {
		return fmt.Errorf("trailer has no Root reference")
	}
	for _, e := range t.Entries {
		if e.Free {
			continue
		}
		want := fmt.Sprintf("%d %d obj", e.Object, e.Generation)
		if e.Offset < 0 || e.Offset+int64(len(want)) > int64(len(b)) {
			return fmt.Errorf("object %d: offset %d out of bounds", e.Object, e.Offset)
		}
		if got := string(b[e.Offset : e.Offset+int64(len(want))]); got != want {
			return fmt.Errorf("object %d: offset %d points at %q, want %q", e.Object, e.Offset, got, want)
		}
	}
	return nil
}

// parseEntry reads one 20-byte entry line, liberal about trailing whitespace.
func parseEntry(line string, objNum int) (Entry, error) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return Entry{}, fmt.Errorf("invalid xref entry for object %d: %q", objNum, line)
	}
	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid offset %q for object %d: %w", parts[0], objNum, err)
	}
	gen, err := strconv.Atoi(parts[1])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid generation %q for object %d: %w", parts[1], objNum, err)
	}
	entry := Entry{Object: objNum, Offset: offset, Generation: gen}
	switch parts[2] {
	case "n":
	case "f":
		entry.Free = true
	default:
		return Entry{}, fmt.Errorf("unknown xref flag %q for object %d", parts[2], objNum)
	}
	return entry, nil
}

// parseTrailer extracts /Size and /Root from the trailer dictionary.
func parseTrailer(scanner *bufio.Scanner, t *Table) error {
	var dict strings.Builder
	depth := 0
	for scanner.Scan() {
		line := scanner.Text()
		depth += strings.Count(line, "<<") - strings.Count(line, ">>")
		dict.WriteString(line)
		dict.WriteString("\n")
		if strings.Contains(line, ">>") && depth <= 0 {
			break
		}
	}
	content := dict.String()
	if content == "" {
		return fmt.Errorf("missing trailer dictionary")
	}

	if v, ok := trailerValue(content, "/Size"); ok {
		if size, err := strconv.Atoi(v); err == nil {
			t.Size = size
		}
	}
	if v, ok := trailerValue(content, "/Root"); ok {
		if root, err := strconv.Atoi(v); err == nil {
			t.Root = root
		}
	}
	return nil
}

// trailerValue returns the token following a trailer key.
func trailerValue(content, key string) (string, bool) {
	idx := strings.Index(content, key)
	if idx < 0 {
		return "", false
	}
	fields := strings.Fields(content[idx+len(key):])
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// findStartXRef scans the file tail for the startxref pointer.
func findStartXRef(b []byte) (int64, error) {
	tail := b
	if len(tail) > 256 {
		tail = tail[len(tail)-256:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("missing startxref marker")
	}
	rest := tail[idx+len("startxref"):]
	fields := strings.Fields(string(rest))
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref marker has no offset")
	}
	off, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset %q: %w", fields[0], err)
	}
	return off, nil
}
