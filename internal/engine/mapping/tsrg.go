package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"shadowmap/internal/core/errors"
)

// ParseTSRG reads a TSRG mapping file. Class lines are unindented; member
// lines are indented under their class:
//
//	com/example/Foo a
//		count b
//		update ()V c
//
// Renamed member owners are the class's renamed name. Method descriptors on
// the renamed side are derived by remapping the declared descriptor through
// the class map, which is why classes are parsed in a first pass.
func ParseTSRG(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "read tsrg")
	}

	table := NewTable()

	// First pass: class map, needed to remap method descriptors.
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.New(errors.CodeParseError, "tsrg class line requires 2 names: "+line)
		}
		table.PutClass(fields[0], fields[1])
	}

	scanner = bufio.NewScanner(strings.NewReader(string(raw)))
	lineNo := 0
	var owner, renamedOwner string
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		indented := strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ")
		fields := strings.Fields(line)

		if !indented {
			owner = fields[0]
			renamedOwner = fields[1]
			continue
		}
		if owner == "" {
			return nil, tsrgError(lineNo, "member line before any class line")
		}

		switch len(fields) {
		case 2:
			table.Put(FieldCoordinate(owner, fields[0], ""), FieldCoordinate(renamedOwner, fields[1], ""))
		case 3:
			symbolic := MethodCoordinate(owner, fields[1], fields[0])
			renamed := MethodCoordinate(renamedOwner, fields[2], table.RemapDescriptor(fields[0]))
			table.Put(symbolic, renamed)
		default:
			return nil, tsrgError(lineNo, "member line requires 2 or 3 fields")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "read tsrg")
	}

	return table, nil
}

func LoadTSRGFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "open tsrg file")
	}
	defer f.Close()

	table, err := ParseTSRG(f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return table, nil
}

// RemapDescriptor rewrites every class reference in a descriptor through the
// table's class map. References to unmapped classes pass through unchanged.
func (t *Table) RemapDescriptor(descriptor string) string {
	var b strings.Builder
	for i := 0; i < len(descriptor); i++ {
		ch := descriptor[i]
		if ch != 'L' {
			b.WriteByte(ch)
			continue
		}
		end := strings.IndexByte(descriptor[i:], ';')
		if end < 0 {
			b.WriteString(descriptor[i:])
			break
		}
		name := descriptor[i+1 : i+end]
		if renamed, ok := t.Class(name); ok {
			name = renamed
		}
		b.WriteByte('L')
		b.WriteString(name)
		b.WriteByte(';')
		i += end
	}
	return b.String()
}

func tsrgError(line int, msg string) error {
	return errors.New(errors.CodeParseError, fmt.Sprintf("tsrg line %d: %s", line, msg))
}
