// # internal/engine/mapping/srg.go
package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"shadowmap/internal/core/errors"
)

// ParseSRG reads an SRG mapping file. Each record maps a declared coordinate
// (left side) to the environment's renamed coordinate (right side):
//
//	CL: com/example/Foo a
//	FD: com/example/Foo/count a/b
//	MD: com/example/Foo/update ()V a/c ()V
//
// FD records carry no field descriptor; Table indexes them by (owner, name).
func ParseSRG(r io.Reader) (*Table, error) {
	table := NewTable()
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "PK:":
			// Package records do not participate in member lookups.
		case "CL:":
			if len(fields) != 3 {
				return nil, srgError(lineNo, "CL record requires 2 names")
			}
			table.PutClass(fields[1], fields[2])
		case "FD:":
			if len(fields) != 3 {
				return nil, srgError(lineNo, "FD record requires 2 members")
			}
			symOwner, symName, ok := splitMemberPath(fields[1])
			if !ok {
				return nil, srgError(lineNo, "malformed FD member "+fields[1])
			}
			renOwner, renName, ok := splitMemberPath(fields[2])
			if !ok {
				return nil, srgError(lineNo, "malformed FD member "+fields[2])
			}
			table.Put(FieldCoordinate(symOwner, symName, ""), FieldCoordinate(renOwner, renName, ""))
		case "MD:":
			if len(fields) != 5 {
				return nil, srgError(lineNo, "MD record requires 2 members with descriptors")
			}
			symOwner, symName, ok := splitMemberPath(fields[1])
			if !ok {
				return nil, srgError(lineNo, "malformed MD member "+fields[1])
			}
			renOwner, renName, ok := splitMemberPath(fields[3])
			if !ok {
				return nil, srgError(lineNo, "malformed MD member "+fields[3])
			}
			table.Put(MethodCoordinate(symOwner, symName, fields[2]), MethodCoordinate(renOwner, renName, fields[4]))
		default:
			return nil, srgError(lineNo, "unknown record type "+fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "read srg")
	}

	return table, nil
}

func LoadSRGFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "open srg file")
	}
	defer f.Close()

	table, err := ParseSRG(f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return table, nil
}

// splitMemberPath splits "com/example/Foo/count" into owner and member name.
func splitMemberPath(path string) (owner, name string, ok bool) {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}

func srgError(line int, msg string) error {
	return errors.New(errors.CodeParseError, fmt.Sprintf("srg line %d: %s", line, msg))
}
