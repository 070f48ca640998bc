package mapping

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"shadowmap/internal/core/errors"
)

// ParseMemberCSV reads a two-or-more-column CSV renaming simple member names
// of a base environment (searge,name[,side,comment] style). Header rows and
// comment rows are skipped. The result feeds NewOverlayEnvironment.
func ParseMemberCSV(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	renames := make(map[string]string)
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParseError, "read member csv")
		}
		if len(record) < 2 {
			continue
		}
		from := strings.TrimSpace(record[0])
		to := strings.TrimSpace(record[1])
		if first {
			first = false
			if strings.EqualFold(from, "searge") || strings.EqualFold(from, "name") || strings.EqualFold(from, "param") {
				continue
			}
		}
		if from == "" || to == "" || strings.HasPrefix(from, "#") {
			continue
		}
		renames[from] = to
	}
	return renames, nil
}

func LoadMemberCSVFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "open member csv")
	}
	defer f.Close()

	renames, err := ParseMemberCSV(f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return renames, nil
}
