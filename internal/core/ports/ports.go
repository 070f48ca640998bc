package ports

import (
	"shadowmap/internal/data/store"
	"shadowmap/internal/engine/parser"
)

// CodeParser abstracts source parsing and language-file support checks.
type CodeParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
	IsSupportedPath(path string) bool
}

var _ CodeParser = (*parser.Parser)(nil)

// PassStore abstracts pass persistence for run history workflows.
type PassStore interface {
	SavePass(pass store.Pass, mappings []store.Mapping) error
	LoadLatestPass() (*store.Pass, error)
	LoadMappings(passID int64) ([]store.Mapping, error)
	Close() error
}

var _ PassStore = (*store.Store)(nil)
