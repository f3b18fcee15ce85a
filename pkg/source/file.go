package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ixp-twin/twinctl/pkg/rib"
	"github.com/ixp-twin/twinctl/pkg/util"
)

// FileSource reads a RIB dump from disk.
type FileSource struct {
	Path string
}

// NewFileSource returns a source for path. A relative path is joined to
// baseDir when baseDir is set.
func NewFileSource(path, baseDir string) *FileSource {
	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return &FileSource{Path: path}
}

// Fetch reads the file and parses it as a dump.
func (s *FileSource) Fetch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading RIB dump: %w", err)
	}
	lines := rib.ParseDump(string(data))
	util.WithSource(s).Debugf("Read %d route lines", len(lines))
	return lines, nil
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}
