// Package importer turns bank export files into canonical transactions.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no source.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptySource is returned when a file yields no rows.
	ErrEmptySource = errors.New("empty file")
)

// Importer parses bank files with a fixed set of sources and layouts.
type Importer struct {
	sources    *Registry
	signatures []Signature
	log        zerolog.Logger
}

// New creates an Importer. Signatures are tried in order before the
// positional fallback.
func New(sources *Registry, signatures []Signature, log zerolog.Logger) *Importer {
	return &Importer{sources: sources, signatures: signatures, log: log}
}

// Supports reports whether name has an extension with a registered source.
func (im *Importer) Supports(name string) bool {
	return im.sources.Get(filepath.Ext(name)) != nil
}

// ParseFile reads name's content from r with the source for its extension.
func (im *Importer) ParseFile(name string, r io.Reader) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(name))
	src := im.sources.Get(ext)
	if src == nil {
		return nil, fmt.Errorf("%w: %q (use .csv, .xlsx or .xls)", ErrUnsupportedFormat, ext)
	}

	rows, err := src.Rows(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	res, err := im.ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	im.log.Info().
		Str("file", name).
		Str("bank", res.Bank).
		Int("rows_seen", res.Summary.RowsSeen).
		Int("accepted", res.Summary.Accepted).
		Int("skipped_no_date", res.Summary.SkippedNoDate).
		Int("skipped_status", res.Summary.SkippedStatus).
		Int("skipped_bad_date", res.Summary.SkippedBadDate).
		Int("skipped_zero_amount", res.Summary.SkippedZeroAmount).
		Msg("parsed bank file")
	return res, nil
}

// ParsePath opens and parses the file at path.
func (im *Importer) ParsePath(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return im.ParseFile(filepath.Base(path), f)
}

// ParseRows detects the layout of rows and extracts their transactions.
func (im *Importer) ParseRows(rows []Row) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}
	layout := Detect(rows, im.signatures)
	if layout.IsFallback() {
		im.log.Debug().Msg("no known header found, using positional layout")
	}
	return Extract(rows, layout, im.log), nil
}

// FileInfo describes a bank file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the files in dir that have a registered source.
func (im *Importer) Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !im.Supports(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves path into processedDir, creating it if needed.
func MarkProcessed(path, processedDir string) error {
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	name := filepath.Base(path)
	dst := filepath.Join(processedDir, name)
	if err := os.Rename(path, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", name, err)
	}
	return nil
}
