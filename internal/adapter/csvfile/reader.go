package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

// Encoding of an extract on disk
type Encoding string

const (
	Latin1 Encoding = "latin1"
	UTF8   Encoding = "utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls how an extract is parsed
type Options struct {
	Delimiter rune
	Encoding  Encoding
}

// DefaultOptions matches the published monthly extracts
func DefaultOptions() Options {
	return Options{Delimiter: ';', Encoding: Latin1}
}

// NewOptions builds options from config values
func NewOptions(delimiter, encoding string) (Options, error) {
	r, size := utf8.DecodeRuneInString(delimiter)
	if r == utf8.RuneError || size != len(delimiter) {
		return Options{}, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	enc := Encoding(encoding)
	if enc != Latin1 && enc != UTF8 {
		return Options{}, fmt.Errorf("unsupported encoding %q", encoding)
	}
	return Options{Delimiter: r, Encoding: enc}, nil
}

// Read loads a delimited extract. The table is named after the file, without extension.
func Read(path string, opts Options) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to open extract: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := Parse(f, name, opts)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a delimited extract from r. Every cell is kept as text;
// the first record is the header.
func Parse(r io.Reader, name string, opts Options) (domain.RawTable, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	var src io.Reader = br
	if opts.Encoding == Latin1 {
		src = charmap.ISO8859_1.NewDecoder().Reader(br)
	}

	cr := csv.NewReader(src)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.RawTable{}, errors.New("extract is empty")
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to read header: %w", err)
	}

	table := domain.RawTable{Name: name, Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RawTable{}, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+1, err)
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}
