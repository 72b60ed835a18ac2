package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dhamidi/hws/hwscript/shape"
)

var ErrNoHeader = errors.New("csv has no header row")

// Header aliases. A header cell matches when it contains the alias,
// ignoring case and surrounding quotes.
const (
	headerName        = "variable name"
	headerType        = "data type"
	headerDescription = "variable description"
	headerLength      = "string length"
)

// LoadCSV reads a variable group file. The group is named after the
// file without its extension.
func LoadCSV(path string) (*Group, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variable group: %w", err)
	}
	text, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	group, err := ParseCSV(name, bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	group.SourceFile = path
	return group, nil
}

// decode converts the encodings produced by the configuration software
// to UTF-8: UTF-8 with BOM, UTF-16 with BOM, and GBK.
func decode(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return raw[3:], nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		return out, err
	case !utf8.Valid(raw):
		out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
		return out, err
	}
	return raw, nil
}

// ParseCSV reads a variable group from r. Quoted fields may contain
// commas and line breaks. Records with an empty first cell are skipped.
func ParseCSV(name string, r io.Reader) (*Group, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	group := &Group{Name: name}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)

		propName := cell(record, cols.name)
		if propName == "" {
			continue
		}
		rawType := cell(record, cols.typ)
		length, _ := strconv.Atoi(cell(record, cols.length))
		group.Properties = append(group.Properties, Property{
			Name:        propName,
			Shape:       MapRawType(rawType, length),
			RawType:     rawType,
			Description: cell(record, cols.description),
			SourceLine:  line,
		})
	}
	return group, nil
}

type columnIndex struct {
	name, typ, description, length int
}

// columns locates the known headers. Without headers the name is taken
// from the first column and the type from the second.
func columns(header []string) columnIndex {
	find := func(alias string, fallback int) int {
		for i, h := range header {
			h = strings.ToLower(strings.Trim(strings.TrimSpace(h), `"'`))
			if strings.Contains(h, alias) {
				return i
			}
		}
		return fallback
	}
	return columnIndex{
		name:        find(headerName, 0),
		typ:         find(headerType, 1),
		description: find(headerDescription, -1),
		length:      find(headerLength, -1),
	}
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.Trim(strings.TrimSpace(record[i]), `"'`)
}

// MapRawType maps a vendor type label to a shape. length is the
// declared string length, zero when unknown.
func MapRawType(raw string, length int) shape.Literal {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case t == "":
		return shape.Any{}
	case containsAny(t, "char", "string", "varchar", "text"):
		if length < 0 {
			length = 0
		}
		return shape.String{Length: length}
	case containsAny(t, "int", "float", "double", "number", "uint", "short", "long", "real", "word", "byte"):
		return shape.Number{}
	case strings.Contains(t, "bool"):
		return shape.Boolean{}
	}
	return shape.Unknown{Raw: raw}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LoadDir loads every CSV file in dir concurrently. A file that fails
// to load is reported in the returned error and contributes no group;
// the other files are still loaded. A missing directory yields an
// empty table.
func LoadDir(ctx context.Context, dir string) (*Groups, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return NewGroups(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read variable directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	groups := make([]*Group, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			group, err := LoadCSV(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			groups[i] = group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := NewGroups()
	for _, group := range groups {
		if group == nil {
			continue
		}
		if len(group.Properties) == 0 {
			log.Debugf("skipping empty variable group %s", group.Name)
			continue
		}
		out.Add(group)
	}
	log.Infof("loaded %d variable groups from %s", out.Len(), dir)
	return out, errors.Join(errs...)
}
