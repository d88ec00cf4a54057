package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadXLSX reads one worksheet of a .xlsx workbook. The sheet is chosen by
// opt.SheetName, falling back to the 1-based opt.SheetIndex (default 1).
func LoadXLSX(path string, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	target, err := resolveSheet(zr, filepath.Base(path), opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	sheetXML := readZipEntry(zr, target)
	if sheetXML == nil {
		return nil, fmt.Errorf("worksheet %s missing from %s", target, filepath.Base(path))
	}
	rr := &sheetRows{
		dec:    xml.NewDecoder(bytes.NewReader(sheetXML)),
		shared: parseSharedStrings(readZipEntry(zr, "xl/sharedStrings.xml")),
	}
	name := filepath.Base(path)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return &Table{Name: name}, nil
	}
	records := [][]string{trimAll(header)}
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if opt.MaxRows > 0 && len(records)-1 >= opt.MaxRows {
			break
		}
		records = append(records, trimAll(row))
	}
	normalizeColumns(records, opt)
	return FromRecords(name, records)
}

type sheetEntry struct {
	Name    string
	SheetID int
	RID     string
}

func resolveSheet(zr *zip.Reader, book, sheetName string, sheetIndex int) (string, error) {
	sheets := parseWorkbook(readZipEntry(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipEntry(zr, "xl/_rels/workbook.xml.rels"))
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if rel, ok := rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
				break
			}
		}
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.Name
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			sheetName, book, strings.Join(names, ", "))
	}
	idx := sheetIndex
	if idx <= 0 {
		idx = 1
	}
	for _, s := range sheets {
		if s.SheetID == idx {
			if rel, ok := rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
			break
		}
	}
	return filepath.ToSlash(filepath.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", idx))), nil
}

func parseWorkbook(data []byte) []sheetEntry {
	var sheets []sheetEntry
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s sheetEntry
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID, _ = strconv.Atoi(a.Value)
			case "id":
				s.RID = a.Value
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

// parseRelationships maps relationship ids to their targets.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func eachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func readZipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return out
			}
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
	return out
}

// sheetRows streams worksheet rows as string slices indexed by column letter.
type sheetRows struct {
	dec    *xml.Decoder
	shared []string
}

func (r *sheetRows) Next() ([]string, bool) {
	var row []string
	width := 0
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow = true
				row = nil
				width = 0
				continue
			}
			if !inRow || se.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := colIndexFromRef(ref)
			if col < 0 {
				col = len(row)
			}
			if col+1 > width {
				width = col + 1
			}
			val := r.cellValue(typ)
			if len(row) <= col {
				grown := make([]string, col+1)
				copy(grown, row)
				row = grown
			}
			row[col] = val
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				if len(row) < width {
					grown := make([]string, width)
					copy(grown, row)
					row = grown
				}
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to the closing </c> and returns the cell text,
// resolving shared-string references.
func (r *sheetRows) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local != "v" && se.Name.Local != "t" {
				continue
			}
			var sb strings.Builder
			for {
				tk, err := r.dec.Token()
				if err != nil {
					break
				}
				if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
					break
				}
				if ch, ok := tk.(xml.CharData); ok {
					sb.Write(ch)
				}
			}
			val = sb.String()
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx, err := strconv.Atoi(strings.TrimSpace(val))
				if err != nil || idx < 0 || idx >= len(r.shared) {
					return ""
				}
				return r.shared[idx]
			}
			return val
		}
	}
}

// colIndexFromRef converts a cell reference like "C12" to a 0-based column index.
// It returns -1 when the reference carries no column letters.
func colIndexFromRef(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			i++
			continue
		}
		break
	}
	letters := strings.ToUpper(ref[:i])
	idx := 0
	for j := 0; j < len(letters); j++ {
		idx = idx*26 + int(letters[j]-'A'+1)
	}
	return idx - 1
}

// normalizeRelPath converts relationship targets to ZIP entry names.
// Targets may carry a leading slash ("/xl/worksheets/sheet1.xml") that ZIP entries lack.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
