package dataset

import (
	"strconv"
	"strings"
)

// normalizeColumns rewrites locale-formatted numbers ("1.000,5", "12,5%", "1 200")
// into canonical form so type detection sees them as numeric. A column is rewritten
// only when every non-missing cell parses; otherwise its trimmed text is kept as is.
func normalizeColumns(records [][]string, opt Options) {
	if len(records) < 2 {
		return
	}
	rows := records[1:]
	for j := range records[0] {
		if !numericColumn(rows, j, opt) {
			continue
		}
		for _, row := range rows {
			if j >= len(row) || isMissing(row[j]) {
				continue
			}
			x, _ := parseNumeric(row[j], opt)
			row[j] = strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
}

func numericColumn(rows [][]string, j int, opt Options) bool {
	seen := false
	for _, row := range rows {
		if j >= len(row) || isMissing(row[j]) {
			continue
		}
		if _, ok := parseNumeric(row[j], opt); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func isMissing(s string) bool {
	for _, tok := range missingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 && (thou == ',' || thou == '.') {
		dec = '.'
		if thou == '.' {
			dec = ','
		}
	}
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
