package intake

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

// Row is one parsed data row with the line it started on. Err is set when a
// cell could not be read; Params then holds whatever else parsed.
type Row struct {
	Line   int
	Params submission.CreateParams
	Err    error
}

// Sheet is the parsed content of one upload.
type Sheet struct {
	Charset string
	Profile string
	Rows    []Row
}

// Parser reads submission sheets exported from spreadsheets or field-data
// tools. It detects the delimiter, the text encoding and which column
// layout is in use.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Sheet, error) {
	utf8r, charset, err := decodeUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("%w: no header found with project name, collection date and location columns", submission.ErrValidation)
	}

	parsed := parseRows(profile, cols, rows[headerIdx+1:], lines[headerIdx+1:], reader.Comma == ';')

	return &Sheet{Charset: charset, Profile: profile.Name, Rows: parsed}, nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas, which is how spreadsheets export in comma-decimal locales.
func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}

	return ','
}

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalize(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows turns data rows into create params. Blank rows are skipped;
// field validation is left to the submission service so every row reports
// the same messages as a form submission would. An unreadable carbon value
// marks only its own row.
func parseRows(p *Profile, cols colIndex, rows [][]string, lines []int, commaDecimal bool) []Row {
	var out []Row

	for i, row := range rows {
		line := lines[i]

		if blank(row) {
			continue
		}

		params := submission.CreateParams{
			ProjectName:    cellValue(row, index(cols, p.ProjectCol)),
			CollectionDate: cellValue(row, index(cols, p.DateCol)),
			SubmittedBy:    cellValue(row, index(cols, p.SubmittedByCol)),
			Location:       location(p, cols, row),
		}

		r := Row{Line: line, Params: params}

		if s := cellValue(row, index(cols, p.CarbonCol)); s != "" {
			v, err := parseCarbonValue(s, commaDecimal)
			if err != nil {
				r.Err = fmt.Errorf("%w: carbon value %q is not a number", submission.ErrValidation, s)
			} else {
				r.Params.CarbonValue = &v
			}
		}

		out = append(out, r)
	}

	return out
}

func location(p *Profile, cols colIndex, row []string) string {
	switch p.LocationMode {
	case locationSplit:
		lat := cellValue(row, index(cols, p.LatCol))
		lng := cellValue(row, index(cols, p.LngCol))

		if lat == "" && lng == "" {
			return ""
		}

		return lat + "," + lng
	default:
		return cellValue(row, index(cols, p.LocationCol))
	}
}

// parseCarbonValue accepts "1234.5" and, for comma-decimal sheets, "1.234,5".
func parseCarbonValue(s string, commaDecimal bool) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(s, " ", "")

	if commaDecimal && strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	return decimal.NewFromString(clean)
}

func index(cols colIndex, name string) int {
	if name == "" {
		return -1
	}

	if i, ok := cols[name]; ok {
		return i
	}

	return -1
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
