// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ibbtech/memberhub/internal/domain/models"
)

// Import caps. MaxUploadSize bounds the request body before parsing
// starts; MaxRows bounds how many data rows a single file may carry.
const (
	MaxUploadSize = 5 << 20
	MaxRows       = 20000
)

// ErrTooManyRows is returned when the CSV exceeds the configured row limit.
var ErrTooManyRows = errors.New("csv exceeds the row limit")

// MemberCSVRow is one normalized row of a member import file.
// Columns: Nome, Email, Telefone, Status.
type MemberCSVRow struct {
	Nome     string
	Email    string
	Telefone string // digits only
	Status   string
}

// RowError describes one rejected row.
type RowError struct {
	Line   int
	Nome   string
	Email  string
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d (%s): %s", e.Line, e.Nome, e.Reason)
}

// ParseOptions control parsing limits.
type ParseOptions struct {
	MaxRows int
}

// DefaultParseOptions returns the standard limits.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows}
}

// ParseResult holds accepted rows and per-row rejections.
type ParseResult struct {
	Rows   []MemberCSVRow
	Errors []RowError
}

// HasErrors reports whether any row was rejected.
func (r *ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ParseMemberCSV reads all rows from r, skips a header if present, and
// validates each row. It never writes to a DB; it is safe to call before
// any mutations. Row rejections are collected, not fatal; only structural
// problems (row limit, unreadable input) fail the whole parse.
func ParseMemberCSV(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ParseResult{}
	seen := map[string]bool{}
	line := 0

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		line++

		if opts.MaxRows > 0 && line > opts.MaxRows {
			return nil, ErrTooManyRows
		}

		row := normalizeRecord(rec)
		if row.Nome == "" && row.Email == "" && row.Telefone == "" {
			continue
		}
		if line == 1 && isHeader(rec) {
			continue
		}

		if row.Nome == "" {
			result.Errors = append(result.Errors, RowError{
				Line: line, Email: row.Email, Reason: "missing nome",
			})
			continue
		}
		if row.Email != "" && !strings.Contains(row.Email, "@") {
			result.Errors = append(result.Errors, RowError{
				Line: line, Nome: row.Nome, Email: row.Email, Reason: "invalid email",
			})
			continue
		}
		if row.Email != "" {
			if seen[row.Email] {
				result.Errors = append(result.Errors, RowError{
					Line: line, Nome: row.Nome, Email: row.Email, Reason: "duplicate email in file",
				})
				continue
			}
			seen[row.Email] = true
		}
		if row.Status == "" {
			row.Status = models.StatusVisitor
		}
		if !models.ValidStatus(row.Status) {
			result.Errors = append(result.Errors, RowError{
				Line: line, Nome: row.Nome, Email: row.Email,
				Reason: fmt.Sprintf("invalid status %q", row.Status),
			})
			continue
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func normalizeRecord(rec []string) MemberCSVRow {
	get := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	return MemberCSVRow{
		Nome:     strings.TrimPrefix(get(0), "\uFEFF"),
		Email:    strings.ToLower(get(1)),
		Telefone: ParsePhoneCell(get(2)),
		Status:   strings.ToLower(get(3)),
	}
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	first := strings.TrimPrefix(strings.TrimSpace(rec[0]), "\uFEFF")
	return (strings.EqualFold(first, "nome") || strings.EqualFold(first, "name")) &&
		strings.EqualFold(strings.TrimSpace(rec[1]), "email")
}

// phone label preference: a WhatsApp number wins over a cell number, which
// wins over anything else (landlines, unlabeled).
var phoneLabelRank = map[string]int{
	"wa":       3,
	"whatsapp": 3,
	"zap":      3,
	"cel":      2,
	"celular":  2,
	"res":      1,
	"tel":      1,
	"com":      1,
}

// ParsePhoneCell extracts the best phone number from a free-form cell.
// Spreadsheet exports carry cells like "cel: (11) 98888-0000 / Res: 3333-4444"
// or "WA: 11 98888-0000". Returns digits only, empty when nothing usable.
func ParsePhoneCell(cell string) string {
	if strings.TrimSpace(cell) == "" {
		return ""
	}

	best := ""
	bestRank := -1
	for _, seg := range strings.FieldsFunc(cell, func(r rune) bool {
		return r == '/' || r == ';' || r == ','
	}) {
		seg = strings.TrimSpace(seg)
		rank := 0
		if label, rest, ok := strings.Cut(seg, ":"); ok {
			if r, known := phoneLabelRank[strings.ToLower(strings.TrimSpace(label))]; known {
				rank = r
				seg = rest
			}
		}
		num := digits(seg)
		if len(num) < 8 {
			continue
		}
		if rank > bestRank {
			best = num
			bestRank = rank
		}
	}
	return best
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
