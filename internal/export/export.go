// Package export flattens leads into spreadsheet rows and encodes them as a
// downloadable workbook.
package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
)

// ErrEncodeFailed wraps spreadsheet encoding failures.
var ErrEncodeFailed = errors.New("export: encode failed")

// XLSXMimeType is the media type used in the file's data URI.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns is the header row, in order.
var Columns = []string{
	"Nome", "Empresa", "Cargo", "Email", "Telefone", "LinkedIn",
	"Instagram", "Cidade", "Estado", "Segmento", "Score",
}

// Row is one exported lead. Absent fields are empty strings.
type Row struct {
	Name      string
	Company   string
	Role      string
	Email     string
	Phone     string
	LinkedIn  string
	Instagram string
	City      string
	State     string
	Segment   string
	Score     string
}

// Values returns the cells in Columns order.
func (r Row) Values() []string {
	return []string{
		r.Name, r.Company, r.Role, r.Email, r.Phone, r.LinkedIn,
		r.Instagram, r.City, r.State, r.Segment, r.Score,
	}
}

// RowsFromLeads flattens leads in order.
func RowsFromLeads(all []leads.Lead) []Row {
	rows := make([]Row, 0, len(all))
	for i := range all {
		l := &all[i]
		name := l.FullName()
		if name == "" {
			name = l.SocialName()
		}
		rows = append(rows, Row{
			Name:      name,
			Company:   l.Company(),
			Role:      l.Role(),
			Email:     l.PrimaryEmail(),
			Phone:     l.PrimaryPhone(),
			LinkedIn:  l.LinkedIn(),
			Instagram: l.Instagram(),
			City:      l.City(),
			State:     l.State(),
			Segment:   l.Segment(),
			Score:     l.Score(),
		})
	}
	return rows
}

// File is an encoded spreadsheet delivered inline as a data URI.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Bytes decodes the payload carried in URL.
func (f *File) Bytes() ([]byte, error) {
	_, payload, ok := strings.Cut(f.URL, ";base64,")
	if !ok {
		return nil, fmt.Errorf("export: %s is not a base64 data URI", f.Name)
	}
	return base64.StdEncoding.DecodeString(payload)
}

// Encoder turns rows into a downloadable file.
type Encoder interface {
	Encode(ctx context.Context, rows []Row) (*File, error)
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
