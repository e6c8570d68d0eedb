package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

var headers = []string{
	"Name", "Phone", "Email", "Source", "Status",
	"Assigned To", "Follow-Up At", "Interests", "Created At",
}

// WriteLeadsXLSX renders the lead list as a spreadsheet for staff download.
func WriteLeadsXLSX(w io.Writer, leads []*entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leads"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, lead := range leads {
		row := i + 2
		values := []interface{}{
			lead.Name,
			lead.Phone,
			lead.Email,
			string(lead.Source),
			string(lead.Outreach.Status),
			derefOr(lead.Outreach.AssignedTo, ""),
			formatTime(lead.Outreach.FollowUpAt),
			strings.Join(lead.Interests, ", "),
			lead.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
