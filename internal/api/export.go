package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Health Logs"
	// exportLimit is the number of merged rows one export reads
	exportLimit = 1000
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{"Activity type", "Value", "Unit", "Note", "Occurred at", "Source"}

// ExportLogs writes the first page of the merged listing as a spreadsheet
func (h *Handler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	q := h.logQuery(r)
	q.Page, q.Limit = 1, exportLimit

	page, err := h.services.Aggregate.Query(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := BuildWorkbook(page.Items, h.loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="health-logs-%s.xlsx"`, h.now().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// BuildWorkbook renders items into a single-sheet xlsx file
func BuildWorkbook(items []domain.LogItem, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "F1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{
			string(item.ActivityType),
			item.Value,
			item.Unit,
			item.Note,
			occurredCell(item.OccurredAt, loc),
			string(item.Source),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "F", 20); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func occurredCell(t domain.EventTime, loc *time.Location) string {
	switch {
	case t.Raw != "":
		return t.Raw
	case t.Time.IsZero():
		return ""
	default:
		return t.Time.In(loc).Format("2006-01-02 15:04:05")
	}
}
