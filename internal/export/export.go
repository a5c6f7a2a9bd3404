// Package export writes bookings to XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"washify/internal/catalog"
	"washify/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
)

// Source is what an export reads from.
type Source interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type Exporter struct {
	source  Source
	catalog *catalog.Catalog
	dir     string
	now     func() time.Time
}

func NewExporter(source Source, c *catalog.Catalog, dir string) *Exporter {
	return &Exporter{source: source, catalog: c, dir: dir, now: time.Now}
}

// Export writes a workbook of all bookings into the export directory and
// returns its path.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	bookings, err := e.source.ListBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}
	counts, err := e.source.CountByStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("error counting bookings: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := e.Build(bookings, counts)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_%s.xlsx", e.now().Format("20060102_150405"))
	path := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

// Build creates the workbook: one row per booking plus a summary sheet.
func (e *Exporter) Build(bookings []models.Booking, counts map[string]int) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	header := []interface{}{
		"ID", "Created At", "Name", "Phone", "City", "Address", "Date",
		"Time Slot", "Car", "Packages", "Price", "Water & Power", "Status",
	}
	if err := f.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	revenue := 0
	for i := range bookings {
		b := &bookings[i]
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := e.rowValues(b)
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
		revenue += b.Price
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8D7DA"}, Pattern: 1},
	})
	_ = f.SetCellStyle(bookingsSheet, "A1", "M1", headerStyle)
	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "M", 18)
	_ = f.SetColWidth(bookingsSheet, "F", "F", 32)
	_ = f.SetColWidth(bookingsSheet, "J", "J", 40)

	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	_ = f.SetCellValue(summarySheet, "A1", "Status")
	_ = f.SetCellValue(summarySheet, "B1", "Bookings")
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)

	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	row := 2
	for _, status := range statuses {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), status)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), counts[status])
		row++
	}
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Total")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), len(bookings))
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row+1), "Revenue (₹)")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row+1), revenue)
	_ = f.SetColWidth(summarySheet, "A", "A", 20)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

func (e *Exporter) rowValues(b *models.Booking) []interface{} {
	labels := make([]string, 0, len(b.Packages))
	for _, p := range b.Packages {
		labels = append(labels, e.catalog.PackageLabel(p))
	}
	water := "No"
	if b.WaterPower {
		water = "Yes"
	}
	return []interface{}{
		b.ID,
		b.CreatedAt.Local().Format("02.01.2006 15:04"),
		b.Name,
		b.Phone,
		b.City,
		b.Address,
		b.Date,
		e.catalog.SlotLabel(b.TimeSlot),
		e.catalog.CarLabel(b.Car),
		strings.Join(labels, ", "),
		b.Price,
		water,
		b.Status,
	}
}
