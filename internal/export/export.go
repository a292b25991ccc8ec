package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"innbook/internal/domain"
	"innbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter renders an occupancy grid (units down, dates across) to an
// xlsx file for front-desk use.
type Exporter struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.Store, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, path: path, logger: logger}
}

// OccupancyReport writes the occupancy sheet for [startDate, endDate) and
// returns the file path.
func (e *Exporter) OccupancyReport(ctx context.Context, startDate, endDate time.Time) (string, error) {
	startDate = models.Day(startDate)
	endDate = models.Day(endDate)
	if !startDate.Before(endDate) {
		return "", fmt.Errorf("export range must span at least one day")
	}

	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	units, err := e.store.ListUnits(ctx, models.DefaultListLimit, 0)
	if err != nil {
		return "", fmt.Errorf("list units: %w", err)
	}

	reservations, err := e.store.ReservationsOverlappingRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("load reservations: %w", err)
	}

	guestNames := e.guestNames(ctx, reservations)

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Occupancy"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Occupancy %s to %s",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout)))

	dateCols := e.writeDateHeaders(f, sheetName, startDate, endDate)
	e.writeUnitHeaders(f, sheetName, units)
	e.writeOccupancy(f, sheetName, units, reservations, guestNames, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.SetColWidth(sheetName, "B", lastCol, 18)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("occupancy_%s_to_%s.xlsx",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save export file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("occupancy report created")
	return filePath, nil
}

// guestNames resolves guest display names for the reservations, tolerating
// lookup failures.
func (e *Exporter) guestNames(ctx context.Context, reservations []*models.Reservation) map[int64]string {
	names := make(map[int64]string)
	for _, r := range reservations {
		if _, ok := names[r.GuestID]; ok {
			continue
		}
		guest, err := e.store.GetGuest(ctx, r.GuestID)
		if err != nil {
			e.logger.Warn().Err(err).Int64("guest_id", r.GuestID).Msg("export guest lookup failed")
			names[r.GuestID] = fmt.Sprintf("guest #%d", r.GuestID)
			continue
		}
		names[r.GuestID] = guest.Name
	}
	return names
}

func (e *Exporter) writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for current := startDate; current.Before(endDate); current = current.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("01-02"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[current.Format(models.DateLayout)] = col
		col++
	}
	return dateCols
}

func (e *Exporter) writeUnitHeaders(f *excelize.File, sheetName string, units []*models.Unit) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, unit := range units {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s (cap %d)", unit.Name, unit.Capacity))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		row++
	}
}

func (e *Exporter) writeOccupancy(
	f *excelize.File, sheetName string,
	units []*models.Unit,
	reservations []*models.Reservation,
	guestNames map[int64]string,
	dateCols map[string]int,
) {
	byUnit := make(map[int64][]*models.Reservation)
	for _, r := range reservations {
		if r.Status != models.StatusActive {
			continue
		}
		byUnit[r.UnitID] = append(byUnit[r.UnitID], r)
	}

	bookedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	freeStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
	})

	row := 3
	for _, unit := range units {
		for dateKey, col := range dateCols {
			day, err := models.ParseDate(dateKey)
			if err != nil {
				continue
			}

			cell, _ := excelize.CoordinatesToCellName(col, row)
			occupant := occupantFor(byUnit[unit.ID], day)
			if occupant == nil {
				_ = f.SetCellValue(sheetName, cell, "free")
				_ = f.SetCellStyle(sheetName, cell, cell, freeStyle)
				continue
			}

			_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s\n#%d", guestNames[occupant.GuestID], occupant.ID))
			_ = f.SetCellStyle(sheetName, cell, cell, bookedStyle)
		}
		row++
	}
}

// occupantFor returns the reservation holding the unit on the given day.
// Check-out day is free: the interval is half-open.
func occupantFor(reservations []*models.Reservation, day time.Time) *models.Reservation {
	for _, r := range reservations {
		if !r.CheckIn.After(day) && day.Before(r.CheckOut) {
			return r
		}
	}
	return nil
}
