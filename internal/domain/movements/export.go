package movements

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Movements"

var exportHeader = []string{"Moved at", "From id", "From", "To id", "To", "Reason", "Actor", "Recorded at", "Movement id"}

// WriteXLSX escribe el historial ya resuelto como planilla.
func WriteXLSX(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	for col, title := range exportHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}

	for i, e := range entries {
		row := i + 2
		values := []any{
			e.MovedAt.UTC().Format(time.RFC3339),
			optionalID(e.FromID),
			optionalName(e.FromName),
			e.ToID,
			optionalName(e.ToName),
			e.Reason,
			e.ActorUserID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.ID,
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := f.SetCellValue(exportSheet, cell, v); err != nil {
		return fmt.Errorf("xlsx: set %s: %w", cell, err)
	}
	return nil
}

func optionalID(id *int64) any {
	if id == nil {
		return ""
	}
	return *id
}

func optionalName(n *string) string {
	if n == nil {
		return ""
	}
	return *n
}
