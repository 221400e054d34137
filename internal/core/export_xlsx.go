package core

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// PayrollXLSXFilename builds the spreadsheet download name.
func PayrollXLSXFilename(now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", ExportKindPayroll, now.Format("2006-01-02"))
}

// PayrollXLSX renders the payroll period as an Excel workbook, the format the
// back office hands to the accounting firm.
func PayrollXLSX(records []PayrollRecord, period string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Folha"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Colaborador", "Nível", "Período", "Salário Base", "Adicionais", "Descontos", "Salário Líquido", "Status"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, r := range records {
		values := []any{
			r.CollaboratorName,
			r.Level,
			r.Period,
			FormatBRL(r.BaseSalary),
			FormatBRL(r.Allowances),
			FormatBRL(r.Deductions),
			FormatBRL(r.NetSalary),
			string(r.Status),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "H", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook for %s: %w", period, err)
	}
	return buf.Bytes(), nil
}
