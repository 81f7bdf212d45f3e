package deliveries

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// WriteMonthlySummaryXLSX renders summary rows into a single-sheet workbook.
func WriteMonthlySummaryXLSX(w io.Writer, month, currency string, rows []MonthlySummaryRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Summary " + month
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("deliveries: rename sheet: %w", err)
	}

	amountHeader := "Amount"
	if currency != "" {
		amountHeader = fmt.Sprintf("Amount (%s)", currency)
	}
	header := []any{
		"Supplier Code",
		"Supplier",
		"Contact",
		"Bank",
		"Account Number",
		"Rate / kg",
		"Quantity (kg)",
		amountHeader,
		"Deliveries",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("deliveries: write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	totalQty, totalAmount := decimal.Zero, decimal.Zero
	row := 2
	for _, r := range rows {
		values := []any{
			r.SupplierCode,
			r.SupplierName,
			r.ContactNumber,
			r.BankName,
			r.BankAccountNumber,
			r.Rate,
			r.MonthlyQuantity,
			r.MonthlyAmount,
			r.DeliveryCount,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("deliveries: write row %d: %w", row, err)
		}
		totalQty = totalQty.Add(decimal.NewFromFloat(r.MonthlyQuantity))
		totalAmount = totalAmount.Add(decimal.NewFromFloat(r.MonthlyAmount))
		row++
	}

	qty, _ := totalQty.Float64()
	amount, _ := totalAmount.Round(2).Float64()
	totals := []any{"", "Total", "", "", "", "", qty, amount, ""}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return fmt.Errorf("deliveries: write totals: %w", err)
	}
	if bold != 0 {
		_ = f.SetRowStyle(sheet, row, row, bold)
	}
	_ = f.SetColWidth(sheet, "A", "I", 18)

	return f.Write(w)
}
