package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/services"
)

// Holdings sheets are positional: row 1 is a header, then one holding per row.
var holdingsHeader = []string{"종목코드", "수량", "매입평균가", "현재가", "매입수수료"}

var errNoDataRows = errors.New("no data rows")

// HoldingsSheet is the outcome of parsing an upload: the valid rows plus one message per rejected row
type HoldingsSheet struct {
	Rows   []models.HoldingUploadRow
	Errors []string
}

// ParseHoldingsCSV parses a holdings upload in CSV form
func ParseHoldingsCSV(r io.Reader) (*HoldingsSheet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, errNoDataRows
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	sheet := &HoldingsSheet{}
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			sheet.Errors = append(sheet.Errors, fmt.Sprintf("row %d: failed to read CSV record: %v", rowNum, err))
			continue
		}
		sheet.add(rowNum, record)
	}
	return sheet, nil
}

// ParseHoldingsXLSX parses the first worksheet of a holdings upload workbook
func ParseHoldingsXLSX(r io.Reader) (*HoldingsSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoDataRows
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, errNoDataRows
	}

	sheet := &HoldingsSheet{}
	for i, record := range records[1:] {
		sheet.add(i+2, record)
	}
	return sheet, nil
}

func (s *HoldingsSheet) add(rowNum int, record []string) {
	if blank(record) {
		return
	}
	row, err := parseHoldingRow(rowNum, record)
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
		return
	}
	s.Rows = append(s.Rows, row)
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseHoldingRow(rowNum int, record []string) (models.HoldingUploadRow, error) {
	cell := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	code := cell(0)
	if code == "" {
		return models.HoldingUploadRow{}, fmt.Errorf("row %d: stock code is empty", rowNum)
	}
	if len([]rune(code)) != services.StockCodeLength {
		return models.HoldingUploadRow{}, fmt.Errorf("row %d: stock code %q must be %d characters", rowNum, code, services.StockCodeLength)
	}

	row := models.HoldingUploadRow{Row: rowNum, StockCode: code}
	fields := []struct {
		name     string
		dst      *decimal.Decimal
		optional bool
	}{
		{"quantity", &row.Quantity, false},
		{"purchase_avg_price", &row.PurchaseAvgPrice, false},
		{"current_price", &row.CurrentPrice, false},
		{"purchase_fee", &row.PurchaseFee, true},
	}
	for i, fld := range fields {
		raw := strings.ReplaceAll(cell(i+1), ",", "")
		if raw == "" {
			if fld.optional {
				*fld.dst = decimal.Zero
				continue
			}
			return models.HoldingUploadRow{}, fmt.Errorf("row %d: %s is required", rowNum, fld.name)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return models.HoldingUploadRow{}, fmt.Errorf("row %d: invalid %s %q", rowNum, fld.name, raw)
		}
		if v.IsNegative() {
			return models.HoldingUploadRow{}, fmt.Errorf("row %d: %s must not be negative", rowNum, fld.name)
		}
		*fld.dst = v
	}
	return row, nil
}

// HoldingsTemplate builds the downloadable upload template: a bold header and one example row
func HoldingsTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range holdingsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{"069500", 10, 50000, 52000, 0}); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(holdingsHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "E", 14); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}
