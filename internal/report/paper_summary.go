package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/validate"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/rl24"
)

const sheetName = "Sommaire RL-24"

// slipTableStart is the first row of the per-slip table
const slipTableStart = 12

// PaperSummary renders the human-readable summary workbook that accompanies
// a filed transmission. It restates the persisted totals; it never
// recalculates them.
type PaperSummary struct {
	logger *zap.Logger
}

// NewPaperSummary creates a new paper summary renderer
func NewPaperSummary(logger *zap.Logger) *PaperSummary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaperSummary{logger: logger}
}

// Render produces the workbook for a transmission as xlsx bytes. The
// transmission must carry its slips.
func (ps *PaperSummary) Render(tr *entity.Transmission) ([]byte, error) {
	f, err := ps.build(tr)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	ps.logger.Info("Paper summary rendered",
		zap.Int64("transmission_id", tr.ID),
		zap.Int("slips", len(tr.Slips)))
	return buf.Bytes(), nil
}

// RenderToFile writes the workbook for a transmission to outputPath
func (ps *PaperSummary) RenderToFile(tr *entity.Transmission, outputPath string) error {
	f, err := ps.build(tr)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	ps.logger.Info("Paper summary written",
		zap.Int64("transmission_id", tr.ID),
		zap.String("output_path", outputPath))
	return nil
}

func (ps *PaperSummary) build(tr *entity.Transmission) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		ps.logger.Warn("Failed to remove default sheet", zap.Error(err))
	}

	currencyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to create currency style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	boldCurrencyStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create total style: %w", err)
	}

	ps.setCell(f, "A1", "Sommaire des relevés 24")
	ps.setStyle(f, "A1", "A1", boldStyle)

	ps.setCell(f, "A3", "Émetteur")
	ps.setCell(f, "B3", tr.Provider.Name)
	ps.setCell(f, "A4", "NEQ")
	ps.setCell(f, "B4", validate.FormatNEQ(tr.Provider.NEQ))
	ps.setCell(f, "A5", "Adresse")
	ps.setCell(f, "B5", fmt.Sprintf("%s, %s (%s) %s",
		tr.Provider.AddressLine, tr.Provider.City, tr.Provider.Province, tr.Provider.PostalCode))
	ps.setCell(f, "A6", "Numéro de préparateur")
	ps.setCell(f, "B6", rl24.FormatPreparer(tr.Provider.PreparerNumber))

	ps.setCell(f, "A8", "Année d'imposition")
	ps.setCell(f, "B8", tr.TaxYear)
	ps.setCell(f, "A9", "Fichier")
	ps.setCell(f, "B9", tr.Filename)
	ps.setCell(f, "A10", "Type de transmission")
	ps.setCell(f, "B10", string(tr.TransmissionType))

	headers := []string{
		"No relevé", "Code", "Enfant", "Parent", "NAS",
		"Début", "Fin", "Jours (10)", "Frais (11)", "Payé (12)", "Remboursé (13)", "Admissible (14)",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, slipTableStart)
		if err != nil {
			return nil, err
		}
		ps.setCell(f, cell, h)
	}
	ps.setStyle(f,
		fmt.Sprintf("A%d", slipTableStart),
		fmt.Sprintf("L%d", slipTableStart),
		boldStyle)

	row := slipTableStart
	for _, s := range tr.Slips {
		row++
		ps.setCell(f, fmt.Sprintf("A%d", row), s.SlipNumber)
		ps.setCell(f, fmt.Sprintf("B%d", row), s.SlipType.Code())
		ps.setCell(f, fmt.Sprintf("C%d", row), s.ChildFirstName+" "+s.ChildLastName)
		ps.setCell(f, fmt.Sprintf("D%d", row), s.ParentFirstName+" "+s.ParentLastName)
		ps.setCell(f, fmt.Sprintf("E%d", row), validate.MaskSIN(s.ParentSIN))
		ps.setCell(f, fmt.Sprintf("F%d", row), s.ServiceStart.Format(rl24.DateLayout))
		ps.setCell(f, fmt.Sprintf("G%d", row), s.ServiceEnd.Format(rl24.DateLayout))
		ps.setCell(f, fmt.Sprintf("H%d", row), s.Box10Days)
		ps.setCell(f, fmt.Sprintf("I%d", row), s.Box11EligibleFees)
		ps.setCell(f, fmt.Sprintf("J%d", row), s.Box12FeesPaid)
		ps.setCell(f, fmt.Sprintf("K%d", row), s.Box13FeesReimbursed)
		ps.setCell(f, fmt.Sprintf("L%d", row), s.Box14EligibleAmount)
	}
	if row > slipTableStart {
		ps.setStyle(f,
			fmt.Sprintf("I%d", slipTableStart+1),
			fmt.Sprintf("L%d", row),
			currencyStyle)
	}

	totalRow := row + 1
	ps.setCell(f, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("Total (%d relevés)", tr.SlipCount))
	ps.setCell(f, fmt.Sprintf("H%d", totalRow), tr.TotalDays)
	ps.setCell(f, fmt.Sprintf("I%d", totalRow), tr.TotalBox11)
	ps.setCell(f, fmt.Sprintf("J%d", totalRow), tr.TotalBox12)
	ps.setCell(f, fmt.Sprintf("K%d", totalRow), tr.TotalBox13)
	ps.setCell(f, fmt.Sprintf("L%d", totalRow), tr.TotalBox14)
	ps.setStyle(f,
		fmt.Sprintf("A%d", totalRow),
		fmt.Sprintf("H%d", totalRow),
		boldStyle)
	ps.setStyle(f,
		fmt.Sprintf("I%d", totalRow),
		fmt.Sprintf("L%d", totalRow),
		boldCurrencyStyle)

	if err := f.SetColWidth(sheetName, "A", "E", 22); err != nil {
		ps.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(sheetName, "F", "L", 14); err != nil {
		ps.logger.Warn("Failed to set column width", zap.Error(err))
	}

	return f, nil
}

// setCell sets a cell value in the workbook
func (ps *PaperSummary) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		ps.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// setStyle applies a style to a cell range
func (ps *PaperSummary) setStyle(f *excelize.File, from, to string, style int) {
	if err := f.SetCellStyle(sheetName, from, to, style); err != nil {
		ps.logger.Warn("Failed to set cell style",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
	}
}
