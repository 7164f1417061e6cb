package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"synergy-alloc/internal/models"
)

// Writer rewrites the canonical tables after a synchronized run. The
// output uses one fixed header per table, so a rewritten file always
// loads back cleanly regardless of what the source file looked like.
type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

var patientHeader = []string{
	"Patient_ID", "Patient_Name", "Region", "Triage Priority",
	"MEWS_Score", "Time_Criticality_Min", "Derived_Severity",
	"Symptoms", "Diagnosis", "Time of Arrival",
	"Priority_Score", "Assigned_Hospital", "Status",
}

var hospitalHeader = []string{
	"Hospital_ID", "Name", "Region", "Beds_Available", "Beds_Capacity",
	"Staff_Available", "Ventilators", "Current_Patients",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func patientRow(p *models.Patient) []string {
	triage := p.TriageCategory
	if triage == "" && p.TriageRank != nil {
		triage = strconv.Itoa(*p.TriageRank)
	}
	arrival := ""
	if p.ArrivedAt != nil {
		arrival = p.ArrivedAt.Format("2006-01-02 15:04:05")
	}
	return []string{
		p.PatientID, p.Name, p.Region, triage,
		formatFloatPtr(p.MEWSScore), formatFloatPtr(p.TimeCriticality),
		formatFloatPtr(p.DerivedSeverity),
		p.Symptoms, p.Diagnosis, arrival,
		formatFloat(p.PriorityScore), p.AssignedHospital, p.Status,
	}
}

func hospitalRow(h *models.Hospital) []string {
	return []string{
		h.HospitalID, h.Name, h.Region,
		strconv.Itoa(h.BedsAvailable), strconv.Itoa(h.BedsCapacity),
		formatFloat(h.StaffAvailable), strconv.Itoa(h.Ventilators),
		strconv.Itoa(h.CurrentPatients),
	}
}

// WritePatients rewrites the patient table at path (CSV or XLSX).
func (w *Writer) WritePatients(path string, patients []models.Patient) error {
	rows := make([][]string, 0, len(patients))
	for i := range patients {
		rows = append(rows, patientRow(&patients[i]))
	}
	return w.writeTable(path, patientHeader, rows)
}

// WriteHospitals rewrites the hospital table at path (CSV or XLSX).
func (w *Writer) WriteHospitals(path string, hospitals []models.Hospital) error {
	rows := make([][]string, 0, len(hospitals))
	for i := range hospitals {
		rows = append(rows, hospitalRow(&hospitals[i]))
	}
	return w.writeTable(path, hospitalHeader, rows)
}

func (w *Writer) writeTable(path string, header []string, rows [][]string) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = writeXLSXFile(path, header, rows)
	} else {
		err = writeCSVFile(path, header, rows)
	}
	if err != nil {
		return err
	}
	w.logger.Debug("Rewrote canonical table",
		zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("unable to write rows: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("unable to flush %s: %w", path, err)
	}
	return nil
}

func writeXLSXFile(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("unable to address row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("unable to write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("unable to save %s: %w", path, err)
	}
	return nil
}
