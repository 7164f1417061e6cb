package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"synergy-alloc/internal/models"
)

// readCSV reads a header-plus-rows table from r. Short rows are padded
// by the decoders' bounds checks, malformed rows abort the load.
func readCSV(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read row: %w", err)
		}
		rows = append(rows, record)
	}
	return newTable(header, rows), nil
}

func (l *Loader) openTable(path string) (*table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return l.readXLSXFile(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer file.Close()
	return readCSV(file)
}

// LoadPatients reads patient records from a CSV or XLSX file.
func (l *Loader) LoadPatients(path string) ([]models.Patient, error) {
	t, err := l.openTable(path)
	if err != nil {
		return nil, err
	}
	return l.decodePatients(t)
}

// LoadHospitals reads hospital records from a CSV or XLSX file.
func (l *Loader) LoadHospitals(path string) ([]models.Hospital, error) {
	t, err := l.openTable(path)
	if err != nil {
		return nil, err
	}
	return l.decodeHospitals(t)
}

// LoadSuppliers reads supplier records from a CSV or XLSX file. A
// missing file yields an empty supplier set, not an error: distribution
// with no suppliers is a valid degenerate case.
func (l *Loader) LoadSuppliers(path string) ([]models.Supplier, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	t, err := l.openTable(path)
	if err != nil {
		return nil, err
	}
	return l.decodeSuppliers(t)
}

// ParsePatientsCSV decodes patient records from raw CSV bytes (used by
// the remote intake source).
func (l *Loader) ParsePatientsCSV(data []byte) ([]models.Patient, error) {
	t, err := readCSV(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	return l.decodePatients(t)
}
