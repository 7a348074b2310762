package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Samples []Sample    `json:"samples"`
}

func ExportJSON(w io.Writer, meta RunMetadata, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Samples: samples})
}

// ExportJSONFile writes to path, or to stdout when path is empty.
func ExportJSONFile(path string, meta RunMetadata, samples []Sample) error {
	if path == "" {
		return ExportJSON(os.Stdout, meta, samples)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, samples)
}

func ExportCSVFile(path string, samples []Sample) error {
	if path == "" {
		return WriteCSV(os.Stdout, samples)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, samples)
}
