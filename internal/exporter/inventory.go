package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"

	"edgarcli/internal/config"
)

// ArtifactInfo describes one written data artifact.
type ArtifactInfo struct {
	Path     string `json:"path"`
	RowCount int    `json:"row_count"`
}

// Inventory walks the output tree and reports the row count of every
// CSV artifact, a quick sanity check after a pipeline run.
func Inventory(paths *config.Paths) ([]ArtifactInfo, error) {
	var artifacts []ArtifactInfo

	for _, dir := range []string{paths.BronzeDir, paths.SilverDir, paths.FeaturesDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			count, err := countDataRows(path)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, ArtifactInfo{Path: path, RowCount: count})
		}
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Path < artifacts[j].Path
	})
	return artifacts, nil
}

// countDataRows counts the data rows of a CSV file, excluding the
// header.
func countDataRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	count := -1
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}
