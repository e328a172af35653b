package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/localmeet/localmeet-server/internal/models"
)

// CategoryTags loads the category tag catalog.
func (r *FileRepository) CategoryTags(ctx context.Context) ([]models.Tag, error) {
	return r.tagsFromCSV(filepath.Join(r.dataDir, "tags", "categoryTags.csv"))
}

// GroupTags loads the group tag catalog.
func (r *FileRepository) GroupTags(ctx context.Context) ([]models.Tag, error) {
	return r.tagsFromCSV(filepath.Join(r.dataDir, "tags", "groupTags.csv"))
}

// tagsFromCSV reads a full tag catalog. The header row locates the name
// and description columns case-insensitively; column order is irrelevant.
// Rows with an empty name are skipped.
func (r *FileRepository) tagsFromCSV(path string) ([]models.Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening tag catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading tag catalog header: %w", err)
	}

	nameIdx, descIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameIdx = i
		case "description":
			descIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, ErrMissingNameColumn
	}

	tags := []models.Tag{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading tag catalog: %w", err)
		}
		if nameIdx >= len(row) || strings.TrimSpace(row[nameIdx]) == "" {
			continue
		}
		tag := models.Tag{Name: row[nameIdx]}
		if descIdx >= 0 && descIdx < len(row) {
			tag.Description = row[descIdx]
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
