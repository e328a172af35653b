package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/localmeet/localmeet-server/internal/models"
)

// LoadProfile reads and parses one profile document from the users
// directory. A missing file is a legitimate outcome and returns nil, nil.
func (r *FileRepository) LoadProfile(ctx context.Context, filename string) (*models.User, error) {
	data, err := os.ReadFile(filepath.Join(r.dataDir, "users", filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading profile: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("error parsing profile: %w", err)
	}
	return &user, nil
}

// SaveProfile serializes the profile and overwrites the whole document at
// users/{lowercase-username}.json, creating directories as needed.
func (r *FileRepository) SaveProfile(ctx context.Context, user *models.User) error {
	path := filepath.Join(r.dataDir, "users", models.ProfileFilename(user.Username))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating users directory: %w", err)
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializing profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing profile: %w", err)
	}
	return nil
}
