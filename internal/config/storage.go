package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SetupDataDir initializes the on-disk layout the repository expects:
// the users, events and tags directories, a ledger file with its header
// row, and empty tag catalogs. Existing files are left untouched.
func SetupDataDir(cfg *Config) error {
	dataDir := cfg.Storage.DataDir

	for _, dir := range []string{"users", "events", "tags"} {
		if err := os.MkdirAll(filepath.Join(dataDir, dir), 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	seeds := map[string]string{
		filepath.Join(dataDir, "users", "_user_lookup.csv"): "userId,username,passwordHash,profileFilename\n",
		filepath.Join(dataDir, "tags", "categoryTags.csv"):  "name,description\n",
		filepath.Join(dataDir, "tags", "groupTags.csv"):     "name,description\n",
	}
	for path, header := range seeds {
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to inspect %s: %w", filepath.Base(path), err)
		}
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return fmt.Errorf("failed to seed %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
