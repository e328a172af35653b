package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/localmeet/localmeet-server/internal/models"
	"github.com/localmeet/localmeet-server/internal/password"
)

// LedgerFile is the identity ledger, relative to the data directory.
const LedgerFile = "users/_user_lookup.csv"

const ledgerHeader = "userId,username,passwordHash,profileFilename\n"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// scanLedger streams ledger rows to fn in file order, stopping early when
// fn returns false. A missing ledger file reads as empty. Rows that do not
// parse (mid-append partial lines included) are skipped.
func (r *FileRepository) scanLedger(fn func(rec models.UserLookup) bool) error {
	f, err := os.Open(filepath.Join(r.dataDir, LedgerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error opening user ledger: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			continue
		}
		if len(row) < 4 || row[0] == "userId" {
			continue
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		rec := models.UserLookup{
			UserID:       id,
			Username:     row[1],
			PasswordHash: row[2],
			ProfileFile:  row[3],
		}
		if !fn(rec) {
			return nil
		}
	}
}

// UsernameExists reports whether a case-insensitively equal username is
// already in the ledger.
func (r *FileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	lower := strings.ToLower(username)
	found := false
	err := r.scanLedger(func(rec models.UserLookup) bool {
		if strings.ToLower(rec.Username) == lower {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// GetUserLookupByUsername returns the first ledger record whose username
// matches case-insensitively, or nil if there is none.
func (r *FileRepository) GetUserLookupByUsername(ctx context.Context, username string) (*models.UserLookup, error) {
	lower := strings.ToLower(username)
	var match *models.UserLookup
	err := r.scanLedger(func(rec models.UserLookup) bool {
		if strings.ToLower(rec.Username) == lower {
			match = &rec
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// GetUserLookupByID returns the ledger record with the given id, or nil.
func (r *FileRepository) GetUserLookupByID(ctx context.Context, userID int64) (*models.UserLookup, error) {
	var match *models.UserLookup
	err := r.scanLedger(func(rec models.UserLookup) bool {
		if rec.UserID == userID {
			match = &rec
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// CreateUser validates the credentials, allocates the next user id and
// appends one ledger row. The uniqueness check, id allocation and append
// are a single critical section: without it two concurrent creates could
// both observe "not taken" or allocate the same id.
func (r *FileRepository) CreateUser(ctx context.Context, username, plaintext string) (int64, error) {
	if !usernamePattern.MatchString(username) {
		return 0, ErrInvalidUsername
	}
	if !passwordStrongEnough(plaintext) {
		return 0, ErrWeakPassword
	}

	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	// One pass finds both the current max id and any case-insensitive match.
	lower := strings.ToLower(username)
	var maxID int64
	taken := false
	err := r.scanLedger(func(rec models.UserLookup) bool {
		if rec.UserID > maxID {
			maxID = rec.UserID
		}
		if strings.ToLower(rec.Username) == lower {
			taken = true
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrUsernameTaken
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	newID := maxID + 1
	if err := r.appendLedgerLine(newID, username, hash); err != nil {
		return 0, err
	}
	return newID, nil
}

// appendLedgerLine writes one row with a single Write call so concurrent
// readers never observe a torn line. The username is alphanumeric and the
// hash base64, so no CSV quoting is needed.
func (r *FileRepository) appendLedgerLine(userID int64, username, hash string) error {
	path := filepath.Join(r.dataDir, LedgerFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating users directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening user ledger: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error inspecting user ledger: %w", err)
	}

	line := fmt.Sprintf("%d,%s,%s,%s\n", userID, username, hash, models.ProfileFilename(username))
	if st.Size() == 0 {
		line = ledgerHeader + line
	}
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("error appending to user ledger: %w", err)
	}
	return nil
}

func passwordStrongEnough(plaintext string) bool {
	if len(plaintext) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, c := range plaintext {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
