package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReplaceTx stages a complete set of artifacts in a sibling temp directory
// and swaps it in for the artifact directory on commit. Nothing of the
// previous directory survives the commit, and readers never see a partially
// written set.
type ReplaceTx struct {
	baseDir   string // referenced-artifacts/
	tempDir   string // referenced-artifacts.tmp.<nanos>/
	backupDir string // referenced-artifacts.backup.<nanos>/
	committed bool
}

// NewReplaceTx creates a transaction over baseDir.
func NewReplaceTx(baseDir string) *ReplaceTx {
	stamp := time.Now().UnixNano()
	return &ReplaceTx{
		baseDir:   baseDir,
		tempDir:   fmt.Sprintf("%s.tmp.%d", baseDir, stamp),
		backupDir: fmt.Sprintf("%s.backup.%d", baseDir, stamp),
	}
}

// Begin creates the empty staging directory.
func (tx *ReplaceTx) Begin() error {
	if err := os.MkdirAll(tx.tempDir, 0755); err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}
	return nil
}

// WriteFile writes name inside the transaction.
func (tx *ReplaceTx) WriteFile(name string, content []byte) error {
	if tx.committed {
		return fmt.Errorf("transaction already committed")
	}

	fullPath := filepath.Join(tx.tempDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Commit swaps the staged directory into place.
func (tx *ReplaceTx) Commit() error {
	if tx.committed {
		return fmt.Errorf("transaction already committed")
	}

	baseExists := true
	if _, err := os.Stat(tx.baseDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat artifact directory: %w", err)
		}
		baseExists = false
	}

	if baseExists {
		if err := os.Rename(tx.baseDir, tx.backupDir); err != nil {
			return fmt.Errorf("backup artifact directory: %w", err)
		}
		if err := os.Rename(tx.tempDir, tx.baseDir); err != nil {
			if rollbackErr := os.Rename(tx.backupDir, tx.baseDir); rollbackErr != nil {
				return fmt.Errorf("commit failed and rollback failed: commit error: %w, rollback error: %v", err, rollbackErr)
			}
			return fmt.Errorf("commit artifact directory (rolled back): %w", err)
		}
		// A leftover backup does not affect the committed artifacts.
		_ = os.RemoveAll(tx.backupDir)
	} else {
		if err := os.MkdirAll(filepath.Dir(tx.baseDir), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.Rename(tx.tempDir, tx.baseDir); err != nil {
			return fmt.Errorf("commit artifact directory (new): %w", err)
		}
	}

	tx.committed = true
	return nil
}

// Rollback discards the staged changes.
func (tx *ReplaceTx) Rollback() error {
	if tx.committed {
		return fmt.Errorf("cannot rollback committed transaction")
	}
	if err := os.RemoveAll(tx.tempDir); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
