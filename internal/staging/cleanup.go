package staging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// CleanStale removes staging directories older than maxAge. Directories
// survive a crash mid-run; this reclaims them at boot and on a timer.
// It returns the removed paths. Errors are logged and skipped; cleanup is
// best effort.
func (m *Manager) CleanStale(maxAge time.Duration) []string {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("read staging root", "root", m.root, "error", err)
		}
		return nil
	}

	cutoff := domain.Now().Add(-maxAge)
	var removed []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Lock files live beside run directories; only directories age out.
		if strings.HasSuffix(entry.Name(), ".lock") {
			continue
		}

		dirPath := filepath.Join(m.root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			m.logger.Warn("stat staging directory", "dir", dirPath, "error", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			m.logger.Warn("remove stale staging directory", "dir", dirPath, "error", err)
			continue
		}
		removed = append(removed, dirPath)
		m.logger.Info("removed stale staging directory",
			"dir", dirPath,
			"age", domain.Now().Sub(info.ModTime()).Round(time.Minute).String(),
		)
	}
	return removed
}
