// ABOUTME: Data migration between bodycomp storage backends.
// ABOUTME: Copies subjects and their measurements from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Subjects     int
	Measurements int
}

// MigrateData copies all data from src to dst storage.
// Subjects go first so measurements always reference an existing subject.
// Week numbers are carried over unchanged. The destination should be empty
// before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	subjects, err := src.ListSubjects()
	if err != nil {
		return nil, fmt.Errorf("list source subjects: %w", err)
	}

	for _, s := range subjects {
		if err := dst.CreateSubject(s); err != nil {
			return nil, fmt.Errorf("create subject %s: %w", s.Name, err)
		}
		summary.Subjects++

		measurements, err := src.ListMeasurements(s.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("list measurements for %s: %w", s.Name, err)
		}
		for _, m := range measurements {
			if err := dst.CreateMeasurement(m); err != nil {
				return nil, fmt.Errorf("create measurement %s: %w", m.ID, err)
			}
			summary.Measurements++
		}
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
