// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves subjects and measurements from sqlite to charm or back.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/bodycomp/internal/charm"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data between sqlite and charm backends",
	Long: `Copy every subject and measurement from one storage backend to the other.

Week numbers and IDs are kept. The destination must be empty unless
--force is given; duplicates then cause an error partway through.

After migrating, set "backend" in the config file to the destination.

EXAMPLES:

  bodycomp migrate --from sqlite --to charm --dry-run
  bodycomp migrate --from sqlite --to charm
  bodycomp migrate --from charm --to sqlite`,
	Args:        cobra.NoArgs,
	Annotations: skipStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("--from and --to must differ")
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return fmt.Errorf("open %s: %w", migrateFrom, err)
		}
		defer src.Close()

		subjects, err := src.ListSubjects()
		if err != nil {
			return fmt.Errorf("read %s: %w", migrateFrom, err)
		}
		measurements := 0
		for _, s := range subjects {
			n, err := src.CountMeasurements(s.ID)
			if err != nil {
				return fmt.Errorf("read %s: %w", migrateFrom, err)
			}
			measurements += n
		}

		if migrateDryRun {
			color.Yellow("Dry run - no changes made")
			fmt.Printf("  Would copy %d subjects and %d measurements from %s to %s\n",
				len(subjects), measurements, migrateFrom, migrateTo)
			return nil
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return fmt.Errorf("open %s: %w", migrateTo, err)
		}
		defer dst.Close()

		existing, err := dst.ListSubjects()
		if err != nil {
			return fmt.Errorf("read %s: %w", migrateTo, err)
		}
		if len(existing) > 0 && !migrateForce {
			return fmt.Errorf("%s already has %d subjects (use --force to merge anyway)", migrateTo, len(existing))
		}

		// One cloud sync at the end instead of one per record.
		remote, toCharm := dst.(*charm.Client)
		if toCharm {
			remote.SetAutoSync(false)
		}

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if toCharm {
			if err := remote.Sync(); err != nil {
				color.Yellow("⚠ Copied locally but cloud sync failed: %v", err)
			}
		}

		color.Green("✓ Migrated %s → %s", migrateFrom, migrateTo)
		fmt.Printf("  Subjects: %d\n", summary.Subjects)
		fmt.Printf("  Measurements: %d\n", summary.Measurements)
		return nil
	},
}

// openBackend opens a named backend with the rest of the config unchanged.
func openBackend(name string) (storage.Repository, error) {
	c := *cfg
	c.Backend = name
	return c.OpenStorage()
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "sqlite", "source backend: sqlite or charm")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "charm", "destination backend: sqlite or charm")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "count what would be copied without writing")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "copy into a non-empty destination")
	rootCmd.AddCommand(migrateCmd)
}
