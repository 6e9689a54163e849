package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"agora/internal/middleware"

	"gorm.io/gorm"
)

// Migration is one versioned pair of SQL scripts.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// LoadMigrations reads NNNNNN_name.up.sql / .down.sql pairs from dir in fsys,
// sorted by version.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		prefix, label, ok := strings.Cut(base, "_")
		if !ok {
			middleware.Logger.Warn("Skipping migration with invalid naming", slog.String("file", name))
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: invalid version %q", name, prefix)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %06d declared twice (%s, %s)", version, prev, label)
		}
		seen[version] = label

		up, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read up migration %s: %w", name, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("read down migration %s: %w", base, err)
		}

		out = append(out, Migration{
			Version:    version,
			Name:       label,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// GetMigrations returns the embedded migration set.
func GetMigrations() ([]Migration, error) {
	return LoadMigrations(migrationFS, "migrations")
}

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// Migrator applies and rolls back a fixed migration set against one database.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator builds a Migrator over the embedded migrations.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	set, err := GetMigrations()
	if err != nil {
		return nil, err
	}
	return newMigrator(db, set), nil
}

func newMigrator(db *gorm.DB, set []Migration) *Migrator {
	return &Migrator{db: db, migrations: set}
}

// Applied lists applied versions in ascending order. A missing log table
// means nothing has been applied yet.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	if !m.db.Migrator().HasTable(&MigrationLog{}) {
		return []int{}, nil
	}
	var versions []int
	if err := m.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return versions, nil
}

// Pending lists migrations not yet recorded in migration_logs.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each inside its own transaction.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, m.migrations); err != nil {
		return err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", mig.Version), slog.String("name", mig.Name))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", mig, err)
			}
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name}).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back the given applied version.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !containsVersion(applied, version) {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", target.Name))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.DownScript).Error; err != nil {
			return fmt.Errorf("failed to run rollback SQL for migration %s: %w", target, err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
}

// RunMigrations applies all embedded migrations to db.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	return m.Up(ctx)
}

var errUnknownVersions = errors.New("migration_logs contains unknown versions not present in code")

func validateAppliedVersions(applied []int, registered []Migration) error {
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	var unknown []string
	for _, version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", version))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", errUnknownVersions, strings.Join(unknown, ", "))
}

func containsVersion(versions []int, v int) bool {
	for _, x := range versions {
		if x == v {
			return true
		}
	}
	return false
}
