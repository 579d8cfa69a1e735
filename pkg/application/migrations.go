package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationManager collects embedded schema files from modules and applies
// them in registration order. Schema files are written to be idempotent
// (CREATE TABLE IF NOT EXISTS), so applying on every boot is safe.
type MigrationManager interface {
	RegisterSchema(fsys *embed.FS)
	Apply(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

func (m *migrationManager) Apply(ctx context.Context) error {
	for _, fsys := range m.schemas {
		files, err := sqlFiles(fsys)
		if err != nil {
			return err
		}
		for _, file := range files {
			content, err := fsys.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read schema %s: %w", file, err)
			}
			if _, err := m.pool.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("apply schema %s: %w", file, err)
			}
		}
	}
	return nil
}

func sqlFiles(fsys *embed.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
