package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the token store (SQLite).
var Migrations = migrate.NewGroup("gametoken")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_gametoken_entries",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS gametoken_entries (
    entry_key   TEXT PRIMARY KEY,
    entry_value TEXT NOT NULL,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS gametoken_entries`)
				return err
			},
		},
	)
}
