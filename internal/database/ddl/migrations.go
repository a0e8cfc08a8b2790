package ddl

import (
	"database/sql"
	"fmt"
)

const createTableUsers = "create-table-users"
const createTableRepositories = "create-table-repositories"
const createIndexRepositoriesUserID = "create-index-repositories-user-id"

type migration struct {
	name string
	stmt string
}

var migrations = map[string][]migration{
	"sqlite": {
		{
			name: createTableUsers,
			stmt: `
CREATE TABLE IF NOT EXISTS users (
id                      TEXT PRIMARY KEY,
clerk_id                TEXT NOT NULL,
email                   TEXT NOT NULL,
full_name               TEXT,
avatar_url              TEXT,
github_username         TEXT,
github_access_token     TEXT,
github_refresh_token    TEXT,
github_token_expires_at TIMESTAMP,
last_login_at           TIMESTAMP,
created_at              TIMESTAMP NOT NULL,
updated_at              TIMESTAMP NOT NULL,
UNIQUE(clerk_id)
);
`,
		},
		{
			name: createTableRepositories,
			stmt: `
CREATE TABLE IF NOT EXISTS repositories (
id             TEXT PRIMARY KEY,
user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
github_repo_id INTEGER NOT NULL,
name           TEXT NOT NULL,
full_name      TEXT NOT NULL,
owner          TEXT NOT NULL,
is_private     BOOLEAN NOT NULL DEFAULT 0,
description    TEXT,
default_branch TEXT NOT NULL DEFAULT 'main',
is_active      BOOLEAN NOT NULL DEFAULT 1,
created_at     TIMESTAMP NOT NULL,
updated_at     TIMESTAMP NOT NULL,
UNIQUE(github_repo_id)
);
`,
		},
		{
			name: createIndexRepositoriesUserID,
			stmt: `CREATE INDEX IF NOT EXISTS idx_repositories_user_id ON repositories(user_id);`,
		},
	},
	"postgres": {
		{
			name: createTableUsers,
			stmt: `
CREATE TABLE IF NOT EXISTS users (
id                      UUID PRIMARY KEY,
clerk_id                TEXT NOT NULL,
email                   TEXT NOT NULL,
full_name               TEXT,
avatar_url              TEXT,
github_username         TEXT,
github_access_token     TEXT,
github_refresh_token    TEXT,
github_token_expires_at TIMESTAMPTZ,
last_login_at           TIMESTAMPTZ,
created_at              TIMESTAMPTZ NOT NULL,
updated_at              TIMESTAMPTZ NOT NULL,
UNIQUE(clerk_id)
);
`,
		},
		{
			name: createTableRepositories,
			stmt: `
CREATE TABLE IF NOT EXISTS repositories (
id             UUID PRIMARY KEY,
user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
github_repo_id BIGINT NOT NULL,
name           TEXT NOT NULL,
full_name      TEXT NOT NULL,
owner          TEXT NOT NULL,
is_private     BOOLEAN NOT NULL DEFAULT false,
description    TEXT,
default_branch TEXT NOT NULL DEFAULT 'main',
is_active      BOOLEAN NOT NULL DEFAULT true,
created_at     TIMESTAMPTZ NOT NULL,
updated_at     TIMESTAMPTZ NOT NULL,
UNIQUE(github_repo_id)
);
`,
		},
		{
			name: createIndexRepositoriesUserID,
			stmt: `CREATE INDEX IF NOT EXISTS idx_repositories_user_id ON repositories(user_id);`,
		},
	},
}

const createTableMigrations = `
CREATE TABLE IF NOT EXISTS migrations (
name VARCHAR(255),
UNIQUE(name)
);
`

// Migrate applies every migration of the driver that has not been applied yet
func Migrate(driver string, db *sql.DB) error {
	steps, ok := migrations[driver]
	if !ok {
		return fmt.Errorf("no migrations for driver %s", driver)
	}

	if _, err := db.Exec(createTableMigrations); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range steps {
		applied, err := isApplied(driver, db, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		if _, err := db.Exec(insertMigration(driver), m.name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}
	}
	return nil
}

func isApplied(driver string, db *sql.DB, name string) (bool, error) {
	stmt := "SELECT count(1) FROM migrations WHERE name = ?"
	if driver == "postgres" {
		stmt = "SELECT count(1) FROM migrations WHERE name = $1"
	}

	var count int
	if err := db.QueryRow(stmt, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to read migrations: %w", err)
	}
	return count > 0, nil
}

func insertMigration(driver string) string {
	if driver == "postgres" {
		return "INSERT INTO migrations (name) VALUES ($1)"
	}
	return "INSERT INTO migrations (name) VALUES (?)"
}
