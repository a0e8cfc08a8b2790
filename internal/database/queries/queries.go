package queries

const SelectUserByID = "select-user-by-id"
const SelectUserByClerkID = "select-user-by-clerk-id"
const UpsertUserLogin = "upsert-user-login"
const UpsertUserProfile = "upsert-user-profile"
const UpdateUserGitHub = "update-user-github"
const DeleteUserByClerkID = "delete-user-by-clerk-id"
const UpsertRepository = "upsert-repository"
const SelectRepositoryByID = "select-repository-by-id"
const SelectActiveRepositoriesByUser = "select-active-repositories-by-user"
const CountActiveRepositoriesByUser = "count-active-repositories-by-user"
const DeactivateRepository = "deactivate-repository"

const userColumns = `id, clerk_id, email, full_name, avatar_url, github_username, github_access_token,
github_refresh_token, github_token_expires_at, last_login_at, created_at, updated_at`

const repositoryColumns = `id, user_id, github_repo_id, name, full_name, owner, is_private, description,
default_branch, is_active, created_at, updated_at`

var queries = map[string]map[string]string{
	"sqlite": {
		SelectUserByID: `
SELECT ` + userColumns + `
FROM users
WHERE id = ?;
`,
		SelectUserByClerkID: `
SELECT ` + userColumns + `
FROM users
WHERE clerk_id = ?;
`,
		UpsertUserLogin: `
INSERT INTO users (id, clerk_id, email, full_name, avatar_url, last_login_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (clerk_id) DO UPDATE SET
email = excluded.email,
full_name = COALESCE(excluded.full_name, users.full_name),
avatar_url = COALESCE(excluded.avatar_url, users.avatar_url),
last_login_at = excluded.last_login_at,
updated_at = excluded.updated_at
RETURNING ` + userColumns + `;
`,
		UpsertUserProfile: `
INSERT INTO users (id, clerk_id, email, full_name, avatar_url, last_login_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (clerk_id) DO UPDATE SET
email = excluded.email,
full_name = excluded.full_name,
avatar_url = excluded.avatar_url,
updated_at = excluded.updated_at
RETURNING ` + userColumns + `;
`,
		UpdateUserGitHub: `
UPDATE users
SET github_username = ?, github_access_token = ?, github_refresh_token = ?, github_token_expires_at = ?, updated_at = ?
WHERE id = ?;
`,
		DeleteUserByClerkID: `
DELETE FROM users WHERE clerk_id = ?;
`,
		UpsertRepository: `
INSERT INTO repositories (id, user_id, github_repo_id, name, full_name, owner, is_private, description,
default_branch, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (github_repo_id) DO UPDATE SET
name = excluded.name,
full_name = excluded.full_name,
owner = excluded.owner,
is_private = excluded.is_private,
description = excluded.description,
default_branch = excluded.default_branch,
is_active = 1,
updated_at = excluded.updated_at
RETURNING ` + repositoryColumns + `;
`,
		SelectRepositoryByID: `
SELECT ` + repositoryColumns + `
FROM repositories
WHERE id = ?;
`,
		SelectActiveRepositoriesByUser: `
SELECT ` + repositoryColumns + `
FROM repositories
WHERE user_id = ? AND is_active = 1
ORDER BY updated_at DESC;
`,
		CountActiveRepositoriesByUser: `
SELECT count(1)
FROM repositories
WHERE user_id = ? AND is_active = 1;
`,
		DeactivateRepository: `
UPDATE repositories SET is_active = 0, updated_at = ? WHERE id = ?;
`,
	},
	"postgres": {
		SelectUserByID: `
SELECT ` + userColumns + `
FROM users
WHERE id = $1;
`,
		SelectUserByClerkID: `
SELECT ` + userColumns + `
FROM users
WHERE clerk_id = $1;
`,
		UpsertUserLogin: `
INSERT INTO users (id, clerk_id, email, full_name, avatar_url, last_login_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (clerk_id) DO UPDATE SET
email = excluded.email,
full_name = COALESCE(excluded.full_name, users.full_name),
avatar_url = COALESCE(excluded.avatar_url, users.avatar_url),
last_login_at = excluded.last_login_at,
updated_at = excluded.updated_at
RETURNING ` + userColumns + `;
`,
		UpsertUserProfile: `
INSERT INTO users (id, clerk_id, email, full_name, avatar_url, last_login_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (clerk_id) DO UPDATE SET
email = excluded.email,
full_name = excluded.full_name,
avatar_url = excluded.avatar_url,
updated_at = excluded.updated_at
RETURNING ` + userColumns + `;
`,
		UpdateUserGitHub: `
UPDATE users
SET github_username = $1, github_access_token = $2, github_refresh_token = $3, github_token_expires_at = $4, updated_at = $5
WHERE id = $6;
`,
		DeleteUserByClerkID: `
DELETE FROM users WHERE clerk_id = $1;
`,
		UpsertRepository: `
INSERT INTO repositories (id, user_id, github_repo_id, name, full_name, owner, is_private, description,
default_branch, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10, $11)
ON CONFLICT (github_repo_id) DO UPDATE SET
name = excluded.name,
full_name = excluded.full_name,
owner = excluded.owner,
is_private = excluded.is_private,
description = excluded.description,
default_branch = excluded.default_branch,
is_active = true,
updated_at = excluded.updated_at
RETURNING ` + repositoryColumns + `;
`,
		SelectRepositoryByID: `
SELECT ` + repositoryColumns + `
FROM repositories
WHERE id = $1;
`,
		SelectActiveRepositoriesByUser: `
SELECT ` + repositoryColumns + `
FROM repositories
WHERE user_id = $1 AND is_active = true
ORDER BY updated_at DESC;
`,
		CountActiveRepositoriesByUser: `
SELECT count(1)
FROM repositories
WHERE user_id = $1 AND is_active = true;
`,
		DeactivateRepository: `
UPDATE repositories SET is_active = false, updated_at = $1 WHERE id = $2;
`,
	},
}

// Stmt returns the query registered under name for driver
func Stmt(driver string, name string) string {
	driverQueries, ok := queries[driver]
	if !ok {
		panic("unknown database driver " + driver)
	}
	query, ok := driverQueries[name]
	if !ok {
		panic("unknown query " + name)
	}
	return query
}
