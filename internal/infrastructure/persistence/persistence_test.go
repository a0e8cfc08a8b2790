package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/database"
	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewTest()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func saveUser(t *testing.T, users user.Repository, clerkID string) *user.User {
	t.Helper()
	u, err := user.NewUser(clerkID, clerkID+"@example.com", strPtr("Jane Doe"), nil, epoch)
	require.NoError(t, err)
	stored, created, err := users.UpsertByClerkID(context.Background(), u, user.SyncLogin)
	require.NoError(t, err)
	require.True(t, created)
	return stored
}

func TestUserRepositoryUpsertAndFind(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	u := saveUser(t, users, "user_1")

	found, err := users.FindByClerkID(ctx, u.ClerkID())
	require.NoError(t, err)
	assert.True(t, found.ID().Equals(u.ID()))
	assert.Equal(t, "user_1@example.com", found.Email().String())
	require.NotNil(t, found.FullName())
	assert.Equal(t, "Jane Doe", *found.FullName())
	assert.Nil(t, found.AvatarURL())
	assert.False(t, found.IsGitHubConnected())
	assert.True(t, found.CreatedAt().Equal(epoch))

	byID, err := users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "user_1", byID.ClerkID().String())

}

func TestUserRepositoryUpsertByClerkID(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	first := saveUser(t, users, "user_1")
	later := epoch.Add(time.Hour)

	// a sign-in without a name keeps the stored one
	login, err := user.NewUser("user_1", "new@example.com", nil, strPtr("https://img"), later)
	require.NoError(t, err)
	stored, created, err := users.UpsertByClerkID(ctx, login, user.SyncLogin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, stored.ID().Equals(first.ID()))
	assert.Equal(t, "new@example.com", stored.Email().String())
	require.NotNil(t, stored.FullName())
	assert.Equal(t, "Jane Doe", *stored.FullName())
	assert.Equal(t, "https://img", *stored.AvatarURL())
	require.NotNil(t, stored.LastLoginAt())
	assert.True(t, stored.LastLoginAt().Equal(later))
	assert.True(t, stored.CreatedAt().Equal(epoch))

	// a profile update overwrites name and avatar and leaves the login time alone
	profile, err := user.NewUser("user_1", "new@example.com", nil, nil, later.Add(time.Hour))
	require.NoError(t, err)
	stored, created, err = users.UpsertByClerkID(ctx, profile, user.SyncProfile)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, stored.ID().Equals(first.ID()))
	assert.Nil(t, stored.FullName())
	assert.Nil(t, stored.AvatarURL())
	assert.True(t, stored.LastLoginAt().Equal(later))
	assert.True(t, stored.UpdatedAt().Equal(later.Add(time.Hour)))
}

func TestUserRepositoryUpsertConcurrentFirstSignIn(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[string]int{}
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := user.NewUser("user_x", "x@example.com", nil, nil, epoch)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			stored, isNew, err := users.UpsertByClerkID(ctx, u, user.SyncLogin)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[stored.ID().String()]++
			if isNew {
				created++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
}

func TestUserRepositoryNotFound(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)

	clerkID, _ := user.NewClerkUserID("missing")
	_, err := users.FindByClerkID(context.Background(), clerkID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = users.FindByID(context.Background(), user.NewUserID())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = users.DeleteByClerkID(context.Background(), clerkID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUserRepositoryGitHubConnection(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	u := saveUser(t, users, "user_1")
	expires := epoch.Add(8 * time.Hour)
	require.NoError(t, u.ConnectGitHub("octocat", "iv:cipher", strPtr("iv:refresh"), &expires, epoch))
	require.NoError(t, users.UpdateGitHubConnection(ctx, u))

	found, err := users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	gh := found.GitHub()
	require.True(t, found.IsGitHubConnected())
	assert.Equal(t, "octocat", *gh.Username)
	assert.Equal(t, "iv:cipher", *gh.AccessToken)
	assert.Equal(t, "iv:refresh", *gh.RefreshToken)
	require.NotNil(t, gh.TokenExpiresAt)
	assert.True(t, gh.TokenExpiresAt.Equal(expires))

	// a sign-in must not touch the GitHub fields
	again, err := user.NewUser("user_1", "user_1@example.com", nil, nil, epoch.Add(time.Minute))
	require.NoError(t, err)
	found, _, err = users.UpsertByClerkID(ctx, again, user.SyncLogin)
	require.NoError(t, err)
	assert.True(t, found.IsGitHubConnected())
	assert.Equal(t, "iv:cipher", *found.GitHub().AccessToken)

	found.DisconnectGitHub(epoch.Add(time.Hour))
	require.NoError(t, users.UpdateGitHubConnection(ctx, found))

	found, err = users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.False(t, found.IsGitHubConnected())
	assert.Nil(t, found.GitHub().Username)
	assert.Nil(t, found.GitHub().RefreshToken)
	assert.Nil(t, found.GitHub().TokenExpiresAt)
}

func newRepository(t *testing.T, owner user.UserID, githubID int64, name string, now time.Time) *repo.Repository {
	t.Helper()
	r, err := repo.NewRepositoryFromGitHub(owner, &repo.GitHubRepository{
		ID:       githubID,
		Name:     name,
		FullName: "octo/" + name,
		Owner:    "octo",
	}, now)
	require.NoError(t, err)
	return r
}

func TestRepositoryUpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repos := NewRepositoryRepository(db)
	ctx := context.Background()

	u := saveUser(t, users, "user_1")

	first, err := repos.Upsert(ctx, newRepository(t, u.ID(), 42, "hello", epoch))
	require.NoError(t, err)
	assert.True(t, first.IsActive())
	assert.Equal(t, "main", first.DefaultBranch())

	// same GitHub id keeps the stored row id and refreshes metadata
	again := newRepository(t, u.ID(), 42, "hello-renamed", epoch.Add(time.Minute))
	second, err := repos.Upsert(ctx, again)
	require.NoError(t, err)
	assert.True(t, second.ID().Equals(first.ID()))
	assert.Equal(t, "hello-renamed", second.Name().String())

	count, err := repos.CountActiveByUserID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryDeactivateAndReactivate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repos := NewRepositoryRepository(db)
	ctx := context.Background()

	u := saveUser(t, users, "user_1")
	saved, err := repos.Upsert(ctx, newRepository(t, u.ID(), 42, "hello", epoch))
	require.NoError(t, err)

	saved.Deactivate(epoch.Add(time.Minute))
	require.NoError(t, repos.Deactivate(ctx, saved))

	list, err := repos.FindActiveByUserID(ctx, u.ID())
	require.NoError(t, err)
	assert.Empty(t, list)

	stored, err := repos.FindByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.False(t, stored.IsActive())

	revived, err := repos.Upsert(ctx, newRepository(t, u.ID(), 42, "hello", epoch.Add(2*time.Minute)))
	require.NoError(t, err)
	assert.True(t, revived.IsActive())
	assert.True(t, revived.ID().Equals(saved.ID()))
}

func TestRepositoryListOrderAndCascade(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repos := NewRepositoryRepository(db)
	ctx := context.Background()

	u := saveUser(t, users, "user_1")
	other := saveUser(t, users, "user_2")

	_, err := repos.Upsert(ctx, newRepository(t, u.ID(), 1, "old", epoch))
	require.NoError(t, err)
	_, err = repos.Upsert(ctx, newRepository(t, u.ID(), 2, "new", epoch.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repos.Upsert(ctx, newRepository(t, other.ID(), 3, "theirs", epoch))
	require.NoError(t, err)

	list, err := repos.FindActiveByUserID(ctx, u.ID())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Name().String())
	assert.Equal(t, "old", list[1].Name().String())

	require.NoError(t, users.DeleteByClerkID(ctx, u.ClerkID()))

	_, err = repos.FindByID(ctx, list[0].ID())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	count, err := repos.CountActiveByUserID(ctx, other.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repos := NewRepositoryRepository(db)

	_, err := repos.FindByID(context.Background(), repo.NewRepositoryID())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
