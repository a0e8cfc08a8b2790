package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"reviewpilot-core/internal/application/service"
	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/domain/events"
	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"
	"reviewpilot-core/internal/infrastructure/encryption"
	"reviewpilot-core/internal/infrastructure/oauthstate"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Mock implementations
type mockUserRepository struct {
	mu           sync.Mutex
	users        map[string]*user.User
	clerkIDIndex map[string]*user.User
	shouldError  bool
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:        make(map[string]*user.User),
		clerkIDIndex: make(map[string]*user.User),
	}
}

func (m *mockUserRepository) put(usr *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[usr.ID().String()] = usr
	m.clerkIDIndex[usr.ClerkID().String()] = usr
}

func (m *mockUserRepository) UpsertByClerkID(ctx context.Context, usr *user.User, mode user.SyncMode) (*user.User, bool, error) {
	if m.shouldError {
		return nil, false, errors.New("repository error")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.clerkIDIndex[usr.ClerkID().String()]
	if !ok {
		m.users[usr.ID().String()] = usr
		m.clerkIDIndex[usr.ClerkID().String()] = usr
		return usr, true, nil
	}

	var err error
	if mode == user.SyncProfile {
		err = existing.UpdateProfile(usr.Email().String(), usr.FullName(), usr.AvatarURL(), usr.UpdatedAt())
	} else {
		err = existing.RecordLogin(usr.Email().String(), usr.FullName(), usr.AvatarURL(), usr.UpdatedAt())
	}
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (m *mockUserRepository) UpdateGitHubConnection(ctx context.Context, usr *user.User) error {
	if m.shouldError {
		return errors.New("repository error")
	}
	if _, ok := m.users[usr.ID().String()]; !ok {
		return user.ErrUserNotFound(usr.ID().String())
	}
	m.users[usr.ID().String()] = usr
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id user.UserID) (*user.User, error) {
	if m.shouldError {
		return nil, errors.New("repository error")
	}
	usr, ok := m.users[id.String()]
	if !ok {
		return nil, user.ErrUserNotFound(id.String())
	}
	return usr, nil
}

func (m *mockUserRepository) FindByClerkID(ctx context.Context, clerkID user.ClerkUserID) (*user.User, error) {
	if m.shouldError {
		return nil, errors.New("repository error")
	}
	usr, ok := m.clerkIDIndex[clerkID.String()]
	if !ok {
		return nil, user.ErrUserNotFound(clerkID.String())
	}
	return usr, nil
}

func (m *mockUserRepository) DeleteByClerkID(ctx context.Context, clerkID user.ClerkUserID) error {
	if m.shouldError {
		return errors.New("repository error")
	}
	usr, ok := m.clerkIDIndex[clerkID.String()]
	if !ok {
		return user.ErrUserNotFound(clerkID.String())
	}
	delete(m.clerkIDIndex, clerkID.String())
	delete(m.users, usr.ID().String())
	return nil
}

type mockRepositoryRepo struct {
	repos       map[string]*repo.Repository
	shouldError bool
}

func newMockRepositoryRepo() *mockRepositoryRepo {
	return &mockRepositoryRepo{repos: make(map[string]*repo.Repository)}
}

func (m *mockRepositoryRepo) Upsert(ctx context.Context, r *repo.Repository) (*repo.Repository, error) {
	if m.shouldError {
		return nil, errors.New("repository error")
	}
	for id, existing := range m.repos {
		if existing.GitHubID() == r.GitHubID() {
			updated, err := repo.Reconstitute(id, existing.UserID().String(), r.GitHubID().Int64(),
				r.Name().String(), r.FullName(), r.Owner(), r.IsPrivate(), r.Description(),
				r.DefaultBranch(), true, existing.CreatedAt(), r.UpdatedAt())
			if err != nil {
				return nil, err
			}
			m.repos[id] = updated
			return updated, nil
		}
	}
	m.repos[r.ID().String()] = r
	return r, nil
}

func (m *mockRepositoryRepo) FindByID(ctx context.Context, id repo.RepositoryID) (*repo.Repository, error) {
	r, ok := m.repos[id.String()]
	if !ok {
		return nil, repo.ErrRepositoryNotFound(id.String())
	}
	return r, nil
}

func (m *mockRepositoryRepo) FindActiveByUserID(ctx context.Context, userID user.UserID) ([]*repo.Repository, error) {
	if m.shouldError {
		return nil, errors.New("repository error")
	}
	var result []*repo.Repository
	for _, r := range m.repos {
		if r.IsActive() && r.BelongsToUser(userID) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt().After(result[j].UpdatedAt()) })
	return result, nil
}

func (m *mockRepositoryRepo) CountActiveByUserID(ctx context.Context, userID user.UserID) (int64, error) {
	list, err := m.FindActiveByUserID(ctx, userID)
	return int64(len(list)), err
}

func (m *mockRepositoryRepo) Deactivate(ctx context.Context, r *repo.Repository) error {
	if _, ok := m.repos[r.ID().String()]; !ok {
		return repo.ErrRepositoryNotFound(r.ID().String())
	}
	m.repos[r.ID().String()] = r
	return nil
}

// mockGitHub plays both the OAuth and the REST side of GitHub
type mockGitHub struct {
	token       *user.OAuthToken
	account     *user.GitHubAccount
	exchangeErr error
	revokeErr   error
	revoked     []string

	repos        []*repo.GitHubRepository
	listErr      error
	pagesFetched []int
	pulls        []*repo.GitHubPullRequest
	pullsErr     error
	pullsState   repo.PullRequestState
}

func (m *mockGitHub) AuthorizationURL(state string) string {
	return "https://github.com/login/oauth/authorize?client_id=client-123&state=" + state
}

func (m *mockGitHub) ExchangeCode(ctx context.Context, code string) (*user.OAuthToken, error) {
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	return m.token, nil
}

func (m *mockGitHub) AuthenticatedAccount(ctx context.Context, accessToken string) (*user.GitHubAccount, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.account, nil
}

func (m *mockGitHub) RevokeGrant(ctx context.Context, accessToken string) error {
	m.revoked = append(m.revoked, accessToken)
	return m.revokeErr
}

func (m *mockGitHub) RepositoryTotal(ctx context.Context, accessToken string) (int, error) {
	if m.listErr != nil {
		return 0, m.listErr
	}
	return m.account.PublicRepos + m.account.TotalPrivateRepos, nil
}

func (m *mockGitHub) ListRepositories(ctx context.Context, accessToken string, page, perPage int) ([]*repo.GitHubRepository, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.pagesFetched = append(m.pagesFetched, page)
	start := (page - 1) * perPage
	if start >= len(m.repos) {
		return nil, nil
	}
	end := start + perPage
	if end > len(m.repos) {
		end = len(m.repos)
	}
	return m.repos[start:end], nil
}

func (m *mockGitHub) ListPullRequests(ctx context.Context, accessToken, owner, name string, state repo.PullRequestState, page, perPage int) ([]*repo.GitHubPullRequest, error) {
	m.pullsState = state
	if m.pullsErr != nil {
		return nil, m.pullsErr
	}
	return m.pulls, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// fixture wires every service against the mocks
type fixture struct {
	users      *mockUserRepository
	repos      *mockRepositoryRepo
	github     *mockGitHub
	cipher     *encryption.EncryptionService
	codec      *oauthstate.Codec
	nonces     *oauthstate.MemoryNonceStore
	publisher  *recordingPublisher
	clock      *clockwork.FakeClock
	connection *service.ConnectionService
	repository *service.RepositoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cipher, err := encryption.NewEncryptionService("test-encryption-key")
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(epoch)
	f := &fixture{
		users:     newMockUserRepository(),
		repos:     newMockRepositoryRepo(),
		github:    &mockGitHub{account: &user.GitHubAccount{Login: "octocat"}},
		cipher:    cipher,
		codec:     oauthstate.NewCodec([]byte("state-secret"), oauthstate.DefaultTTL, clock),
		nonces:    oauthstate.NewMemoryNonceStore(clock),
		publisher: &recordingPublisher{},
		clock:     clock,
	}
	f.connection = service.NewConnectionService(f.users, f.github, f.cipher, f.codec, f.nonces, f.publisher, clock, true)
	f.repository = service.NewRepositoryService(f.users, f.repos, f.github, f.cipher, f.publisher, clock)
	return f
}

// addUser stores a user, connected to GitHub when token is not empty
func (f *fixture) addUser(t *testing.T, clerkID, token string) *user.User {
	t.Helper()
	u, err := user.NewUser(clerkID, clerkID+"@example.com", nil, nil, epoch)
	require.NoError(t, err)
	if token != "" {
		enc, err := f.cipher.Encrypt(token)
		require.NoError(t, err)
		require.NoError(t, u.ConnectGitHub("octocat", enc, nil, nil, epoch))
	}
	f.users.put(u)
	return u
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("error kind = %v, want %v (%v)", got, kind, err)
	}
}

func strPtr(s string) *string { return &s }
