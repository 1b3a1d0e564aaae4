package users

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/cryptox"
	"github.com/dsmirnovs/clipvault/internal/logging"
	"github.com/dsmirnovs/clipvault/internal/server/assets"
	"github.com/dsmirnovs/clipvault/internal/server/auth"
	"github.com/dsmirnovs/clipvault/internal/server/models"
)

// memRepo is an in-memory credential store used to exercise the session
// flows without a database.
type memRepo struct {
	byID map[string]*models.User
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*models.User{}}
}

func (m *memRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.byID {
		if u.Username == strings.ToLower(user.Username) || u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}
	u := *user
	u.ID = uuid.NewString()
	u.Username = strings.ToLower(user.Username)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = &u
	out := u
	return &out, nil
}

func (m *memRepo) GetByLogin(ctx context.Context, identifier string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Username == strings.ToLower(identifier) || u.Email == identifier {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (m *memRepo) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshTokenHash = hash
	return nil
}

func (m *memRepo) SetPasswordHash(ctx context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memRepo) SetAssetSlot(ctx context.Context, id, slot, url string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	switch slot {
	case common.SlotAvatar:
		u.Avatar = url
	case common.SlotCoverImage:
		u.CoverImage = url
	}
	out := *u
	return &out, nil
}

func (m *memRepo) UpdateProfile(ctx context.Context, id, email, fullName string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if email != "" {
		u.Email = email
	}
	if fullName != "" {
		u.FullName = fullName
	}
	out := *u
	return &out, nil
}

type memStore struct {
	uploads int
	deleted []string
}

func (s *memStore) Upload(ctx context.Context, localPath, keyPrefix string) (string, error) {
	s.uploads++
	return fmt.Sprintf("http://cdn.test/media/upload/v1/%s/obj-%d.png", keyPrefix, s.uploads), nil
}

func (s *memStore) Delete(ctx context.Context, objectID string) error {
	s.deleted = append(s.deleted, objectID)
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepo, *memStore) {
	t.Helper()
	repo := newMemRepo()
	store := &memStore{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	issuer := auth.NewIssuer([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 24*time.Hour)
	coordinator := assets.NewCoordinator(store, repo, logger)
	return NewService(repo, issuer, store, coordinator, logger), repo, store
}

func seedUser(t *testing.T, repo *memRepo, username, email, password string) *models.User {
	t.Helper()
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	u, err := repo.Create(context.Background(), &models.User{
		Username:     username,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return u
}

func stagedFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	return path
}

func TestLogin_Success_RedactableUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	pair, user, err := svc.Login(ctx, "ana", "Secret1!")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	view := user.View()
	b := fmt.Sprintf("%+v", view)
	require.NotContains(t, b, user.PasswordHash)
	require.NotContains(t, b, cryptox.HashToken(pair.RefreshToken))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana", "a@x.com", "Secret1!")

	_, _, err := svc.Login(context.Background(), "ana", "wrong")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLogin_ByEmailAndCaseInsensitiveUsername(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "Ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "a@x.com", "Secret1!")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ANA", "Secret1!")
	require.NoError(t, err)
}

func TestRefresh_RotatesAndInvalidatesPrevious(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "ana", "Secret1!")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, next.AccessToken,
		"refresh must mint a different access token")

	// the first refresh token is now stale
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	// the rotated one keeps working
	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_AfterLogout(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "ana", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID))
	require.NoError(t, svc.Logout(ctx, u.ID), "logout is idempotent")

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = svc.Refresh(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "ana", "Secret1!")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestChangePassword_NoOpRejectedRegardlessOfCorrectness(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, "Secret1!", "Secret1!")
	require.ErrorIs(t, err, common.ErrorPasswordUnchanged)

	// same rejection when the old password is wrong
	err = svc.ChangePassword(ctx, u.ID, "totally-wrong", "totally-wrong")
	require.ErrorIs(t, err, common.ErrorPasswordUnchanged)
}

func TestChangePassword_Flow(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, "wrong-old", "NewSecret9$long")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "Secret1!", "NewSecret9$long"))

	_, _, err = svc.Login(ctx, "ana", "Secret1!")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
	_, _, err = svc.Login(ctx, "ana", "NewSecret9$long")
	require.NoError(t, err)
}

func TestChangePassword_KeepsRefreshTokenValid(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "ana", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "Secret1!", "NewSecret9$long"))

	// outstanding refresh tokens are not invalidated by a password change
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRegister_CreatesUserWithAssets(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username:       "Ana",
		Email:          "a@x.com",
		FullName:       "Ana A.",
		Password:       "v3ry/Secret#phrase",
		AvatarPath:     stagedFile(t, "avatar.png"),
		CoverImagePath: stagedFile(t, "cover.jpg"),
	})
	require.NoError(t, err)
	require.Equal(t, "ana", user.Username, "username stored in canonical lowercase")
	require.NotEmpty(t, user.Avatar)
	require.NotEmpty(t, user.CoverImage)
	require.Equal(t, 2, store.uploads)

	_, _, err = svc.Login(ctx, "ana", "v3ry/Secret#phrase")
	require.NoError(t, err)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "ana", "a@x.com", "Secret1!")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:   "ana",
		Email:      "other@x.com",
		FullName:   "Someone",
		Password:   "v3ry/Secret#phrase",
		AvatarPath: stagedFile(t, "avatar.png"),
	})
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestRegister_MissingAvatar(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ana",
		Email:    "a@x.com",
		FullName: "Ana",
		Password: "Secret1!",
	})
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:   "ana",
		Email:      "a@x.com",
		FullName:   "Ana",
		Password:   "aaaa",
		AvatarPath: stagedFile(t, "avatar.png"),
	})
	require.ErrorIs(t, err, common.ErrorWeakPassword)
}

func TestReplaceAsset_AvatarSwapDeletesOldOnce(t *testing.T) {
	svc, repo, store := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	first, err := svc.ReplaceAsset(ctx, u.ID, common.SlotAvatar, stagedFile(t, "a.png"))
	require.NoError(t, err)
	require.Empty(t, store.deleted)

	second, err := svc.ReplaceAsset(ctx, u.ID, common.SlotAvatar, stagedFile(t, "b.png"))
	require.NoError(t, err)
	require.NotEqual(t, first.Avatar, second.Avatar)
	require.Equal(t, []string{assets.ExtractObjectID(first.Avatar)}, store.deleted)
}

func TestServiceUpdateProfile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, u.ID, "", "")
	require.ErrorIs(t, err, common.ErrorValidation)

	updated, err := svc.UpdateProfile(ctx, u.ID, "new@x.com", "")
	require.NoError(t, err)
	require.Equal(t, "new@x.com", updated.Email)
	require.Equal(t, "Test User", updated.FullName, "empty fullname keeps stored value")
}

func TestCurrentUser(t *testing.T) {
	svc, repo, _ := newTestService(t)
	u := seedUser(t, repo, "ana", "a@x.com", "Secret1!")

	got, err := svc.CurrentUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.CurrentUser(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, common.ErrorNotFound)
}
