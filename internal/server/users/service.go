package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/cryptox"
	"github.com/dsmirnovs/clipvault/internal/filex"
	"github.com/dsmirnovs/clipvault/internal/logging"
	"github.com/dsmirnovs/clipvault/internal/server/assets"
	"github.com/dsmirnovs/clipvault/internal/server/auth"
	"github.com/dsmirnovs/clipvault/internal/server/models"
)

// minPasswordEntropy is the bar for new passwords, in bits.
const minPasswordEntropy = 50

// TokenPair bundles a short-lived access token and a longer-lived refresh
// token. The access token is stateless; only the refresh token's hash is
// persisted, inline on the identity record.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service is the session controller: it orchestrates credential
// verification, token lifecycle, and profile/asset mutations against the
// credential store.
type Service struct {
	repo        Repository
	issuer      *auth.Issuer
	store       assets.ObjectStore
	coordinator *assets.Coordinator
	logger      logging.Logger
}

func NewService(repo Repository, issuer *auth.Issuer, store assets.ObjectStore, coordinator *assets.Coordinator, logger logging.Logger) *Service {
	return &Service{
		repo:        repo,
		issuer:      issuer,
		store:       store,
		coordinator: coordinator,
		logger:      logger,
	}
}

// RegisterInput is the parsed registration request. AvatarPath points at a
// staged upload and is required; CoverImagePath is optional.
type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register creates a new identity. The avatar is uploaded before the record
// is created, so a stored identity always references a live object. Staged
// files are discarded on every exit path.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	defer filex.Discard(in.AvatarPath)
	defer filex.Discard(in.CoverImagePath)

	if in.Username == "" || in.Email == "" || in.FullName == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}
	if in.AvatarPath == "" {
		return nil, fmt.Errorf("%w: avatar file is required", common.ErrorValidation)
	}
	if err := passwordvalidator.Validate(in.Password, minPasswordEntropy); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorWeakPassword, err)
	}

	for _, identifier := range []string{in.Username, in.Email} {
		if _, err := s.repo.GetByLogin(ctx, identifier); err == nil {
			return nil, common.ErrorConflict
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
	}

	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	avatarURL, err := s.store.Upload(ctx, in.AvatarPath, "users/avatars")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUploadFailed, err)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.store.Upload(ctx, in.CoverImagePath, "users/covers")
		if err != nil {
			// the cover slot is optional; the account is still created
			s.logger.Warn(ctx, "cover image upload failed during registration", "error", err.Error())
			coverURL = ""
		}
	}

	user, err := s.repo.Create(ctx, &models.User{
		Username:     strings.ToLower(in.Username),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: passwordHash,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
	})
	if err != nil {
		// the uploads are unreferenced now; reclaim them best-effort
		s.coordinator.CleanupURL(ctx, avatarURL)
		s.coordinator.CleanupURL(ctx, coverURL)
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Login verifies credentials and issues a fresh token pair. The refresh
// token's hash replaces whatever hash was stored before.
func (s *Service) Login(ctx context.Context, identifier, password string) (*TokenPair, *models.User, error) {
	if identifier == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username or email and password are required", common.ErrorValidation)
	}

	user, err := s.repo.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, common.ErrorInternal
	}

	if !cryptox.CheckPassword(password, user.PasswordHash) {
		return nil, nil, common.ErrorInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Logout clears the persisted refresh-token hash unconditionally. Calling it
// twice is harmless.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Refresh rotates the token pair. The presented token must verify
// cryptographically and its hash must equal the stored one — the stored hash
// is the single source of truth for the live refresh token, so a mismatch
// means the token was already rotated or never issued. A reused stale token
// is rejected with no side effect on the current valid token.
//
// The new hash is stored before the pair is returned; if the response is
// then lost, the client's token is already invalid. Fail-closed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := s.issuer.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		s.logger.Debug(ctx, "refresh token rejected", "reason", err.Error())
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenHash != cryptox.HashToken(refreshToken) {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user.ID)
}

// ChangePassword replaces the password hash after verifying the old
// password. The no-op check runs first: reusing the old password fails even
// when the old password is wrong. Outstanding refresh tokens stay valid.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new passwords are required", common.ErrorValidation)
	}
	if newPassword == oldPassword {
		return common.ErrorPasswordUnchanged
	}
	if err := passwordvalidator.Validate(newPassword, minPasswordEntropy); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorWeakPassword, err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	if !cryptox.CheckPassword(oldPassword, user.PasswordHash) {
		return common.ErrorInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.repo.SetPasswordHash(ctx, userID, newHash); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// CurrentUser loads the identity record for an authenticated request.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile sets email and/or display name.
func (s *Service) UpdateProfile(ctx context.Context, userID, email, fullName string) (*models.User, error) {
	if email == "" && fullName == "" {
		return nil, fmt.Errorf("%w: email or fullname is required", common.ErrorValidation)
	}

	user, err := s.repo.UpdateProfile(ctx, userID, email, fullName)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrorNotFound
		case errors.Is(err, common.ErrorConflict):
			return nil, common.ErrorConflict
		default:
			return nil, common.ErrorInternal
		}
	}
	return user, nil
}

// ReplaceAsset swaps the named slot (avatar or coverImage) to the staged
// file through the replacement coordinator.
func (s *Service) ReplaceAsset(ctx context.Context, userID, slot, stagedPath string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		filex.Discard(stagedPath)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return s.coordinator.ReplaceSlot(ctx, user, slot, stagedPath)
}

func (s *Service) generateTokenPair(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// rotation: the new hash overwrites the previous one before the pair is
	// handed back
	if err := s.repo.SetRefreshTokenHash(ctx, userID, cryptox.HashToken(refreshToken)); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
