package httpapi

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/filex"
	"github.com/dsmirnovs/clipvault/internal/server/users"
)

// stageFormFile copies the named multipart file into the staging directory
// and returns its path. A missing field returns "" without error; the
// services decide whether the file was required.
func (s *Server) stageFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	return filex.StageUpload(s.uploadDir, file, header.Filename)
}

func (s *Server) setAuthCookies(w http.ResponseWriter, pair *users.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cfg.CookieSecure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}

	avatarPath, err := s.stageFormFile(r, "avatar")
	if err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}
	coverPath, err := s.stageFormFile(r, "coverImage")
	if err != nil {
		filex.Discard(avatarPath)
		s.writeError(w, common.ErrorValidation)
		return
	}

	user, err := s.users.Register(r.Context(), users.RegisterInput{
		Username:       r.FormValue("username"),
		Email:          r.FormValue("email"),
		FullName:       r.FormValue("fullname"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusCreated, user.View())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	pair, user, err := s.users.Login(r.Context(), identifier, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.setAuthCookies(w, pair)
	s.writeData(w, http.StatusOK, map[string]any{
		"user":         user.View(),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), userIDFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	s.clearAuthCookies(w)
	s.writeData(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// the incoming refresh token travels in the cookie or the body
	var token string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := s.users.Refresh(r.Context(), token)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.setAuthCookies(w, pair)
	s.writeData(w, http.StatusOK, map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}

	err := s.users.ChangePassword(r.Context(), userIDFrom(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.CurrentUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, user.View())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"fullname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userIDFrom(r.Context()), req.Email, req.FullName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, user.View())
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleAssetUpdate(w, r, "avatar", common.SlotAvatar)
}

func (s *Server) handleUpdateCover(w http.ResponseWriter, r *http.Request) {
	s.handleAssetUpdate(w, r, "coverImage", common.SlotCoverImage)
}

func (s *Server) handleAssetUpdate(w http.ResponseWriter, r *http.Request, field, slot string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, common.ErrorValidation)
		return
	}

	stagedPath, err := s.stageFormFile(r, field)
	if err != nil || stagedPath == "" {
		s.writeError(w, common.ErrorValidation)
		return
	}

	user, err := s.users.ReplaceAsset(r.Context(), userIDFrom(r.Context()), slot, stagedPath)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, user.View())
}
