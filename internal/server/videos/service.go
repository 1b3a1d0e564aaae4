package videos

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/filex"
	"github.com/dsmirnovs/clipvault/internal/logging"
	"github.com/dsmirnovs/clipvault/internal/server/assets"
	"github.com/dsmirnovs/clipvault/internal/server/models"
)

// Service orchestrates video publishing: staged media upload, retrieval
// with view counting, and deletion with remote object reclamation.
type Service struct {
	repo   Repository
	store  assets.ObjectStore
	logger logging.Logger
}

func NewService(repo Repository, store assets.ObjectStore, logger logging.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger}
}

// UploadInput is the parsed publish request. VideoPath and ThumbnailPath
// point at staged uploads; both are required.
type UploadInput struct {
	OwnerID       string
	Title         string
	Description   string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// Upload publishes a new video. The title is checked for uniqueness before
// any object is uploaded, so the common duplicate case costs no storage
// traffic; the database constraint still backs the check. Staged files are
// discarded on every exit path.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Video, error) {
	defer filex.Discard(in.VideoPath)
	defer filex.Discard(in.ThumbnailPath)

	if in.Title == "" || in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, fmt.Errorf("%w: title, video file and thumbnail are required", common.ErrorValidation)
	}

	if _, err := s.repo.GetByTitle(ctx, in.Title); err == nil {
		return nil, common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	videoURL, err := s.store.Upload(ctx, in.VideoPath, "videos/files")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUploadFailed, err)
	}

	thumbURL, err := s.store.Upload(ctx, in.ThumbnailPath, "videos/thumbnails")
	if err != nil {
		assets.Cleanup(ctx, s.store, s.logger, videoURL)
		return nil, fmt.Errorf("%w: %v", common.ErrorUploadFailed, err)
	}

	video, err := s.repo.Create(ctx, &models.Video{
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Published:   true,
	})
	if err != nil {
		assets.Cleanup(ctx, s.store, s.logger, videoURL)
		assets.Cleanup(ctx, s.store, s.logger, thumbURL)
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, common.ErrorInternal
	}

	return video, nil
}

// Get loads a video and counts the view. The increment is best-effort: a
// failed counter update does not fail the read.
func (s *Service) Get(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn(ctx, "view counter update failed", "videoID", id, "error", err.Error())
	} else {
		video.Views++
	}

	return video, nil
}

// Delete removes a video owned by the caller. The remote objects are
// reclaimed best-effort before the record is deleted; a record is never
// left pointing at objects that were reclaimed under it.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	if video.OwnerID != callerID {
		return common.ErrorUnauthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	assets.Cleanup(ctx, s.store, s.logger, video.VideoFile)
	assets.Cleanup(ctx, s.store, s.logger, video.Thumbnail)

	return nil
}
