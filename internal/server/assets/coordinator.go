package assets

import (
	"context"
	"fmt"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/filex"
	"github.com/dsmirnovs/clipvault/internal/logging"
	"github.com/dsmirnovs/clipvault/internal/server/models"
)

// SlotWriter persists the new slot value on the identity record. Satisfied
// by the users repository.
type SlotWriter interface {
	SetAssetSlot(ctx context.Context, userID, slot, url string) (*models.User, error)
}

// Coordinator runs the replacement protocol for single-slot assets. The
// ordering is fixed for partial-failure safety: upload the new object first,
// then best-effort delete the old one, then persist. A user is never left
// with neither asset; the cost is transient dual storage and a possible
// orphaned object when a later step fails.
type Coordinator struct {
	store  ObjectStore
	writer SlotWriter
	logger logging.Logger
}

func NewCoordinator(store ObjectStore, writer SlotWriter, logger logging.Logger) *Coordinator {
	return &Coordinator{store: store, writer: writer, logger: logger}
}

// ReplaceSlot uploads the staged file and swaps it into the named slot of
// the user record. The staged file is discarded on every exit path.
//
// Failure modes:
//   - invalid slot name: common.ErrorValidation, nothing changed;
//   - upload failure: common.ErrorUploadFailed, slot untouched;
//   - old-object delete failure: logged and swallowed, the swap proceeds;
//   - persist failure: the new object stays uploaded but unreferenced and
//     the old one may already be gone. Accepted inconsistency window, not
//     retried (the error is returned to the caller).
func (c *Coordinator) ReplaceSlot(ctx context.Context, user *models.User, slot string, stagedPath string) (*models.User, error) {
	defer filex.Discard(stagedPath)

	var oldURL, keyPrefix string
	switch slot {
	case common.SlotAvatar:
		oldURL, keyPrefix = user.Avatar, "users/avatars"
	case common.SlotCoverImage:
		oldURL, keyPrefix = user.CoverImage, "users/covers"
	default:
		return nil, fmt.Errorf("%w: unknown asset slot %q", common.ErrorValidation, slot)
	}

	newURL, err := c.store.Upload(ctx, stagedPath, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUploadFailed, err)
	}

	c.cleanupURL(ctx, oldURL)

	updated, err := c.writer.SetAssetSlot(ctx, user.ID, slot, newURL)
	if err != nil {
		return nil, fmt.Errorf("persisting %s slot: %w", slot, err)
	}

	return updated, nil
}

// CleanupURL requests deletion of the object behind a delivery URL. It is
// best-effort: unknown URL shapes are a skip, delete failures are logged and
// leave an orphan.
func (c *Coordinator) CleanupURL(ctx context.Context, url string) {
	c.cleanupURL(ctx, url)
}

func (c *Coordinator) cleanupURL(ctx context.Context, url string) {
	Cleanup(ctx, c.store, c.logger, url)
}

// Cleanup requests deletion of the object behind a delivery URL.
// Best-effort: unknown URL shapes are a skip, delete failures are logged
// and leave an orphan.
func Cleanup(ctx context.Context, store ObjectStore, logger logging.Logger, url string) {
	if url == "" {
		return
	}
	objectID := ExtractObjectID(url)
	if objectID == "" {
		// nothing to clean up
		return
	}
	if err := store.Delete(ctx, objectID); err != nil {
		logger.Warn(ctx, "old asset object left orphaned", "objectID", objectID, "error", err.Error())
	}
}
