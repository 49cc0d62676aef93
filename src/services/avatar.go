package services

import (
	"context"
	"errors"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/media"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.uber.org/zap"
)

// UploadAvatar stores a new profile photo for the user and removes the
// blob of the photo it replaces.
func (s *Service) UploadAvatar(ctx context.Context, userID string, file *Upload) (*models.Avatar, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if file == nil || file.Body == nil {
		return nil, lib.Validation("No image provided.")
	}
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}

	url, key, err := s.media.Upload(ctx, media.FolderAvatars, uid.Hex(), file.Filename, file.ContentType, file.Body)
	if err != nil {
		var appErr *lib.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, lib.Wrap(lib.KindInternal, "Image upload failed.", err)
	}

	var previous string
	updated, err := s.store.UpdateUser(ctx, uid, func(u *models.User) error {
		previous = u.SetAvatar(url, key)
		return nil
	})
	if err != nil {
		if derr := s.media.Delete(context.WithoutCancel(ctx), key); derr != nil {
			lib.Log.Warn("orphaned avatar left behind", zap.String("key", key), zap.Error(derr))
		}
		return nil, storeErr(err, msgUserNotFound)
	}

	if previous != "" && previous != key {
		if err := s.media.Delete(ctx, previous); err != nil {
			lib.Log.Warn("previous avatar not deleted", zap.String("user", uid.Hex()), zap.String("key", previous), zap.Error(err))
		}
	}
	return &models.Avatar{ID: updated.Id, ProfilePhoto: updated.ProfilePhoto}, nil
}
