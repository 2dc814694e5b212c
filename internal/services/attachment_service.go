package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"promptvault-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttachmentService struct {
	db       *gorm.DB
	objects  ObjectStore
	maxBytes int64
	log      *zap.Logger
}

// NewAttachmentService returns a service that rejects every upload when
// objects is nil.
func NewAttachmentService(db *gorm.DB, objects ObjectStore, maxBytes int64, log *zap.Logger) *AttachmentService {
	return &AttachmentService{db: db, objects: objects, maxBytes: maxBytes, log: log.Named("attachments")}
}

// Upload stores the file under attachments/<user>/<prompt>/ and links it to
// the prompt. The object is removed again if the record cannot be saved.
func (s *AttachmentService) Upload(ctx context.Context, userID, promptID uint, fileName, contentType string, size int64, r io.Reader) (*models.Attachment, error) {
	if s.objects == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrInvalidInput)
	}
	if _, err := findOwned[models.Prompt](ctx, s.db, userID, promptID); err != nil {
		return nil, err
	}
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.maxBytes)
	}

	key := fmt.Sprintf("attachments/%d/%d/%s%s", userID, promptID, uuid.New().String(), strings.ToLower(filepath.Ext(fileName)))
	url, err := s.objects.Put(ctx, key, r, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}

	attachment := &models.Attachment{
		PromptID:    promptID,
		UserID:      userID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		ObjectKey:   key,
		URL:         url,
	}
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			s.log.Warn("orphaned attachment object", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	return attachment, nil
}

func (s *AttachmentService) List(ctx context.Context, userID, promptID uint) ([]models.Attachment, error) {
	if _, err := findOwned[models.Prompt](ctx, s.db, userID, promptID); err != nil {
		return nil, err
	}
	attachments := []models.Attachment{}
	err := s.db.WithContext(ctx).Where("prompt_id = ?", promptID).Order("id").Find(&attachments).Error
	return attachments, err
}

// Delete removes one attachment of promptID.
func (s *AttachmentService) Delete(ctx context.Context, userID, promptID, id uint) error {
	attachment, err := findOwned[models.Attachment](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if attachment.PromptID != promptID {
		return fmt.Errorf("%w: attachment %d on prompt %d", ErrNotFound, id, promptID)
	}
	return s.remove(ctx, attachment)
}

// DeleteForPrompt removes every attachment of the prompt, one by one.
func (s *AttachmentService) DeleteForPrompt(ctx context.Context, userID, promptID uint) error {
	var attachments []models.Attachment
	if err := s.db.WithContext(ctx).Where("user_id = ? AND prompt_id = ?", userID, promptID).Find(&attachments).Error; err != nil {
		return err
	}
	for i := range attachments {
		if err := s.remove(ctx, &attachments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *AttachmentService) remove(ctx context.Context, attachment *models.Attachment) error {
	if s.objects != nil {
		if err := s.objects.Delete(ctx, attachment.ObjectKey); err != nil {
			return fmt.Errorf("delete object %s: %w", attachment.ObjectKey, err)
		}
	}
	return s.db.WithContext(ctx).Delete(attachment).Error
}
