package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"promptvault-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAttachmentUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "t", "c")

	a := f.upload(t, 1, p.ID, "../Diagram.PNG")
	assert.Equal(t, "Diagram.PNG", a.FileName)
	assert.True(t, strings.HasPrefix(a.ObjectKey, "attachments/1/"), a.ObjectKey)
	assert.True(t, strings.HasSuffix(a.ObjectKey, ".png"), a.ObjectKey)
	assert.Equal(t, "https://bucket.example.com/"+a.ObjectKey, a.URL)
	assert.Equal(t, 1, f.objects.count())

	list, err := f.attachments.List(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.attachments.List(ctx, 2, p.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.ErrorIs(t, f.attachments.Delete(ctx, 2, p.ID, a.ID), ErrPermissionDenied)
	assert.ErrorIs(t, f.attachments.Delete(ctx, 1, p.ID+100, a.ID), ErrNotFound)
	require.NoError(t, f.attachments.Delete(ctx, 1, p.ID, a.ID))
	assert.Zero(t, f.objects.count())
}

func TestAttachmentUploadRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "t", "c")

	big := bytes.Repeat([]byte("x"), 2<<20)
	_, err := f.attachments.Upload(ctx, 1, p.ID, "big.bin", "", int64(len(big)), bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.attachments.Upload(ctx, 1, p.ID, "", "", 1, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.attachments.Upload(ctx, 1, 999, "a.txt", "", 1, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrNotFound)

	f.objects.putErr = errors.New("bucket unavailable")
	_, err = f.attachments.Upload(ctx, 1, p.ID, "a.txt", "", 1, bytes.NewReader([]byte("x")))
	assert.Error(t, err)

	var n int64
	f.db.Model(&models.Attachment{}).Count(&n)
	assert.Zero(t, n)

	disabled := NewAttachmentService(f.db, nil, 0, zap.NewNop())
	_, err = disabled.Upload(ctx, 1, p.ID, "a.txt", "", 1, bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://b.oss-cn-beijing.aliyuncs.com/k", publicURL("oss-cn-beijing.aliyuncs.com", "b", "k"))
	assert.Equal(t, "http://b.localhost:9000/k", publicURL("http://localhost:9000/", "b", "k"))
}
