package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// memoryObjects is an in-memory ObjectStore.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}}
}

func (m *memoryObjects) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return "https://bucket.example.com/" + key, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return errors.New("no such key")
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type fixture struct {
	db          *gorm.DB
	rdb         *redis.Client
	mr          *miniredis.Miniredis
	bus         *realtime.LocalBus
	objects     *memoryObjects
	prompts     *PromptService
	categories  *CategoryService
	tags        *TagService
	expertRoles *ExpertRoleService
	attachments *AttachmentService
	backup      *BackupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      setupTestDB(t),
		bus:     realtime.NewLocalBus(),
		objects: newMemoryObjects(),
	}
	f.mr, f.rdb = setupTestRedis(t)

	log := zap.NewNop()
	f.categories = NewCategoryService(f.db, f.bus, log)
	f.tags = NewTagService(f.db, f.bus, log)
	f.expertRoles = NewExpertRoleService(f.db, f.bus, log)
	f.attachments = NewAttachmentService(f.db, f.objects, 1<<20, log)
	f.prompts = NewPromptService(f.db, f.rdb, f.bus, f.attachments, time.Hour, log)
	f.backup = NewBackupService(f.db, f.prompts, f.categories, f.tags, f.expertRoles, log)
	return f
}

func (f *fixture) createPrompt(t *testing.T, userID uint, title, content string) *models.Prompt {
	t.Helper()
	p, err := f.prompts.Create(context.Background(), userID, PromptInput{Title: title, Content: content})
	require.NoError(t, err)
	return p
}

func (f *fixture) upload(t *testing.T, userID, promptID uint, name string) *models.Attachment {
	t.Helper()
	data := []byte("hello")
	a, err := f.attachments.Upload(context.Background(), userID, promptID, name, "text/plain", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)
	return a
}

func ptr[T any](v T) *T { return &v }
