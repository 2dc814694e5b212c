// Package apitest runs the full API router against an in-memory SQLite
// database for handler tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"promptvault-backend/config"
	"promptvault-backend/internal/api"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Env struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Auth     *services.AuthService
	Library  *services.Library
	Registry *store.Registry
	Objects  *MemoryObjects
}

// New builds a router over a fresh database, an in-process bus and an
// in-memory object store. Redis is not used.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		CORSOrigins:    []string{"http://localhost:5173"},
		PromptCacheTTL: time.Hour,
		UploadMaxBytes: 1 << 20,
	}
	log := zap.NewNop()
	objects := NewMemoryObjects()
	lib := services.NewLibrary(cfg, db, nil, realtime.NewLocalBus(), objects, log)
	auth := services.NewAuthService(db, nil, utils.NewTokenIssuer("test-secret", time.Hour), log)
	registry := store.NewRegistry(lib.Sources())
	t.Cleanup(registry.Close)

	return &Env{
		Router: api.NewRouter(api.Deps{
			Config:   cfg,
			Auth:     auth,
			Library:  lib,
			Registry: registry,
			Log:      log,
		}),
		DB:       db,
		Auth:     auth,
		Library:  lib,
		Registry: registry,
		Objects:  objects,
	}
}

// Register creates a user and returns a bearer token for it.
func (e *Env) Register(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	u, err := e.Auth.Register(ctx, username, "password")
	require.NoError(t, err)
	token, err := e.Auth.Tokens().GenerateToken(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

// Do sends body as JSON unless it is an io.Reader, which is sent as is.
func (e *Env) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Envelope is the decoded JSON response wrapper.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()
	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// RequireStatus fails with the body when the code differs.
func RequireStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}

// MemoryObjects is an in-memory services.ObjectStore.
type MemoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryObjects() *MemoryObjects {
	return &MemoryObjects{objects: map[string][]byte{}}
}

func (m *MemoryObjects) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return "https://objects.test/" + key, nil
}

func (m *MemoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryObjects) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
