package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	denylistPrefix = "denylist:"
	userCacheTTL   = time.Hour
)

// AuthService registers users and issues, revokes and checks tokens.
type AuthService struct {
	db     *gorm.DB
	rdb    *redis.Client
	tokens *utils.TokenIssuer
	log    *zap.Logger
}

// NewAuthService works without Redis; the denylist and user cache are then
// disabled.
func NewAuthService(db *gorm.DB, rdb *redis.Client, tokens *utils.TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{db: db, rdb: rdb, tokens: tokens, log: log.Named("auth")}
}

func (s *AuthService) Tokens() *utils.TokenIssuer {
	return s.tokens
}

// Register creates a user. The first user becomes admin.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	// Check if user already exists
	var existingUser models.User
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&existingUser)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var userCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		return nil, err
	}

	role := "user"
	if userCount == 0 {
		role = "admin"
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		Role:     role,
		Version:  1,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", role))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// Logout denylists the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if s.rdb == nil {
		return nil
	}
	expiration := utils.TokenExpiry(claims)
	if expiration <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, denylistPrefix+tokenString, 1, expiration).Err()
}

func (s *AuthService) IsDenylisted(ctx context.Context, tokenString string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	val, err := s.rdb.Get(ctx, denylistPrefix+tokenString).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val != "", nil
}

func (s *AuthService) FindUserByID(ctx context.Context, userID uint) (*models.User, error) {
	cacheKey := fmt.Sprintf("user:%d", userID)
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return &user, nil
			}
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(user); err == nil {
			s.rdb.Set(ctx, cacheKey, data, userCacheTTL)
		}
	}

	return &user, nil
}

// ListUsers returns one page of users ordered by id with the total count.
func (s *AuthService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("id").Limit(limit).Offset((page - 1) * limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UserUpdate changes only the non-nil fields. Version must match the stored
// version.
type UserUpdate struct {
	Version  int
	Username *string
	Password *string
	Role     *string
}

// UpdateUser applies an administrator's changes with optimistic locking.
func (s *AuthService) UpdateUser(ctx context.Context, id uint, in UserUpdate, operator string) (*models.User, error) {
	updates := make(map[string]interface{})
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
		}
		updates["username"] = username
	}
	if in.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashedPassword)
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, id)
			}
			return err
		}
		if username, ok := updates["username"].(string); ok && username != user.Username {
			var taken int64
			if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", username, id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrUserAlreadyExists
			}
		}
		if in.Version != user.Version {
			return ErrOptimisticLock
		}

		updates["version"] = user.Version + 1
		result := tx.Model(&user).Where("version = ?", in.Version).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOptimisticLock
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		s.rdb.Del(ctx, fmt.Sprintf("user:%d", id))
	}
	s.log.Info("user updated",
		zap.Uint("user_id", id),
		zap.String("operator", operator),
		zap.Bool("password_changed", in.Password != nil),
		zap.Int("version", user.Version))
	return &user, nil
}

// EnsureAdmin creates an admin account unless the username is taken. It
// reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: admin username and password are required", ErrInvalidInput)
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := &models.User{Username: username, Password: string(hashedPassword), Role: "admin", Version: 1}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, err
	}
	s.log.Info("admin user created", zap.Uint("user_id", admin.ID))
	return true, nil
}
