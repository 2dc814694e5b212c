package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateName      = errors.New("duplicate name")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOptimisticLock     = errors.New("data has been modified by another user, please refresh and try again")
)

// nameConflict reports a write that lost a race on a unique name index as
// ErrDuplicateName. Other errors pass through unchanged.
func nameConflict(err error, check func() error) error {
	if err == nil {
		return nil
	}
	if dup := check(); errors.Is(dup, ErrDuplicateName) {
		return dup
	}
	return err
}
