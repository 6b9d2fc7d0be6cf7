package persistence

import (
	"errors"

	"github.com/rentflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// first loads one row into a fresh M. A missing row is shared.ErrNotFound.
func first[M any](query *gorm.DB, conds ...any) (*M, error) {
	var m M
	if err := query.First(&m, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// mustAffect turns a write that matched nothing into shared.ErrNotFound
func mustAffect(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// onDuplicate swaps a unique-index violation for the caller's domain error
func onDuplicate(err, dup error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return dup
	}
	return err
}
