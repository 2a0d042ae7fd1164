package repository

import (
	"errors"
	"fmt"
	"strings"

	"farmcloud/internal/apperrors"

	"gorm.io/gorm"
)

// translate maps driver and gorm errors onto the apperrors taxonomy.
// Unknown errors are returned unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", apperrors.ErrUniqueViolation, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", apperrors.ErrReferenceNotFound, err)
	}
	return err
}

// translateDelete treats a foreign key failure as the row still being referenced.
func translateDelete(err error) error {
	if err != nil && isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrReferenced, err)
	}
	return translate(err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}

// deleted reports ErrNotFound when a delete touched no row.
func deleted(result *gorm.DB) error {
	if result.Error != nil {
		return translateDelete(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
