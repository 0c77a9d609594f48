// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"reelroom/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// wrapDBError passes AppErrors through and wraps everything else as internal.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite reports "UNIQUE constraint failed: ..."
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with s's own
// wildcards escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select(models.PublicUserColumns)
}
