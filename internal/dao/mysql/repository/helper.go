// Package repository declares the data access interfaces and holds
// their GORM implementations. The parent mysql package re-exports the
// interfaces for the service layer.
package repository

import (
	"errors"

	"auditlink_chat/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError maps gorm.ErrRecordNotFound to CodeNotFound and every
// other database error to CodeDBError.
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}
