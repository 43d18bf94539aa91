package sysfs

import "codeberg.org/mutker/raplsim/internal/errors"

const (
	ErrResetFailed  = errors.ErrorCode("sysfs_reset_failed")
	ErrCreateFailed = errors.ErrorCode("sysfs_create_failed")
	ErrWriteFailed  = errors.ErrorCode("sysfs_write_failed")
)
