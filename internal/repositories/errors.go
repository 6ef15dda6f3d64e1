package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err is the store's record-miss error, so
// services can map it without importing the driver.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
