package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"tamircibul/internal/models"
)

// translateDuplicateError maps MySQL duplicate-key failures onto the model
// error the caller can act on, so unique-constraint races surface as the same
// error as an up-front existence check.
func translateDuplicateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != 1062 {
		return err
	}
	switch {
	case strings.Contains(mysqlErr.Message, "email"):
		return models.ErrDuplicateEmail
	case strings.Contains(mysqlErr.Message, "phone"):
		return models.ErrDuplicatePhone
	}
	return err
}

// isForeignKeyError reports a MySQL foreign key constraint failure, which
// callers translate into a not-found on the referenced entity.
func isForeignKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}
