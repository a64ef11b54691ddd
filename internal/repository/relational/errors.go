package relational

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/organizador-eventos/backend/internal/repository"
	"gorm.io/gorm"
)

// classify maps driver errors onto the repository sentinels. The driver
// message is kept so callers see the underlying cause.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", repository.ErrInvalidReference, pgErr.Message)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, myErr.Message)
		case 1451, 1452:
			return fmt.Errorf("%w: %s", repository.ErrInvalidReference, myErr.Message)
		}
	}
	return err
}
