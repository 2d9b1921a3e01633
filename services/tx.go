package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cupline/tournament-engine/repositories"
)

// runInTx runs fn inside a database transaction. A nil db (in-memory
// repositories) runs fn directly; the repositories then fall back to their
// own handles.
func runInTx(ctx context.Context, db *sql.DB, fn func(exec repositories.SQLExecutor) error) (err error) {
	if db == nil {
		return fn(nil)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}
