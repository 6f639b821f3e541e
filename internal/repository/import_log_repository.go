package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/payment-tracker/internal/domain"
)

// ErrAlreadyImported is returned when a batch file is logged twice.
var ErrAlreadyImported = errors.New("batch already imported")

const uniqueViolation = "23505"

type importLogRepository struct {
	db *sqlx.DB
}

func NewImportLogRepository(db *sqlx.DB) ImportLogRepository {
	return &importLogRepository{db: db}
}

func (r *importLogRepository) Exists(ctx context.Context, fileName string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM import_log WHERE file_name = $1)`, fileName)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *importLogRepository) Create(ctx context.Context, entry *domain.ImportLog) error {
	query := `
		INSERT INTO import_log (file_name, record_count, imported_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, entry.FileName, entry.RecordCount, entry.ImportedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrAlreadyImported
	}

	return err
}
