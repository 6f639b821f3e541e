package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/payment-tracker/internal/domain"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var paymentColumnNames = []string{
	"id", "payee_first_name", "payee_last_name", "payee_payment_status", "payee_added_date_utc",
	"payee_due_date", "payee_address_line_1", "payee_address_line_2", "payee_city", "payee_country",
	"payee_province_or_state", "payee_postal_code", "payee_phone_number", "payee_email", "currency",
	"discount_percent", "tax_percent", "due_amount", "total_due",
}

func paymentRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(paymentColumnNames)
	added := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range ids {
		rows.AddRow(id, "Ada", "Lovelace", "pending", added, due, "12 St James's Square", "", "London", "GB",
			"", "SW1Y 4JH", "+442071234567", "ada@example.com", "GBP", "10", nil, "100", "90")
	}
	return rows
}

func TestPaymentRepository_GetByID(t *testing.T) {
	id := uuid.NewString()

	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(paymentRows(id))

		payment, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, payment.ID)
		assert.Equal(t, "Lovelace", payment.PayeeLastName)
		assert.True(t, payment.DiscountPercent.Valid)
		assert.True(t, decimal.NewFromInt(10).Equal(payment.DiscountPercent.Decimal))
		assert.False(t, payment.TaxPercent.Valid)
		assert.True(t, decimal.NewFromInt(90).Equal(payment.TotalDue))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(paymentColumnNames))

		payment, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, payment)
	})

	t.Run("invalid id never reaches the database", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		payment, err := repo.GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidID)
		assert.Nil(t, payment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentRepository_List(t *testing.T) {
	tests := []struct {
		name       string
		query      domain.ListQuery
		countSQL   string
		countArgs  []interface{}
		selectSQL  string
		selectArgs []interface{}
	}{
		{
			name:       "no filter",
			query:      domain.ListQuery{SortBy: "payee_last_name", SortOrder: "asc", Page: 1, Size: 20},
			countSQL:   `SELECT COUNT(*) FROM payments`,
			selectSQL:  `FROM payments ORDER BY payee_last_name ASC, id ASC LIMIT $1 OFFSET $2`,
			selectArgs: []interface{}{20, 0},
		},
		{
			name:       "status and full-text search",
			query:      domain.ListQuery{Status: "overdue", Search: "london", SortBy: "total_due", SortOrder: "desc", Page: 3, Size: 10},
			countSQL:   `SELECT COUNT(*) FROM payments WHERE payee_payment_status = $1 AND (search_vector @@ plainto_tsquery('simple', $2))`,
			countArgs:  []interface{}{"overdue", "london"},
			selectSQL:  `ORDER BY total_due DESC, id ASC LIMIT $3 OFFSET $4`,
			selectArgs: []interface{}{"overdue", "london", 10, 20},
		},
		{
			name:       "multi-word search matches any word",
			query:      domain.ListQuery{Search: " Ada  Hopper ", SortBy: "payee_last_name", SortOrder: "asc", Page: 1, Size: 20},
			countSQL:   `SELECT COUNT(*) FROM payments WHERE (search_vector @@ plainto_tsquery('simple', $1) OR search_vector @@ plainto_tsquery('simple', $2))`,
			countArgs:  []interface{}{"Ada", "Hopper"},
			selectSQL:  `ORDER BY payee_last_name ASC, id ASC LIMIT $3 OFFSET $4`,
			selectArgs: []interface{}{"Ada", "Hopper", 20, 0},
		},
		{
			name:       "email search is a quoted case-insensitive regex",
			query:      domain.ListQuery{Search: "ada+1@example.com", SortBy: "payee_email", SortOrder: "asc", Page: 2, Size: 5},
			countSQL:   `SELECT COUNT(*) FROM payments WHERE payee_email ~* $1`,
			countArgs:  []interface{}{`ada\+1@example\.com`},
			selectSQL:  `ORDER BY payee_email ASC, id ASC LIMIT $2 OFFSET $3`,
			selectArgs: []interface{}{`ada\+1@example\.com`, 5, 5},
		},
		{
			name:       "unknown sort field falls back to last name",
			query:      domain.ListQuery{SortBy: "id; DROP TABLE payments", Page: 1, Size: 20},
			countSQL:   `SELECT COUNT(*) FROM payments`,
			selectSQL:  `ORDER BY payee_last_name ASC, id ASC`,
			selectArgs: []interface{}{20, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPaymentRepository(db)

			countExpectation := mock.ExpectQuery(regexp.QuoteMeta(tt.countSQL))
			if len(tt.countArgs) > 0 {
				countExpectation.WithArgs(toDriverArgs(tt.countArgs)...)
			}
			countExpectation.WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

			id1, id2 := uuid.NewString(), uuid.NewString()
			mock.ExpectQuery(regexp.QuoteMeta(tt.selectSQL)).
				WithArgs(toDriverArgs(tt.selectArgs)...).
				WillReturnRows(paymentRows(id1, id2))

			payments, total, err := repo.List(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, int64(42), total)
			require.Len(t, payments, 2)
			assert.Equal(t, id1, payments[0].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func toDriverArgs(args []interface{}) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		if n, ok := a.(int); ok {
			out[i] = int64(n)
			continue
		}
		out[i] = a
	}
	return out
}

func TestPaymentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	payment := &domain.Payment{PayeeLastName: "Lovelace", DueAmount: decimal.NewFromInt(100)}
	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(payment.ID)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_CreateMany(t *testing.T) {
	t.Run("commits every row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		payments := []*domain.Payment{{PayeeLastName: "A"}, {PayeeLastName: "B"}}
		require.NoError(t, repo.CreateMany(context.Background(), payments))
		assert.NotEmpty(t, payments[0].ID)
		assert.NotEqual(t, payments[0].ID, payments[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.CreateMany(context.Background(), []*domain.Payment{{}, {}})
		assert.EqualError(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaymentRepository_Update(t *testing.T) {
	id := uuid.NewString()

	t.Run("columns are set in name order", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments SET due_amount = $2, payee_city = $3 WHERE id = $1`)).
			WithArgs(id, sqlmock.AnyArg(), "Paris").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), id, map[string]interface{}{
			"payee_city": "Paris",
			"due_amount": decimal.NewFromInt(150),
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments SET payee_city = $2 WHERE id = $1`)).
			WithArgs(id, "Paris").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), id, map[string]interface{}{"payee_city": "Paris"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("derived and unknown columns are rejected", func(t *testing.T) {
		db, _ := setupMockDB(t)
		repo := NewPaymentRepository(db)

		err := repo.Update(context.Background(), id, map[string]interface{}{"total_due": decimal.NewFromInt(1)})
		assert.Error(t, err)
		err = repo.Update(context.Background(), id, map[string]interface{}{"id = id; --": 1})
		assert.Error(t, err)
	})
}

func TestPaymentRepository_UpdateStatusUnlessCompleted(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{"status changed", 1, true},
		{"completed or already set", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPaymentRepository(db)

			mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND payee_payment_status <> $3 AND payee_payment_status <> $2`)).
				WithArgs(id, domain.PaymentStatusOverdue, domain.PaymentStatusCompleted).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			changed, err := repo.UpdateStatusUnlessCompleted(context.Background(), id, domain.PaymentStatusOverdue)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, changed)
		})
	}
}

func TestPaymentRepository_GetDueCandidates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db)

	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE payee_due_date IS NOT NULL AND payee_payment_status <> $1`)).
		WithArgs(domain.PaymentStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payee_due_date", "payee_payment_status"}).
			AddRow("a", due, "pending").
			AddRow("b", due, "due_now"))

	candidates, err := repo.GetDueCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "b", candidates[1].ID)
	assert.Equal(t, due, candidates[0].PayeeDueDate)
}

func TestPaymentRepository_Delete(t *testing.T) {
	id := uuid.NewString()

	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payments WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payments WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEvidenceRepository(t *testing.T) {
	paymentID := uuid.NewString()

	t.Run("exists", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewEvidenceRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM evidence WHERE payment_id = $1)`)).
			WithArgs(paymentID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsForPayment(context.Background(), paymentID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("delete counts rows", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewEvidenceRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM evidence WHERE payment_id = $1`)).
			WithArgs(paymentID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.DeleteByPaymentID(context.Background(), paymentID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("first evidence missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewEvidenceRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM evidence`)).
			WithArgs(paymentID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "payment_id", "filename", "content_type", "size", "content", "created_at"}))

		evidence, err := repo.GetFirstByPaymentID(context.Background(), paymentID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, evidence)
	})

	t.Run("first evidence for malformed id", func(t *testing.T) {
		db, _ := setupMockDB(t)
		repo := NewEvidenceRepository(db)

		evidence, err := repo.GetFirstByPaymentID(context.Background(), "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
		assert.Nil(t, evidence)
	})

	t.Run("create assigns id", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewEvidenceRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO evidence`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		evidence := &domain.Evidence{PaymentID: paymentID, Filename: "receipt.pdf", Content: []byte("%PDF")}
		require.NoError(t, repo.Create(context.Background(), evidence))
		assert.NotEmpty(t, evidence.ID)
	})
}

func TestImportLogRepository_Create(t *testing.T) {
	t.Run("duplicate file", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewImportLogRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO import_log`)).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		err := repo.Create(context.Background(), &domain.ImportLog{FileName: "payment_information.csv"})
		assert.ErrorIs(t, err, ErrAlreadyImported)
	})

	t.Run("exists", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewImportLogRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM import_log WHERE file_name = $1`)).
			WithArgs("payment_information.csv").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.Exists(context.Background(), "payment_information.csv")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
