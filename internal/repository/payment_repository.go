package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/payment-tracker/internal/domain"
)

const paymentColumns = `id, payee_first_name, payee_last_name, payee_payment_status, payee_added_date_utc,
		payee_due_date, payee_address_line_1, payee_address_line_2, payee_city, payee_country,
		payee_province_or_state, payee_postal_code, payee_phone_number, payee_email, currency,
		discount_percent, tax_percent, due_amount, total_due`

const insertPaymentQuery = `
		INSERT INTO payments (id, payee_first_name, payee_last_name, payee_payment_status, payee_added_date_utc,
			payee_due_date, payee_address_line_1, payee_address_line_2, payee_city, payee_country,
			payee_province_or_state, payee_postal_code, payee_phone_number, payee_email, currency,
			discount_percent, tax_percent, due_amount, total_due)
		VALUES (:id, :payee_first_name, :payee_last_name, :payee_payment_status, :payee_added_date_utc,
			:payee_due_date, :payee_address_line_1, :payee_address_line_2, :payee_city, :payee_country,
			:payee_province_or_state, :payee_postal_code, :payee_phone_number, :payee_email, :currency,
			:discount_percent, :tax_percent, :due_amount, :total_due)
	`

// updatableColumns are the payment columns a partial update may set.
var updatableColumns = map[string]bool{
	"payee_first_name":        true,
	"payee_last_name":         true,
	"payee_payment_status":    true,
	"payee_added_date_utc":    true,
	"payee_due_date":          true,
	"payee_address_line_1":    true,
	"payee_address_line_2":    true,
	"payee_city":              true,
	"payee_country":           true,
	"payee_province_or_state": true,
	"payee_postal_code":       true,
	"payee_phone_number":      true,
	"payee_email":             true,
	"currency":                true,
	"discount_percent":        true,
	"tax_percent":             true,
	"due_amount":              true,
}

// UpdatableField reports whether a partial update may set the named field.
func UpdatableField(name string) bool {
	return updatableColumns[name]
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	payment.ID = uuid.NewString()

	_, err := r.db.NamedExecContext(ctx, insertPaymentQuery, payment)
	if err != nil {
		payment.ID = ""
		return err
	}

	return nil
}

func (r *paymentRepository) CreateMany(ctx context.Context, payments []*domain.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, payment := range payments {
		payment.ID = uuid.NewString()
		if _, err = tx.NamedExecContext(ctx, insertPaymentQuery, payment); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.Payment, int64, error) {
	where, args := buildPaymentFilter(q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM payments` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	sortBy := q.SortBy
	if !domain.SortableField(sortBy) {
		sortBy = domain.DefaultSortField
	}
	direction := "ASC"
	if q.Descending() {
		direction = "DESC"
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, sortBy, direction, len(args)+1, len(args)+2)
	args = append(args, q.Size, q.Skip())

	payments := make([]*domain.Payment, 0)
	if err := r.db.SelectContext(ctx, &payments, listQuery, args...); err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// buildPaymentFilter turns the listing filter into a WHERE clause.
// An @ in the search term means a case-insensitive substring match on the
// email, anything else goes to the full-text index word by word.
func buildPaymentFilter(q domain.ListQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Status != "" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("payee_payment_status = $%d", len(args)))
	}

	if q.Search != "" {
		if q.IsEmailSearch() {
			args = append(args, regexp.QuoteMeta(q.Search))
			conditions = append(conditions, fmt.Sprintf("payee_email ~* $%d", len(args)))
		} else if terms := strings.Fields(q.Search); len(terms) > 0 {
			// Any term may match, as with a MongoDB $text search.
			matches := make([]string, 0, len(terms))
			for _, term := range terms {
				args = append(args, term)
				matches = append(matches, fmt.Sprintf("search_vector @@ plainto_tsquery('simple', $%d)", len(args)))
			}
			conditions = append(conditions, "("+strings.Join(matches, " OR ")+")")
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *paymentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if !updatableColumns[name] {
			return fmt.Errorf("field %q cannot be updated", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	args := []interface{}{id}
	assignments := make([]string, 0, len(names))
	for _, name := range names {
		args = append(args, fields[name])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", name, len(args)))
	}

	query := `UPDATE payments SET ` + strings.Join(assignments, ", ") + ` WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}

	query := `
		UPDATE payments
		SET payee_payment_status = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *paymentRepository) GetDueCandidates(ctx context.Context) ([]*domain.DueCandidate, error) {
	query := `
		SELECT id, payee_due_date, payee_payment_status
		FROM payments
		WHERE payee_due_date IS NOT NULL AND payee_payment_status <> $1
	`

	var candidates []*domain.DueCandidate
	err := r.db.SelectContext(ctx, &candidates, query, domain.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *paymentRepository) UpdateStatusUnlessCompleted(ctx context.Context, id string, status string) (bool, error) {
	query := `
		UPDATE payments
		SET payee_payment_status = $2
		WHERE id = $1 AND payee_payment_status <> $3 AND payee_payment_status <> $2
	`

	result, err := r.db.ExecContext(ctx, query, id, status, domain.PaymentStatusCompleted)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, ErrInvalidID
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
