package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healo/piiguard/internal/database"
	apperrors "github.com/healo/piiguard/internal/errors"
	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
)

// MySQLInquiryRepository implements inquiry persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLInquiryRepository struct {
	db *sql.DB
}

// NewMySQLInquiryRepository creates a new MySQL inquiry repository.
func NewMySQLInquiryRepository(db *sql.DB) *MySQLInquiryRepository {
	return &MySQLInquiryRepository{db: db}
}

// Create inserts an inquiry.
func (m *MySQLInquiryRepository) Create(ctx context.Context, inquiry *inquiryDomain.Inquiry) error {
	querier := database.GetTx(ctx, m.db)

	document, summary, err := marshalDocuments(inquiry)
	if err != nil {
		return err
	}

	id, err := inquiry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal inquiry id")
	}

	query := `INSERT INTO inquiries (id, status, document, summary, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, string(inquiry.Status), document, summary, inquiry.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create inquiry")
	}
	return nil
}

// Get retrieves an inquiry by ID.
func (m *MySQLInquiryRepository) Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal inquiry id")
	}

	query := `SELECT id, status, document, summary, created_at FROM inquiries WHERE id = ?`

	inquiry, err := scanMySQLInquiry(querier.QueryRowContext(ctx, query, idBinary))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inquiryDomain.ErrInquiryNotFound
		}
		return nil, err
	}
	return inquiry, nil
}

// List retrieves inquiries newest first with pagination and optional inclusive created_at bounds.
func (m *MySQLInquiryRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*inquiryDomain.Inquiry, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, status, document, summary, created_at FROM inquiries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list inquiries")
	}
	defer func() {
		_ = rows.Close()
	}()

	inquiries := make([]*inquiryDomain.Inquiry, 0)
	for rows.Next() {
		inquiry, err := scanMySQLInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate inquiries")
	}
	return inquiries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLInquiry(row rowScanner) (*inquiryDomain.Inquiry, error) {
	var inquiry inquiryDomain.Inquiry
	var id []byte
	var status string
	var document, summary []byte

	if err := row.Scan(&id, &status, &document, &summary, &inquiry.CreatedAt); err != nil {
		return nil, apperrors.Wrap(err, "failed to scan inquiry")
	}

	if err := inquiry.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal inquiry id")
	}
	if err := unmarshalDocuments(&inquiry, status, document, summary); err != nil {
		return nil, err
	}
	return &inquiry, nil
}
