// Package repository persists inquiries. Documents arrive with their PII fields already encrypted.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healo/piiguard/internal/database"
	apperrors "github.com/healo/piiguard/internal/errors"
	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
)

// PostgreSQLInquiryRepository implements inquiry persistence for PostgreSQL.
type PostgreSQLInquiryRepository struct {
	db *sql.DB
}

// NewPostgreSQLInquiryRepository creates a new PostgreSQL inquiry repository.
func NewPostgreSQLInquiryRepository(db *sql.DB) *PostgreSQLInquiryRepository {
	return &PostgreSQLInquiryRepository{db: db}
}

// Create inserts an inquiry.
func (p *PostgreSQLInquiryRepository) Create(ctx context.Context, inquiry *inquiryDomain.Inquiry) error {
	querier := database.GetTx(ctx, p.db)

	document, summary, err := marshalDocuments(inquiry)
	if err != nil {
		return err
	}

	query := `INSERT INTO inquiries (id, status, document, summary, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err = querier.ExecContext(ctx, query, inquiry.ID, string(inquiry.Status), document, summary, inquiry.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create inquiry")
	}
	return nil
}

// Get retrieves an inquiry by ID.
func (p *PostgreSQLInquiryRepository) Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, status, document, summary, created_at FROM inquiries WHERE id = $1`

	var inquiry inquiryDomain.Inquiry
	var status string
	var document, summary []byte

	err := querier.QueryRowContext(ctx, query, id).
		Scan(&inquiry.ID, &status, &document, &summary, &inquiry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inquiryDomain.ErrInquiryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get inquiry")
	}

	if err := unmarshalDocuments(&inquiry, status, document, summary); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// List retrieves inquiries newest first with pagination and optional inclusive created_at bounds.
func (p *PostgreSQLInquiryRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*inquiryDomain.Inquiry, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, status, document, summary, created_at FROM inquiries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list inquiries")
	}
	defer func() {
		_ = rows.Close()
	}()

	inquiries := make([]*inquiryDomain.Inquiry, 0)
	for rows.Next() {
		var inquiry inquiryDomain.Inquiry
		var status string
		var document, summary []byte

		if err := rows.Scan(&inquiry.ID, &status, &document, &summary, &inquiry.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan inquiry")
		}
		if err := unmarshalDocuments(&inquiry, status, document, summary); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, &inquiry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate inquiries")
	}
	return inquiries, nil
}

func marshalDocuments(inquiry *inquiryDomain.Inquiry) ([]byte, []byte, error) {
	document, err := json.Marshal(inquiry.Document)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal inquiry document")
	}
	summary, err := json.Marshal(inquiry.Summary)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal inquiry summary")
	}
	return document, summary, nil
}

func unmarshalDocuments(inquiry *inquiryDomain.Inquiry, status string, document, summary []byte) error {
	inquiry.Status = inquiryDomain.Status(status)
	inquiry.CreatedAt = inquiry.CreatedAt.UTC()

	if err := json.Unmarshal(document, &inquiry.Document); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal inquiry document")
	}
	if err := json.Unmarshal(summary, &inquiry.Summary); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal inquiry summary")
	}
	return nil
}
