// Package repository persists audit entries. Entries are insert-only: no update or delete path exists.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	"github.com/healo/piiguard/internal/database"
	apperrors "github.com/healo/piiguard/internal/errors"
)

// PostgreSQLAuditRepository implements audit entry persistence for PostgreSQL.
// Uses native UUID and JSONB types with transaction support via database.GetTx().
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}

// Create inserts an entry. Nil metadata, signature and actor user id are stored as NULL.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs
			  (id, actor_email, actor_user_id, action, ip_address, user_agent, metadata, signature, key_version, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ActorEmail,
		nullString(entry.ActorUserID),
		string(entry.Action),
		entry.IPAddress,
		entry.UserAgent,
		metadataJSON,
		entry.Signature,
		nullString(entry.KeyVersion),
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// List retrieves entries newest first with pagination and optional inclusive
// created_at bounds (nil means unbounded).
func (p *PostgreSQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
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

	query := `SELECT id, actor_email, actor_user_id, action, ip_address, user_agent, metadata, signature, key_version, created_at
			  FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.Entry, 0)
	for rows.Next() {
		var entry auditDomain.Entry
		var actorUserID, keyVersion sql.NullString
		var action string
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.ActorEmail,
			&actorUserID,
			&action,
			&entry.IPAddress,
			&entry.UserAgent,
			&metadataJSON,
			&entry.Signature,
			&keyVersion,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		entry.ActorUserID = actorUserID.String
		entry.KeyVersion = keyVersion.String
		entry.Action = auditDomain.Action(action)
		entry.CreatedAt = entry.CreatedAt.UTC()

		if entry.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit metadata")
	}
	return b, nil
}

func unmarshalMetadata(b []byte) (map[string]any, error) {
	if b == nil {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(b, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit metadata")
	}
	return metadata, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
