package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	"github.com/healo/piiguard/internal/database"
	apperrors "github.com/healo/piiguard/internal/errors"
)

// MySQLAuditRepository implements audit entry persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQL audit repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// Create inserts an entry. Nil metadata, signature and actor user id are stored as NULL.
func (m *MySQLAuditRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, m.db)

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}

	query := `INSERT INTO audit_logs
			  (id, actor_email, actor_user_id, action, ip_address, user_agent, metadata, signature, key_version, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
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

	query := `SELECT id, actor_email, actor_user_id, action, ip_address, user_agent, metadata, signature, key_version, created_at
			  FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

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
		var idBinary []byte
		var actorUserID, keyVersion sql.NullString
		var action string
		var metadataJSON []byte

		err := rows.Scan(
			&idBinary,
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

		if err := entry.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry id")
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
