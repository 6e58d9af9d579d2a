package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/squareconnect/internal/crypto/service"
	"github.com/allisson/squareconnect/internal/database"
	apperrors "github.com/allisson/squareconnect/internal/errors"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

const mysqlSelectColumns = `id, caller_id, merchant_id, access_token, refresh_token, expires_at, created_at, updated_at`

// MySQLTokenRepository stores TokenRecords in MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db     *sql.DB
	sealer cryptoService.Sealer
	now    func() time.Time
}

// NewMySQLTokenRepository creates a MySQL credential store.
func NewMySQLTokenRepository(db *sql.DB, sealer cryptoService.Sealer) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db, sealer: sealer, now: utcNow}
}

// Upsert inserts the record or replaces the tokens of the existing (caller, merchant) row,
// then re-reads the row to pick up the stored id and created_at.
func (m *MySQLTokenRepository) Upsert(ctx context.Context, record *squareDomain.TokenRecord) error {
	querier := database.GetTx(ctx, m.db)

	sealed, err := sealTokens(m.sealer, record)
	if err != nil {
		return err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.Must(uuid.NewV7())
	}
	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal square token record id")
	}
	now := m.now()

	query := `INSERT INTO square_tokens
				(id, caller_id, merchant_id, access_token, refresh_token, expires_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				access_token = VALUES(access_token),
				refresh_token = VALUES(refresh_token),
				expires_at = VALUES(expires_at),
				updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		record.CallerID,
		record.MerchantID,
		sealed.access,
		sealed.refresh,
		record.ExpiresAt.UTC(),
		now,
		now,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert square token record")
	}

	var storedID []byte
	err = querier.QueryRowContext(
		ctx,
		`SELECT id, created_at, updated_at FROM square_tokens WHERE caller_id = ? AND merchant_id = ?`,
		record.CallerID,
		record.MerchantID,
	).Scan(&storedID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to read back square token record")
	}
	if err := record.ID.UnmarshalBinary(storedID); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal square token record id")
	}
	return nil
}

// Update rewrites tokens, expiry and updated_at only. Returns ErrRecordNotFound when
// the row no longer exists.
func (m *MySQLTokenRepository) Update(ctx context.Context, record *squareDomain.TokenRecord) error {
	querier := database.GetTx(ctx, m.db)

	sealed, err := sealTokens(m.sealer, record)
	if err != nil {
		return err
	}
	now := m.now()

	query := `UPDATE square_tokens
			  SET access_token = ?,
				  refresh_token = ?,
				  expires_at = ?,
				  updated_at = ?
			  WHERE caller_id = ? AND merchant_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		sealed.access,
		sealed.refresh,
		record.ExpiresAt.UTC(),
		now,
		record.CallerID,
		record.MerchantID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update square token record")
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	record.UpdatedAt = now
	return nil
}

// Get loads a record. Returns ErrRecordNotFound if it doesn't exist.
func (m *MySQLTokenRepository) Get(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	query := `SELECT ` + mysqlSelectColumns + ` FROM square_tokens WHERE caller_id = ? AND merchant_id = ?`
	return m.getOne(ctx, query, key)
}

// GetForUpdate loads a record and locks its row until the surrounding transaction ends.
func (m *MySQLTokenRepository) GetForUpdate(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	query := `SELECT ` + mysqlSelectColumns + ` FROM square_tokens WHERE caller_id = ? AND merchant_id = ? FOR UPDATE`
	return m.getOne(ctx, query, key)
}

func (m *MySQLTokenRepository) getOne(
	ctx context.Context,
	query string,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, m.db)

	record, err := m.scan(querier.QueryRowContext(ctx, query, key.CallerID, key.MerchantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, squareDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get square token record")
	}
	return record, nil
}

// Delete removes a record. Returns ErrRecordNotFound if it doesn't exist.
func (m *MySQLTokenRepository) Delete(ctx context.Context, key squareDomain.RecordKey) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM square_tokens WHERE caller_id = ? AND merchant_id = ?`,
		key.CallerID,
		key.MerchantID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete square token record")
	}
	return requireAffected(result)
}

// ListByCaller returns every record of a caller ordered by creation time.
func (m *MySQLTokenRepository) ListByCaller(
	ctx context.Context,
	callerID string,
) ([]*squareDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSelectColumns + ` FROM square_tokens WHERE caller_id = ? ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, callerID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list square token records")
	}
	defer func() { _ = rows.Close() }()

	records := make([]*squareDomain.TokenRecord, 0)
	for rows.Next() {
		record, err := m.scan(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan square token record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate square token records")
	}
	return records, nil
}

func (m *MySQLTokenRepository) scan(row rowScanner) (*squareDomain.TokenRecord, error) {
	var record squareDomain.TokenRecord
	var sealed sealedTokens
	var id []byte

	err := row.Scan(
		&id,
		&record.CallerID,
		&record.MerchantID,
		&sealed.access,
		&sealed.refresh,
		&record.ExpiresAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := record.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal square token record id")
	}
	if err := openTokens(m.sealer, &record, sealed); err != nil {
		return nil, err
	}
	return &record, nil
}
