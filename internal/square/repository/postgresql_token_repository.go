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

const postgresSelectColumns = `id, caller_id, merchant_id, access_token, refresh_token, expires_at, created_at, updated_at`

// PostgreSQLTokenRepository stores TokenRecords in PostgreSQL.
// Transaction support comes from database.GetTx().
type PostgreSQLTokenRepository struct {
	db     *sql.DB
	sealer cryptoService.Sealer
	now    func() time.Time
}

// NewPostgreSQLTokenRepository creates a PostgreSQL credential store.
func NewPostgreSQLTokenRepository(db *sql.DB, sealer cryptoService.Sealer) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db, sealer: sealer, now: utcNow}
}

// Upsert inserts the record or replaces the tokens of the existing (caller, merchant) row.
// created_at survives a replace; ID, CreatedAt and UpdatedAt are written back to record.
func (p *PostgreSQLTokenRepository) Upsert(ctx context.Context, record *squareDomain.TokenRecord) error {
	querier := database.GetTx(ctx, p.db)

	sealed, err := sealTokens(p.sealer, record)
	if err != nil {
		return err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.Must(uuid.NewV7())
	}
	now := p.now()

	query := `INSERT INTO square_tokens
				(id, caller_id, merchant_id, access_token, refresh_token, expires_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			  ON CONFLICT (caller_id, merchant_id) DO UPDATE
			  SET access_token = EXCLUDED.access_token,
				  refresh_token = EXCLUDED.refresh_token,
				  expires_at = EXCLUDED.expires_at,
				  updated_at = EXCLUDED.updated_at
			  RETURNING id, created_at, updated_at`

	err = querier.QueryRowContext(
		ctx,
		query,
		record.ID,
		record.CallerID,
		record.MerchantID,
		sealed.access,
		sealed.refresh,
		record.ExpiresAt.UTC(),
		now,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert square token record")
	}
	return nil
}

// Update rewrites tokens, expiry and updated_at only. Returns ErrRecordNotFound when
// the row no longer exists.
func (p *PostgreSQLTokenRepository) Update(ctx context.Context, record *squareDomain.TokenRecord) error {
	querier := database.GetTx(ctx, p.db)

	sealed, err := sealTokens(p.sealer, record)
	if err != nil {
		return err
	}
	now := p.now()

	query := `UPDATE square_tokens
			  SET access_token = $1,
				  refresh_token = $2,
				  expires_at = $3,
				  updated_at = $4
			  WHERE caller_id = $5 AND merchant_id = $6`

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
func (p *PostgreSQLTokenRepository) Get(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	query := `SELECT ` + postgresSelectColumns + ` FROM square_tokens WHERE caller_id = $1 AND merchant_id = $2`
	return p.getOne(ctx, query, key)
}

// GetForUpdate loads a record and locks its row until the surrounding transaction ends.
// Outside a transaction it behaves like Get.
func (p *PostgreSQLTokenRepository) GetForUpdate(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	query := `SELECT ` + postgresSelectColumns + ` FROM square_tokens WHERE caller_id = $1 AND merchant_id = $2 FOR UPDATE`
	return p.getOne(ctx, query, key)
}

func (p *PostgreSQLTokenRepository) getOne(
	ctx context.Context,
	query string,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, p.db)

	record, err := p.scan(querier.QueryRowContext(ctx, query, key.CallerID, key.MerchantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, squareDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get square token record")
	}
	return record, nil
}

// Delete removes a record. Returns ErrRecordNotFound if it doesn't exist.
func (p *PostgreSQLTokenRepository) Delete(ctx context.Context, key squareDomain.RecordKey) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM square_tokens WHERE caller_id = $1 AND merchant_id = $2`,
		key.CallerID,
		key.MerchantID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete square token record")
	}
	return requireAffected(result)
}

// ListByCaller returns every record of a caller ordered by creation time.
func (p *PostgreSQLTokenRepository) ListByCaller(
	ctx context.Context,
	callerID string,
) ([]*squareDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresSelectColumns + ` FROM square_tokens WHERE caller_id = $1 ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, callerID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list square token records")
	}
	defer func() { _ = rows.Close() }()

	records := make([]*squareDomain.TokenRecord, 0)
	for rows.Next() {
		record, err := p.scan(rows)
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

func (p *PostgreSQLTokenRepository) scan(row rowScanner) (*squareDomain.TokenRecord, error) {
	var record squareDomain.TokenRecord
	var sealed sealedTokens

	err := row.Scan(
		&record.ID,
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
	if err := openTokens(p.sealer, &record, sealed); err != nil {
		return nil, err
	}
	return &record, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return squareDomain.ErrRecordNotFound
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
