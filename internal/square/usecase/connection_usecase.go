package usecase

import (
	"context"
	"errors"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

type connectionUseCase struct {
	tokenRepo TokenRepository
}

// NewConnectionUseCase creates a ConnectionUseCase.
func NewConnectionUseCase(tokenRepo TokenRepository) ConnectionUseCase {
	return &connectionUseCase{tokenRepo: tokenRepo}
}

func (c *connectionUseCase) Status(
	ctx context.Context,
	callerID, merchantID string,
) (*squareDomain.Connection, error) {
	key := squareDomain.RecordKey{CallerID: callerID, MerchantID: merchantID}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	record, err := c.tokenRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, squareDomain.ErrRecordNotFound) {
			return &squareDomain.Connection{MerchantID: merchantID}, nil
		}
		return nil, err
	}

	connection := squareDomain.ConnectionOf(record)
	return &connection, nil
}

func (c *connectionUseCase) List(ctx context.Context, callerID string) ([]squareDomain.Connection, error) {
	records, err := c.tokenRepo.ListByCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	connections := make([]squareDomain.Connection, 0, len(records))
	for _, record := range records {
		connections = append(connections, squareDomain.ConnectionOf(record))
	}
	return connections, nil
}

func (c *connectionUseCase) Disconnect(ctx context.Context, callerID, merchantID string) error {
	key := squareDomain.RecordKey{CallerID: callerID, MerchantID: merchantID}
	if err := key.Validate(); err != nil {
		return err
	}

	return c.tokenRepo.Delete(ctx, key)
}
