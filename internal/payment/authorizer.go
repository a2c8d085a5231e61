package payment

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
)

// Authorization is what the acquirer hands back for an approved payment.
type Authorization struct {
	Code string
	NSU  string
}

// Authorizer obtains an authorization code and NSU for a payment.
type Authorizer interface {
	Authorize(ctx context.Context, tx models.Transaction) (Authorization, error)
}

// LocalAuthorizer approves every payment, issuing a 9-digit authorization code and a
// 10-digit NSU derived from random UUIDs.
type LocalAuthorizer struct{}

func (LocalAuthorizer) Authorize(ctx context.Context, tx models.Transaction) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}

	code, err := randomDigits(9)
	if err != nil {
		return Authorization{}, err
	}
	nsu, err := randomDigits(10)
	if err != nil {
		return Authorization{}, err
	}

	return Authorization{Code: code, NSU: nsu}, nil
}

var pow10 = [...]uint64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000,
	100_000_000, 1_000_000_000, 10_000_000_000}

func randomDigits(n int) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate random id: %w", err)
	}
	v := binary.BigEndian.Uint64(id[:8]) % pow10[n]
	return fmt.Sprintf("%0*d", n, v), nil
}

var _ Authorizer = LocalAuthorizer{}
