package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sapliy/atm-network/pkg/secrets"
)

// FixtureRecords is the demo seed: account 1 may do everything, account 2 is
// deposit+balance, account 3 is withdraw+balance.
func FixtureRecords() []Record {
	return []Record{
		{AccountID: 1, PIN: 1234, Deposit: true, Withdraw: true, Balance: true},
		{AccountID: 2, PIN: 2345, Deposit: true, Balance: true},
		{AccountID: 3, PIN: 3456, Withdraw: true, Balance: true},
	}
}

// RecordsFromSecret loads seed records from an AWS Secrets Manager secret
// holding a JSON array of records. Used when SECURITY_SEED_SECRET is set.
func RecordsFromSecret(ctx context.Context, name string) ([]Record, error) {
	raw, err := secrets.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to parse security seed secret: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("security seed secret %q is empty", name)
	}
	return records, nil
}
