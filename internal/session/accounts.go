package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoAccounts is returned when a session holds no account records.
var ErrNoAccounts = errors.New("session has no accounts")

// Account is one confidential-token account owned by a session: its address,
// the signing key, and the AES onboarding key used to read private balances.
// Records are stored as one ordered JSON list under KeyAccounts, keyed by
// address, so there is no parallel-list alignment to maintain.
type Account struct {
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
	AESKey     string `json:"aes_key,omitempty"`
}

// Accounts decodes the session's account records. A missing or empty entry
// decodes to an empty list.
func Accounts(store *Store) ([]Account, error) {
	raw, ok := store.Get(KeyAccounts)
	if !ok || raw == "" {
		return nil, nil
	}
	var accounts []Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("decode session accounts: %w", err)
	}
	return accounts, nil
}

// SaveAccounts encodes and stores the full account list.
func SaveAccounts(store *Store, accounts []Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode session accounts: %w", err)
	}
	store.Set(KeyAccounts, string(data))
	return nil
}

// AppendAccount adds account to the session. The first account added becomes
// the session default. Re-adding an address overwrites the existing record in
// place instead of growing the list.
func AppendAccount(store *Store, account Account) error {
	accounts, err := Accounts(store)
	if err != nil {
		return err
	}
	replaced := false
	for i := range accounts {
		if strings.EqualFold(accounts[i].Address, account.Address) {
			accounts[i] = account
			replaced = true
			break
		}
	}
	if !replaced {
		accounts = append(accounts, account)
	}
	if err := SaveAccounts(store, accounts); err != nil {
		return err
	}
	if _, ok := store.Get(KeyCurrentAccount); !ok {
		store.Set(KeyCurrentAccount, account.Address)
	}
	return nil
}

// FindAccount returns the record for address, matching case-insensitively.
func FindAccount(store *Store, address string) (Account, bool, error) {
	accounts, err := Accounts(store)
	if err != nil {
		return Account{}, false, err
	}
	for _, account := range accounts {
		if strings.EqualFold(account.Address, address) {
			return account, true, nil
		}
	}
	return Account{}, false, nil
}

// DefaultAccount resolves the session's default account: the record named by
// KeyCurrentAccount, or the first stored account when the pointer is unset or
// dangling.
func DefaultAccount(store *Store) (Account, error) {
	accounts, err := Accounts(store)
	if err != nil {
		return Account{}, err
	}
	if len(accounts) == 0 {
		return Account{}, ErrNoAccounts
	}
	if current, ok := store.Get(KeyCurrentAccount); ok && current != "" {
		for _, account := range accounts {
			if strings.EqualFold(account.Address, current) {
				return account, nil
			}
		}
	}
	return accounts[0], nil
}

// SetDefaultAccount points the session default at address. The address must
// name a stored account.
func SetDefaultAccount(store *Store, address string) error {
	_, ok, err := FindAccount(store, address)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no account with address %s in session", address)
	}
	store.Set(KeyCurrentAccount, address)
	return nil
}
