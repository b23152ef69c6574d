package session

import (
	"errors"
	"testing"
)

func TestAppendAccountAlignment(t *testing.T) {
	store := NewStore()

	first := Account{Address: "0xA1", PrivateKey: "pk1", AESKey: "aes1"}
	second := Account{Address: "0xB2", PrivateKey: "pk2", AESKey: "aes2"}
	if err := AppendAccount(store, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := AppendAccount(store, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	accounts, err := Accounts(store)
	if err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	// Each record carries its own key material, so entry i is aligned by
	// construction.
	if accounts[0] != first || accounts[1] != second {
		t.Fatalf("account records out of order: %+v", accounts)
	}
}

func TestAppendAccountSetsDefault(t *testing.T) {
	store := NewStore()
	if err := AppendAccount(store, Account{Address: "0xA1", PrivateKey: "pk"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if current, _ := store.Get(KeyCurrentAccount); current != "0xA1" {
		t.Fatalf("expected first account to become default, got %q", current)
	}

	if err := AppendAccount(store, Account{Address: "0xB2", PrivateKey: "pk"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if current, _ := store.Get(KeyCurrentAccount); current != "0xA1" {
		t.Fatalf("default should not move on later appends, got %q", current)
	}
}

func TestAppendAccountReplacesExistingAddress(t *testing.T) {
	store := NewStore()
	if err := AppendAccount(store, Account{Address: "0xA1", PrivateKey: "old"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendAccount(store, Account{Address: "0xa1", PrivateKey: "new"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	accounts, err := Accounts(store)
	if err != nil {
		t.Fatalf("decode accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected in-place replacement, got %d records", len(accounts))
	}
	if accounts[0].PrivateKey != "new" {
		t.Fatalf("expected replaced key material, got %q", accounts[0].PrivateKey)
	}
}

func TestFindAccountCaseInsensitive(t *testing.T) {
	store := NewStore()
	if err := AppendAccount(store, Account{Address: "0xAbC1", PrivateKey: "pk"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	account, ok, err := FindAccount(store, "0xabc1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
	if account.Address != "0xAbC1" {
		t.Fatalf("unexpected record %+v", account)
	}

	if _, ok, _ := FindAccount(store, "0xmissing"); ok {
		t.Fatal("expected no match for unknown address")
	}
}

func TestDefaultAccountFallback(t *testing.T) {
	store := NewStore()
	if _, err := DefaultAccount(store); !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}

	if err := AppendAccount(store, Account{Address: "0xA1", PrivateKey: "pk1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendAccount(store, Account{Address: "0xB2", PrivateKey: "pk2"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Dangling pointer falls back to the first record.
	store.Set(KeyCurrentAccount, "0xGONE")
	account, err := DefaultAccount(store)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if account.Address != "0xA1" {
		t.Fatalf("expected fallback to first account, got %q", account.Address)
	}
}

func TestSetDefaultAccount(t *testing.T) {
	store := NewStore()
	if err := AppendAccount(store, Account{Address: "0xA1", PrivateKey: "pk1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendAccount(store, Account{Address: "0xB2", PrivateKey: "pk2"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := SetDefaultAccount(store, "0xb2"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	account, err := DefaultAccount(store)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if account.Address != "0xB2" {
		t.Fatalf("expected 0xB2 as default, got %q", account.Address)
	}

	if err := SetDefaultAccount(store, "0xnope"); err == nil {
		t.Fatal("expected error for unknown address")
	}
}

func TestAccountsCorruptPayload(t *testing.T) {
	store := NewStore()
	store.Set(KeyAccounts, "{not json")
	if _, err := Accounts(store); err == nil {
		t.Fatal("expected decode error")
	}
}
