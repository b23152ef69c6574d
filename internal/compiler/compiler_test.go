package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompileReturnsArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request compileRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if request.ContractName != "Token" {
			t.Fatalf("contract name %q, want Token", request.ContractName)
		}
		json.NewEncoder(w).Encode(compileResponse{Contracts: []Artifact{
			{ContractName: "Token", Bytecode: "0x6080", ABI: "[]"},
		}})
	}))
	defer server.Close()

	artifact, err := NewHTTPService(server.URL).Compile(context.Background(), "contract Token {}", "Token")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if artifact.Bytecode != "0x6080" {
		t.Fatalf("bytecode %q, want 0x6080", artifact.Bytecode)
	}
}

func TestCompilePicksNamedContract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(compileResponse{Contracts: []Artifact{
			{ContractName: "Helper", Bytecode: "0x01"},
			{ContractName: "Token", Bytecode: "0x02"},
		}})
	}))
	defer server.Close()

	artifact, err := NewHTTPService(server.URL).Compile(context.Background(), "src", "Token")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if artifact.ContractName != "Token" {
		t.Fatalf("picked %q, want Token", artifact.ContractName)
	}
}

func TestCompileSurfacesDiagnostics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(compileResponse{Errors: []string{"ParserError: expected ';'"}})
	}))
	defer server.Close()

	_, err := NewHTTPService(server.URL).Compile(context.Background(), "contract {", "")
	if !errors.Is(err, ErrCompilation) {
		t.Fatalf("expected ErrCompilation, got %v", err)
	}
}

func TestCompileBackendDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPService(server.URL).Compile(context.Background(), "src", "")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestCompileBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewHTTPService(server.URL)
	for i := 0; i < 5; i++ {
		service.Compile(context.Background(), "src", "")
	}
	if calls > 3 {
		t.Fatalf("breaker let %d requests through, want at most 3", calls)
	}
}

func TestVerifyReturnsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var submission Submission
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			t.Fatalf("decode submission: %v", err)
		}
		if submission.Network != "testnet" {
			t.Fatalf("network %q, want testnet", submission.Network)
		}
		json.NewEncoder(w).Encode(VerificationResult{
			Status: "verified",
			URL:    "https://explorer.example/address/0xabc",
		})
	}))
	defer server.Close()

	result, err := NewHTTPVerifier(server.URL).Verify(context.Background(), Submission{
		ContractAddress: "0xabc",
		Network:         "testnet",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Status != "verified" {
		t.Fatalf("status %q, want verified", result.Status)
	}
}

func TestVerifyRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bytecode mismatch", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := NewHTTPVerifier(server.URL).Verify(context.Background(), Submission{})
	if !errors.Is(err, ErrVerificationRejected) {
		t.Fatalf("expected ErrVerificationRejected, got %v", err)
	}
}
