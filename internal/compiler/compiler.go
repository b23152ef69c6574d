// Package compiler consumes the external Solidity build and source
// verification services. Both are plain HTTP APIs; both sit behind a circuit
// breaker so a wedged backend fails tool calls fast instead of holding every
// session's request open.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrCompilation carries compiler diagnostics for invalid source.
	ErrCompilation = errors.New("compilation failed")
	// ErrServiceUnavailable is returned when the breaker is open or the
	// backend cannot be reached.
	ErrServiceUnavailable = errors.New("compiler service unavailable")
)

// Artifact is a successful compilation output for one contract.
type Artifact struct {
	ContractName string `json:"contract_name"`
	Bytecode     string `json:"bytecode"`
	ABI          string `json:"abi"`
}

// Service compiles Solidity source into deployable artifacts.
type Service interface {
	Compile(ctx context.Context, source, contractName string) (Artifact, error)
}

// HTTPService implements Service against a solc build endpoint.
type HTTPService struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewHTTPService creates a compiler client for endpoint.
func NewHTTPService(endpoint string) *HTTPService {
	return &HTTPService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		breaker:  newBreaker("compiler"),
	}
}

type compileRequest struct {
	Source       string `json:"source"`
	ContractName string `json:"contract_name"`
}

type compileResponse struct {
	Contracts []Artifact `json:"contracts"`
	Errors    []string   `json:"errors"`
}

// Compile posts source to the build endpoint and returns the artifact for
// contractName (or the sole artifact when contractName is empty).
func (s *HTTPService) Compile(ctx context.Context, source, contractName string) (Artifact, error) {
	payload, err := s.post(ctx, compileRequest{Source: source, ContractName: contractName})
	if err != nil {
		return Artifact{}, err
	}

	var response compileResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return Artifact{}, fmt.Errorf("decode compiler response: %w", err)
	}
	if len(response.Errors) > 0 {
		return Artifact{}, fmt.Errorf("%w: %v", ErrCompilation, response.Errors)
	}
	if len(response.Contracts) == 0 {
		return Artifact{}, fmt.Errorf("%w: no contracts in output", ErrCompilation)
	}
	if contractName == "" {
		return response.Contracts[0], nil
	}
	for _, artifact := range response.Contracts {
		if artifact.ContractName == contractName {
			return artifact, nil
		}
	}
	return Artifact{}, fmt.Errorf("%w: contract %q not in output", ErrCompilation, contractName)
}

func (s *HTTPService) post(ctx context.Context, request any) ([]byte, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode compile request: %w", err)
	}

	payload, err := s.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("compiler returned %d: %s", resp.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return payload.([]byte), nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}
