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

// ErrVerificationRejected is returned when the verification backend refuses
// the submission (source/bytecode mismatch, unknown address).
var ErrVerificationRejected = errors.New("verification rejected")

// Submission is the metadata the verification service needs to match
// deployed bytecode against source.
type Submission struct {
	ContractAddress string `json:"contract_address"`
	ContractName    string `json:"contract_name"`
	Source          string `json:"source"`
	CompilerVersion string `json:"compiler_version"`
	Network         string `json:"network"`
}

// VerificationResult reports the outcome of a submission.
type VerificationResult struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// Verifier submits contract source for public verification.
type Verifier interface {
	Verify(ctx context.Context, submission Submission) (VerificationResult, error)
}

// HTTPVerifier implements Verifier against an explorer verification API.
type HTTPVerifier struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewHTTPVerifier creates a verification client for endpoint.
func NewHTTPVerifier(endpoint string) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		breaker:  newBreaker("verifier"),
	}
}

// Verify posts the submission and returns the backend's status and explorer
// URL.
func (v *HTTPVerifier) Verify(ctx context.Context, submission Submission) (VerificationResult, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("encode verification request: %w", err)
	}

	payload, err := v.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := v.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", ErrVerificationRejected, data)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("verifier returned %d: %s", resp.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, ErrVerificationRejected) {
			return VerificationResult{}, err
		}
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	var result VerificationResult
	if err := json.Unmarshal(payload.([]byte), &result); err != nil {
		return VerificationResult{}, fmt.Errorf("decode verification response: %w", err)
	}
	return result, nil
}
