// Package submit uploads proof artifacts to a verification network over
// HTTP and reports back the network's verification receipt.
package submit

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// Artifacts are the files produced by a proving run that the network needs
// to verify the proof. PublicInput is optional; the other two are required.
type Artifacts struct {
	ProvingSystem string
	ProofPath     string
	ProgramPath   string
	PublicInput   string
}

// Receipt is the network's acknowledgement of a verified proof.
type Receipt struct {
	BatchID          string `json:"batch_id"`
	ProofCommitment  string `json:"proof_commitment"`
	VerificationTxID string `json:"verification_tx_id,omitempty"`
	Status           string `json:"status"`
}

// Client submits proofs to a single verification network endpoint.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a submission client for the given endpoint. The timeout
// bounds the whole upload; zero means no limit.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	c := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("User-Agent", "zkforge")
	return &Client{http: c, logger: logger}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// Submit uploads the proof, the compiled program, and the public input when
// present, as a multipart POST to /v1/proofs. A non-2xx response is an error
// carrying the response body.
func (c *Client) Submit(ctx context.Context, a Artifacts) (*Receipt, error) {
	for _, p := range []string{a.ProofPath, a.ProgramPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("missing proof artifact: %w", err)
		}
	}

	req := c.http.R().
		SetContext(ctx).
		SetFile("proof", a.ProofPath).
		SetFile("program", a.ProgramPath).
		SetFormData(map[string]string{"proving_system": a.ProvingSystem})
	if a.PublicInput != "" {
		if _, err := os.Stat(a.PublicInput); err != nil {
			return nil, fmt.Errorf("missing public input: %w", err)
		}
		req.SetFile("public_input", a.PublicInput)
	}

	var receipt Receipt
	res, err := req.SetResult(&receipt).Post("/v1/proofs")
	if err != nil {
		return nil, fmt.Errorf("submitting proof: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("verification network rejected proof: %s: %s", res.Status(), res.String())
	}

	c.logger.Info("proof submitted",
		zap.String("proving_system", a.ProvingSystem),
		zap.String("batch_id", receipt.BatchID),
		zap.String("status", receipt.Status),
	)
	return &receipt, nil
}
