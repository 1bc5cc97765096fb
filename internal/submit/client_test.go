package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSubmitUploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	artifacts := Artifacts{
		ProvingSystem: "sp1",
		ProofPath:     writeArtifact(t, dir, "proof.bin", "proof-bytes"),
		ProgramPath:   writeArtifact(t, dir, "program.elf", "elf-bytes"),
		PublicInput:   writeArtifact(t, dir, "pub_input.bin", "pub-bytes"),
	}

	var gotSystem string
	var gotParts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/proofs", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSystem = r.FormValue("proving_system")
		for name := range r.MultipartForm.File {
			gotParts = append(gotParts, name)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Receipt{BatchID: "batch-7", Status: "verified"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	defer client.Close()

	receipt, err := client.Submit(context.Background(), artifacts)
	require.NoError(t, err)
	assert.Equal(t, "batch-7", receipt.BatchID)
	assert.Equal(t, "verified", receipt.Status)
	assert.Equal(t, "sp1", gotSystem)
	assert.ElementsMatch(t, []string{"proof", "program", "public_input"}, gotParts)
}

func TestSubmitOmitsMissingPublicInput(t *testing.T) {
	dir := t.TempDir()
	artifacts := Artifacts{
		ProvingSystem: "risc0",
		ProofPath:     writeArtifact(t, dir, "proof.bin", "p"),
		ProgramPath:   writeArtifact(t, dir, "image_id.bin", "i"),
	}

	var gotParts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for name := range r.MultipartForm.File {
			gotParts = append(gotParts, name)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Receipt{Status: "verified"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	defer client.Close()

	_, err := client.Submit(context.Background(), artifacts)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proof", "program"}, gotParts)
}

func TestSubmitRejectedProof(t *testing.T) {
	dir := t.TempDir()
	artifacts := Artifacts{
		ProvingSystem: "sp1",
		ProofPath:     writeArtifact(t, dir, "proof.bin", "p"),
		ProgramPath:   writeArtifact(t, dir, "program.elf", "e"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid proof", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	defer client.Close()

	_, err := client.Submit(context.Background(), artifacts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	assert.Contains(t, err.Error(), "invalid proof")
}

func TestSubmitMissingArtifact(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second, zap.NewNop())
	defer client.Close()

	_, err := client.Submit(context.Background(), Artifacts{
		ProofPath:   "/nonexistent/proof.bin",
		ProgramPath: "/nonexistent/program.elf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing proof artifact")
}
