package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// rustDuration mirrors serde's default Duration encoding, which is how the
// generated host programs serialize their timings.
type rustDuration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

func (d rustDuration) Duration() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

// Metrics is the proving report the generated host program writes next to
// the proof artifacts.
type Metrics struct {
	Cycles             uint64       `json:"cycles"`
	NumSegments        int          `json:"num_segments"`
	CoreProofSize      int          `json:"core_proof_size"`
	RecursiveProofSize int          `json:"recursive_proof_size"`
	CoreProve          rustDuration `json:"core_prove_duration"`
	CoreVerify         rustDuration `json:"core_verify_duration"`
	CompressProve      rustDuration `json:"compress_prove_duration"`
	CompressVerify     rustDuration `json:"compress_verify_duration"`
}

// ReadMetrics decodes the metrics JSON the host wrote for this run. The path
// is relative to the directory zkforge was invoked from, like the other
// proof artifacts.
func ReadMetrics(b Backend) (Metrics, error) {
	data, err := os.ReadFile(b.MetricsPath)
	if err != nil {
		return Metrics{}, fmt.Errorf("read %s metrics: %w", b.Name, err)
	}
	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return Metrics{}, fmt.Errorf("decode %s metrics: %w", b.Name, err)
	}
	return m, nil
}
