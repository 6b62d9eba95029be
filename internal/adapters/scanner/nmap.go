// Package scanner invokes nmap and drops the XML artifact into the scans
// directory, where the ingest service picks it up.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/OlderMutt/Surface-Minder/internal/config"
	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
)

// NmapRunner executes nmap with the configured per-kind option profile.
type NmapRunner struct {
	cfg      config.NmapConfig
	scansDir string
	now      func() time.Time
}

// NewNmapRunner creates a runner writing artifacts into scansDir.
func NewNmapRunner(cfg config.NmapConfig, scansDir string) *NmapRunner {
	return &NmapRunner{cfg: cfg, scansDir: scansDir, now: time.Now}
}

// Run scans one target and writes scan-<ts>-<kind>-<target>.xml into the
// scans directory. The per-kind timeout from config bounds the nmap
// process; the caller's ctx can cancel earlier.
func (r *NmapRunner) Run(ctx context.Context, kind, target string) (string, error) {
	args, timeout, err := r.commandFor(kind, target)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.scansDir, 0o755); err != nil {
		return "", fmt.Errorf("create scans dir: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Info("Running scan", "kind", kind, "target", target, "cmd", r.cfg.Cmd)

	cmd := exec.CommandContext(runCtx, r.cfg.Cmd, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("nmap %s scan of %s: %w: %s", kind, target, err, stderr.String())
	}

	outPath := filepath.Join(r.scansDir, ArtifactName(kind, target, r.now()))
	if err := os.WriteFile(outPath, stdout.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	slog.Info("Scan artifact written", "path", outPath)
	return outPath, nil
}

// commandFor builds the argument list and timeout for one scan kind.
func (r *NmapRunner) commandFor(kind, target string) ([]string, time.Duration, error) {
	switch kind {
	case domain.KindTCP:
		args := append(append([]string{}, r.cfg.TCPOpts...), target)
		return args, r.cfg.TCPTimeout.Std(), nil
	case domain.KindUDP:
		args := append(append([]string{}, r.cfg.UDPOpts...), "-p", r.cfg.UDPPorts, target)
		return args, r.cfg.UDPTimeout.Std(), nil
	default:
		return nil, 0, fmt.Errorf("unsupported scan kind %q", kind)
	}
}

// ArtifactName builds the artifact file name the ingest side derives the
// scan kind from: scan-<ts>-<kind>-<target>.xml.
func ArtifactName(kind, target string, ts time.Time) string {
	return fmt.Sprintf("scan-%s-%s-%s.xml", ts.Format("20060102-150405"), kind, target)
}

var _ ports.ScanRunner = (*NmapRunner)(nil)
