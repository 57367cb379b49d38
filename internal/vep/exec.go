package vep

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/ebivariation/vepmap/internal/variant"
)

// ExecConfig locates and parameterizes the external VEP process. All fields
// are opaque pass-through configuration as far as the pipeline is concerned.
type ExecConfig struct {
	Path      string   // VEP executable, "vep" if empty
	Species   string   // e.g. "homo_sapiens"
	Assembly  string   // e.g. "GRCh38"
	CacheDir  string   // --dir_cache location, engine default if empty
	Fork      int      // --fork value for the engine's own worker count, 0 = off
	ExtraArgs []string // appended verbatim
}

// ExecAnnotator invokes the VEP command-line engine once per batch, feeding
// variants on stdin and parsing line-delimited JSON from stdout.
type ExecAnnotator struct {
	cfg    ExecConfig
	logger *zap.Logger
}

// NewExecAnnotator creates an annotator shelling out to the VEP binary.
func NewExecAnnotator(cfg ExecConfig) *ExecAnnotator {
	if cfg.Path == "" {
		cfg.Path = "vep"
	}
	return &ExecAnnotator{cfg: cfg, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning messages.
func (a *ExecAnnotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// args builds the engine command line for one batch invocation.
func (a *ExecAnnotator) args() []string {
	args := []string{
		"--format", "vcf",
		"--json",
		"--no_stats",
		"--offline",
		"--input_file", "STDIN",
		"--output_file", "STDOUT",
	}
	if a.cfg.Species != "" {
		args = append(args, "--species", a.cfg.Species)
	}
	if a.cfg.Assembly != "" {
		args = append(args, "--assembly", a.cfg.Assembly)
	}
	if a.cfg.CacheDir != "" {
		args = append(args, "--dir_cache", a.cfg.CacheDir)
	}
	if a.cfg.Fork > 1 {
		args = append(args, "--fork", fmt.Sprintf("%d", a.cfg.Fork))
	}
	return append(args, a.cfg.ExtraArgs...)
}

// Annotate submits one batch to the external engine.
func (a *ExecAnnotator) Annotate(ctx context.Context, batch []variant.Descriptor) ([]Consequence, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	if _, err := exec.LookPath(a.cfg.Path); err != nil {
		return nil, &UnavailableError{Reason: "engine binary not found", Err: err}
	}

	var input strings.Builder
	for _, d := range batch {
		input.WriteString(inputLine(d))
		input.WriteByte('\n')
	}

	cmd := exec.CommandContext(ctx, a.cfg.Path, a.args()...)
	cmd.Stdin = strings.NewReader(input.String())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &UnavailableError{Reason: "connect to engine stdout", Err: err}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &UnavailableError{Reason: "start engine process", Err: err}
	}

	keys := batchKeys(batch)
	var records []Consequence

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	var parseErr error
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var res vepResult
		if err := json.Unmarshal(line, &res); err != nil {
			parseErr = &OutputError{Detail: fmt.Sprintf("line %d", lineNo), Err: err}
			break
		}
		records = append(records, convertResult(&res, keys, a.logger)...)
	}
	if parseErr == nil {
		if err := scanner.Err(); err != nil {
			parseErr = &OutputError{Detail: "read engine output", Err: err}
		}
	} else {
		// Drain so the engine is not blocked writing while we wait.
		io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	if parseErr != nil {
		return nil, parseErr
	}
	if waitErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnavailableError{
			Reason: fmt.Sprintf("engine exited: %s", strings.TrimSpace(stderr.String())),
			Err:    waitErr,
		}
	}

	return records, nil
}
