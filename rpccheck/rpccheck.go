// Package rpccheck diff-checks two independently running nodes over
// their read-only context RPC. Both nodes replayed the same action
// stream, so every probed path under chains/main/blocks/<id>/... must
// return the same JSON from both.
package rpccheck

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Environment variable names of the configuration surface.
const (
	EnvNodeRPCContextRoot1 = "NODE_RPC_CONTEXT_ROOT_1"
	EnvNodeRPCContextRoot2 = "NODE_RPC_CONTEXT_ROOT_2"
	EnvFromBlockHeader     = "FROM_BLOCK_HEADER"
	EnvToBlockHeader       = "TO_BLOCK_HEADER"
	EnvIgnorePathPatterns  = "IGNORE_PATH_PATTERNS"
)

// defaultProbePaths are the per-block paths compared when the caller
// does not supply its own set.
var defaultProbePaths = []string{
	"hash",
	"header",
	"context/merkle_root",
	"context/raw/bytes/data",
}

// Config selects the two nodes and the block range to compare.
type Config struct {
	NodeURL1 string
	NodeURL2 string
	// FromBlock and ToBlock bound the inclusive block-id range; block
	// ids are substituted verbatim into the URL.
	FromBlock int64
	ToBlock   int64
	// IgnorePatterns excludes any probed path containing one of the
	// patterns as a substring.
	IgnorePatterns []string
	// ProbePaths overrides defaultProbePaths when non-empty.
	ProbePaths []string
}

// FromEnv reads the configuration surface from the environment. The
// two node URLs are required; an unset block range defaults to block
// range [0, 0].
func FromEnv() (Config, error) {
	cfg := Config{
		NodeURL1: os.Getenv(EnvNodeRPCContextRoot1),
		NodeURL2: os.Getenv(EnvNodeRPCContextRoot2),
	}
	if cfg.NodeURL1 == "" || cfg.NodeURL2 == "" {
		return Config{}, fmt.Errorf("%s and %s must be set", EnvNodeRPCContextRoot1, EnvNodeRPCContextRoot2)
	}
	var err error
	if from := os.Getenv(EnvFromBlockHeader); from != "" {
		if cfg.FromBlock, err = strconv.ParseInt(from, 10, 64); err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s", EnvFromBlockHeader)
		}
	}
	if to := os.Getenv(EnvToBlockHeader); to != "" {
		if cfg.ToBlock, err = strconv.ParseInt(to, 10, 64); err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s", EnvToBlockHeader)
		}
	}
	if patterns := os.Getenv(EnvIgnorePathPatterns); patterns != "" {
		for _, pattern := range strings.Split(patterns, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				cfg.IgnorePatterns = append(cfg.IgnorePatterns, pattern)
			}
		}
	}
	return cfg, nil
}

// Mismatch describes one path the two nodes disagree on.
type Mismatch struct {
	Path    string
	Status1 int
	Status2 int
	Body1   string
	Body2   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: node1 [%d] %s, node2 [%d] %s", m.Path, m.Status1, m.Body1, m.Status2, m.Body2)
}

// Checker compares the two configured nodes path by path.
type Checker struct {
	cfg    Config
	client *http.Client
}

// NewChecker creates a checker; a nil client selects
// http.DefaultClient.
func NewChecker(cfg Config, client *http.Client) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{cfg: cfg, client: client}
}

// probePaths returns the per-block paths to compare, ignore patterns
// applied.
func (c *Checker) probePaths() []string {
	paths := c.cfg.ProbePaths
	if len(paths) == 0 {
		paths = defaultProbePaths
	}
	kept := make([]string, 0, len(paths))
	for _, path := range paths {
		if !c.ignored(path) {
			kept = append(kept, path)
		}
	}
	return kept
}

func (c *Checker) ignored(path string) bool {
	for _, pattern := range c.cfg.IgnorePatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// CompareBlock probes every path of one block on both nodes and
// returns the mismatches. Transport failures are errors; a non-200
// status is part of the comparison, not an error, since both nodes
// must fail identically too.
func (c *Checker) CompareBlock(blockID string) ([]Mismatch, error) {
	var mismatches []Mismatch
	for _, path := range c.probePaths() {
		fullPath := fmt.Sprintf("chains/main/blocks/%s/%s", blockID, path)
		status1, body1, err := c.fetch(c.cfg.NodeURL1, fullPath)
		if err != nil {
			return nil, err
		}
		status2, body2, err := c.fetch(c.cfg.NodeURL2, fullPath)
		if err != nil {
			return nil, err
		}
		if status1 != status2 || !jsonEqual(body1, body2) {
			mismatches = append(mismatches, Mismatch{
				Path:    fullPath,
				Status1: status1,
				Status2: status2,
				Body1:   string(body1),
				Body2:   string(body2),
			})
		}
	}
	return mismatches, nil
}

// CompareRange compares every block of the configured inclusive
// range, keyed by block id.
func (c *Checker) CompareRange(blockIDs []string) (map[string][]Mismatch, error) {
	result := map[string][]Mismatch{}
	for _, blockID := range blockIDs {
		mismatches, err := c.CompareBlock(blockID)
		if err != nil {
			return nil, err
		}
		if len(mismatches) > 0 {
			result[blockID] = mismatches
		}
	}
	return result, nil
}

func (c *Checker) fetch(base string, path string) (int, []byte, error) {
	url := strings.TrimRight(base, "/") + "/" + path
	resp, err := c.client.Get(url)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to query %s", url)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to read response of %s", url)
	}
	return resp.StatusCode, body, nil
}

// jsonEqual deep-compares two JSON bodies, tolerating formatting
// differences. Bodies that do not decode are compared bytewise.
func jsonEqual(a, b []byte) bool {
	var decodedA, decodedB interface{}
	if json.Unmarshal(a, &decodedA) != nil || json.Unmarshal(b, &decodedB) != nil {
		return string(a) == string(b)
	}
	return reflect.DeepEqual(decodedA, decodedB)
}
