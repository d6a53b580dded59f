package env

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Var map[string]string

// Env composes the environment handed to spawned programs.
type Env struct {
	Var Var // overrides (K->V)
	env Var // cached base from OS environment
}

func New() *Env {
	return &Env{
		Var: make(Var),
	}
}

// FromOS caches the current process environment as the base.
func (e *Env) FromOS() {
	e.env = parsePairs(os.Environ())
}

// Set sets an override K=V.
func (e *Env) Set(k, v string) {
	if e.Var == nil {
		e.Var = make(Var)
	}
	e.Var[k] = v
}

// SetPairs applies "K=V" entries as overrides. Malformed entries are skipped.
func (e *Env) SetPairs(kvs []string) {
	for k, v := range parsePairs(kvs) {
		e.Set(k, v)
	}
}

// LoadFile applies KEY=VALUE lines from a .env file as overrides.
// Blank lines and lines starting with # are ignored.
func (e *Env) LoadFile(path string) error {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '='); i > 0 {
			e.Set(strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]))
		}
	}
	return nil
}

// Merge composes the final environment list:
// base = OS env (or cached), then overrides from e.Var.
// ${VAR} references in values are expanded against the composed map
// (single pass, no recursion). The result is sorted by key.
func (e *Env) Merge() []string {
	if e.env == nil {
		e.FromOS()
	}
	m := make(Var, len(e.env)+len(e.Var))
	for k, v := range e.env {
		m[k] = v
	}
	for k, v := range e.Var {
		if k == "" {
			continue
		}
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+expand(v, m))
	}
	sort.Strings(out)
	return out
}

func parsePairs(kvs []string) Var {
	m := make(Var, len(kvs))
	for _, kv := range kvs {
		if i := strings.IndexByte(kv, '='); i > 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

func expand(s string, m Var) string {
	if !strings.Contains(s, "${") {
		return s
	}
	res := s
	for k, v := range m {
		res = strings.ReplaceAll(res, "${"+k+"}", v)
	}
	return res
}
