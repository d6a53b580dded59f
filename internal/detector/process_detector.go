package detector

import (
	"context"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ProcessEntry is one element of a process table snapshot.
type ProcessEntry struct {
	PID  int32
	Name string
}

// Snapshotter returns a point-in-time list of running processes.
type Snapshotter func(ctx context.Context) ([]ProcessEntry, error)

// SystemSnapshot enumerates the host process table via gopsutil.
// Processes that exit between listing and name lookup, or whose name is not
// readable, are left out of the snapshot.
func SystemSnapshot(ctx context.Context) ([]ProcessEntry, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessEntry, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		out = append(out, ProcessEntry{PID: p.Pid, Name: name})
	}
	return out, nil
}

// ProcessNameDetector reports whether any running process has an executable
// name containing Name, compared case-insensitively.
type ProcessNameDetector struct {
	Name     string
	Snapshot Snapshotter // nil uses SystemSnapshot
}

// Find takes one snapshot and returns every entry whose name matches.
func (d ProcessNameDetector) Find(ctx context.Context) ([]ProcessEntry, error) {
	snap := d.Snapshot
	if snap == nil {
		snap = SystemSnapshot
	}
	entries, err := snap(ctx)
	if err != nil {
		return nil, err
	}
	return MatchName(entries, d.Name), nil
}

func (d ProcessNameDetector) Alive(ctx context.Context) (bool, error) {
	matches, err := d.Find(ctx)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

func (d ProcessNameDetector) Describe() string { return "process:" + d.Name }

// MatchName filters entries to those whose name contains fragment, ignoring case.
// An empty fragment matches nothing.
func MatchName(entries []ProcessEntry, fragment string) []ProcessEntry {
	needle := strings.ToLower(fragment)
	if needle == "" {
		return nil
	}
	var out []ProcessEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}
