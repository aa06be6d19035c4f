package output

import (
	"github.com/arthur-debert/dotmod/pkg/engine"
)

// The view types are the rendered form of engine results. They back both
// the text templates and YAML output.

type ResultView struct {
	Module   string        `yaml:"module"`
	Outcome  string        `yaml:"outcome"`
	Error    string        `yaml:"error,omitempty"`
	Created  []string      `yaml:"created,omitempty"`
	Removed  []string      `yaml:"removed,omitempty"`
	Warnings []WarningView `yaml:"warnings,omitempty"`
}

type WarningView struct {
	Path   string `yaml:"path"`
	Kind   string `yaml:"kind"`
	Reason string `yaml:"reason"`
	Error  string `yaml:"error,omitempty"`
}

type ModuleView struct {
	Name    string   `yaml:"name"`
	State   string   `yaml:"state"`
	Owned   int      `yaml:"owned"`
	Imports []string `yaml:"imports,omitempty"`
	Error   string   `yaml:"error,omitempty"`
}

type OwnedView struct {
	Module string `yaml:"module"`
	Path   string `yaml:"path"`
	Kind   string `yaml:"kind"`
	Status string `yaml:"status"`
	Size   int64  `yaml:"size,omitempty"`
	Digest string `yaml:"digest,omitempty"`
	Target string `yaml:"target,omitempty"`
}

type DigestView struct {
	Name     string `yaml:"name"`
	Status   string `yaml:"status"`
	Digest   string `yaml:"digest,omitempty"`
	Expected string `yaml:"expected,omitempty"`
	Slot     string `yaml:"slot"`
	Error    string `yaml:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewResultViews converts batch results
func NewResultViews(results []engine.ModuleResult) []ResultView {
	views := make([]ResultView, 0, len(results))
	for _, r := range results {
		v := ResultView{
			Module:  r.Module,
			Outcome: string(r.Outcome),
			Error:   errString(r.Err),
			Created: r.Created,
			Removed: r.Removed,
		}
		for _, w := range r.Warnings {
			v.Warnings = append(v.Warnings, WarningView{
				Path:   w.Path,
				Kind:   string(w.Kind),
				Reason: string(w.Reason),
				Error:  errString(w.Err),
			})
		}
		views = append(views, v)
	}
	return views
}

// moduleState names the row state shown by list
func moduleState(s engine.ModuleStatus) string {
	switch {
	case s.Err != nil:
		return "invalid"
	case s.Enabled && !s.InRegistry:
		return "orphaned"
	case s.Enabled:
		return "enabled"
	default:
		return "available"
	}
}

// NewModuleViews converts List rows
func NewModuleViews(modules []engine.ModuleStatus) []ModuleView {
	views := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, ModuleView{
			Name:    m.Name,
			State:   moduleState(m),
			Owned:   m.Owned,
			Imports: m.Imports,
			Error:   errString(m.Err),
		})
	}
	return views
}

// NewOwnedViews converts OwnedPaths rows
func NewOwnedViews(owned []engine.OwnedPath) []OwnedView {
	views := make([]OwnedView, 0, len(owned))
	for _, o := range owned {
		views = append(views, OwnedView{
			Module: o.Module,
			Path:   o.Path,
			Kind:   string(o.Info.Kind),
			Status: o.Status.String(),
			Size:   o.Info.Size,
			Digest: o.Info.Digest,
			Target: o.Info.Target,
		})
	}
	return views
}

// NewDigestViews converts Hash rows
func NewDigestViews(digests []engine.SourceDigest) []DigestView {
	views := make([]DigestView, 0, len(digests))
	for _, d := range digests {
		views = append(views, DigestView{
			Name:     d.Name,
			Status:   string(d.Status),
			Digest:   d.Digest,
			Expected: d.Expected,
			Slot:     d.Slot,
			Error:    errString(d.Err),
		})
	}
	return views
}
