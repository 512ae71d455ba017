package physbone

import (
	"github.com/conn-castle/rigkit/internal/hierarchy"
)

// AuditHost is the read-only view Audit needs.
type AuditHost interface {
	hierarchy.Tree
	HasPhysBoneConfig
}

// AuditEntry describes one component found in the scene.
type AuditEntry struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Config       Config `json:"config"`
	Hinge        bool   `json:"hinge"`
	AngleInRange bool   `json:"angleInRange"`
}

// AuditResult summarizes a full-scene audit.
type AuditResult struct {
	Scanned int          `json:"scanned"`
	Entries []AuditEntry `json:"entries"`
}

// Issues counts entries that are not hinges or whose max angle is out of range.
func (r AuditResult) Issues() int {
	n := 0
	for _, e := range r.Entries {
		if !e.Hinge || !e.AngleInRange {
			n++
		}
	}
	return n
}

// Audit walks every node and reports each physics-bone component with a hinge
// check and a 0 < maxAngleX <= 180 range check.
func Audit(host AuditHost) AuditResult {
	var out AuditResult
	walk := hierarchy.Walk(host, hierarchy.WalkOptions{MaxDepth: hierarchy.Unlimited})
	for _, e := range walk.Entries {
		out.Scanned++
		cfg, ok := host.PhysBone(e.Node)
		if !ok {
			continue
		}
		out.Entries = append(out.Entries, AuditEntry{
			Index:        len(out.Entries) + 1,
			Name:         e.Name,
			Path:         e.Path,
			Config:       *cfg,
			Hinge:        cfg.LimitType == LimitHinge,
			AngleInRange: cfg.MaxAngleX > 0 && cfg.MaxAngleX <= 180,
		})
	}
	return out
}
