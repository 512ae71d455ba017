package physbone

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/geometry"
	"github.com/conn-castle/rigkit/internal/hierarchy"
)

// Change records one field update on one node.
type Change struct {
	Path  string `json:"path"`
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// NodeResult is the outcome for one configured bone.
type NodeResult struct {
	Node      hierarchy.NodeID `json:"-"`
	Path      string           `json:"path"`
	Leaf      string           `json:"leaf,omitempty"`
	Parameter BoneParameter    `json:"parameter"`
	Added     bool             `json:"added,omitempty"`
	Warning   string           `json:"warning,omitempty"`
	Changes   []Change         `json:"changes,omitempty"`
}

// NodeFailure is a per-node error recorded without stopping the batch.
type NodeFailure struct {
	Node hierarchy.NodeID `json:"-"`
	Path string           `json:"path"`
	Err  error            `json:"-"`
}

// Applied summarizes one apply call.
type Applied struct {
	Count    int
	Results  []NodeResult
	Failures []NodeFailure
}

// Changes flattens every recorded change in node order.
func (a Applied) Changes() []Change {
	var out []Change
	for _, r := range a.Results {
		out = append(out, r.Changes...)
	}
	return out
}

// PreconditionError lists the bones that lack the component in validate mode.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%d bone(s) missing %s: %s", len(e.Missing), ComponentType, strings.Join(e.Missing, ", "))
}

func (e *PreconditionError) Unwrap() error {
	return errkind.ErrPrecondition
}

// Checkpoint is polled before each node is configured. done counts the nodes
// already attempted. A non-nil error stops the remaining nodes.
type Checkpoint func(done int, total int) error

// Applier writes bone parameters into a host's components.
type Applier struct {
	host       Host
	log        *slog.Logger
	checkpoint Checkpoint
}

// NewApplier returns an applier over host. A nil logger discards output.
func NewApplier(host Host, log *slog.Logger) *Applier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Applier{host: host, log: log}
}

// SetCheckpoint installs fn as the per-node poll.
func (a *Applier) SetCheckpoint(fn Checkpoint) {
	a.checkpoint = fn
}

// Validate checks that every node already carries the component. Nothing is
// mutated; the error lists all missing nodes.
func (a *Applier) Validate(nodes []hierarchy.NodeID) error {
	var missing []string
	for _, id := range nodes {
		path := hierarchy.Resolve(a.host, id)
		if _, ok := a.host.PhysBone(id); !ok {
			a.log.Error("missing component", "component", ComponentType, "path", path)
			missing = append(missing, path)
			continue
		}
		a.log.Debug("component found", "component", ComponentType, "path", path)
	}
	if len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	return nil
}

// ApplyValidated requires every node to carry the component before touching any
// of them, then configures all nodes.
func (a *Applier) ApplyValidated(nodes []hierarchy.NodeID, params Parameters) (Applied, error) {
	if err := params.Validate(); err != nil {
		return Applied{}, err
	}
	if err := a.Validate(nodes); err != nil {
		return Applied{}, err
	}
	return a.apply(nodes, params, false)
}

// Install adds the component where it is missing, configures every node, and
// writes InstallDefaults. A node whose component cannot be added is recorded as
// a failure and the batch continues.
func (a *Applier) Install(nodes []hierarchy.NodeID, params Parameters) (Applied, error) {
	if err := params.Validate(); err != nil {
		return Applied{}, err
	}
	if _, ok := a.host.(InstallHost); !ok {
		return Applied{}, fmt.Errorf("%w: host cannot add %s components", errkind.ErrPrecondition, ComponentType)
	}
	return a.apply(nodes, params, true)
}

// apply returns the partial result together with the checkpoint error when the
// checkpoint stops the loop.
func (a *Applier) apply(nodes []hierarchy.NodeID, params Parameters, install bool) (Applied, error) {
	var out Applied
	for i, id := range nodes {
		if a.checkpoint != nil {
			if err := a.checkpoint(i, len(nodes)); err != nil {
				a.log.Warn("configure stopped", "done", i, "total", len(nodes), "error", err)
				return out, err
			}
		}
		result, err := a.applyOne(id, params, install)
		if err != nil {
			path := hierarchy.Resolve(a.host, id)
			a.log.Error("configure failed", "path", path, "error", err)
			out.Failures = append(out.Failures, NodeFailure{Node: id, Path: path, Err: err})
			continue
		}
		out.Results = append(out.Results, result)
		out.Count++
	}
	if a.checkpoint != nil {
		// Final tick so progress reaches total.
		_ = a.checkpoint(len(nodes), len(nodes))
	}
	a.log.Info("configured bones", "count", out.Count, "failed", len(out.Failures))
	return out, nil
}

// editable returns the component config that writes should go to.
func (a *Applier) editable(id hierarchy.NodeID) (*Config, bool) {
	if e, ok := a.host.(PhysBoneEditor); ok {
		return e.EditPhysBone(id)
	}
	return a.host.PhysBone(id)
}

func (a *Applier) applyOne(id hierarchy.NodeID, params Parameters, install bool) (result NodeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errkind.FromPanic(r)
		}
	}()

	path := hierarchy.Resolve(a.host, id)
	result = NodeResult{Node: id, Path: path}

	cfg, ok := a.editable(id)
	if !ok {
		if !install {
			return result, fmt.Errorf("%w: %s has no %s", errkind.ErrPrecondition, path, ComponentType)
		}
		installer := a.host.(InstallHost)
		cfg, err = installer.AddPhysBone(id)
		if err != nil {
			return result, fmt.Errorf("add %s: %w", ComponentType, err)
		}
		result.Added = true
		a.log.Info("added component", "component", ComponentType, "path", path)
	}

	chain := geometry.RollForChain(a.host, a.host, id)
	if chain.Fallback != nil {
		result.Warning = chain.Fallback.Error()
		a.log.Warn("no unique leaf, using zero offset", "path", path, "reason", chain.Fallback)
	} else {
		result.Leaf = hierarchy.Resolve(a.host, chain.Leaf)
	}
	result.Parameter = BoneParameter{
		MaxAngle:    params.MaxAngle,
		InnerAngle:  params.InnerAngle,
		DerivedRoll: chain.Roll,
	}

	before := *cfg
	Configure(cfg, result.Parameter, install)
	result.Changes = Diff(path, before, *cfg)
	a.log.Debug("configured bone",
		"path", path,
		"max_angle", result.Parameter.MaxAngle,
		"limit_x", result.Parameter.SecondaryLimit(),
		"roll", result.Parameter.DerivedRoll,
		"changes", len(result.Changes),
	)
	return result, nil
}

// Configure writes a bone parameter into cfg. It sets fields, never accumulates,
// so repeated calls with the same input leave cfg unchanged.
func Configure(cfg *Config, p BoneParameter, withDefaults bool) {
	cfg.LimitType = LimitHinge
	cfg.MaxAngleX = p.MaxAngle
	cfg.LimitRotation[0] = p.SecondaryLimit()
	cfg.LimitRotation[1] = p.DerivedRoll
	if withDefaults {
		cfg.IntegrationType = InstallDefaults.IntegrationType
		cfg.Immobile = InstallDefaults.Immobile
		cfg.Gravity = InstallDefaults.Gravity
		cfg.Inert = InstallDefaults.Inert
		cfg.Elasticity = InstallDefaults.Elasticity
		cfg.Stiffness = InstallDefaults.Stiffness
		cfg.Damping = InstallDefaults.Damping
		cfg.Radius = InstallDefaults.Radius
		cfg.AllowCollision = InstallDefaults.AllowCollision
	}
}

// Diff lists the fields that differ between before and after.
func Diff(path string, before Config, after Config) []Change {
	var out []Change
	add := func(field, old, updated string) {
		if old != updated {
			out = append(out, Change{Path: path, Field: field, Old: old, New: updated})
		}
	}
	add("limitType", string(before.LimitType), string(after.LimitType))
	add("maxAngleX", formatFloat(before.MaxAngleX), formatFloat(after.MaxAngleX))
	add("limitRotation.x", formatFloat(before.LimitRotation[0]), formatFloat(after.LimitRotation[0]))
	add("limitRotation.y", formatFloat(before.LimitRotation[1]), formatFloat(after.LimitRotation[1]))
	add("limitRotation.z", formatFloat(before.LimitRotation[2]), formatFloat(after.LimitRotation[2]))
	add("integrationType", string(before.IntegrationType), string(after.IntegrationType))
	add("immobile", formatFloat(before.Immobile), formatFloat(after.Immobile))
	add("gravity", formatFloat(before.Gravity), formatFloat(after.Gravity))
	add("inert", formatFloat(before.Inert), formatFloat(after.Inert))
	add("elasticity", formatFloat(before.Elasticity), formatFloat(after.Elasticity))
	add("stiffness", formatFloat(before.Stiffness), formatFloat(after.Stiffness))
	add("damping", formatFloat(before.Damping), formatFloat(after.Damping))
	add("radius", formatFloat(before.Radius), formatFloat(after.Radius))
	add("allowCollision", strconv.FormatBool(before.AllowCollision), strconv.FormatBool(after.AllowCollision))
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
