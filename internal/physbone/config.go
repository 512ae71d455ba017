// Package physbone configures the physics-bone component attached to matched
// bones: hinge limits, the derived roll, and the installer's simulation defaults.
package physbone

import (
	"fmt"
	"math"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/geometry"
	"github.com/conn-castle/rigkit/internal/hierarchy"
)

// ComponentType is the component type name reported for physics bones.
const ComponentType = "PhysBone"

// LimitType selects the rotational constraint of a physics bone.
type LimitType string

// Limit types.
const (
	LimitNone  LimitType = "none"
	LimitAngle LimitType = "angle"
	LimitHinge LimitType = "hinge"
	LimitPolar LimitType = "polar"
)

// IntegrationType selects the simulation integrator.
type IntegrationType string

// Integration types.
const (
	IntegrationSimplified IntegrationType = "simplified"
	IntegrationAdvanced   IntegrationType = "advanced"
)

// Vec3 is an (x, y, z) triple of degrees.
type Vec3 [3]float64

// Config is the component block stored on a node.
type Config struct {
	LimitType       LimitType       `json:"limitType" yaml:"limitType"`
	MaxAngleX       float64         `json:"maxAngleX" yaml:"maxAngleX"`
	LimitRotation   Vec3            `json:"limitRotation" yaml:"limitRotation"`
	IntegrationType IntegrationType `json:"integrationType,omitempty" yaml:"integrationType,omitempty"`
	Immobile        float64         `json:"immobile" yaml:"immobile"`
	Gravity         float64         `json:"gravity" yaml:"gravity"`
	Inert           float64         `json:"inert" yaml:"inert"`
	Elasticity      float64         `json:"elasticity" yaml:"elasticity"`
	Stiffness       float64         `json:"stiffness" yaml:"stiffness"`
	Damping         float64         `json:"damping" yaml:"damping"`
	Radius          float64         `json:"radius" yaml:"radius"`
	AllowCollision  bool            `json:"allowCollision" yaml:"allowCollision"`
}

// InstallDefaults are the fixed simulation settings written by Install. They are
// constants, not derived from the scene.
var InstallDefaults = Config{
	IntegrationType: IntegrationSimplified,
	Immobile:        0,
	Gravity:         0,
	Inert:           0.2,
	Elasticity:      0.1,
	Stiffness:       0.2,
	Damping:         0.1,
	Radius:          0.05,
	AllowCollision:  true,
}

// HasPhysBoneConfig is the capability the core uses to read a node's component.
// The returned pointer aliases host state unless the host also implements
// PhysBoneEditor.
type HasPhysBoneConfig interface {
	PhysBone(id hierarchy.NodeID) (*Config, bool)
}

// PhysBoneEditor is implemented by hosts whose read accessor may return a
// detached value. The applier writes through EditPhysBone when present.
type PhysBoneEditor interface {
	EditPhysBone(id hierarchy.NodeID) (*Config, bool)
}

// Host is a tree whose nodes have positions and may carry a physics bone.
type Host interface {
	hierarchy.Tree
	geometry.Positioned
	HasPhysBoneConfig
}

// InstallHost can also attach a new component.
type InstallHost interface {
	Host
	AddPhysBone(id hierarchy.NodeID) (*Config, error)
}

// Parameters are the user-supplied angles.
type Parameters struct {
	MaxAngle   float64
	InnerAngle float64
}

// Validate rejects non-finite angles.
func (p Parameters) Validate() error {
	for _, v := range []float64{p.MaxAngle, p.InnerAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: angle %v is not finite", errkind.ErrMalformed, v)
		}
	}
	return nil
}

// BoneParameter is the per-bone result, computed once and written once.
type BoneParameter struct {
	MaxAngle    float64 `json:"maxAngle"`
	InnerAngle  float64 `json:"innerAngle"`
	DerivedRoll float64 `json:"derivedRoll"`
}

// SecondaryLimit is the x limit rotation written to the component.
func (b BoneParameter) SecondaryLimit() float64 {
	return b.MaxAngle - b.InnerAngle
}
