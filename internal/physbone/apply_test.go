package physbone

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/testutil"
)

type fakeHost struct {
	*testutil.Tree
	bones   map[hierarchy.NodeID]*Config
	addErr  map[hierarchy.NodeID]error
	panicOn hierarchy.NodeID
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		Tree:    testutil.NewTree(),
		bones:   map[hierarchy.NodeID]*Config{},
		addErr:  map[hierarchy.NodeID]error{},
		panicOn: math.MaxUint32,
	}
}

func (h *fakeHost) PhysBone(id hierarchy.NodeID) (*Config, bool) {
	if id == h.panicOn {
		panic("component store corrupted")
	}
	cfg, ok := h.bones[id]
	return cfg, ok
}

func (h *fakeHost) AddPhysBone(id hierarchy.NodeID) (*Config, error) {
	if err := h.addErr[id]; err != nil {
		return nil, err
	}
	cfg := &Config{LimitType: LimitAngle}
	h.bones[id] = cfg
	return cfg, nil
}

// readOnlyHost hides AddPhysBone.
type readOnlyHost struct {
	Host
}

// skirt builds Skirt with bones .001 (tip at +z), .002 (branching), and .003
// (tip at +x).
func skirt(t *testing.T) (*fakeHost, []hierarchy.NodeID) {
	t.Helper()
	h := newFakeHost()
	root := h.AddRoot("Skirt")
	b1 := h.Add(root, "Skirt.001")
	tip1 := h.Add(b1, "Skirt.001_end")
	b2 := h.Add(root, "Skirt.002")
	h.Add(b2, "A")
	h.Add(b2, "B")
	b3 := h.Add(root, "Skirt.003")
	tip3 := h.Add(b3, "Skirt.003_end")
	h.SetPosition(b1, 0, 1, 0)
	h.SetPosition(tip1, 0, 0, 1)
	h.SetPosition(b3, 0, 1, 0)
	h.SetPosition(tip3, 2, 0, 0)
	return h, []hierarchy.NodeID{b1, b2, b3}
}

func TestApplyValidated_ConfiguresHingeAndRoll(t *testing.T) {
	h, bones := skirt(t)
	for _, id := range bones {
		h.bones[id] = &Config{LimitType: LimitAngle, LimitRotation: Vec3{0, 0, 7}}
	}

	applied, err := NewApplier(h, nil).ApplyValidated(bones, Parameters{MaxAngle: 45, InnerAngle: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, applied.Count)
	assert.Empty(t, applied.Failures)

	b1 := h.bones[bones[0]]
	assert.Equal(t, LimitHinge, b1.LimitType)
	assert.Equal(t, 45.0, b1.MaxAngleX)
	assert.Equal(t, 35.0, b1.LimitRotation[0])
	assert.InDelta(t, 180, b1.LimitRotation[1], 1e-9)
	assert.Equal(t, 7.0, b1.LimitRotation[2], "z limit is left alone")
	assert.Equal(t, "Skirt/Skirt.001/Skirt.001_end", applied.Results[0].Leaf)

	// Branching bone: roll falls back to the zero-offset value with a warning.
	b2 := h.bones[bones[1]]
	assert.Equal(t, 90.0, b2.LimitRotation[1])
	assert.NotEmpty(t, applied.Results[1].Warning)

	assert.InDelta(t, 90, h.bones[bones[2]].LimitRotation[1], 1e-9)
	assert.Zero(t, b1.Radius, "validate mode does not write install defaults")
}

func TestApplyValidated_MissingComponentMutatesNothing(t *testing.T) {
	h, bones := skirt(t)
	h.bones[bones[0]] = &Config{LimitType: LimitAngle, MaxAngleX: 12}

	applied, err := NewApplier(h, nil).ApplyValidated(bones, Parameters{MaxAngle: 45, InnerAngle: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errkind.ErrPrecondition))
	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, []string{"Skirt/Skirt.002", "Skirt/Skirt.003"}, pre.Missing)
	assert.Zero(t, applied.Count)
	assert.Equal(t, Config{LimitType: LimitAngle, MaxAngleX: 12}, *h.bones[bones[0]])
}

func TestInstall_AddsComponentsAndDefaults(t *testing.T) {
	h, bones := skirt(t)
	h.bones[bones[0]] = &Config{LimitType: LimitPolar}

	applied, err := NewApplier(h, nil).Install(bones, Parameters{MaxAngle: 60, InnerAngle: 15})
	require.NoError(t, err)
	assert.Equal(t, 3, applied.Count)
	assert.False(t, applied.Results[0].Added)
	assert.True(t, applied.Results[1].Added)
	assert.True(t, applied.Results[2].Added)

	for _, id := range bones {
		cfg := h.bones[id]
		require.NotNil(t, cfg)
		assert.Equal(t, LimitHinge, cfg.LimitType)
		assert.Equal(t, 45.0, cfg.LimitRotation[0])
		assert.Equal(t, IntegrationSimplified, cfg.IntegrationType)
		assert.Equal(t, 0.0, cfg.Gravity)
		assert.Equal(t, 0.2, cfg.Inert)
		assert.Equal(t, 0.1, cfg.Elasticity)
		assert.Equal(t, 0.2, cfg.Stiffness)
		assert.Equal(t, 0.1, cfg.Damping)
		assert.Equal(t, 0.05, cfg.Radius)
		assert.True(t, cfg.AllowCollision)
	}
}

func TestInstall_PerNodeFailuresContinue(t *testing.T) {
	h, bones := skirt(t)
	h.addErr[bones[1]] = errors.New("prefab is read only")
	h.panicOn = bones[2]

	applied, err := NewApplier(h, nil).Install(bones, Parameters{MaxAngle: 45, InnerAngle: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, applied.Count)
	require.Len(t, applied.Failures, 2)
	assert.Equal(t, "Skirt/Skirt.002", applied.Failures[0].Path)
	assert.ErrorIs(t, applied.Failures[1].Err, errkind.ErrUnexpected)
}

func TestInstall_RequiresInstallCapableHost(t *testing.T) {
	h, bones := skirt(t)
	_, err := NewApplier(readOnlyHost{h}, nil).Install(bones, Parameters{MaxAngle: 45})
	assert.ErrorIs(t, err, errkind.ErrPrecondition)
}

func TestApply_Idempotent(t *testing.T) {
	h, bones := skirt(t)
	params := Parameters{MaxAngle: 45, InnerAngle: 10}
	applier := NewApplier(h, nil)

	first, err := applier.Install(bones, params)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Changes())
	snapshot := map[hierarchy.NodeID]Config{}
	for id, cfg := range h.bones {
		snapshot[id] = *cfg
	}

	second, err := applier.Install(bones, params)
	require.NoError(t, err)
	assert.Empty(t, second.Changes(), "reapplying identical inputs changes nothing")
	for id, cfg := range h.bones {
		assert.Equal(t, snapshot[id], *cfg)
	}

	third, err := applier.ApplyValidated(bones, params)
	require.NoError(t, err)
	assert.Empty(t, third.Changes())
}

func TestParametersValidate(t *testing.T) {
	assert.NoError(t, Parameters{MaxAngle: 45, InnerAngle: 10}.Validate())
	assert.ErrorIs(t, Parameters{MaxAngle: math.NaN()}.Validate(), errkind.ErrMalformed)
	assert.ErrorIs(t, Parameters{InnerAngle: math.Inf(1)}.Validate(), errkind.ErrMalformed)
}

func TestDiff(t *testing.T) {
	before := Config{LimitType: LimitAngle, MaxAngleX: 30}
	after := before
	after.LimitType = LimitHinge
	after.LimitRotation[1] = 112.5

	changes := Diff("A/B", before, after)
	assert.Equal(t, []Change{
		{Path: "A/B", Field: "limitType", Old: "angle", New: "hinge"},
		{Path: "A/B", Field: "limitRotation.y", Old: "0", New: "112.5"},
	}, changes)
}

func TestInstall_CheckpointStopsRemainingNodes(t *testing.T) {
	h, bones := skirt(t)
	applier := NewApplier(h, nil)

	var ticks [][2]int
	applier.SetCheckpoint(func(done, total int) error {
		ticks = append(ticks, [2]int{done, total})
		if done == 1 {
			return errkind.ErrCancelled
		}
		return nil
	})

	applied, err := applier.Install(bones, Parameters{MaxAngle: 45, InnerAngle: 10})
	require.ErrorIs(t, err, errkind.ErrCancelled)
	assert.Equal(t, 1, applied.Count)
	assert.Equal(t, [][2]int{{0, 3}, {1, 3}}, ticks)
	_, touched := h.bones[bones[1]]
	assert.False(t, touched)
}

func TestInstall_CheckpointReachesTotal(t *testing.T) {
	h, bones := skirt(t)
	applier := NewApplier(h, nil)

	last := -1
	applier.SetCheckpoint(func(done, total int) error {
		last = done
		return nil
	})
	_, err := applier.Install(bones, Parameters{MaxAngle: 45})
	require.NoError(t, err)
	assert.Equal(t, len(bones), last)
}
