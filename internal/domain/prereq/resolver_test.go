package prereq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// MTH301: set 1 = {MTH201}; set 2 = {MTH150A, MTH150B}
func mth301Deps() []Dependency {
	return []Dependency{
		{CourseID: "c-201", Code: "MTH201", Kind: KindPrerequisite, LogicSetID: 1},
		{CourseID: "c-150a", Code: "MTH150A", Kind: KindPrerequisite, LogicSetID: 2},
		{CourseID: "c-150b", Code: "MTH150B", Kind: KindPrerequisite, LogicSetID: 2},
	}
}

func TestResolve_AnyLogicSetSatisfies(t *testing.T) {
	r := Resolve(mth301Deps(), map[string]bool{"c-150a": true, "c-150b": true})
	assert.True(t, r.Satisfied)
	assert.Empty(t, r.Missing)

	r = Resolve(mth301Deps(), map[string]bool{"c-201": true})
	assert.True(t, r.Satisfied)
}

func TestResolve_MissingFromStartedSet(t *testing.T) {
	r := Resolve(mth301Deps(), map[string]bool{"c-150a": true})
	assert.False(t, r.Satisfied)
	assert.Equal(t, []string{"MTH150B"}, r.Missing)
	assert.NotContains(t, r.Missing, "MTH201")
}

func TestResolve_NothingDoneReportsLowestSet(t *testing.T) {
	r := Resolve(mth301Deps(), map[string]bool{})
	assert.False(t, r.Satisfied)
	assert.Equal(t, []string{"MTH201"}, r.Missing)
}

func TestResolve_MissingReportsEvaluatedSetOnly(t *testing.T) {
	// set 1 = {MTH150A, MTH150B}, set 2 = {MTH201}
	deps := []Dependency{
		{CourseID: "c-201", Code: "MTH201", Kind: KindPrerequisite, LogicSetID: 2},
		{CourseID: "c-150a", Code: "MTH150A", Kind: KindPrerequisite, LogicSetID: 1},
		{CourseID: "c-150b", Code: "MTH150B", Kind: KindPrerequisite, LogicSetID: 1},
	}
	r := Resolve(deps, map[string]bool{"c-150a": true})
	assert.False(t, r.Satisfied)
	assert.Equal(t, []string{"MTH150B"}, r.Missing)
	assert.NotContains(t, r.Missing, "MTH201")
}

func TestResolve_NoDependencies(t *testing.T) {
	r := Resolve(nil, nil)
	assert.True(t, r.Satisfied)
	assert.NotNil(t, r.Missing)
	assert.Empty(t, r.Missing)
}

func TestResolve_IgnoresStatusAndCorequisites(t *testing.T) {
	deps := []Dependency{
		{Kind: KindStatus, LogicSetID: 1},
		{CourseID: "c-lab", Code: "PHY101L", Kind: KindCorequisite, LogicSetID: 2},
	}
	r := Resolve(deps, map[string]bool{})
	assert.True(t, r.Satisfied)
}

func TestResolve_FallsBackToCourseIDWithoutCode(t *testing.T) {
	deps := []Dependency{{CourseID: "c-x", Kind: KindPrerequisite, LogicSetID: 1}}
	r := Resolve(deps, nil)
	assert.Equal(t, []string{"c-x"}, r.Missing)
}
