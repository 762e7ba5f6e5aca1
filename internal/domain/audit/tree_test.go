package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gc(id string, credits int, mandatory bool) GroupCourse {
	return GroupCourse{Course: Course{ID: id, Code: id, Title: id, Credits: credits}, Mandatory: mandatory}
}

func lookup(m map[string]Status) func(string) Status {
	return func(id string) Status {
		if st, ok := m[id]; ok {
			return st
		}
		return StatusMissing
	}
}

func TestPercent_HalfCreditForInProgress(t *testing.T) {
	assert.Equal(t, 38, Percent(3, 3, 12))
	assert.Equal(t, 0, Percent(0, 0, 12))
	assert.Equal(t, 0, Percent(3, 0, 0))
}

func TestPercent_NeverExceeds100(t *testing.T) {
	assert.Equal(t, 100, Percent(30, 0, 12))
	assert.Equal(t, 100, Percent(12, 12, 12))
}

func TestBuildTree_BucketScenario(t *testing.T) {
	groups := []Group{{
		ID: "g1", Name: "核心", CreditsRequired: 12,
		Courses: []GroupCourse{gc("A", 3, true), gc("B", 3, true), gc("C", 3, false)},
	}}
	roots := BuildTree(groups, lookup(map[string]Status{"A": StatusDone, "B": StatusInProgress}), nil)
	require.Len(t, roots, 1)
	p := roots[0].Progress
	assert.Equal(t, 3, p.CreditsDone)
	assert.Equal(t, 3, p.CreditsInProgress)
	assert.Equal(t, 12, p.CreditsRequired)
	assert.Equal(t, 38, p.Percent)
	assert.False(t, p.Satisfied)
}

func TestBuildTree_RequiredFallsBackToCourseCredits(t *testing.T) {
	groups := []Group{{ID: "g1", Name: "选修", Courses: []GroupCourse{gc("A", 4, false), gc("B", 2, false)}}}
	roots := BuildTree(groups, lookup(map[string]Status{"A": StatusDone}), nil)
	require.Len(t, roots, 1)
	assert.Equal(t, 6, roots[0].Progress.CreditsRequired)
	assert.Equal(t, 67, roots[0].Progress.Percent)
}

func TestBuildTree_ParentRollsUpUnionWithoutDoubleCounting(t *testing.T) {
	groups := []Group{
		{ID: "root", Name: "通识", CreditsRequired: 9, Courses: []GroupCourse{gc("X", 3, false)}},
		{ID: "child", Name: "人文", ParentID: "root", CreditsRequired: 6, Courses: []GroupCourse{gc("X", 3, true), gc("Y", 3, false)}},
	}
	roots := BuildTree(groups, lookup(map[string]Status{"X": StatusDone, "Y": StatusDone}), nil)
	require.Len(t, roots, 1)
	root := roots[0]
	require.Len(t, root.Children, 1)

	assert.Equal(t, 6, root.Progress.CreditsDone, "X 在父子组中只计一次")
	assert.Equal(t, 67, root.Progress.Percent)
	assert.Equal(t, 6, root.Children[0].Progress.CreditsDone)
	assert.True(t, root.Children[0].Progress.Satisfied)
}

func TestBuildTree_MultiLevel(t *testing.T) {
	groups := []Group{
		{ID: "l2", Name: "L2", ParentID: "l1", Courses: []GroupCourse{gc("C", 3, false)}},
		{ID: "l1", Name: "L1", ParentID: "l0", Courses: []GroupCourse{gc("B", 3, false)}},
		{ID: "l0", Name: "L0", CreditsRequired: 9, Courses: []GroupCourse{gc("A", 3, false)}},
	}
	roots := BuildTree(groups, lookup(map[string]Status{"A": StatusDone, "B": StatusDone, "C": StatusInProgress}), nil)
	require.Len(t, roots, 1)
	assert.Equal(t, "l0", roots[0].ID)
	assert.Equal(t, 6, roots[0].Progress.CreditsDone)
	assert.Equal(t, 3, roots[0].Progress.CreditsInProgress)
	assert.Equal(t, 83, roots[0].Progress.Percent)
}

func TestBuildTree_CycleAndOrphanTreatedAsRoots(t *testing.T) {
	groups := []Group{
		{ID: "a", Name: "A", ParentID: "b", Courses: []GroupCourse{gc("X", 3, false)}},
		{ID: "b", Name: "B", ParentID: "a"},
		{ID: "c", Name: "C", ParentID: "missing"},
	}
	roots := BuildTree(groups, lookup(nil), nil)
	assert.Len(t, roots, 3)
}

func TestBuildTree_PlannedSemesterIsInformational(t *testing.T) {
	groups := []Group{{ID: "g", Name: "G", CreditsRequired: 3, Courses: []GroupCourse{gc("A", 3, true)}}}
	roots := BuildTree(groups, lookup(nil), map[string]int{"A": 2})
	require.Len(t, roots, 1)
	assert.Equal(t, 2, roots[0].Courses[0].PlannedSemester)
	assert.Equal(t, 0, roots[0].Progress.Percent)
}

func TestBucket_Outstanding(t *testing.T) {
	groups := []Group{
		{ID: "root", Name: "数学", CreditsRequired: 10, MinCourses: 3, Courses: []GroupCourse{gc("A", 3, true)}},
		{ID: "child", Name: "进阶", ParentID: "root", Courses: []GroupCourse{gc("B", 4, false), gc("C", 3, false), gc("A", 3, false)}},
	}
	roots := BuildTree(groups, lookup(map[string]Status{"A": StatusDone}), map[string]int{"B": 2})
	require.Len(t, roots, 1)

	credits, courses := roots[0].Outstanding()
	assert.Equal(t, 3, credits, "A 已修、B 已排入计划")
	assert.Equal(t, 1, courses)

	roots = BuildTree(groups, lookup(map[string]Status{"A": StatusDone, "B": StatusDone, "C": StatusInProgress}), nil)
	credits, courses = roots[0].Outstanding()
	assert.Zero(t, credits)
	assert.Zero(t, courses)
}
