package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCoursesBySlot(t *testing.T) {
	courses := []Course{
		{CourseID: "c1", Slot: "A"},
		{CourseID: "c2", Slot: "B"},
		{CourseID: "c3", Slot: "A"},
		{CourseID: "c4", Slot: ""},
	}

	groups := GroupCoursesBySlot(courses)
	require.Len(t, groups, 3)

	assert.Equal(t, "c1", groups["A"][0].CourseID)
	assert.Equal(t, "c3", groups["A"][1].CourseID, "input order preserved within a group")
	assert.Len(t, groups["B"], 1)
	assert.Equal(t, "c4", groups[UnslottedLabel][0].CourseID)

	// Every course lands in exactly one group.
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	assert.Equal(t, len(courses), total)
}

func TestGroupCoursesBySlotEmpty(t *testing.T) {
	assert.Empty(t, GroupCoursesBySlot(nil))
}

func TestBuildCourseIndex(t *testing.T) {
	courses := []Course{{CourseID: "c1", Credits: 4}, {CourseID: "c2", Credits: 3}}

	index := BuildCourseIndex(courses)
	require.Len(t, index, 2)
	assert.Equal(t, 4, index["c1"].Credits)

	_, ok := index["ghost"]
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "CS101 - Programming", Course{Code: "CS101", Name: "Programming"}.DisplayName())
	assert.Equal(t, "Programming", Course{Name: "Programming"}.DisplayName())
	assert.Equal(t, "CS101", Course{Code: "CS101"}.DisplayName())
}

func TestParseCourseCategory(t *testing.T) {
	category, ok := ParseCourseCategory("IC")
	assert.True(t, ok)
	assert.Equal(t, CategoryInstituteCore, category)

	category, ok = ParseCourseCategory("ZZ")
	assert.False(t, ok)
	assert.Equal(t, CourseCategory("ZZ"), category, "unknown tags are preserved")
}

func TestParseEnrollmentMode(t *testing.T) {
	for _, raw := range []string{"regular", "pass_fail", "equivalent", "audit", "backlog"} {
		_, ok := ParseEnrollmentMode(raw)
		assert.True(t, ok, raw)
	}

	_, ok := ParseEnrollmentMode("honors")
	assert.False(t, ok)
}
