package models

// CourseCategory is one of the five degree-requirement buckets.
type CourseCategory string

// Degree-requirement categories.
const (
	CategoryInstituteCore      CourseCategory = "IC"
	CategoryDisciplineCore     CourseCategory = "DC"
	CategoryDisciplineElective CourseCategory = "DE"
	CategoryHumanities         CourseCategory = "HSS"
	CategoryFreeElective       CourseCategory = "FE"
)

// CourseCategories lists every known category in display order.
var CourseCategories = []CourseCategory{
	CategoryInstituteCore,
	CategoryDisciplineCore,
	CategoryDisciplineElective,
	CategoryHumanities,
	CategoryFreeElective,
}

// CategoryNames maps categories to their display names.
var CategoryNames = map[CourseCategory]string{
	CategoryInstituteCore:      "Institute Core",
	CategoryDisciplineCore:     "Discipline Core",
	CategoryDisciplineElective: "Discipline Elective",
	CategoryHumanities:         "Humanities & Social Sciences",
	CategoryFreeElective:       "Free Elective",
}

// ParseCourseCategory validates a raw category tag. Unknown tags are returned
// as-is with ok=false; callers tolerate them but never count them.
func ParseCourseCategory(raw string) (CourseCategory, bool) {
	c := CourseCategory(raw)
	_, ok := CategoryNames[c]
	return c, ok
}

// UnslottedLabel groups courses the registrar published without a time slot.
const UnslottedLabel = "Unslotted"

// Course is an eligible course as published by the registrar. Read-only on
// the gateway; never mutated after decode.
type Course struct {
	CourseID  string         `json:"course_id"`
	Code      string         `json:"course_code"`
	Name      string         `json:"course_name"`
	School    string         `json:"school"`
	Slot      string         `json:"slot"`
	Credits   int            `json:"credits"`
	Lecture   int            `json:"lecture"`
	Tutorial  int            `json:"tutorial"`
	Practical int            `json:"practical"`
	Category  CourseCategory `json:"type"`
	// Registered is true when the registrar already holds a confirmed
	// pre-registration for this course. The raw upstream flag has the
	// opposite polarity; the upstream client normalises it on decode.
	Registered bool `json:"registered"`
}

// DisplayName renders the "CODE - Name" form used in user-facing messages.
func (c Course) DisplayName() string {
	if c.Code == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Code
	}
	return c.Code + " - " + c.Name
}

// SlotGroups maps a slot label to the ordered courses sharing it.
type SlotGroups map[string][]Course

// GroupCoursesBySlot partitions courses by slot preserving input order within
// each group. Courses with an empty slot land under UnslottedLabel.
func GroupCoursesBySlot(courses []Course) SlotGroups {
	groups := make(SlotGroups)
	for _, course := range courses {
		slot := course.Slot
		if slot == "" {
			slot = UnslottedLabel
		}
		groups[slot] = append(groups[slot], course)
	}
	return groups
}

// BuildCourseIndex builds the course_id lookup used by the slot constraint
// and the selection stats. Built once per fetch, shared by every consumer.
func BuildCourseIndex(courses []Course) map[string]*Course {
	index := make(map[string]*Course, len(courses))
	for i := range courses {
		index[courses[i].CourseID] = &courses[i]
	}
	return index
}
