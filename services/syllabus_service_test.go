package services

import (
	"testing"
	"time"

	"github.com/nstclasses/tutor-api/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAcademicYearStart(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{date(2024, time.April, 1), date(2024, time.April, 1)},
		{date(2024, time.September, 15), date(2024, time.April, 1)},
		{date(2025, time.February, 10), date(2024, time.April, 1)},
		{date(2025, time.March, 31), date(2024, time.April, 1)},
		{date(2025, time.April, 2), date(2025, time.April, 1)},
	}
	for _, c := range cases {
		if got := AcademicYearStart(c.now); !got.Equal(c.want) {
			t.Errorf("AcademicYearStart(%s) = %s, want %s", c.now, got, c.want)
		}
	}
}

func TestCurrentMonth(t *testing.T) {
	start := date(2024, time.April, 1)

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same day", start, 1},
		{"two weeks in", date(2024, time.April, 15), 1},
		{"day 30", start.AddDate(0, 0, 30), 1},
		{"day 31", start.AddDate(0, 0, 31), 2},
		{"four months in", date(2024, time.August, 1), 5},
		{"before start", date(2024, time.March, 1), 1},
		{"far future clamps", date(2026, time.April, 1), 12},
	}
	for _, c := range cases {
		if got := CurrentMonth(start, c.now); got != c.want {
			t.Errorf("%s: CurrentMonth = %d, want %d", c.name, got, c.want)
		}
	}
}

func class10Student(subjectID string, chapterIndex int) *model.User {
	return &model.User{
		Role:       model.RoleStudent,
		Board:      "CBSE",
		ClassLevel: "10",
		Progress: model.ProgressMap{
			subjectID: {CurrentChapterIndex: chapterIndex},
		},
	}
}

func TestTopicStatusFor(t *testing.T) {
	// CBSE-10-Mathematics positions: Quadratic Equations is 3, Arithmetic
	// Progressions is 4, Triangles is 5
	user := class10Student("math", 5)

	cases := []struct {
		name    string
		subject string
		topic   string
		want    model.TopicStatus
	}{
		{"chapter behind index", "Maths", "Quadratic Equations", model.TopicDone},
		{"chapter just behind index", "Maths", "Arithmetic Progressions", model.TopicDone},
		{"chapter at index", "Maths", "Triangles", model.TopicPending},
		{"chapter ahead of index", "Maths", "Statistics", model.TopicPending},
		{"parenthesized suffix stripped", "Maths", "Quadratic Equations (word problems)", model.TopicDone},
		{"partial label matches", "Maths", "Trigonometry", model.TopicPending},
		{"subject label with extra words", "Advanced Maths", "Real Numbers", model.TopicDone},
		{"broader label than any chapter", "Maths", "Polynomials and Factorisation", model.TopicPending},
		{"unknown topic", "Maths", "Vedic Mathematics", model.TopicPending},
		{"unknown subject", "Sanskrit", "Grammar", model.TopicPending},
	}

	for _, c := range cases {
		if got := TopicStatusFor(user, c.subject, c.topic); got != c.want {
			t.Errorf("%s: status = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestTopicStatusForDefaultsBoard(t *testing.T) {
	user := class10Student("math", 5)
	user.Board = ""

	if got := TopicStatusFor(user, "Maths", "Quadratic Equations"); got != model.TopicDone {
		t.Errorf("status with empty board = %s, want DONE", got)
	}
}

func TestTopicStatusForMissingProgress(t *testing.T) {
	user := &model.User{Role: model.RoleStudent, Board: "CBSE", ClassLevel: "10", Progress: model.ProgressMap{}}

	if got := TopicStatusFor(user, "Maths", "Real Numbers"); got != model.TopicPending {
		t.Errorf("status without progress record = %s, want PENDING", got)
	}
}

func TestTopicStatusForUnknownCourse(t *testing.T) {
	user := class10Student("math", 5)
	user.ClassLevel = "12" // no static chapter list bundled

	if got := TopicStatusFor(user, "Maths", "Real Numbers"); got != model.TopicPending {
		t.Errorf("status without static list = %s, want PENDING", got)
	}
}
