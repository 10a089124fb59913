package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/services/curriculum"
)

// SyllabusService serves the twelve-month study plan, annotated per student
// with month locks and topic completion
type SyllabusService struct {
	db *gorm.DB
}

// NewSyllabusService creates a new syllabus service
func NewSyllabusService(db *gorm.DB) *SyllabusService {
	return &SyllabusService{db: db}
}

// AcademicYearStart returns April 1 of the academic year containing now.
// January through March belong to the year that started the previous April.
func AcademicYearStart(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	return time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// CurrentMonth maps a start date and the current time to a plan month 1-12.
// Elapsed days are counted with a ceiling and divided into 30-day blocks,
// also with a ceiling, so day 1 through day 30 are month 1 and day 31 starts
// month 2. Dates at or before the start are month 1.
func CurrentMonth(start, now time.Time) int {
	if !now.After(start) {
		return 1
	}
	days := math.Ceil(now.Sub(start).Hours() / 24)
	m := int(math.Ceil(days / 30))
	if m < 1 {
		m = 1
	}
	if m > 12 {
		m = 12
	}
	return m
}

// startDateFor picks the reference date for a student's plan progression:
// the enrollment date when recorded, otherwise the current academic year
// start.
func startDateFor(user *model.User, now time.Time) time.Time {
	if user.EnrollmentDate != nil {
		return *user.EnrollmentDate
	}
	return AcademicYearStart(now)
}

// TopicStatusFor decides whether a student has completed a plan topic.
//
// Plan topics are free-form labels, so completion is matched heuristically
// against the static chapter list for the student's board and class: the
// subject label resolves through the id table with substring fallback, the
// topic is stripped of any parenthesized suffix, and the first static entry
// containing the stripped label decides. A topic counts as done when the
// student's current chapter index is strictly beyond that entry's position.
// Any lookup failure along the way reports pending.
func TopicStatusFor(user *model.User, subjectName, topic string) model.TopicStatus {
	subjectID := curriculum.SubjectIDFor(subjectName)

	progress, ok := user.Progress[subjectID]
	if !ok {
		return model.TopicPending
	}

	board := user.Board
	if board == "" {
		board = "CBSE"
	}
	key := board + "-" + user.ClassLevel + "-" + curriculum.StaticListSubject(subjectID, subjectName)
	chapters, ok := curriculum.StaticSyllabus[key]
	if !ok {
		return model.TopicPending
	}

	label := topic
	if i := strings.Index(label, "("); i > 0 {
		label = label[:i]
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return model.TopicPending
	}

	for i, chapter := range chapters {
		if strings.Contains(strings.ToLower(chapter), label) {
			if progress.CurrentChapterIndex > i {
				return model.TopicDone
			}
			return model.TopicPending
		}
	}

	return model.TopicPending
}

// TopicView is one plan topic annotated with the student's completion
type TopicView struct {
	Label  string            `json:"label"`
	Status model.TopicStatus `json:"status"`
}

// SubjectView is one subject's topics inside a month view
type SubjectView struct {
	Subject string      `json:"subject"`
	Topics  []TopicView `json:"topics"`
}

// MonthView is one month of the plan annotated for one student
type MonthView struct {
	Month       int           `json:"month"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	IsCurrent   bool          `json:"isCurrent"`
	IsLocked    bool          `json:"isLocked"`
	Subjects    []SubjectView `json:"subjects"`
}

// PlanFor returns the effective plan for a class level: the admin override
// when one exists, the bundled default otherwise
func (s *SyllabusService) PlanFor(ctx context.Context, classLevel string) ([]model.MonthlySyllabus, error) {
	var override model.SyllabusOverride
	err := s.db.WithContext(ctx).Where("class_level = ?", classLevel).First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return curriculum.PlanFor(classLevel), nil
		}
		return nil, err
	}

	var plan []model.MonthlySyllabus
	if err := json.Unmarshal(override.Plan, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// SaveOverride stores an administrator's replacement plan for a class level,
// replacing any previous override. The bundled default is never modified.
func (s *SyllabusService) SaveOverride(ctx context.Context, classLevel string, plan []model.MonthlySyllabus, editedByID uint) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return err
	}

	override := model.SyllabusOverride{
		ClassLevel: classLevel,
		Plan:       raw,
		EditedByID: editedByID,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_level"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan", "edited_by_id", "updated_at"}),
	}).Create(&override).Error
}

// DeleteOverride removes a class level's override, restoring the bundled plan
func (s *SyllabusService) DeleteOverride(ctx context.Context, classLevel string) error {
	return s.db.WithContext(ctx).Where("class_level = ?", classLevel).Delete(&model.SyllabusOverride{}).Error
}

// BuildView annotates the effective plan for one viewer. Months beyond the
// viewer's current month are locked; month 1 is never locked. Admins see all
// months unlocked with every topic pending, since completion is a property
// of a student's progress record.
func (s *SyllabusService) BuildView(ctx context.Context, user *model.User, now time.Time) ([]MonthView, error) {
	plan, err := s.PlanFor(ctx, user.ClassLevel)
	if err != nil {
		return nil, err
	}

	current := CurrentMonth(startDateFor(user, now), now)

	months := make([]MonthView, 0, len(plan))
	for _, m := range plan {
		view := MonthView{
			Month:       m.Month,
			Title:       m.Title,
			Description: m.Description,
			IsCurrent:   m.Month == current,
			IsLocked:    !user.IsAdmin() && m.Month > current,
		}

		for _, subj := range m.Subjects {
			sv := SubjectView{Subject: subj.Subject, Topics: make([]TopicView, 0, len(subj.Topics))}
			for _, topic := range subj.Topics {
				status := model.TopicPending
				if !user.IsAdmin() {
					status = TopicStatusFor(user, subj.Subject, topic)
				}
				sv.Topics = append(sv.Topics, TopicView{Label: topic, Status: status})
			}
			view.Subjects = append(view.Subjects, sv)
		}

		months = append(months, view)
	}

	return months, nil
}
