// Package regno derives the structured registration identifiers assigned
// to students at creation time. An identifier is composed of five segments
//
//	<district_code>/<course_code>/<batch_year>/<student_number>/<registration_year>
//
// where student_number is sequential within its (district, course,
// batch_year) partition. Numbers are allocated once and never regenerated
// on later updates to the same student.
package regno

import (
	"context"
	"fmt"
	"time"
)

// PartitionCounter counts students already stored in an allocation
// partition. excludeID skips the student being re-examined so previews of
// an existing row do not count the row itself; pass 0 for new students.
type PartitionCounter interface {
	CountPartition(ctx context.Context, district string, courseID *int64, batchYear string, excludeID int64) (int, error)
}

// CourseInfo carries the course attributes the allocator reads. A nil
// CourseInfo means the student has no assigned course.
type CourseInfo struct {
	ID   int64
	Name string
	Code string
}

// Number is a fully resolved registration identifier.
type Number struct {
	DistrictCode     string
	CourseCode       string
	BatchYear        string
	StudentNumber    string
	RegistrationYear string
}

// String renders the slash-joined form stored on the student row.
func (n Number) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		n.DistrictCode, n.CourseCode, n.BatchYear, n.StudentNumber, n.RegistrationYear)
}

// Allocator composes registration numbers. now is injectable for tests and
// defaults to time.Now.
type Allocator struct {
	counter PartitionCounter
	now     func() time.Time
}

func NewAllocator(counter PartitionCounter) *Allocator {
	return &Allocator{counter: counter, now: time.Now}
}

// BatchYear derives the 2-digit partition year from the enrollment date,
// falling back to the current year when no date is set.
func (a *Allocator) BatchYear(enrollment *time.Time) string {
	year := a.now().Year()
	if enrollment != nil {
		year = enrollment.Year()
	}
	return fmt.Sprintf("%02d", year%100)
}

// Allocate computes the next registration number for a student being
// created in the given district with the given course and enrollment date.
// The sequence segment is count+1 over the existing partition, so two
// back-to-back allocations in an empty partition yield 0001 and 0002.
func (a *Allocator) Allocate(ctx context.Context, district string, course *CourseInfo, enrollment *time.Time) (Number, error) {
	return a.build(ctx, district, course, enrollment, 0)
}

// Preview computes the number a student would receive without reserving
// anything. excludeID omits an existing student from the partition count
// when previewing against their own row.
func (a *Allocator) Preview(ctx context.Context, district string, course *CourseInfo, enrollment *time.Time, excludeID int64) (Number, error) {
	return a.build(ctx, district, course, enrollment, excludeID)
}

func (a *Allocator) build(ctx context.Context, district string, course *CourseInfo, enrollment *time.Time, excludeID int64) (Number, error) {
	batchYear := a.BatchYear(enrollment)

	var courseID *int64
	courseName, shortCode := "", ""
	if course != nil {
		courseID = &course.ID
		courseName = course.Name
		shortCode = course.Code
	}

	count, err := a.counter.CountPartition(ctx, district, courseID, batchYear, excludeID)
	if err != nil {
		return Number{}, fmt.Errorf("counting registration partition: %w", err)
	}

	return Number{
		DistrictCode:     DistrictCode(district),
		CourseCode:       CourseCode(courseName, shortCode),
		BatchYear:        batchYear,
		StudentNumber:    fmt.Sprintf("%04d", count+1),
		RegistrationYear: fmt.Sprintf("%04d", a.now().Year()),
	}, nil
}
