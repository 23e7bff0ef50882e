package regno

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeCounter struct {
	count     int
	err       error
	district  string
	courseID  *int64
	batchYear string
	excludeID int64
}

func (f *fakeCounter) CountPartition(_ context.Context, district string, courseID *int64, batchYear string, excludeID int64) (int, error) {
	f.district = district
	f.courseID = courseID
	f.batchYear = batchYear
	f.excludeID = excludeID
	return f.count, f.err
}

func fixedAllocator(counter PartitionCounter, year int) *Allocator {
	a := NewAllocator(counter)
	a.now = func() time.Time { return time.Date(year, 6, 15, 10, 0, 0, 0, time.UTC) }
	return a
}

func TestDistrictCode(t *testing.T) {
	tests := []struct {
		district string
		want     string
	}{
		{"Matara", "MTR"},
		{"matara", "MTR"},
		{"COLOMBO", "COL"},
		{"Nuwara Eliya", "NUW"},
		{"Unknownville", "UNK"},
		{"ab", "AB"},
	}
	for _, tt := range tests {
		if got := DistrictCode(tt.district); got != tt.want {
			t.Errorf("DistrictCode(%q) = %q, want %q", tt.district, got, tt.want)
		}
	}
}

func TestCourseCode(t *testing.T) {
	tests := []struct {
		name      string
		shortCode string
		want      string
	}{
		{"Advanced Welding Techniques", "WLD-01", "WEL"},
		{"Information Technology Diploma", "IT-02", "ICT"},
		{"Underwater Basket Weaving", "UBW-09", "UBW"},
		{"", "", "GEN"},
	}
	for _, tt := range tests {
		if got := CourseCode(tt.name, tt.shortCode); got != tt.want {
			t.Errorf("CourseCode(%q, %q) = %q, want %q", tt.name, tt.shortCode, got, tt.want)
		}
	}
}

func TestAllocateComposesFiveSegments(t *testing.T) {
	counter := &fakeCounter{count: 7}
	a := fixedAllocator(counter, 2025)

	enrollment := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	course := &CourseInfo{ID: 3, Name: "Basic Welding", Code: "WLD-01"}

	num, err := a.Allocate(context.Background(), "Matara", course, &enrollment)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}

	if got, want := num.String(), "MTR/WEL/24/0008/2025"; got != want {
		t.Fatalf("Allocate() = %q, want %q", got, want)
	}
	if segments := strings.Split(num.String(), "/"); len(segments) != 5 {
		t.Fatalf("expected 5 segments, got %d", len(segments))
	}
	if counter.batchYear != "24" {
		t.Errorf("counted against batch year %q, want 24", counter.batchYear)
	}
	if counter.courseID == nil || *counter.courseID != 3 {
		t.Errorf("counted against course %v, want 3", counter.courseID)
	}
	if counter.excludeID != 0 {
		t.Errorf("Allocate must not exclude any student, got %d", counter.excludeID)
	}
}

func TestAllocateWithoutCourse(t *testing.T) {
	counter := &fakeCounter{count: 0}
	a := fixedAllocator(counter, 2025)

	num, err := a.Allocate(context.Background(), "Galle", nil, nil)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if got, want := num.String(), "GAL/GEN/25/0001/2025"; got != want {
		t.Fatalf("Allocate() = %q, want %q", got, want)
	}
	if counter.courseID != nil {
		t.Errorf("expected nil course filter, got %d", *counter.courseID)
	}
}

func TestSequenceIsCountPlusOne(t *testing.T) {
	// First and second student in an empty partition get 0001 and 0002,
	// differing only in the sequence segment.
	counter := &fakeCounter{count: 0}
	a := fixedAllocator(counter, 2025)
	course := &CourseInfo{ID: 1, Name: "Plumbing NVQ3", Code: "PLU-01"}
	enrollment := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	first, err := a.Allocate(context.Background(), "Matara", course, &enrollment)
	if err != nil {
		t.Fatalf("first Allocate() error: %v", err)
	}
	counter.count = 1
	second, err := a.Allocate(context.Background(), "Matara", course, &enrollment)
	if err != nil {
		t.Fatalf("second Allocate() error: %v", err)
	}

	if first.StudentNumber != "0001" || second.StudentNumber != "0002" {
		t.Fatalf("sequence = %s, %s; want 0001, 0002", first.StudentNumber, second.StudentNumber)
	}
	if first.DistrictCode != second.DistrictCode ||
		first.CourseCode != second.CourseCode ||
		first.BatchYear != second.BatchYear ||
		first.RegistrationYear != second.RegistrationYear {
		t.Fatalf("numbers differ outside the sequence segment: %s vs %s", first, second)
	}
}

func TestPreviewExcludesExistingStudent(t *testing.T) {
	counter := &fakeCounter{count: 4}
	a := fixedAllocator(counter, 2026)

	num, err := a.Preview(context.Background(), "Kandy", nil, nil, 42)
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	if counter.excludeID != 42 {
		t.Errorf("Preview passed excludeID %d, want 42", counter.excludeID)
	}
	if num.StudentNumber != "0005" {
		t.Errorf("Preview sequence = %s, want 0005", num.StudentNumber)
	}
}

func TestBatchYearFallsBackToCurrentYear(t *testing.T) {
	a := fixedAllocator(&fakeCounter{}, 2026)
	if got := a.BatchYear(nil); got != "26" {
		t.Errorf("BatchYear(nil) = %q, want 26", got)
	}
	enrollment := time.Date(2003, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := a.BatchYear(&enrollment); got != "03" {
		t.Errorf("BatchYear(2003) = %q, want 03", got)
	}
}
