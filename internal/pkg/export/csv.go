// Package export renders resource collections as CSV and parses CSV
// uploads back into request payloads. Imports never touch the database
// directly; parsed rows go through the same creation path as API calls.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/helpers"
)

var studentHeader = []string{
	"registration_no", "full_name", "name_with_initials", "gender", "date_of_birth",
	"nic_number", "address", "district", "village", "mobile_no", "email",
	"enrollment_date", "enrollment_status", "training_received",
}

// WriteStudentsCSV streams students as CSV.
func WriteStudentsCSV(w io.Writer, students []*models.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(studentHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, s := range students {
		dob, enrollment := "", ""
		if s.DateOfBirth != nil {
			dob = helpers.FormatDate(*s.DateOfBirth)
		}
		if s.EnrollmentDate != nil {
			enrollment = helpers.FormatDate(*s.EnrollmentDate)
		}
		record := []string{
			s.RegistrationNo,
			s.FullName,
			s.NameWithInitials,
			s.Gender,
			dob,
			s.NICNumber,
			s.AddressLine,
			s.District,
			s.Village,
			s.MobileNo,
			s.Email,
			enrollment,
			string(s.EnrollmentStatus),
			strconv.FormatBool(s.TrainingReceived),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var attendanceHeader = []string{
	"date", "student_id", "course_id", "status", "check_in_time", "remarks",
}

// WriteAttendanceCSV streams attendance rows as CSV.
func WriteAttendanceCSV(w io.Writer, records []*models.Attendance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendanceHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, a := range records {
		checkIn := ""
		if a.CheckInTime != nil {
			checkIn = a.CheckInTime.Format("15:04")
		}
		record := []string{
			helpers.FormatDate(a.Date),
			strconv.FormatInt(a.StudentID, 10),
			strconv.FormatInt(a.CourseID, 10),
			string(a.Status),
			checkIn,
			a.Remarks,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseStudentsCSV reads an uploaded student CSV into creation payloads.
// The header row must match the export format minus registration_no,
// which is always derived, never imported. Rows that fail to parse are
// reported by line number without stopping the rest.
func ParseStudentsCSV(r io.Reader) ([]*dto.CreateStudentRequest, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"full_name", "nic_number", "district"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		if i, ok := index[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var requests []*dto.CreateStudentRequest
	var problems []string
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		req := &dto.CreateStudentRequest{
			FullName:         field(record, "full_name"),
			NameWithInitials: field(record, "name_with_initials"),
			Gender:           field(record, "gender"),
			DateOfBirth:      field(record, "date_of_birth"),
			NICNumber:        field(record, "nic_number"),
			AddressLine:      field(record, "address"),
			District:         field(record, "district"),
			Village:          field(record, "village"),
			MobileNo:         field(record, "mobile_no"),
			Email:            field(record, "email"),
			EnrollmentDate:   field(record, "enrollment_date"),
			EnrollmentStatus: field(record, "enrollment_status"),
		}
		if trained := field(record, "training_received"); trained != "" {
			req.TrainingReceived, _ = strconv.ParseBool(trained)
		}
		if req.FullName == "" || req.NICNumber == "" {
			problems = append(problems, fmt.Sprintf("line %d: full_name and nic_number are required", line))
			continue
		}
		requests = append(requests, req)
	}

	return requests, problems, nil
}
