package models

import "time"

// Mark statuses derived from the scoring rules. Status is never stored on its
// own authority; it is recomputed from marks and the absent flag.
const (
	StatusPass   = "PASS"
	StatusFail   = "FAIL"
	StatusAbsent = "ABSENT"
)

// StudentMark is the canonical per-student row of a mark-entry session.
type StudentMark struct {
	StudentID int    `json:"student_id"`
	RollNo    string `json:"roll_no"`
	Name      string `json:"name"`
	Marks     int    `json:"marks"`
	IsAbsent  bool   `json:"is_absent"`
	Status    string `json:"status"`
	Remark    string `json:"remark"`
}

// DeriveStatus applies the scoring rule: absent wins, zero marks count as
// absent, anything at or above the passing threshold passes.
func DeriveStatus(marks int, isAbsent bool, minPass int) string {
	switch {
	case isAbsent:
		return StatusAbsent
	case marks == 0:
		return StatusAbsent
	case marks >= minPass:
		return StatusPass
	default:
		return StatusFail
	}
}

// ExamContext carries the scoring parameters and display fields resolved from
// a timetable entry.
type ExamContext struct {
	TimetableID int    `json:"timetable_id"`
	MaxMarks    int    `json:"max_marks"`
	MinPass     int    `json:"min_pass"`
	ExamDate    string `json:"exam_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SubjectName string `json:"subject_name"`
	RoomNo      string `json:"room_no"`
}

// DefaultMaxMarks and DefaultMinPass apply when the timetable entry omits them.
const (
	DefaultMaxMarks = 100
	DefaultMinPass  = 33
)

// MarkStats summarises a mark-entry record set. Average is rendered with one
// decimal place as a percentage of the maximum attainable score over present
// students, "0.0" when nobody is present.
type MarkStats struct {
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Average string `json:"average"`
}

// MarkListStats summarises the read-only marks list with a pass/fail split.
type MarkListStats struct {
	Total   int    `json:"total"`
	Pass    int    `json:"pass"`
	Fail    int    `json:"fail"`
	Absent  int    `json:"absent"`
	Average string `json:"average"`
}

// MarkSession is the mutable record set owned by one mark-entry screen
// session. It lives in the session store until saved or discarded; Version
// increments on every mutation so a stale client can never overwrite a newer
// state.
type MarkSession struct {
	ID        string        `json:"id"`
	ClassID   int           `json:"class_id"`
	SectionID int           `json:"section_id"`
	SubjectID int           `json:"subject_id"`
	Context   ExamContext   `json:"context"`
	Records   []StudentMark `json:"records"`
	Stats     MarkStats     `json:"stats"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
}

// FindRecord returns a pointer to the record for the given student, or nil.
func (s *MarkSession) FindRecord(studentID int) *StudentMark {
	for i := range s.Records {
		if s.Records[i].StudentID == studentID {
			return &s.Records[i]
		}
	}
	return nil
}

// MarkListEntry is one normalized row of the read-only marks list. Unlike the
// entry session, each row carries its own scoring parameters because records
// can span exams.
type MarkListEntry struct {
	MarkID    int    `json:"mark_id"`
	StudentID int    `json:"student_id"`
	RollNo    string `json:"roll_no"`
	Name      string `json:"name"`
	Marks     int    `json:"marks"`
	MaxMarks  int    `json:"max_marks"`
	MinPass   int    `json:"min_pass"`
	IsAbsent  bool   `json:"is_absent"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
}
