package models

import "fmt"

type State string

const (
	StateAwaitingCompany       State = "AWAITING_COMPANY"
	StateAwaitingVacancy       State = "AWAITING_VACANCY"
	StateAwaitingEmail         State = "AWAITING_EMAIL"
	StateAwaitingCVSelection   State = "AWAITING_CV_SELECTION"
	StateAwaitingRestartChoice State = "AWAITING_RESTART_CHOICE"
	StateEnded                 State = "ENDED"
)

// Terminal reports whether no conversation is in progress.
// The zero value counts as terminal so unknown sessions behave like ended ones.
func (s State) Terminal() bool {
	return s == StateEnded || s == ""
}

// SessionKey identifies one user's conversation inside one chat
type SessionKey struct {
	ChatID int64
	UserID int64
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

type Field string

const (
	FieldCompany        Field = "company"
	FieldVacancy        Field = "vacancy"
	FieldRecruiterEmail Field = "recruiter_email"
	FieldSelectedFileID Field = "selected_file_id"
)

type Session struct {
	State          State
	Company        string
	Vacancy        string
	RecruiterEmail string
	SelectedFileID string
	//files offered by the last listing, used to validate button presses
	Listing []RemoteFile
}

func NewSession() Session {
	return Session{State: StateEnded}
}

func (s Session) Get(f Field) (string, bool) {
	var v string
	switch f {
	case FieldCompany:
		v = s.Company
	case FieldVacancy:
		v = s.Vacancy
	case FieldRecruiterEmail:
		v = s.RecruiterEmail
	case FieldSelectedFileID:
		v = s.SelectedFileID
	default:
		return "", false
	}
	return v, v != ""
}

func (s *Session) Set(f Field, value string) {
	switch f {
	case FieldCompany:
		s.Company = value
	case FieldVacancy:
		s.Vacancy = value
	case FieldRecruiterEmail:
		s.RecruiterEmail = value
	case FieldSelectedFileID:
		s.SelectedFileID = value
	}
}

// Clear drops every collected field, keeping the state
func (s *Session) Clear() {
	s.Company = ""
	s.Vacancy = ""
	s.RecruiterEmail = ""
	s.SelectedFileID = ""
	s.Listing = nil
}

// Clone returns a copy that shares no slices with s
func (s Session) Clone() Session {
	c := s
	if s.Listing != nil {
		c.Listing = append([]RemoteFile(nil), s.Listing...)
	}
	return c
}

// FindFile looks a file up in the last listing
func (s Session) FindFile(id string) (RemoteFile, bool) {
	for _, f := range s.Listing {
		if f.ID == id {
			return f, true
		}
	}
	return RemoteFile{}, false
}
