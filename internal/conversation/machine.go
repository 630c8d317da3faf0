package conversation

import (
	"errors"

	"go-openclaw-cv-sender/internal/filter"
	"go-openclaw-cv-sender/internal/models"
)

// Machine holds the static settings the transitions need.
// Transition has no side effects, the Runner carries out the returned effects.
type Machine struct {
	OwnerName string
}

// Transition computes the next session and the effects for one event.
// Events that do not apply to the current state are ignored.
func (m Machine) Transition(s models.Session, ev Event) (models.Session, []Effect) {
	switch ev.Kind {
	case EventStart:
		s.Clear()
		s.State = models.StateAwaitingCompany
		return s, []Effect{greetReply(m.OwnerName)}
	case EventCancel:
		if s.State.Terminal() {
			return s, nil
		}
		return models.NewSession(), []Effect{cancelledReply()}
	}

	switch s.State {
	case models.StateAwaitingCompany:
		return m.onText(s, ev, models.FieldCompany, askCompanyReply(), models.StateAwaitingVacancy, askVacancyReply())
	case models.StateAwaitingVacancy:
		return m.onText(s, ev, models.FieldVacancy, askVacancyReply(), models.StateAwaitingEmail, askEmailReply())
	case models.StateAwaitingEmail:
		return m.awaitingEmail(s, ev)
	case models.StateAwaitingCVSelection:
		return m.awaitingSelection(s, ev)
	case models.StateAwaitingRestartChoice:
		return m.awaitingRestart(s, ev)
	}
	return s, nil
}

func (m Machine) onText(s models.Session, ev Event, field models.Field, again Reply, next models.State, prompt Reply) (models.Session, []Effect) {
	if ev.Kind != EventText {
		return s, nil
	}
	value := filter.CleanInput(ev.Data)
	if value == "" {
		return s, []Effect{blankAnswerReply(again)}
	}
	s.Set(field, value)
	s.State = next
	return s, []Effect{prompt}
}

func (m Machine) awaitingEmail(s models.Session, ev Event) (models.Session, []Effect) {
	switch ev.Kind {
	case EventText:
		if s.RecruiterEmail != "" {
			//listing already requested for this cycle
			return s, nil
		}
		value := filter.CleanInput(ev.Data)
		if value == "" {
			return s, []Effect{blankAnswerReply(askEmailReply())}
		}
		s.RecruiterEmail = value
		return s, []Effect{ListFiles{}}

	case EventFilesListed:
		if s.RecruiterEmail == "" {
			return s, nil
		}
		if ev.Err != nil {
			return models.NewSession(), []Effect{listFailedReply(ev.Err)}
		}
		if len(ev.Files) == 0 {
			return models.NewSession(), []Effect{noFilesReply()}
		}
		s.Listing = append([]models.RemoteFile(nil), ev.Files...)
		s.State = models.StateAwaitingCVSelection
		return s, []Effect{chooseFileReply(s.Listing)}
	}
	return s, nil
}

func (m Machine) awaitingSelection(s models.Session, ev Event) (models.Session, []Effect) {
	switch ev.Kind {
	case EventCallback:
		if s.SelectedFileID != "" {
			//a delivery for this cycle is already running or done
			return s, nil
		}
		file, err := selectFile(s, ev.Data)
		if err != nil {
			return s, []Effect{staleSelectionReply(s.Listing)}
		}
		s.SelectedFileID = file.ID
		return s, []Effect{
			sendingReply(file, s.RecruiterEmail),
			Deliver{File: file, Company: s.Company, Vacancy: s.Vacancy, RecruiterEmail: s.RecruiterEmail},
		}

	case EventDelivered:
		if s.SelectedFileID == "" {
			return s, nil
		}
		if ev.Err != nil {
			return models.NewSession(), []Effect{deliveryFailedReply(ev.Err)}
		}
		s.State = models.StateAwaitingRestartChoice
		return s, []Effect{auditReply(ev.Record), askRestartReply()}
	}
	return s, nil
}

func (m Machine) awaitingRestart(s models.Session, ev Event) (models.Session, []Effect) {
	if ev.Kind != EventCallback {
		return s, nil
	}
	switch ev.Data {
	case TokenRestartYes:
		s.Clear()
		s.State = models.StateAwaitingCompany
		return s, []Effect{restartReply()}
	case TokenRestartNo:
		return models.NewSession(), []Effect{finishedReply()}
	}
	return s, nil
}

func deliveryFailedReply(err error) Reply {
	var fetchErr *models.RemoteFetchError
	if errors.As(err, &fetchErr) {
		return fetchFailedReply(fetchErr)
	}
	return sendFailedReply(err)
}

func selectFile(s models.Session, token string) (models.RemoteFile, error) {
	file, ok := s.FindFile(token)
	if !ok {
		return models.RemoteFile{}, &models.SelectionError{Token: token}
	}
	return file, nil
}
