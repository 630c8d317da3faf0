package conversation

import "go-openclaw-cv-sender/internal/models"

type EventKind int

const (
	EventStart EventKind = iota
	EventCancel
	EventText
	EventCallback
	//results fed back by the runner after executing an effect
	EventFilesListed
	EventDelivered
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCancel:
		return "cancel"
	case EventText:
		return "text"
	case EventCallback:
		return "callback"
	case EventFilesListed:
		return "files_listed"
	case EventDelivered:
		return "delivered"
	}
	return "unknown"
}

type Event struct {
	Kind EventKind
	//message text or callback token
	Data   string
	Files  []models.RemoteFile
	Record models.ApplicationRecord
	Err    error
}

func Start() Event                { return Event{Kind: EventStart} }
func Cancel() Event               { return Event{Kind: EventCancel} }
func Text(s string) Event         { return Event{Kind: EventText, Data: s} }
func Callback(token string) Event { return Event{Kind: EventCallback, Data: token} }

func FilesListed(files []models.RemoteFile, err error) Event {
	return Event{Kind: EventFilesListed, Files: files, Err: err}
}

func Delivered(rec models.ApplicationRecord, err error) Event {
	return Event{Kind: EventDelivered, Record: rec, Err: err}
}

// Effect is an instruction produced by Transition and carried out by the Runner
type Effect interface {
	isEffect()
}

type Button struct {
	Text  string
	Token string
}

// Reply is an outbound chat message. Text is Telegram HTML.
type Reply struct {
	Text    string
	Buttons [][]Button
	//replace the message whose button triggered the event instead of sending a new one
	EditSource bool
}

// ListFiles asks for the configured Drive folder listing
type ListFiles struct{}

// Deliver asks for the file to be fetched and mailed to the recruiter
type Deliver struct {
	File           models.RemoteFile
	Company        string
	Vacancy        string
	RecruiterEmail string
}

func (Reply) isEffect()     {}
func (ListFiles) isEffect() {}
func (Deliver) isEffect()   {}
