package conversation

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"go-openclaw-cv-sender/internal/mailer"
	"go-openclaw-cv-sender/internal/models"
	"go-openclaw-cv-sender/internal/session"
)

const DefaultTimeout = 30 * time.Second

// FileRepository is the remote folder holding the CVs
type FileRepository interface {
	ListFiles(ctx context.Context, folderID string, pageSize int) ([]models.RemoteFile, error)
	FetchFile(ctx context.Context, fileID string) (models.FetchedFile, error)
}

type MailSender interface {
	Send(ctx context.Context, msg *models.OutboundMessage) error
}

// Auditor is told about every application that was sent and every failed step
type Auditor interface {
	RecordApplication(ctx context.Context, rec models.ApplicationRecord)
	RecordFailure(ctx context.Context, step string, err error)
}

// Responder delivers replies to the chat the event came from
type Responder interface {
	Reply(ctx context.Context, r Reply) error
}

type RunnerConfig struct {
	FolderID  string
	PageSize  int
	From      string
	Signature Signature
	Timeout   time.Duration
}

// Runner drives the Machine for every session: it serializes events per
// session, executes effects and feeds their outcome back as events.
type Runner struct {
	machine Machine
	store   *session.Store
	files   FileRepository
	mail    MailSender
	auditor Auditor
	cfg     RunnerConfig
	now     func() time.Time
}

func NewRunner(machine Machine, store *session.Store, files FileRepository, mail MailSender, cfg RunnerConfig) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Runner{
		machine: machine,
		store:   store,
		files:   files,
		mail:    mail,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithAuditor attaches an optional Auditor
func (r *Runner) WithAuditor(a Auditor) *Runner {
	r.auditor = a
	return r
}

// Handle processes one inbound event for key. Failures inside a step are
// turned into replies, the returned error only reports reply delivery problems.
func (r *Runner) Handle(ctx context.Context, key models.SessionKey, ev Event, out Responder) (err error) {
	h := r.store.Acquire(key)
	defer h.Release()

	sess := h.Session()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ Panic while handling %s for session %s: %v\n%s", ev.Kind, key, rec, debug.Stack())
			h.Reset()
			err = out.Reply(ctx, GenericFailureReply())
		}
	}()

	queue := []Event{ev}
	var replyErr error
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		prev := sess.State
		var effects []Effect
		sess, effects = r.machine.Transition(sess, current)
		if sess.State != prev {
			log.Printf("🔀 Session %s: %s -> %s (%s)", key, prev, sess.State, current.Kind)
		}

		for _, eff := range effects {
			switch e := eff.(type) {
			case Reply:
				if err := out.Reply(ctx, e); err != nil {
					log.Printf("⚠️ Failed to reply to session %s: %v", key, err)
					replyErr = err
				}
			case ListFiles:
				queue = append(queue, r.listFiles(ctx))
			case Deliver:
				queue = append(queue, r.deliver(ctx, e))
			default:
				panic(fmt.Sprintf("unknown effect %T", eff))
			}
		}
	}

	if sess.State.Terminal() {
		h.Reset()
	} else {
		h.Put(sess)
	}
	return replyErr
}

func (r *Runner) listFiles(ctx context.Context) Event {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	files, err := r.files.ListFiles(ctx, r.cfg.FolderID, r.cfg.PageSize)
	if err != nil {
		log.Printf("❌ Failed to list Drive folder: %v", err)
		r.recordFailure(ctx, "list files", err)
		return FilesListed(nil, err)
	}
	log.Printf("📂 Listed %d files from Drive folder", len(files))
	return FilesListed(files, nil)
}

func (r *Runner) deliver(ctx context.Context, d Deliver) Event {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	file, err := r.files.FetchFile(fetchCtx, d.File.ID)
	cancel()
	if err != nil {
		log.Printf("❌ Failed to fetch %s: %v", d.File.ID, err)
		r.recordFailure(ctx, "fetch "+d.File.Name, err)
		return Delivered(models.ApplicationRecord{}, err)
	}

	text, html, err := Letter(d.Company, d.Vacancy, r.cfg.Signature)
	if err != nil {
		return Delivered(models.ApplicationRecord{}, err)
	}

	msg, err := mailer.Compose(r.cfg.From, d.RecruiterEmail, Subject(d.Company, d.Vacancy), text, html,
		&models.Attachment{Filename: file.Name, MimeType: file.MimeType, Content: file.Content})
	if err != nil {
		return Delivered(models.ApplicationRecord{}, err)
	}

	//a started send is never cancelled by the conversation, only bounded by the timeout
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Timeout)
	defer cancel()
	if err := r.mail.Send(sendCtx, msg); err != nil {
		log.Printf("❌ Failed to send application to %s: %v", d.RecruiterEmail, err)
		r.recordFailure(ctx, "send to "+d.RecruiterEmail, err)
		return Delivered(models.ApplicationRecord{}, err)
	}

	rec := models.ApplicationRecord{
		Company:        d.Company,
		Vacancy:        d.Vacancy,
		RecruiterEmail: d.RecruiterEmail,
		FileName:       file.Name,
		SentAt:         r.now(),
	}
	log.Printf("✅ Sent %s to %s (%s @ %s)", rec.FileName, rec.RecruiterEmail, rec.Vacancy, rec.Company)
	if r.auditor != nil {
		r.auditor.RecordApplication(ctx, rec)
	}
	return Delivered(rec, nil)
}

func (r *Runner) recordFailure(ctx context.Context, step string, err error) {
	if r.auditor != nil {
		r.auditor.RecordFailure(ctx, step, err)
	}
}
