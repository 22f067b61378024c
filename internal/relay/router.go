package relay

import (
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/wire"
)

// FileSavedAudience is who receives file_saved. The saving client is included.
const FileSavedAudience = AudienceAll

// SaveEvent describes an accepted file_save.
type SaveEvent struct {
	Path     string
	SenderID ClientID
	Version  int64
	Size     int
	SavedAt  time.Time
}

// SaveRecorder observes accepted saves. RecordSave is called from the dispatch
// goroutine and must not block.
type SaveRecorder interface {
	RecordSave(evt SaveEvent)
}

// Router turns decoded client requests into document store updates and
// delivery instructions. It never sends anything itself.
type Router struct {
	docs     *DocumentStore
	now      func() time.Time
	recorder SaveRecorder
}

// NewRouter creates a router over docs. now defaults to time.Now and recorder
// may be nil.
func NewRouter(docs *DocumentStore, now func() time.Time, recorder SaveRecorder) *Router {
	if now == nil {
		now = time.Now
	}
	return &Router{docs: docs, now: now, recorder: recorder}
}

// Dispatch applies one request from senderID. The store is addressed by the
// request's normalized key; outgoing envelopes carry the path as sent.
func (r *Router) Dispatch(senderID ClientID, in wire.Inbound) Result {
	switch msg := in.(type) {
	case wire.CodeChange:
		return r.codeChange(senderID, msg)
	case wire.CursorMove:
		return r.cursorMove(senderID, msg)
	case wire.FileOpen:
		return r.fileOpen(senderID, msg)
	case wire.FileSave:
		return r.fileSave(senderID, msg)
	default:
		logger.Debugf("[relay] ignoring %T from %s", in, senderID)
		return Result{}
	}
}

func (r *Router) codeChange(senderID ClientID, msg wire.CodeChange) Result {
	r.docs.Put(msg.Key(), msg.Content, msg.Version)
	return resultOf(newBroadcast(AudienceOthers,
		wire.NewCodeChangeRelay(msg.Path, msg.Content, msg.Version, string(senderID))))
}

func (r *Router) cursorMove(senderID ClientID, msg wire.CursorMove) Result {
	return resultOf(newBroadcast(AudienceOthers,
		wire.NewCursorMoveRelay(msg.Path, msg.Position, string(senderID))))
}

func (r *Router) fileOpen(senderID ClientID, msg wire.FileOpen) Result {
	doc, ok := r.docs.Get(msg.Key())
	if !ok {
		return Result{}
	}
	return resultOf(newUnicast(senderID, wire.NewFileContent(msg.Path, doc.Content, doc.Version)))
}

func (r *Router) fileSave(senderID ClientID, msg wire.FileSave) Result {
	doc := r.docs.Stamp(msg.Key(), msg.Content, r.now())
	if r.recorder != nil {
		r.recorder.RecordSave(SaveEvent{
			Path:     doc.Path,
			SenderID: senderID,
			Version:  doc.Version,
			Size:     len(doc.Content),
			SavedAt:  doc.UpdatedAt,
		})
	}
	return resultOf(newBroadcast(FileSavedAudience, wire.NewFileSaved(msg.Path, string(senderID))))
}
