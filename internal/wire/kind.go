package wire

// Kind identifies the type of an envelope. The set is closed: every value the
// relay understands is listed below.
type Kind string

const (
	// KindCodeChange carries a full-content edit of a document.
	KindCodeChange Kind = "code_change"
	// KindCursorMove carries a cursor position inside a document.
	KindCursorMove Kind = "cursor_move"
	// KindFileOpen asks the relay for the last known content of a path.
	KindFileOpen Kind = "file_open"
	// KindFileSave announces that a client persisted a document.
	KindFileSave Kind = "file_save"

	// KindInit tells a fresh connection its client id.
	KindInit Kind = "init"
	// KindUserList carries the current presence list.
	KindUserList Kind = "user_list"
	// KindFileContent is the unicast reply to file_open.
	KindFileContent Kind = "file_content"
	// KindFileSaved is the relayed form of file_save.
	KindFileSaved Kind = "file_saved"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCodeChange, KindCursorMove, KindFileOpen, KindFileSave,
		KindInit, KindUserList, KindFileContent, KindFileSaved:
		return true
	}
	return false
}

// ClientOriginated reports whether clients are allowed to send k to the relay.
func (k Kind) ClientOriginated() bool {
	switch k {
	case KindCodeChange, KindCursorMove, KindFileOpen, KindFileSave:
		return true
	}
	return false
}
