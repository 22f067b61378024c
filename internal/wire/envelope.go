package wire

import (
	"path"
	"strings"
)

// Envelope is one message unit exchanged with a client. The same shape is used
// in both directions; which fields are set depends on Type.
//
// Envelopes are treated as immutable values once built.
type Envelope struct {
	Type     Kind     `json:"type" msgpack:"type"`
	ClientID string   `json:"clientId,omitempty" msgpack:"clientId,omitempty"`
	Path     string   `json:"path,omitempty" msgpack:"path,omitempty"`
	Content  *string  `json:"content,omitempty" msgpack:"content,omitempty"`
	Version  *Ordinal `json:"version,omitempty" msgpack:"version,omitempty"`
	Position any      `json:"position,omitempty" msgpack:"position,omitempty"`
	SenderID string   `json:"senderId,omitempty" msgpack:"senderId,omitempty"`
	Users    []string `json:"users,omitempty" msgpack:"users,omitempty"`
}

// NormalizePath turns a client supplied path into the key used by the document
// store. Backslashes become forward slashes and the result is cleaned. An empty
// input stays empty so that callers can treat it as missing.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func ordinal(v int64) *Ordinal {
	o := Ordinal(v)
	return &o
}

// NewInit builds the greeting sent to a freshly registered connection.
func NewInit(clientID string) Envelope {
	return Envelope{Type: KindInit, ClientID: clientID}
}

// NewUserList builds a presence broadcast.
func NewUserList(users []string) Envelope {
	list := make([]string, len(users))
	copy(list, users)
	return Envelope{Type: KindUserList, Users: list}
}

// NewCodeChangeRelay builds the relayed form of a code_change.
func NewCodeChangeRelay(p, content string, version int64, senderID string) Envelope {
	return Envelope{
		Type:     KindCodeChange,
		Path:     p,
		Content:  &content,
		Version:  ordinal(version),
		SenderID: senderID,
	}
}

// NewCursorMoveRelay builds the relayed form of a cursor_move.
func NewCursorMoveRelay(p string, position any, senderID string) Envelope {
	return Envelope{
		Type:     KindCursorMove,
		Path:     p,
		Position: position,
		SenderID: senderID,
	}
}

// NewFileContent builds the unicast reply to file_open.
func NewFileContent(p, content string, version int64) Envelope {
	return Envelope{
		Type:    KindFileContent,
		Path:    p,
		Content: &content,
		Version: ordinal(version),
	}
}

// NewFileSaved builds the relayed form of a file_save.
func NewFileSaved(p, senderID string) Envelope {
	return Envelope{Type: KindFileSaved, Path: p, SenderID: senderID}
}
