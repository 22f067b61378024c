package wire

// Inbound is a decoded client request. It is a closed sum type: only the types
// in this file implement it, and the relay's router switches over them.
//
// Path is kept exactly as the client sent it and is what goes back out on the
// wire, since editors match updates against their own spelling of the path.
// Key is the normalized form used to address the document store.
type Inbound interface {
	Kind() Kind
	Key() string
	inbound()
}

// CodeChange replaces the content of Path.
type CodeChange struct {
	Path    string
	Content string
	Version int64
}

// CursorMove reports the sender's cursor inside Path. Position is opaque.
type CursorMove struct {
	Path     string
	Position any
}

// FileOpen asks for the last known content of Path.
type FileOpen struct {
	Path string
}

// FileSave announces that the sender saved Content to Path.
type FileSave struct {
	Path    string
	Content string
}

func (CodeChange) Kind() Kind { return KindCodeChange }
func (CursorMove) Kind() Kind { return KindCursorMove }
func (FileOpen) Kind() Kind   { return KindFileOpen }
func (FileSave) Kind() Kind   { return KindFileSave }

func (m CodeChange) Key() string { return NormalizePath(m.Path) }
func (m CursorMove) Key() string { return NormalizePath(m.Path) }
func (m FileOpen) Key() string   { return NormalizePath(m.Path) }
func (m FileSave) Key() string   { return NormalizePath(m.Path) }

func (CodeChange) inbound() {}
func (CursorMove) inbound() {}
func (FileOpen) inbound()   {}
func (FileSave) inbound()   {}

// ParseInbound converts an envelope into a typed request. It returns false when
// the kind is unknown, missing, server-only, or when a required field is
// absent. Such envelopes are meant to be dropped without a reply.
func ParseInbound(env Envelope) (Inbound, bool) {
	p := env.Path
	missing := NormalizePath(p) == ""

	switch env.Type {
	case KindCodeChange:
		if missing || env.Content == nil || env.Version == nil {
			return nil, false
		}
		return CodeChange{Path: p, Content: *env.Content, Version: int64(*env.Version)}, true

	case KindCursorMove:
		if missing || env.Position == nil {
			return nil, false
		}
		return CursorMove{Path: p, Position: env.Position}, true

	case KindFileOpen:
		if missing {
			return nil, false
		}
		return FileOpen{Path: p}, true

	case KindFileSave:
		if missing || env.Content == nil {
			return nil, false
		}
		return FileSave{Path: p, Content: *env.Content}, true
	}

	return nil, false
}
