package model

// IndexView is the grouped read model backing the home page. It is derived
// from a full scan and never mutates the underlying records.
type IndexView struct {
	// Empty is the explicit no-entries indicator; when set, all groupings
	// are empty and the page renders its empty-state message.
	Empty bool
	// Files is the flat listing, ordered by CreatedAt descending.
	Files []UploadedFile
	// TagGroups holds one group per tag key present on any entry, sorted by
	// key; each group preserves the most-recent-first ordering.
	TagGroups []TagGroup
	// Sessions groups entries sharing an upload session, ordered by the
	// session's newest entry.
	Sessions []SessionGroup
}

// TagGroup collects the entries carrying a given tag key, regardless of the
// tag's value.
type TagGroup struct {
	Key   string
	Files []UploadedFile
}

// SessionGroup collects the entries created by one upload request.
type SessionGroup struct {
	ID    string
	Files []UploadedFile
}

// Size returns the number of entries in the session.
func (g SessionGroup) Size() int { return len(g.Files) }
