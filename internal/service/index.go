package service

import (
	"context"
	"sort"

	"mdrepo/internal/model"
	"mdrepo/internal/render"
)

// BuildIndex derives the grouped home-page view from a full entry set. It is
// a pure function over its input: entries are re-sorted newest-first and the
// same ordering is preserved inside every group.
func BuildIndex(entries []model.UploadedFile) model.IndexView {
	if len(entries) == 0 {
		return model.IndexView{Empty: true}
	}

	files := make([]model.UploadedFile, len(entries))
	copy(files, entries)
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.After(files[j].CreatedAt)
		}
		return files[i].ID > files[j].ID
	})

	byTag := make(map[string][]model.UploadedFile)
	for _, f := range files {
		for key := range f.Tags {
			byTag[key] = append(byTag[key], f)
		}
	}
	tagKeys := make([]string, 0, len(byTag))
	for key := range byTag {
		tagKeys = append(tagKeys, key)
	}
	sort.Strings(tagKeys)

	tagGroups := make([]model.TagGroup, 0, len(tagKeys))
	for _, key := range tagKeys {
		tagGroups = append(tagGroups, model.TagGroup{Key: key, Files: byTag[key]})
	}

	// Sessions keep first-seen order, which is newest-session-first given
	// the sort above.
	sessionIdx := make(map[string]int)
	sessions := make([]model.SessionGroup, 0)
	for _, f := range files {
		i, ok := sessionIdx[f.UploadSession]
		if !ok {
			i = len(sessions)
			sessionIdx[f.UploadSession] = i
			sessions = append(sessions, model.SessionGroup{ID: f.UploadSession})
		}
		sessions[i].Files = append(sessions[i].Files, f)
	}

	return model.IndexView{
		Files:     files,
		TagGroups: tagGroups,
		Sessions:  sessions,
	}
}

// Home renders the index page from a fresh store scan. It never fails on an
// empty repository; the empty state is part of the page.
func (s *fileService) Home(ctx context.Context) (string, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	view := BuildIndex(entries)
	return s.tmpl.Render(render.Page{
		PageTitle:  "Home",
		Title:      "Files Repository",
		Navigation: render.HomeNavigation,
		TagsHTML:   render.NoTagsComment,
		Content:    render.HomeContent(view),
	}), nil
}
