// Package notes implements the topic and entry HTTP handlers. Mutations are
// owner-gated: a non-owner poking at another user's topic or entry gets a
// plain 404, never a 403, so existence is not leaked.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/nkazmina/learning-log/backend/internal/forms"
	"github.com/nkazmina/learning-log/backend/internal/middleware"
	"github.com/nkazmina/learning-log/backend/internal/models"
	"github.com/nkazmina/learning-log/backend/internal/store"
)

// activityLimit caps the activity feed page size.
const activityLimit = 50

// maxUploadBytes bounds in-memory multipart parsing for attachment uploads.
const maxUploadBytes = 32 << 20

// NotesStore defines the interface for topic and entry persistence.
type NotesStore interface {
	ListTopics(ctx context.Context) ([]models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	CreateTopic(ctx context.Context, ownerID, text string) (*models.Topic, error)
	ListEntries(ctx context.Context, topicID string) ([]models.Entry, error)
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
	CreateEntry(ctx context.Context, topicID, ownerID, text string) (*models.Entry, error)
	UpdateEntryText(ctx context.Context, id, text string) (*models.Entry, error)
	SetEntryAttachment(ctx context.Context, id, key, name string) error
	DeleteEntry(ctx context.Context, id string) error
}

// FileStore defines the interface for attachment object storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// ActivityStore defines the interface for the activity feed.
type ActivityStore interface {
	Insert(ctx context.Context, ev *models.ActivityEvent) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.ActivityEvent, error)
}

// Handler holds the notes HTTP handlers.
type Handler struct {
	notes    NotesStore
	files    FileStore
	activity ActivityStore
}

func NewHandler(notes NotesStore, files FileStore, activity ActivityStore) *Handler {
	return &Handler{notes: notes, files: files, activity: activity}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}

// Topics lists all topics, oldest first. Public: no auth required.
func (h *Handler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.notes.ListTopics(r.Context())
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

// Topic shows one topic and its entries, newest entry first. Any
// authenticated user may view any topic.
func (h *Handler) Topic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.notes.GetTopic(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	entries, err := h.notes.ListEntries(r.Context(), topic.ID)
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "entries": entries})
}

// NewTopicPage renders a blank topic form.
func (h *Handler) NewTopicPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"form": forms.TopicForm{}})
}

// NewTopic creates a topic owned by the current user and redirects to the
// topic listing.
func (h *Handler) NewTopic(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid form body"}`, http.StatusBadRequest)
		return
	}
	form := forms.TopicForm{Text: r.PostFormValue("text")}
	if errs := form.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"form": form, "errors": errs})
		return
	}

	topic, err := h.notes.CreateTopic(r.Context(), user.ID, form.Text)
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	h.record(r.Context(), models.ActivityEvent{
		UserID:  user.ID,
		Action:  models.ActionTopicCreated,
		TopicID: topic.ID,
		Text:    snippet(topic.Text),
	})
	http.Redirect(w, r, "/topics/", http.StatusFound)
}

// NewEntryPage renders the entry form for a topic the current user owns.
func (h *Handler) NewEntryPage(w http.ResponseWriter, r *http.Request) {
	topic, ok := h.ownedTopic(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "form": forms.EntryForm{}})
}

// NewEntry appends an entry under a topic the current user owns. The entry's
// owner is the topic's owner, then the request redirects to the topic page.
func (h *Handler) NewEntry(w http.ResponseWriter, r *http.Request) {
	topic, ok := h.ownedTopic(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid form body"}`, http.StatusBadRequest)
		return
	}
	form := forms.EntryForm{Text: r.PostFormValue("text")}
	if errs := form.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"topic": topic, "form": form, "errors": errs})
		return
	}

	entry, err := h.notes.CreateEntry(r.Context(), topic.ID, topic.OwnerID, form.Text)
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	h.record(r.Context(), models.ActivityEvent{
		UserID:  entry.OwnerID,
		Action:  models.ActionEntryCreated,
		TopicID: topic.ID,
		EntryID: entry.ID,
		Text:    snippet(entry.Text),
	})
	h.redirectToTopic(w, r, topic.ID)
}

// EditEntryPage renders the edit form for an entry the current user owns.
func (h *Handler) EditEntryPage(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}
	topic, err := h.notes.GetTopic(r.Context(), entry.TopicID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topic": topic,
		"entry": entry,
		"form":  forms.EntryForm{Text: entry.Text},
	})
}

// EditEntry saves new text for an entry the current user owns. A successful
// save also refreshes the entry's date_added; a rejected one persists
// nothing.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid form body"}`, http.StatusBadRequest)
		return
	}
	form := forms.EntryForm{Text: r.PostFormValue("text")}
	if errs := form.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"entry": entry, "form": form, "errors": errs})
		return
	}

	updated, err := h.notes.UpdateEntryText(r.Context(), entry.ID, form.Text)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.record(r.Context(), models.ActivityEvent{
		UserID:  updated.OwnerID,
		Action:  models.ActionEntryUpdated,
		TopicID: updated.TopicID,
		EntryID: updated.ID,
		Text:    snippet(updated.Text),
	})
	h.redirectToTopic(w, r, updated.TopicID)
}

// DeleteEntryPage renders the delete confirmation for an entry the current
// user owns.
func (h *Handler) DeleteEntryPage(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry":   entry,
		"confirm": "Are you sure you want to delete this entry?",
	})
}

// DeleteEntry removes an entry the current user owns, along with its
// attachment, and redirects to the entry's former topic.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	if entry.AttachmentKey != "" {
		if err := h.files.Remove(r.Context(), entry.AttachmentKey); err != nil {
			log.Printf("attachment remove error (non-fatal): %v", err)
		}
	}

	if err := h.notes.DeleteEntry(r.Context(), entry.ID); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.record(r.Context(), models.ActivityEvent{
		UserID:  entry.OwnerID,
		Action:  models.ActionEntryDeleted,
		TopicID: entry.TopicID,
		EntryID: entry.ID,
		Text:    snippet(entry.Text),
	})
	h.redirectToTopic(w, r, entry.TopicID)
}

// UploadAttachment stores a file for an entry the current user owns,
// replacing any previous attachment.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	entry, ok := h.ownedEntry(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, `{"error":"invalid multipart body"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, `{"error":"read upload failed"}`, http.StatusInternalServerError)
		return
	}

	key := fmt.Sprintf("%s/%s", user.ID, entry.ID)
	if err := h.files.Upload(r.Context(), key, data, header.Header.Get("Content-Type")); err != nil {
		http.Error(w, `{"error":"upload failed"}`, http.StatusInternalServerError)
		return
	}
	if err := h.notes.SetEntryAttachment(r.Context(), entry.ID, key, header.Filename); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.redirectToTopic(w, r, entry.TopicID)
}

// DownloadAttachment streams an entry's attachment. Viewing follows the same
// rule as topic pages: any authenticated user.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	entry, err := h.notes.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	if entry.AttachmentKey == "" {
		notFound(w)
		return
	}

	data, ct, err := h.files.Download(r.Context(), entry.AttachmentKey)
	if err != nil {
		http.Error(w, `{"error":"download failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.AttachmentName))
	w.Write(data)
}

// Activity returns the current user's recent activity, newest first.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	events, err := h.activity.ListByUser(r.Context(), user.ID, activityLimit)
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []models.ActivityEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ownedTopic loads the topic from the URL and checks the current user owns
// it. Missing and not-owned are both reported as 404.
func (h *Handler) ownedTopic(w http.ResponseWriter, r *http.Request) (*models.Topic, bool) {
	user := middleware.UserFrom(r.Context())
	topic, err := h.notes.GetTopic(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		h.respondStoreError(w, err)
		return nil, false
	}
	if topic.OwnerID != user.ID {
		notFound(w)
		return nil, false
	}
	return topic, true
}

// ownedEntry is the entry counterpart of ownedTopic.
func (h *Handler) ownedEntry(w http.ResponseWriter, r *http.Request) (*models.Entry, bool) {
	user := middleware.UserFrom(r.Context())
	entry, err := h.notes.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		h.respondStoreError(w, err)
		return nil, false
	}
	if entry.OwnerID != user.ID {
		notFound(w)
		return nil, false
	}
	return entry, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		notFound(w)
		return
	}
	http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
}

func (h *Handler) redirectToTopic(w http.ResponseWriter, r *http.Request, topicID string) {
	http.Redirect(w, r, "/topic/"+topicID, http.StatusFound)
}

// record appends an activity event; feed writes never fail the request.
func (h *Handler) record(ctx context.Context, ev models.ActivityEvent) {
	if h.activity == nil {
		return
	}
	if err := h.activity.Insert(ctx, &ev); err != nil {
		log.Printf("activity insert error (non-fatal): %v", err)
	}
}

// snippet truncates entry text for the activity feed, the same 50-character
// preview the pages show.
func snippet(s string) string {
	const max = 50
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
