package daemon

import (
	"net/http"
	"strings"
	"testing"

	"jotter/internal/types"
)

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestNotesEndpointsCRUD(t *testing.T) {
	server := newTestServer(t, 100)
	session := signUp(t, server, "crud@example.com")

	createResp := doRequest(t, http.MethodPost, server.URL+"/v1/notes", session.Token, types.NoteDraft{
		Title:   "  Groceries ",
		Content: "<p>milk</p>",
		Tags:    []string{" Food ", "food", "", "Errands"},
	})
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", createResp.StatusCode)
	}
	var created types.Note
	decodeBody(t, createResp, &created)
	if created.ID == "" {
		t.Fatalf("expected note id")
	}
	if created.OwnerID != session.User.ID {
		t.Fatalf("expected owner %q, got %q", session.User.ID, created.OwnerID)
	}
	if created.Title != "Groceries" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if strings.Join(created.Tags, ",") != "food,errands" {
		t.Fatalf("expected normalized tags, got %v", created.Tags)
	}

	listResp := doRequest(t, http.MethodGet, server.URL+"/v1/notes", session.Token, nil)
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.StatusCode)
	}
	var listPayload struct {
		Notes []*types.Note `json:"notes"`
	}
	decodeBody(t, listResp, &listPayload)
	if len(listPayload.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(listPayload.Notes))
	}

	updateResp := doRequest(t, http.MethodPatch, server.URL+"/v1/notes/"+created.ID, session.Token, types.NotePatch{
		Content:  strPtr("<p>milk, eggs</p>"),
		Archived: boolPtr(true),
	})
	if updateResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", updateResp.StatusCode)
	}
	var updated types.Note
	decodeBody(t, updateResp, &updated)
	if updated.Title != "Groceries" {
		t.Fatalf("expected title untouched by patch, got %q", updated.Title)
	}
	if updated.Content != "<p>milk, eggs</p>" || !updated.Archived {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at to be preserved")
	}

	deleteResp := doRequest(t, http.MethodDelete, server.URL+"/v1/notes/"+created.ID, session.Token, nil)
	if deleteResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", deleteResp.StatusCode)
	}
	again := doRequest(t, http.MethodDelete, server.URL+"/v1/notes/"+created.ID, session.Token, nil)
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", again.StatusCode)
	}
}

func TestNotesArchivedFilter(t *testing.T) {
	server := newTestServer(t, 100)
	session := signUp(t, server, "filter@example.com")
	for _, draft := range []types.NoteDraft{
		{Title: "active", Content: "a"},
		{Title: "old", Content: "b", Archived: true},
	} {
		resp := doRequest(t, http.MethodPost, server.URL+"/v1/notes", session.Token, draft)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %q: expected 201, got %d", draft.Title, resp.StatusCode)
		}
	}

	resp := doRequest(t, http.MethodGet, server.URL+"/v1/notes?archived=true", session.Token, nil)
	var payload struct {
		Notes []*types.Note `json:"notes"`
	}
	decodeBody(t, resp, &payload)
	if len(payload.Notes) != 1 || payload.Notes[0].Title != "old" {
		t.Fatalf("expected only the archived note, got %+v", payload.Notes)
	}
}

func TestNotesOwnerIsolation(t *testing.T) {
	server := newTestServer(t, 100)
	alice := signUp(t, server, "alice@example.com")
	bob := signUp(t, server, "bob@example.com")

	createResp := doRequest(t, http.MethodPost, server.URL+"/v1/notes", alice.Token, types.NoteDraft{Title: "private", Content: "mine"})
	var created types.Note
	decodeBody(t, createResp, &created)

	listResp := doRequest(t, http.MethodGet, server.URL+"/v1/notes", bob.Token, nil)
	var payload struct {
		Notes []*types.Note `json:"notes"`
	}
	decodeBody(t, listResp, &payload)
	if len(payload.Notes) != 0 {
		t.Fatalf("expected bob to see no notes, got %d", len(payload.Notes))
	}

	patch := doRequest(t, http.MethodPatch, server.URL+"/v1/notes/"+created.ID, bob.Token, types.NotePatch{Title: strPtr("stolen")})
	if patch.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 patching another owner's note, got %d", patch.StatusCode)
	}
	del := doRequest(t, http.MethodDelete, server.URL+"/v1/notes/"+created.ID, bob.Token, nil)
	if del.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another owner's note, got %d", del.StatusCode)
	}
}

func TestNotesSanitizeContent(t *testing.T) {
	server := newTestServer(t, 100)
	session := signUp(t, server, "xss@example.com")
	resp := doRequest(t, http.MethodPost, server.URL+"/v1/notes", session.Token, types.NoteDraft{
		Title:   "xss",
		Content: `<p>hi</p><script>alert(1)</script>`,
	})
	var created types.Note
	decodeBody(t, resp, &created)
	if strings.Contains(created.Content, "<script") {
		t.Fatalf("expected script to be stripped, got %q", created.Content)
	}
	if !strings.Contains(created.Content, "<p>hi</p>") {
		t.Fatalf("expected paragraph to survive, got %q", created.Content)
	}
}

func TestNotesValidationFields(t *testing.T) {
	server := newTestServer(t, 100)
	session := signUp(t, server, "long@example.com")
	resp := doRequest(t, http.MethodPost, server.URL+"/v1/notes", session.Token, types.NoteDraft{
		Title:   strings.Repeat("x", 201),
		Content: "body",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Fields["title"] != "must not exceed 200 characters" {
		t.Fatalf("unexpected title message %q", body.Fields["title"])
	}
}

func TestNotesInvalidJSON(t *testing.T) {
	server := newTestServer(t, 100)
	session := signUp(t, server, "json@example.com")
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/v1/notes", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
