package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/timelines/internal/domain"
	"github.com/pbaille/timelines/internal/media"
	"github.com/pbaille/timelines/internal/store"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	s, err := store.New(filepath.Join(dir, "timelines.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	lib, err := media.NewLibrary(filepath.Join(dir, "media"))
	require.NoError(t, err)

	return New(s, lib, ":0")
}

func do(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

type listResponse struct {
	Events []domain.Event `json:"events"`
	Count  int            `json:"count"`
}

func TestHealthAndTags(t *testing.T) {
	srv := setupTestServer(t)

	rec := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"tags":["Personal","Work","Study","Travel","Sport"]}`, rec.Body.String())
}

func TestEventLifecycle(t *testing.T) {
	srv := setupTestServer(t)

	rec := do(t, srv, http.MethodPost, "/events", EventRequest{
		Title: "Trip",
		Date:  "2024-05-01T00:00:00.000Z",
		Tag:   domain.TagTravel,
		Media: []string{"a.jpg", "b.jpg"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Positive(t, created.ID)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, created.Media)

	rec = do(t, srv, http.MethodPost, "/events", EventRequest{Title: "New year", Date: "2024-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var second domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Equal(t, domain.DefaultTag, second.Tag)
	require.NotNil(t, second.Media)

	rec = do(t, srv, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	require.Equal(t, created.ID, list.Events[0].ID)

	id := strconv.FormatInt(created.ID, 10)
	rec = do(t, srv, http.MethodPut, "/events/"+id, EventRequest{
		Title: "Trip home",
		Note:  "train",
		Date:  "2024-05-03",
		Tag:   domain.TagTravel,
		Media: []string{"c.mp4"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/events/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "Trip home", updated.Title)
	require.Equal(t, "train", updated.Note)
	require.Equal(t, []string{"c.mp4"}, updated.Media)

	rec = do(t, srv, http.MethodDelete, "/events/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/events/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/events/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEventsFilter(t *testing.T) {
	srv := setupTestServer(t)

	for _, req := range []EventRequest{
		{Title: "Morning run", Date: "2024-01-01", Tag: domain.TagSport},
		{Title: "Release run", Date: "2024-01-02", Tag: domain.TagWork},
		{Title: "Lecture", Date: "2024-01-03", Tag: domain.TagStudy},
	} {
		rec := do(t, srv, http.MethodPost, "/events", req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	q := url.Values{"q": {"RUN"}, "tag": {domain.TagAll}}
	rec := do(t, srv, http.MethodGet, "/events?"+q.Encode(), nil)
	var list listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	require.Equal(t, "Release run", list.Events[0].Title)

	q = url.Values{"q": {"run"}, "tag": {domain.TagSport}}
	rec = do(t, srv, http.MethodGet, "/events?"+q.Encode(), nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Morning run", list.Events[0].Title)
}

func TestAddEventValidation(t *testing.T) {
	srv := setupTestServer(t)

	rec := do(t, srv, http.MethodPost, "/events", EventRequest{Title: "  ", Date: "2024-01-01"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "title is required")

	rec = do(t, srv, http.MethodPost, "/events", EventRequest{Title: "No date"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/events", EventRequest{Title: "Bad date", Date: "yesterday"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/events", EventRequest{Title: "Bad tag", Date: "2024-01-01", Tag: "Holiday"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUnknownEvent(t *testing.T) {
	srv := setupTestServer(t)

	rec := do(t, srv, http.MethodPut, "/events/42", EventRequest{Title: "Ghost", Date: "2024-01-01"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/events/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAndServeMedia(t *testing.T) {
	srv := setupTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "sunset.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		URI string `json:"uri"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	u, err := url.Parse(resp.URI)
	require.NoError(t, err)
	require.Equal(t, "file", u.Scheme)

	rec = do(t, srv, http.MethodGet, "/media/"+path.Base(u.Path), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "png bytes", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/media/missing.png", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
