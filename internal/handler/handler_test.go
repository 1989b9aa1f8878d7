package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogwriter/internal/config"
	"blogwriter/internal/domain"
	models "blogwriter/internal/domain/models/article"
	articleSvc "blogwriter/internal/domain/services/article"
	"blogwriter/internal/service/article/markup"
	"blogwriter/internal/service/article/media"
	"blogwriter/internal/service/article/schema"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func newMarkupHandler(t *testing.T) *MarkupHandler {
	t.Helper()
	v, err := schema.New()
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	return NewMarkupHandler(markup.New(), v, testLogger())
}

func TestDeserializeHandler(t *testing.T) {
	h := newMarkupHandler(t)

	w := do(t, h.Deserialize, http.MethodPost, "/api/markup/deserialize", `{"markup":"<p>hello</p>"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"document":[{"tag":"p","content":"hello"}]}` {
		t.Errorf("body = %s", got)
	}

	shallow := NewMarkupHandler(markup.New(markup.WithMaxDepth(2)), h.validator, testLogger())
	w = do(t, shallow.Deserialize, http.MethodPost, "/api/markup/deserialize", `{"markup":"<section><section><p>x</p></section></section>"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("too deep status = %d, want 400", w.Code)
	}
	w = do(t, h.Deserialize, http.MethodPost, "/api/markup/deserialize", `{`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", w.Code)
	}
}

func TestSerializeHandler(t *testing.T) {
	h := newMarkupHandler(t)

	w := do(t, h.Serialize, http.MethodPost, "/api/markup/serialize",
		`{"document":[{"tag":"img","url":"a.svg","alt":"x"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if got := decode(t, w)["markup"]; got != `<img src="a.svg" alt="x"/>` {
		t.Errorf("markup = %v", got)
	}

	w = do(t, h.Serialize, http.MethodPost, "/api/markup/serialize", `{"document":[{"content":"x"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing tag status = %d", w.Code)
	}
}

func TestValidateHandler(t *testing.T) {
	h := newMarkupHandler(t)

	valid := `{"version":"1.0.0","metadata":{"title":"T"},"document":[{"tag":"p","content":"x"}]}`
	w := do(t, h.Validate, http.MethodPost, "/api/validate", valid)
	if w.Code != http.StatusOK || decode(t, w)["valid"] != true {
		t.Errorf("valid article: status = %d, body = %s", w.Code, w.Body)
	}

	w = do(t, h.Validate, http.MethodPost, "/api/validate", `{"foo":"bar"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	violations, ok := decode(t, w)["violations"].([]any)
	if !ok || len(violations) == 0 {
		t.Errorf("violations = %v", violations)
	}

	w = do(t, h.Validate, http.MethodPost, "/api/validate", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d", w.Code)
	}
}

func TestSVGHandler(t *testing.T) {
	pipeline := media.NewPipeline(media.Limits{
		MaxBytes: config.DefaultMaxEmbeddedSVGBytes,
		MaxNodes: config.DefaultMaxSVGNodeCount,
	}, testLogger())
	h := NewSVGHandler(pipeline, testLogger())

	w := do(t, h.Sanitize, http.MethodPost, "/api/svg/sanitize", `{"svg":"<svg><script>x</script></svg>"}`)
	body := decode(t, w)
	if body["svg"] != "<svg></svg>" || body["changed"] != true {
		t.Errorf("sanitize body = %v", body)
	}

	w = do(t, h.Encode, http.MethodPost, "/api/svg/encode", `{"svg":"<svg></svg>"}`)
	if got := decode(t, w)["dataUri"]; got != "data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=" {
		t.Errorf("dataUri = %v", got)
	}

	w = do(t, h.Embed, http.MethodPost, "/api/svg/embed", `{"svg":"<svg></svg>","alt":"a"}`)
	body = decode(t, w)
	if body["tag"] != "img" || body["alt"] != "a" {
		t.Errorf("embed body = %v", body)
	}

	w = do(t, h.Embed, http.MethodPost, "/api/svg/embed", `{"svg":"<div></div>"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("non-svg root status = %d, want 422", w.Code)
	}
}

type stubArticles struct {
	articleSvc.ArticleService
	sessions map[string]*models.Session
	lastMeta *articleSvc.UpdateMetadataRequest
	saveMsg  string
}

func (s *stubArticles) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	return sess, nil
}

func (s *stubArticles) Create(ctx context.Context, req *articleSvc.CreateArticleRequest) (*models.Session, error) {
	if req.Title == "exists" {
		return nil, &domain.ConflictError{Message: "exists", ResourceType: "article", ResourceID: "blog/exists.json"}
	}
	return &models.Session{ID: "new", Path: "blog/new.json"}, nil
}

func (s *stubArticles) Open(ctx context.Context, req *articleSvc.OpenArticleRequest) (*models.Session, error) {
	return &models.Session{ID: "existing", Path: req.Path}, nil
}

func (s *stubArticles) UpdateMetadata(ctx context.Context, id string, req *articleSvc.UpdateMetadataRequest) (*models.Session, error) {
	s.lastMeta = req
	return s.Get(ctx, id)
}

func (s *stubArticles) Save(ctx context.Context, id string, req *articleSvc.SaveRequest) (*models.Session, error) {
	s.saveMsg = req.Message
	if id == "invalid" {
		return nil, &domain.ValidationError{
			Message:    "article is invalid (1 violations)",
			Violations: []domain.Violation{{Path: "/document/0", Kind: domain.ViolationStructure, Message: "li must be a direct child of ol or ul"}},
		}
	}
	return s.Get(ctx, id)
}

func (s *stubArticles) Export(ctx context.Context, id, format string) ([]byte, error) {
	if format == "docx" {
		return nil, fmt.Errorf("%w: unknown format", domain.ErrValidation)
	}
	return []byte("---\ntitle: T\n---\n"), nil
}

func newArticleMux(svc articleSvc.ArticleService) *http.ServeMux {
	h := NewArticleHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/articles", h.CreateArticle)
	mux.HandleFunc("GET /api/articles/{id}", h.GetArticle)
	mux.HandleFunc("PATCH /api/articles/{id}/metadata", h.UpdateMetadata)
	mux.HandleFunc("POST /api/articles/{id}/save", h.SaveArticle)
	mux.HandleFunc("GET /api/articles/{id}/export", h.ExportArticle)
	return mux
}

func TestArticleHandler(t *testing.T) {
	svc := &stubArticles{sessions: map[string]*models.Session{"s1": {ID: "s1", Path: "blog/a.json"}}}
	mux := newArticleMux(svc)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"get", http.MethodGet, "/api/articles/s1", "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/articles/nope", "", http.StatusNotFound},
		{"create", http.MethodPost, "/api/articles", `{"workspace":"/w","title":"new"}`, http.StatusCreated},
		{"create conflict", http.MethodPost, "/api/articles", `{"workspace":"/w","title":"exists"}`, http.StatusConflict},
		{"save", http.MethodPost, "/api/articles/s1/save", "", http.StatusOK},
		{"save invalid", http.MethodPost, "/api/articles/invalid/save", `{"message":"m"}`, http.StatusUnprocessableEntity},
		{"export", http.MethodGet, "/api/articles/s1/export?frontmatter=yaml", "", http.StatusOK},
		{"export unknown format", http.MethodGet, "/api/articles/s1/export?frontmatter=docx", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, mux.ServeHTTP, tt.method, tt.target, tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body)
			}
		})
	}
}

func TestCreateConflictReturnsExisting(t *testing.T) {
	mux := newArticleMux(&stubArticles{})

	w := do(t, mux.ServeHTTP, http.MethodPost, "/api/articles", `{"workspace":"/w","title":"exists"}`)
	body := decode(t, w)
	if body["id"] != "existing" || body["path"] != "blog/exists.json" {
		t.Errorf("body = %v", body)
	}
}

func TestUpdateMetadataTriState(t *testing.T) {
	svc := &stubArticles{sessions: map[string]*models.Session{"s1": {ID: "s1"}}}
	mux := newArticleMux(svc)

	w := do(t, mux.ServeHTTP, http.MethodPatch, "/api/articles/s1/metadata", `{"title":"New","author":null,"keywords":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	req := svc.lastMeta
	if !req.Title.Present || *req.Title.Value != "New" {
		t.Errorf("Title = %+v", req.Title)
	}
	if !req.Author.Present || req.Author.Value != nil {
		t.Errorf("Author = %+v, want present null", req.Author)
	}
	if req.Description.Present {
		t.Errorf("Description = %+v, want absent", req.Description)
	}
	if req.Keywords == nil || len(*req.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty list", req.Keywords)
	}
}

func TestSaveViolations(t *testing.T) {
	svc := &stubArticles{sessions: map[string]*models.Session{}}
	mux := newArticleMux(svc)

	w := do(t, mux.ServeHTTP, http.MethodPost, "/api/articles/invalid/save", `{"message":"docs: x"}`)
	if svc.saveMsg != "docs: x" {
		t.Errorf("message = %q", svc.saveMsg)
	}
	violations, _ := decode(t, w)["violations"].([]any)
	if len(violations) != 1 {
		t.Fatalf("violations = %v", violations)
	}
	v := violations[0].(map[string]any)
	if v["path"] != "/document/0" || v["kind"] != domain.ViolationStructure {
		t.Errorf("violation = %v", v)
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation sentinel", fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{"validation error", &domain.ValidationError{Message: "too big"}, http.StatusUnprocessableEntity},
		{"markup", &domain.MarkupError{Message: "bad markup"}, http.StatusBadRequest},
		{"not found", &domain.NotFoundError{Message: "gone"}, http.StatusNotFound},
		{"conflict", &domain.ConflictError{Message: "dup"}, http.StatusConflict},
		{"not repository", fmt.Errorf("/x: %w", domain.ErrNotRepository), http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleError(w, tt.err)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusInternalServerError && strings.Contains(w.Body.String(), "disk") {
				t.Error("internal error detail leaked")
			}
		})
	}
}
