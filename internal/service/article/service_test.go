package article

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"blogwriter/internal/config"
	"blogwriter/internal/domain"
	models "blogwriter/internal/domain/models/article"
	articleSvc "blogwriter/internal/domain/services/article"
	"blogwriter/internal/service/article/markup"
	"blogwriter/internal/service/article/media"
	"blogwriter/internal/service/article/schema"
)

const testRoot = "/work/blog"

type fakeWorkspaces struct {
	settings config.Settings
	created  []string
}

func (f *fakeWorkspaces) Open(ctx context.Context, root string) (*models.Workspace, error) {
	if root != testRoot {
		return nil, fmt.Errorf("%s: %w", root, domain.ErrNotRepository)
	}
	return &models.Workspace{Root: root, Settings: f.settings}, nil
}

func (f *fakeWorkspaces) Create(ctx context.Context, root, remote string) (*models.Workspace, error) {
	f.created = append(f.created, root)
	s := f.settings
	s.Remote = remote
	return &models.Workspace{Root: root, Settings: s}, nil
}

func (f *fakeWorkspaces) Recent(ctx context.Context) ([]config.RecentWorkspace, error) {
	return []config.RecentWorkspace{}, nil
}

func (f *fakeWorkspaces) ListFiles(ctx context.Context, root string) ([]string, error) {
	return []string{"blog/a.json"}, nil
}

type commit struct {
	message string
	paths   []string
}

type fakeArticles struct {
	mu      sync.Mutex
	files   map[string]*models.Article
	commits []commit
}

func newFakeArticles() *fakeArticles {
	return &fakeArticles{files: map[string]*models.Article{}}
}

func (f *fakeArticles) Read(ctx context.Context, ws *models.Workspace, path string) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.files[path]
	if !ok {
		return nil, &domain.NotFoundError{Message: path + " not found"}
	}
	c := *a
	return &c, nil
}

func (f *fakeArticles) Write(ctx context.Context, ws *models.Workspace, path string, a *models.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *a
	f.files[path] = &c
	return nil
}

func (f *fakeArticles) Exists(ctx context.Context, ws *models.Workspace, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakeArticles) Commit(ctx context.Context, ws *models.Workspace, message string, paths ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, commit{message: message, paths: paths})
	return fmt.Sprintf("%040d", len(f.commits)), nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts Options) (*articleService, *fakeWorkspaces, *fakeArticles) {
	t.Helper()
	v, err := schema.New()
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	ws := &fakeWorkspaces{settings: config.DefaultSettings()}
	ws.settings.DefaultAuthor = "Ada"
	ws.settings.DefaultKeywords = []string{"notes"}
	arts := newFakeArticles()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewArticleService(ws, arts, v, markup.New(), opts, logger).(*articleService)
	svc.now = func() time.Time { return fixedNow }
	return svc, ws, arts
}

func create(t *testing.T, svc *articleService, title string) *models.Session {
	t.Helper()
	sess, err := svc.Create(context.Background(), &articleSvc.CreateArticleRequest{
		Workspace: testRoot,
		Title:     title,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return sess
}

func TestCreateArticle(t *testing.T) {
	svc, _, arts := newTestService(t, Options{})

	sess := create(t, svc, "  Hello, World!  ")
	if sess.Path != "blog/hello-world.json" {
		t.Errorf("Path = %q", sess.Path)
	}
	meta := sess.Article.Metadata
	if meta.Title != "Hello, World!" || meta.Author != "Ada" {
		t.Errorf("Metadata = %+v", meta)
	}
	if len(meta.Keywords) != 1 || meta.Keywords[0] != "notes" {
		t.Errorf("Keywords = %v, want workspace defaults", meta.Keywords)
	}
	if sess.Dirty {
		t.Error("new article should not be dirty")
	}
	if _, ok := arts.files["blog/hello-world.json"]; !ok {
		t.Error("article was not written")
	}
	if len(arts.commits) != 0 {
		t.Errorf("commits = %d, want 0", len(arts.commits))
	}

	_, err := svc.Create(context.Background(), &articleSvc.CreateArticleRequest{
		Workspace: testRoot,
		Title:     "Hello world",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second Create() error = %v, want ErrConflict", err)
	}
}

func TestCreateArticleInvalid(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})

	tests := []struct {
		name string
		req  articleSvc.CreateArticleRequest
		want error
	}{
		{"no workspace", articleSvc.CreateArticleRequest{Title: "T"}, domain.ErrValidation},
		{"blank title", articleSvc.CreateArticleRequest{Workspace: testRoot, Title: "   "}, domain.ErrValidation},
		{"wrong extension", articleSvc.CreateArticleRequest{Workspace: testRoot, Title: "T", Path: "blog/t.md"}, domain.ErrValidation},
		{"not a repository", articleSvc.CreateArticleRequest{Workspace: "/elsewhere", Title: "T"}, domain.ErrNotRepository},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Create(context.Background(), &req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenReusesSession(t *testing.T) {
	svc, _, arts := newTestService(t, Options{})
	arts.files["blog/a.json"] = models.New(models.Metadata{Title: "A"})

	req := &articleSvc.OpenArticleRequest{Workspace: testRoot, Path: "blog/a.json"}
	first, err := svc.Open(context.Background(), req)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	second, err := svc.Open(context.Background(), &articleSvc.OpenArticleRequest{Workspace: testRoot, Path: "blog/./a.json"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %s vs %s", first.ID, second.ID)
	}

	_, err = svc.Open(context.Background(), &articleSvc.OpenArticleRequest{Workspace: testRoot, Path: "blog/missing.json"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
}

func TestApplyMarkupAndRender(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")

	html := `<h1>Title</h1><p>Some <b>bold</b> words</p>`
	updated, err := svc.ApplyMarkup(context.Background(), sess.ID, html)
	if err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}
	if !updated.Dirty {
		t.Error("session should be dirty after an edit")
	}
	if updated.Stats.Words != 4 {
		t.Errorf("Words = %d, want 4", updated.Stats.Words)
	}
	if len(sess.Article.Document) != 0 {
		t.Error("earlier snapshot was modified")
	}

	got, err := svc.Render(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<h1>Title</h1><p><span>Some </span><b>bold</b><span> words</span></p>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestApplyMarkupStrict(t *testing.T) {
	svc, _, _ := newTestService(t, Options{StrictMarkup: true})
	sess := create(t, svc, "Post")

	_, err := svc.ApplyMarkup(context.Background(), sess.ID, `<p onclick="x()">hi<script>alert(1)</script></p>`)
	if err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}
	got, err := svc.Render(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "<p>hi</p>" {
		t.Errorf("Render() = %q, want %q", got, "<p>hi</p>")
	}
}

func TestApplyMarkupErrors(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")

	_, err := svc.ApplyMarkup(context.Background(), sess.ID, "\xff")
	if !errors.Is(err, domain.ErrMalformedMarkup) {
		t.Errorf("invalid UTF-8 error = %v, want ErrMalformedMarkup", err)
	}
	_, err = svc.ApplyMarkup(context.Background(), "nope", "<p>x</p>")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown session error = %v, want ErrNotFound", err)
	}
}

func ptr(s string) *string { return &s }

func TestUpdateMetadata(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")
	keywords := []string{"go", "blog"}

	updated, err := svc.UpdateMetadata(context.Background(), sess.ID, &articleSvc.UpdateMetadataRequest{
		Title:           articleSvc.OptionalField{Present: true, Value: ptr(" New title ")},
		Author:          articleSvc.OptionalField{Present: true, Value: nil},
		Description:     articleSvc.OptionalField{Present: true, Value: ptr("About things")},
		PublicationDate: articleSvc.OptionalField{Present: true, Value: ptr("2026-02-01T09:00:00Z")},
		Keywords:        &keywords,
	})
	if err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}
	want := models.Metadata{
		Title:           "New title",
		Description:     "About things",
		PublicationDate: "2026-02-01T09:00:00Z",
		Keywords:        []string{"go", "blog"},
	}
	got := updated.Article.Metadata
	if got.Title != want.Title || got.Author != "" || got.Description != want.Description ||
		got.PublicationDate != want.PublicationDate || strings.Join(got.Keywords, ",") != "go,blog" {
		t.Errorf("Metadata = %+v, want %+v", got, want)
	}

	untouched, err := svc.UpdateMetadata(context.Background(), sess.ID, &articleSvc.UpdateMetadataRequest{})
	if err != nil {
		t.Fatalf("UpdateMetadata(empty) error = %v", err)
	}
	if untouched.Article.Metadata.Title != "New title" {
		t.Errorf("absent field changed title to %q", untouched.Article.Metadata.Title)
	}
}

func TestUpdateMetadataInvalid(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")

	tests := []struct {
		name string
		req  articleSvc.UpdateMetadataRequest
	}{
		{"null title", articleSvc.UpdateMetadataRequest{Title: articleSvc.OptionalField{Present: true}}},
		{"blank title", articleSvc.UpdateMetadataRequest{Title: articleSvc.OptionalField{Present: true, Value: ptr(" ")}}},
		{"bad date", articleSvc.UpdateMetadataRequest{PublicationDate: articleSvc.OptionalField{Present: true, Value: ptr("yesterday")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.UpdateMetadata(context.Background(), sess.ID, &req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("UpdateMetadata() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestEmbedSVG(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")
	if _, err := svc.ApplyMarkup(context.Background(), sess.ID, "<p>one</p><p>two</p>"); err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}

	pos := 1
	node, err := svc.EmbedSVG(context.Background(), sess.ID, &articleSvc.EmbedSVGRequest{
		Markup:   `<svg><script>alert(1)</script><circle r="1"/></svg>`,
		Alt:      "dot",
		Position: &pos,
	})
	if err != nil {
		t.Fatalf("EmbedSVG() error = %v", err)
	}
	svg, err := media.DecodeDataURI(node.URL)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if svg != `<svg><circle r="1"/></svg>` {
		t.Errorf("embedded svg = %q", svg)
	}

	got, err := svc.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	doc := got.Article.Document
	if len(doc) != 3 || doc[1].Tag != models.TagImg || doc[1].Alt != "dot" {
		t.Fatalf("Document = %+v, want img at index 1", doc)
	}
	if got.Stats.Images != 1 {
		t.Errorf("Images = %d, want 1", got.Stats.Images)
	}

	for _, bad := range []int{-1, 4} {
		p := bad
		_, err := svc.EmbedSVG(context.Background(), sess.ID, &articleSvc.EmbedSVGRequest{
			Markup:   "<svg/>",
			Position: &p,
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("position %d error = %v, want ErrValidation", bad, err)
		}
	}
}

func TestEmbedSVGLimits(t *testing.T) {
	svc, ws, _ := newTestService(t, Options{})
	ws.settings.MaxEmbeddedSvgBytes = 10
	sess := create(t, svc, "Post")

	_, err := svc.EmbedSVG(context.Background(), sess.ID, &articleSvc.EmbedSVGRequest{
		Markup: `<svg><rect width="10" height="10"/></svg>`,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("EmbedSVG() error = %v, want ErrValidation", err)
	}
}

func TestSave(t *testing.T) {
	svc, _, arts := newTestService(t, Options{})
	sess := create(t, svc, "Post")
	if _, err := svc.ApplyMarkup(context.Background(), sess.ID, "<p>body</p>"); err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}

	saved, err := svc.Save(context.Background(), sess.ID, &articleSvc.SaveRequest{})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Dirty {
		t.Error("session still dirty after save")
	}
	if saved.SavedAt == nil || !saved.SavedAt.Equal(fixedNow) {
		t.Errorf("SavedAt = %v, want %v", saved.SavedAt, fixedNow)
	}
	if saved.Commit != fmt.Sprintf("%040d", 1) {
		t.Errorf("Commit = %q", saved.Commit)
	}
	if saved.Article.Metadata.UpdatedDate != "2026-03-01T12:00:00Z" {
		t.Errorf("UpdatedDate = %q", saved.Article.Metadata.UpdatedDate)
	}

	written := arts.files["blog/post.json"]
	if written.Metadata.UpdatedDate != "2026-03-01T12:00:00Z" || len(written.Document) != 1 {
		t.Errorf("written article = %+v", written)
	}
	if len(arts.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(arts.commits))
	}
	c := arts.commits[0]
	if c.message != "docs: update blog/post.json" || len(c.paths) != 1 || c.paths[0] != "blog/post.json" {
		t.Errorf("commit = %+v", c)
	}

	if _, err := svc.Save(context.Background(), sess.ID, &articleSvc.SaveRequest{Message: "docs: rewrite intro"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := arts.commits[1].message; got != "docs: rewrite intro" {
		t.Errorf("commit message = %q", got)
	}
}

func TestSaveRejectsInvalidArticle(t *testing.T) {
	svc, _, arts := newTestService(t, Options{})
	sess := create(t, svc, "Post")
	if _, err := svc.ApplyMarkup(context.Background(), sess.ID, "<li>stray</li>"); err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}

	_, err := svc.Save(context.Background(), sess.ID, &articleSvc.SaveRequest{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Violations) == 0 {
		t.Fatalf("Save() error = %v, want ValidationError with violations", err)
	}
	if len(arts.commits) != 0 {
		t.Errorf("commits = %d, want 0", len(arts.commits))
	}
	if len(arts.files["blog/post.json"].Document) != 0 {
		t.Error("invalid article was written")
	}

	got, _ := svc.Get(context.Background(), sess.ID)
	if !got.Dirty {
		t.Error("failed save cleared the dirty flag")
	}
}

func TestSaveWithoutValidation(t *testing.T) {
	svc, ws, arts := newTestService(t, Options{})
	ws.settings.PreCommitValidate = false
	sess := create(t, svc, "Post")
	if _, err := svc.ApplyMarkup(context.Background(), sess.ID, "<li>stray</li>"); err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}
	if _, err := svc.Save(context.Background(), sess.ID, &articleSvc.SaveRequest{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(arts.commits) != 1 {
		t.Errorf("commits = %d, want 1", len(arts.commits))
	}
}

func TestExport(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")
	if _, err := svc.ApplyMarkup(context.Background(), sess.ID, "<h2>Intro</h2>"); err != nil {
		t.Fatalf("ApplyMarkup() error = %v", err)
	}

	out, err := svc.Export(context.Background(), sess.ID, "toml")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "+++\n") || !strings.Contains(s, "## Intro") {
		t.Errorf("Export() = %q", s)
	}

	_, err = svc.Export(context.Background(), sess.ID, "docx")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Export(docx) error = %v, want ErrValidation", err)
	}
}

func TestClose(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")

	if err := svc.Close(context.Background(), sess.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), sess.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after Close error = %v, want ErrNotFound", err)
	}
	if err := svc.Close(context.Background(), sess.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Close() error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentEdits(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	sess := create(t, svc, "Post")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			markup := fmt.Sprintf("<p>edit %d</p>", i)
			if _, err := svc.ApplyMarkup(context.Background(), sess.ID, markup); err != nil {
				t.Errorf("ApplyMarkup() error = %v", err)
			}
			if _, err := svc.Render(context.Background(), sess.ID); err != nil {
				t.Errorf("Render() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := svc.Get(context.Background(), sess.ID)
	if len(got.Article.Document) != 1 {
		t.Errorf("Document = %+v, want one paragraph", got.Article.Document)
	}
}

func TestConcurrentOpen(t *testing.T) {
	svc, _, arts := newTestService(t, Options{})
	arts.files["blog/a.json"] = models.New(models.Metadata{Title: "A"})

	ids := make([]string, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := svc.Open(context.Background(), &articleSvc.OpenArticleRequest{Workspace: testRoot, Path: "blog/a.json"})
			if err != nil {
				t.Errorf("Open() error = %v", err)
				return
			}
			ids[i] = sess.ID
			markup := fmt.Sprintf("<p>edit %d</p>", i)
			if _, err := svc.ApplyMarkup(context.Background(), sess.ID, markup); err != nil {
				t.Errorf("ApplyMarkup() error = %v", err)
			}
		}()
	}
	wg.Wait()

	for i, id := range ids {
		if id != ids[0] {
			t.Errorf("Open() #%d id = %q, want %q", i, id, ids[0])
		}
	}
	svc.mu.RLock()
	n := len(svc.sessions)
	svc.mu.RUnlock()
	if n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}
}
