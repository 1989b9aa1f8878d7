// Package article implements editing sessions over article files stored
// in git workspaces.
package article

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blogwriter/internal/domain"
	models "blogwriter/internal/domain/models/article"
	articleRepo "blogwriter/internal/domain/repositories/article"
	articleSvc "blogwriter/internal/domain/services/article"
	"blogwriter/internal/service/article/export"
	"blogwriter/internal/service/article/markup"
	"blogwriter/internal/service/article/media"
	"blogwriter/internal/service/article/sanitizer"
	"blogwriter/internal/service/article/schema"
)

// Options toggles optional processing steps.
type Options struct {
	StrictMarkup bool // run editor markup through the vocabulary policy
	MinifySVG    bool // minify embedded SVG before encoding
}

// session is one open article. mu serialises edits to it.
// root and path never change after register and may be read without mu.
type session struct {
	mu         sync.Mutex
	ws         *models.Workspace
	root, path string
	data       models.Session
}

// articleService implements the ArticleService interface
type articleService struct {
	workspaces articleRepo.WorkspaceRepository
	articles   articleRepo.ArticleRepository
	validator  *schema.Validator
	engine     *markup.Engine
	sanitizer  *sanitizer.MarkupSanitizer
	exporter   *export.Exporter
	analyzer   articleSvc.ContentAnalyzer
	opts       Options
	now        func() time.Time
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewArticleService creates a new article service
func NewArticleService(
	workspaces articleRepo.WorkspaceRepository,
	articles articleRepo.ArticleRepository,
	validator *schema.Validator,
	engine *markup.Engine,
	opts Options,
	logger *slog.Logger,
) articleSvc.ArticleService {
	s := &articleService{
		workspaces: workspaces,
		articles:   articles,
		validator:  validator,
		engine:     engine,
		exporter:   export.NewExporter(engine),
		analyzer:   NewContentAnalyzer(),
		opts:       opts,
		now:        time.Now,
		logger:     logger,
		sessions:   make(map[string]*session),
	}
	if opts.StrictMarkup {
		s.sanitizer = sanitizer.NewMarkupSanitizer()
	}
	return s
}

// Open loads an article file into a session. Opening a file that already
// has a session returns that session.
func (s *articleService) Open(ctx context.Context, req *articleSvc.OpenArticleRequest) (*models.Session, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Workspace, validation.Required),
		validation.Field(&req.Path, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ws, err := s.workspaces.Open(ctx, req.Workspace)
	if err != nil {
		return nil, err
	}
	path := cleanPath(req.Path)
	if existing := s.find(ws.Root, path); existing != nil {
		return existing.lockedSnapshot(), nil
	}

	a, err := s.articles.Read(ctx, ws, path)
	if err != nil {
		return nil, err
	}
	sess, created := s.register(ws, path, a)
	if !created {
		return sess.lockedSnapshot(), nil
	}

	s.logger.Info("article opened",
		"id", sess.data.ID,
		"workspace", ws.Root,
		"path", path,
	)
	return sess.lockedSnapshot(), nil
}

// Create writes a new empty article and opens it.
func (s *articleService) Create(ctx context.Context, req *articleSvc.CreateArticleRequest) (*models.Session, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Workspace, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.By(notBlank("title"))),
		validation.Field(&req.Path, validation.When(req.Path != "",
			validation.By(hasSuffix(articleExt)),
		)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ws, err := s.workspaces.Open(ctx, req.Workspace)
	if err != nil {
		return nil, err
	}

	path := defaultPath(req.Title)
	if req.Path != "" {
		path = cleanPath(req.Path)
	}
	exists, err := s.articles.Exists(ctx, ws, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("article %s already exists", path),
			ResourceType: "article",
			ResourceID:   path,
		}
	}

	meta := models.Metadata{
		Title:       strings.TrimSpace(req.Title),
		Author:      req.Author,
		Description: req.Description,
		Keywords:    req.Keywords,
	}
	if meta.Author == "" {
		meta.Author = ws.Settings.DefaultAuthor
	}
	if len(meta.Keywords) == 0 && len(ws.Settings.DefaultKeywords) > 0 {
		meta.Keywords = append([]string(nil), ws.Settings.DefaultKeywords...)
	}
	a := models.New(meta)

	if err := s.articles.Write(ctx, ws, path, a); err != nil {
		return nil, err
	}
	sess, created := s.register(ws, path, a)
	if !created {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("article %s is already open", path),
			ResourceType: "article",
			ResourceID:   path,
		}
	}

	s.logger.Info("article created",
		"id", sess.data.ID,
		"workspace", ws.Root,
		"path", path,
	)
	return sess.lockedSnapshot(), nil
}

// Get returns a session snapshot.
func (s *articleService) Get(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// ApplyMarkup replaces the document with the editor's markup.
func (s *articleService) ApplyMarkup(ctx context.Context, id, markup string) (*models.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	if s.sanitizer != nil {
		if markup, err = s.sanitizer.Sanitize(markup); err != nil {
			return nil, fmt.Errorf("sanitize markup: %w", err)
		}
	}
	nodes, err := s.engine.Deserialize(markup)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.replace(sess, func(a *models.Article) { a.Document = nodes })

	s.logger.Debug("markup applied",
		"id", id,
		"bytes", len(markup),
		"nodes", len(nodes),
	)
	return sess.snapshot(), nil
}

// Render serializes the document for the editor.
func (s *articleService) Render(ctx context.Context, id string) (string, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	doc := sess.data.Article.Document
	sess.mu.Unlock()
	return s.engine.Serialize(doc)
}

// UpdateMetadata applies the fields present in req.
func (s *articleService) UpdateMetadata(ctx context.Context, id string, req *articleSvc.UpdateMetadataRequest) (*models.Session, error) {
	if req.Title.Present && (req.Title.Value == nil || strings.TrimSpace(*req.Title.Value) == "") {
		return nil, fmt.Errorf("%w: title: cannot be blank", domain.ErrValidation)
	}
	if req.PublicationDate.Present && req.PublicationDate.Value != nil {
		if err := validation.Validate(*req.PublicationDate.Value, validation.Date(models.DateFormat)); err != nil {
			return nil, fmt.Errorf("%w: publicationDate: %v", domain.ErrValidation, err)
		}
	}

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.replace(sess, func(a *models.Article) {
		m := &a.Metadata
		if req.Title.Present {
			m.Title = strings.TrimSpace(*req.Title.Value)
		}
		apply(&m.Author, req.Author)
		apply(&m.Description, req.Description)
		apply(&m.PublicationDate, req.PublicationDate)
		if req.Keywords != nil {
			m.Keywords = append([]string(nil), (*req.Keywords)...)
		}
	})
	return sess.snapshot(), nil
}

// EmbedSVG inserts an img node holding the sanitized image.
func (s *articleService) EmbedSVG(ctx context.Context, id string, req *articleSvc.EmbedSVGRequest) (*models.Node, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Markup, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	pipeline := s.pipeline(sess.ws)
	node, err := pipeline.Embed(req.Markup, req.Alt)
	if err != nil {
		return nil, err
	}

	doc := sess.data.Article.Document
	pos := len(doc)
	if req.Position != nil {
		pos = *req.Position
		if pos < 0 || pos > len(doc) {
			return nil, fmt.Errorf("%w: position %d is outside the document (0-%d)", domain.ErrValidation, pos, len(doc))
		}
	}
	s.replace(sess, func(a *models.Article) {
		next := make([]models.Node, 0, len(doc)+1)
		next = append(next, doc[:pos]...)
		next = append(next, node)
		a.Document = append(next, doc[pos:]...)
	})

	s.logger.Info("svg embedded",
		"id", id,
		"position", pos,
		"url_bytes", len(node.URL),
	)
	return &node, nil
}

// Save validates, writes and commits the article.
func (s *articleService) Save(ctx context.Context, id string, req *articleSvc.SaveRequest) (*models.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now().UTC()
	next := *sess.data.Article
	next.Metadata.UpdatedDate = now.Format(models.DateFormat)

	if sess.ws.Settings.PreCommitValidate {
		if err := s.validator.Validate(&next); err != nil {
			return nil, err
		}
	}

	path := sess.data.Path
	if err := s.articles.Write(ctx, sess.ws, path, &next); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = "docs: update " + path
	}
	hash, err := s.articles.Commit(ctx, sess.ws, message, path)
	if err != nil {
		return nil, err
	}

	sess.data.Article = &next
	sess.data.Dirty = false
	sess.data.SavedAt = &now
	sess.data.Commit = hash

	s.logger.Info("article saved",
		"id", id,
		"path", path,
		"commit", hash,
	)
	return sess.snapshot(), nil
}

// Export renders the article as Markdown.
func (s *articleService) Export(ctx context.Context, id, format string) ([]byte, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	a := *sess.data.Article
	sess.mu.Unlock()
	return s.exporter.Markdown(&a, f)
}

// Close discards a session.
func (s *articleService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	delete(s.sessions, id)
	s.logger.Info("article closed", "id", id)
	return nil
}

// register opens a session for the file unless one already exists, in
// which case the existing session is returned with created false.
func (s *articleService) register(ws *models.Workspace, path string, a *models.Article) (sess *session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.findLocked(ws.Root, path); existing != nil {
		return existing, false
	}
	sess = &session{
		ws:   ws,
		root: ws.Root,
		path: path,
		data: models.Session{
			ID:        uuid.NewString(),
			Workspace: ws.Root,
			Path:      path,
			Article:   a,
			Stats:     s.analyzer.Stats(a.Document),
			OpenedAt:  s.now().UTC(),
		},
	}
	s.sessions[sess.data.ID] = sess
	return sess, true
}

func (s *articleService) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	return sess, nil
}

func (s *articleService) find(root, path string) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(root, path)
}

// Caller holds s.mu.
func (s *articleService) findLocked(root, path string) *session {
	for _, sess := range s.sessions {
		if sess.root == root && sess.path == path {
			return sess
		}
	}
	return nil
}

// replace applies edit to a copy of the session's article and swaps it in.
// Snapshots handed out earlier keep pointing at the old value.
// Caller holds sess.mu.
func (s *articleService) replace(sess *session, edit func(*models.Article)) {
	next := *sess.data.Article
	edit(&next)
	sess.data.Article = &next
	sess.data.Stats = s.analyzer.Stats(next.Document)
	sess.data.Dirty = true
}

func (s *articleService) pipeline(ws *models.Workspace) *media.Pipeline {
	limits := media.Limits{
		MaxBytes: ws.Settings.MaxEmbeddedSvgBytes,
		MaxNodes: ws.Settings.MaxSvgNodeCount,
	}
	var opts []media.Option
	if s.opts.MinifySVG {
		opts = append(opts, media.WithMinify())
	}
	return media.NewPipeline(limits, s.logger, opts...)
}

// snapshot copies the session. Caller holds sess.mu.
func (sess *session) snapshot() *models.Session {
	data := sess.data
	return &data
}

func (sess *session) lockedSnapshot() *models.Session {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot()
}

func apply(field *string, v articleSvc.OptionalField) {
	if !v.Present {
		return
	}
	if v.Value == nil {
		*field = ""
		return
	}
	*field = *v.Value
}

func notBlank(name string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be blank", name)
		}
		return nil
	}
}

func hasSuffix(ext string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); !strings.HasSuffix(s, ext) {
			return fmt.Errorf("must end with %s", ext)
		}
		return nil
	}
}
