// Package docs renders the project's Data Docs sites: static HTML pages for
// every expectation suite and stored validation result.
package docs

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/expectation-labs/gxctl/internal/logging"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/suite"
	"github.com/expectation-labs/gxctl/internal/validation"
)

//go:embed templates
var templateFS embed.FS

var pages = template.Must(template.New("docs").Funcs(template.FuncMap{
	"kwargs": formatKwargs,
}).ParseFS(templateFS, "templates/*.html.tmpl"))

const (
	customStylesSource = "plugins/custom_data_docs/styles/data_docs_custom_styles.css"
	stylesDir          = "static/styles"
)

// Site is a built Data Docs site.
type Site struct {
	Name string
	// URL is a file:// URL of the site's index page.
	URL string
}

// BuildRequest selects the project to render. Config is opened from
// ProjectDir when nil.
type BuildRequest struct {
	ProjectDir string
	Config     *project.ConfigStore
}

// SiteBuilder builds every configured Data Docs site.
type SiteBuilder interface {
	Build(ctx context.Context, req BuildRequest) ([]Site, error)
}

// HTMLBuilder renders sites as static HTML.
type HTMLBuilder struct {
	Generator string
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewHTMLBuilder returns a builder that stamps pages with generator.
func NewHTMLBuilder(generator string, logger *slog.Logger) *HTMLBuilder {
	return &HTMLBuilder{Generator: generator, Logger: logging.OrDiscard(logger), Now: time.Now}
}

// content is what every site renders.
type content struct {
	suites  []*suite.Suite
	results []storedResult
	styles  []byte
}

type storedResult struct {
	record validation.Record
	result *validation.Result
}

// Build implements SiteBuilder. Sites are rendered concurrently.
func (b *HTMLBuilder) Build(ctx context.Context, req BuildRequest) ([]Site, error) {
	cfg := req.Config
	if cfg == nil {
		var err error
		if cfg, err = project.Open(req.ProjectDir); err != nil {
			return nil, err
		}
	}

	sites, err := cfg.DataDocsSites()
	if err != nil {
		return nil, err
	}
	c, err := b.collect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	built := make([]Site, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			s, err := b.buildSite(gctx, site, c)
			if err != nil {
				return fmt.Errorf("building site %s: %w", site.Name, err)
			}
			built[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return built, nil
}

func (b *HTMLBuilder) collect(ctx context.Context, cfg *project.ConfigStore) (*content, error) {
	suites := suite.NewRegistry(cfg)
	keys, err := suites.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	c := &content{}
	for _, k := range keys {
		s, err := suites.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		c.suites = append(c.suites, s)
	}

	store := validation.NewStore(cfg)
	records, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		r, err := store.Load(rec)
		if err != nil {
			// One unreadable result should not hide the rest of the site.
			b.Logger.Warn("skipping validation result", "path", rec.Path, "error", err)
			continue
		}
		c.results = append(c.results, storedResult{record: rec, result: r})
	}

	styles, err := os.ReadFile(filepath.Join(cfg.Dir(), filepath.FromSlash(customStylesSource)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading custom styles: %w", err)
	}
	c.styles = styles
	return c, nil
}

func (b *HTMLBuilder) buildSite(ctx context.Context, site project.SiteConfig, c *content) (Site, error) {
	base := site.StoreBackend.BaseDirectory
	builtAt := b.Now().UTC().Format(time.RFC3339)
	common := func(rel, title string, crumbs []string) pageData {
		return pageData{
			Title:     title,
			Root:      strings.Repeat("../", strings.Count(rel, "/")),
			Crumbs:    crumbs,
			BuiltAt:   builtAt,
			Generator: b.Generator,
			SiteName:  site.Name,
		}
	}

	assets := map[string]*assetRow{}
	row := func(name string) *assetRow {
		if assets[name] == nil {
			assets[name] = &assetRow{Name: name}
		}
		return assets[name]
	}

	for _, s := range c.suites {
		if err := ctx.Err(); err != nil {
			return Site{}, err
		}
		rel := path.Join("expectations", filepath.ToSlash(s.Key.RelPath())+".html")
		data := common(rel, s.Name, []string{s.Key.DataAssetName(), s.Name})
		data.Suite = s
		if err := render(filepath.Join(base, filepath.FromSlash(rel)), "suite", data); err != nil {
			return Site{}, err
		}
		r := row(s.Key.DataAssetName())
		r.Suites = append(r.Suites, link{Label: s.Name, Link: rel})
	}

	for _, sr := range c.results {
		if err := ctx.Err(); err != nil {
			return Site{}, err
		}
		rel := path.Join("validations", sr.record.RunID, filepath.ToSlash(sr.record.Key.RelPath())+".html")
		data := common(rel, sr.record.Key.Suite, []string{sr.record.Key.DataAssetName(), sr.record.RunID})
		data.Result = sr.result
		if err := render(filepath.Join(base, filepath.FromSlash(rel)), "validation", data); err != nil {
			return Site{}, err
		}
		r := row(sr.record.Key.DataAssetName())
		r.Validations = append(r.Validations, link{
			Label:   sr.record.RunID + " " + sr.record.Key.Suite,
			Link:    rel,
			Success: sr.result.Success,
		})
	}

	index := common("index.html", site.Name, nil)
	for _, name := range sortedKeys(assets) {
		index.Assets = append(index.Assets, *assets[name])
	}
	indexPath := filepath.Join(base, "index.html")
	if err := render(indexPath, "index", index); err != nil {
		return Site{}, err
	}

	if err := b.writeStyles(base, c.styles); err != nil {
		return Site{}, err
	}

	b.Logger.Debug("data docs site built", "site", site.Name, "suites", len(c.suites), "validations", len(c.results))
	return Site{Name: site.Name, URL: fileURL(indexPath)}, nil
}

func (b *HTMLBuilder) writeStyles(base string, custom []byte) error {
	defaults, err := templateFS.ReadFile("templates/data_docs_default_styles.css")
	if err != nil {
		return err
	}
	dir := filepath.Join(base, filepath.FromSlash(stylesDir))
	if err := project.WriteFileAtomic(filepath.Join(dir, "data_docs_default_styles.css"), defaults, 0o644); err != nil {
		return err
	}
	return project.WriteFileAtomic(filepath.Join(dir, "data_docs_custom_styles.css"), custom, 0o644)
}

type pageData struct {
	Title     string
	Root      string
	Crumbs    []string
	BuiltAt   string
	Generator string
	SiteName  string
	Assets    []assetRow
	Suite     *suite.Suite
	Result    *validation.Result
}

type assetRow struct {
	Name        string
	Suites      []link
	Validations []link
}

type link struct {
	Label   string
	Link    string
	Success bool
}

func render(dest, name string, data pageData) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return project.WriteFileAtomic(dest, buf.Bytes(), 0o644)
}

func formatKwargs(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func sortedKeys(m map[string]*assetRow) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fileURL(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs
}
