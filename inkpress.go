// Package inkpress is a markdown-driven blog engine built with Go, Echo, and
// templ. Posts are plain markdown files with YAML front-matter, validated and
// indexed at startup, then served with listing, tag, search, and pagination
// views plus RSS and sitemap out of the box.
//
// Users provide their own templ components via the ViewFuncs struct, and
// inkpress handles the query pipeline, handler logic, and middleware.
package inkpress

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/ewestberg/inkpress/content"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home        func(posts []content.Post, state PageState, term string, view ViewMode, tags []TagCount, siteURL string) templ.Component
	HomePartial func(posts []content.Post, state PageState, term string, view ViewMode, tags []TagCount) templ.Component
	TagDetail   func(tag string, posts []content.Post, state PageState, siteURL string) templ.Component
	Post        func(post content.Post, adjacent content.Adjacent, siteURL string) templ.Component
	Empty       func(query string, tags []TagCount) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central inkpress application. It wires together the content
// store, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *content.Store
	Views  ViewFuncs

	searchLimiter *SearchLimiter
	customRoutes  []func(*App)
	staticDir     string
	contentFS     fs.FS
}

// New creates a new inkpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start builds the post index from the content source, sets up middleware
// and routes, and starts the server.
func (a *App) Start() error {
	store, err := content.NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkpress: init store: %w", err)
	}
	a.Store = store

	src := a.contentFS
	if src == nil {
		src = os.DirFS(a.Config.ContentDir)
	}
	n, err := store.Ingest(src)
	if err != nil {
		return fmt.Errorf("inkpress: ingest content: %w", err)
	}
	a.Echo.Logger.Infof("inkpress: indexed %d posts", n)

	a.searchLimiter = NewSearchLimiter(30, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Serve embedded framework assets under /public/, falling through to the
	// user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/inkpress.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/view-toggle.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/covers/:name", a.handleCover)

	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:path/", a.handlePost)
	e.GET("/tags/:tag/", a.handleTag)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("inkpress: required environment variable %s is not set", key)
	}
	return v
}
