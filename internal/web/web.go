// Package web provides a small browser front-end for previewing and
// applying spreadsheet syncs: upload a .bib file, inspect the parsed
// entries and the pending changes, then apply them.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rcaap/bibsheet/internal/bib"
	"github.com/rcaap/bibsheet/internal/config"
	"github.com/rcaap/bibsheet/internal/mapper"
	"github.com/rcaap/bibsheet/internal/metadata"
	"github.com/rcaap/bibsheet/internal/record"
	"github.com/rcaap/bibsheet/internal/sheet"
	"github.com/rcaap/bibsheet/internal/syncer"
)

// StoreFunc opens the spreadsheet backend for a request. The caller owns
// the returned store and must Close it.
type StoreFunc func(ctx context.Context) (sheet.Store, error)

// Server serves the upload, preview and sync pages.
type Server struct {
	cfg       *config.Config
	openStore StoreFunc
	meta      *metadata.Client
	log       *logrus.Logger
}

// NewServer builds a Server. openStore is called once per sync or preview
// request; meta may be nil to disable the DOI lookup page.
func NewServer(cfg *config.Config, openStore StoreFunc, meta *metadata.Client, log *logrus.Logger) *Server {
	return &Server{cfg: cfg, openStore: openStore, meta: meta, log: log}
}

// Handler returns the routed handler with authentication applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/preview", s.handlePreview)
	mux.HandleFunc("/sync", s.handleSync)
	mux.HandleFunc("/lookup", s.handleLookup)
	return s.requireAuth(mux)
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Web.Addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	s.log.WithField("addr", s.cfg.Web.Addr).Info("web interface listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requireAuth wraps h with HTTP basic auth when a password hash is
// configured. Credentials are checked against the bcrypt hash, never a
// plaintext password.
func (s *Server) requireAuth(h http.Handler) http.Handler {
	username := s.cfg.Web.Username
	hash := s.cfg.Web.PasswordHash
	if hash == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != username ||
			bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="bibsheet"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := indexData{LookupEnabled: s.meta != nil}
	templates.ExecuteTemplate(w, "index", data)
}

// readBib pulls the BibTeX source out of the request, from either the
// uploaded file or the pasted-back hidden field.
func readBib(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
	}
	if src := r.FormValue("source"); src != "" {
		return src, nil
	}
	file, _, err := r.FormFile("bibfile")
	if err != nil {
		return "", fmt.Errorf("no .bib file uploaded")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	source, err := readBib(r)
	if err != nil {
		s.renderError(w, err)
		return
	}
	res, err := bib.Parse(strings.NewReader(source))
	if err != nil {
		s.renderError(w, err)
		return
	}
	report, err := s.run(r.Context(), res.Entries, true)
	if err != nil {
		s.renderError(w, err)
		return
	}
	data := previewData{
		Source:   source,
		Entries:  previewEntries(res.Entries),
		Warnings: len(res.Warnings),
		Errors:   len(res.Errors),
		Plan:     planRows(report),
	}
	templates.ExecuteTemplate(w, "preview", data)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	source, err := readBib(r)
	if err != nil {
		s.renderError(w, err)
		return
	}
	res, err := bib.Parse(strings.NewReader(source))
	if err != nil {
		s.renderError(w, err)
		return
	}
	report, err := s.run(r.Context(), res.Entries, false)
	if err != nil {
		s.renderError(w, err)
		return
	}
	data := resultData{
		Entries: len(res.Entries),
		Plan:    planRows(report),
		Applied: report.Applied,
	}
	templates.ExecuteTemplate(w, "result", data)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.meta == nil {
		http.NotFound(w, r)
		return
	}
	doi := r.FormValue("doi")
	data := lookupData{DOI: doi}
	if doi != "" {
		entry, err := s.meta.LookupCrossref(r.Context(), doi)
		if metadata.IsNotFound(err) {
			entry, err = s.meta.LookupOpenAlex(r.Context(), doi)
		}
		if err != nil {
			data.Error = err.Error()
		} else {
			data.Entry = &entry
			data.Authors = scholarAuthors(entry.Authors)
		}
	}
	templates.ExecuteTemplate(w, "lookup", data)
}

// run maps entries to the relational batch and syncs them, dry or live.
func (s *Server) run(ctx context.Context, entries []record.Entry, dryRun bool) (*syncer.Report, error) {
	store, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	batch := mapper.MapEntries(entries)
	sy := syncer.New(store, s.log, syncer.Options{DryRun: dryRun, Tables: s.cfg.Tables})
	return sy.Sync(ctx, batch)
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Warn("request failed")
	w.WriteHeader(http.StatusBadRequest)
	templates.ExecuteTemplate(w, "error", errorData{Message: err.Error()})
}
