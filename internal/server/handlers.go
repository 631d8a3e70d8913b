package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/pipeline"
	"github.com/matzehuels/taxonscope/pkg/render/heatmap"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MatchResponse answers /api/taxa/match.
type MatchResponse struct {
	Name string   `json:"name"`
	Rank string   `json:"rank,omitempty"`
	ID   taxon.ID `json:"id"`
}

// ChildrenResponse answers /api/taxa/{id}/children.
type ChildrenResponse struct {
	ID       taxon.ID      `json:"id"`
	Children []*taxon.Node `json:"children"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleQuery serves the heat-map page for ?family=<name>.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	family := r.URL.Query().Get("family")
	if family == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "family parameter is required"))
		return
	}
	s.serveRichness(w, r, pipeline.Options{
		Name:    family,
		Rank:    pipeline.DefaultRank,
		Formats: []string{heatmap.FormatHTML},
	})
}

func (s *Server) handleRichness(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Name:    q.Get("name"),
		Rank:    q.Get("rank"),
		Formats: []string{heatmap.FormatJSON},
	}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if v := q.Get("cap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "cap must be an integer"))
			return
		}
		if err := errors.ValidatePositive("cap", n); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.GlobalCap = n
	}
	s.serveRichness(w, r, opts)
}

func (s *Server) serveRichness(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	opts.Logger = s.logger
	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Taxon-Key", strconv.FormatInt(int64(res.TaxonID), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.cfg.Traverser.Roots(r.Context(), s.cfg.Roots)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := errors.ValidateTaxonName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	rank, err := rankParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.cfg.Traverser.Resolver().Resolve(r.Context(), name, rank)
	if stderrors.Is(err, taxon.ErrNotFound) {
		err = errors.Wrap(errors.ErrCodeTaxonNotFound, err, "no match for %q", name)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := MatchResponse{Name: name, ID: id}
	if rank.Valid() {
		resp.Rank = rank.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChildren expands one node. With ?rank= the configured rank filter
// applies; without it the raw page is returned, capped by ?limit= or the
// configured per-node cap.
func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid taxon id %q", chi.URLParam(r, "id")))
		return
	}
	rank, err := rankParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.cfg.Traverser.Options()
	limit := opts.MaxChildren
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}

	var children []*taxon.Node
	if rank.Valid() {
		children, err = s.cfg.Traverser.Expand(r.Context(), &taxon.Node{ID: taxon.ID(id), Rank: rank})
	} else {
		var records []taxon.Record
		records, err = s.cfg.Traverser.Paginator().FetchChildren(r.Context(), taxon.ID(id), opts.PageSize, limit)
		for _, rec := range records {
			children = append(children, taxon.NewNode(rec))
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rank.Valid() && len(children) > limit {
		children = children[:limit]
	}
	if children == nil {
		children = []*taxon.Node{}
	}
	writeJSON(w, http.StatusOK, ChildrenResponse{ID: taxon.ID(id), Children: children})
}

func rankParam(r *http.Request) (taxon.Rank, error) {
	v := r.URL.Query().Get("rank")
	if v == "" {
		return taxon.Unranked, nil
	}
	rank, err := taxon.LookupRank(v)
	if err != nil {
		return taxon.Unranked, errors.Wrap(errors.ErrCodeInvalidRank, err, "invalid rank %q", v)
	}
	return rank, nil
}

func contentType(format string) string {
	switch format {
	case heatmap.FormatHTML:
		return "text/html; charset=utf-8"
	case heatmap.FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps coded errors to their status. Cancelled requests are
// logged and dropped; uncoded errors are masked.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, context.Canceled) {
		s.logger.Debug("request cancelled", "path", r.URL.Path)
		return
	}
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		resp = ErrorResponse{Code: string(errors.ErrCodeInternal), Message: "internal server error"}
	}
	writeJSON(w, status, resp)
}
