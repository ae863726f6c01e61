// Package notiontest provides an in-memory fake of the Notion REST API for
// tests.
package notiontest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nsynca/nsynca/internal/notion"
)

// Token is the integration token the fake server accepts.
const Token = "secret_test_token"

// Request records one API call.
type Request struct {
	Method string
	Path   string
}

// Server is a fake Notion API backed by an in-memory page store.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]*notion.Page
	order    []string
	nextID   int
	requests []Request
	failures map[string]int
	queryErr map[string]int

	// PageSize caps query results per page to exercise pagination.
	PageSize int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		pages:    make(map[string]*notion.Page),
		failures: make(map[string]int),
		queryErr: make(map[string]int),
		PageSize: 100,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/databases/{id}/query", s.handleQuery)
	mux.HandleFunc("GET /v1/pages/{id}", s.handleGetPage)
	mux.HandleFunc("POST /v1/pages", s.handleCreatePage)
	mux.HandleFunc("PATCH /v1/pages/{id}", s.handleUpdatePage)
	s.Server = httptest.NewServer(s.authorize(mux))
	t.Cleanup(s.Close)
	return s
}

// Client returns a notion.Client talking to the fake server.
func (s *Server) Client() *notion.Client {
	return s.ClientWithToken(Token)
}

// ClientWithToken returns a client using token, to exercise auth failures.
func (s *Server) ClientWithToken(token string) *notion.Client {
	return notion.NewClient(token, notion.Options{
		BaseURL:           s.URL + "/v1",
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
	})
}

// AddPage stores a page in database dbID and returns its ID.
func (s *Server) AddPage(dbID string, props map[string]notion.PropertyValue) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPageLocked(dbID, props)
}

func (s *Server) addPageLocked(dbID string, props map[string]notion.PropertyValue) string {
	s.nextID++
	id := fmt.Sprintf("00000000-0000-0000-0000-%012d", s.nextID)
	if props == nil {
		props = map[string]notion.PropertyValue{}
	}
	now := time.Now().UTC()
	s.pages[id] = &notion.Page{
		Object:         "page",
		ID:             id,
		CreatedTime:    now,
		LastEditedTime: now,
		Parent:         notion.Parent{Type: "database_id", DatabaseID: dbID},
		Properties:     props,
	}
	s.order = append(s.order, id)
	return id
}

// Page returns a copy of the stored page.
func (s *Server) Page(id string) (notion.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return notion.Page{}, false
	}
	return *p, true
}

// Pages returns the pages of a database in creation order.
func (s *Server) Pages(dbID string) []notion.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notion.Page
	for _, id := range s.order {
		if p := s.pages[id]; p.Parent.DatabaseID == dbID {
			out = append(out, *p)
		}
	}
	return out
}

// FailPage makes writes to page id fail with the given HTTP status.
func (s *Server) FailPage(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = status
}

// FailQuery makes queries of database dbID fail with the given HTTP status.
func (s *Server) FailQuery(dbID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErr[dbID] = status
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountWrites returns the number of create and update calls received.
func (s *Server) CountWrites() int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == http.MethodPost && r.Path == "/v1/pages" || r.Method == http.MethodPatch {
			n++
		}
	}
	return n
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, http.StatusUnauthorized, notion.CodeUnauthorized, "API token is invalid.")
			return
		}
		if r.Header.Get("Notion-Version") == "" {
			writeError(w, http.StatusBadRequest, "missing_version", "Notion-Version header failed validation.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type queryRequest struct {
	Filter      json.RawMessage `json:"filter"`
	StartCursor string          `json:"start_cursor"`
	PageSize    int             `json:"page_size"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	dbID := r.PathValue("id")
	s.mu.Lock()
	status, failing := s.queryErr[dbID]
	s.mu.Unlock()
	if failing {
		writeError(w, status, "internal_server_error", "query failed")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, notion.CodeValidation, err.Error())
		return
	}
	var filter map[string]any
	if len(req.Filter) > 0 && string(req.Filter) != "null" {
		if err := json.Unmarshal(req.Filter, &filter); err != nil {
			writeError(w, http.StatusBadRequest, notion.CodeValidation, err.Error())
			return
		}
	}

	s.mu.Lock()
	var matched []notion.Page
	for _, id := range s.order {
		p := s.pages[id]
		if p.Parent.DatabaseID != dbID || p.Archived {
			continue
		}
		if filter == nil || matches(p, filter) {
			matched = append(matched, *p)
		}
	}
	s.mu.Unlock()

	start := 0
	if req.StartCursor != "" {
		n, err := strconv.Atoi(req.StartCursor)
		if err != nil {
			writeError(w, http.StatusBadRequest, notion.CodeValidation, "invalid start_cursor")
			return
		}
		start = n
	}
	size := req.PageSize
	if size <= 0 || size > s.PageSize {
		size = s.PageSize
	}
	end := min(start+size, len(matched))
	if start > end {
		start = end
	}

	resp := notion.QueryResponse{Object: "list", Results: matched[start:end]}
	if end < len(matched) {
		next := strconv.Itoa(end)
		resp.NextCursor = &next
		resp.HasMore = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.pages[r.PathValue("id")]
	var page notion.Page
	if ok {
		page = *p
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, notion.CodeObjectNotFound, "Could not find page.")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type writeRequest struct {
	Parent     notion.Parent              `json:"parent"`
	Properties map[string]json.RawMessage `json:"properties"`
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, notion.CodeValidation, err.Error())
		return
	}
	props, err := decodeProperties(req.Properties)
	if err != nil {
		writeError(w, http.StatusBadRequest, notion.CodeValidation, err.Error())
		return
	}
	if req.Parent.DatabaseID == "" {
		writeError(w, http.StatusBadRequest, notion.CodeValidation, "parent.database_id is required")
		return
	}

	s.mu.Lock()
	id := s.addPageLocked(req.Parent.DatabaseID, props)
	page := *s.pages[id]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, notion.CodeValidation, err.Error())
		return
	}
	props, err := decodeProperties(req.Properties)
	if err != nil {
		writeError(w, http.StatusBadRequest, notion.CodeValidation, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.failures[id]; ok {
		writeError(w, status, notion.CodeValidation, "page rejected the update")
		return
	}
	p, ok := s.pages[id]
	if !ok {
		writeError(w, http.StatusNotFound, notion.CodeObjectNotFound, "Could not find page.")
		return
	}
	for name, pv := range props {
		p.Properties[name] = pv
	}
	p.LastEditedTime = time.Now().UTC()
	writeJSON(w, http.StatusOK, *p)
}

// decodeProperties turns request property objects into stored values.
// Each object has a single key naming its type.
func decodeProperties(raw map[string]json.RawMessage) (map[string]notion.PropertyValue, error) {
	out := make(map[string]notion.PropertyValue, len(raw))
	for name, data := range raw {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		var pv notion.PropertyValue
		if err := json.Unmarshal(data, &pv); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		for k := range keys {
			pv.Type = k
		}
		fillPlainText(pv.Title)
		fillPlainText(pv.RichText)
		out[name] = pv
	}
	return out, nil
}

func fillPlainText(rt []notion.RichText) {
	for i := range rt {
		if rt[i].Text != nil {
			rt[i].PlainText = rt[i].Text.Content
		}
	}
}

func matches(p *notion.Page, f map[string]any) bool {
	if subs, ok := f["and"].([]any); ok {
		for _, sub := range subs {
			m, _ := sub.(map[string]any)
			if !matches(p, m) {
				return false
			}
		}
		return true
	}
	if subs, ok := f["or"].([]any); ok {
		for _, sub := range subs {
			m, _ := sub.(map[string]any)
			if matches(p, m) {
				return true
			}
		}
		return false
	}

	name, _ := f["property"].(string)
	pv := p.Properties[name]
	for _, kind := range []string{"select", "status", "title", "rich_text", "relation"} {
		cond, ok := f[kind].(map[string]any)
		if !ok {
			continue
		}
		switch kind {
		case "select":
			want, _ := cond["equals"].(string)
			return pv.Select != nil && pv.Select.Name == want
		case "status":
			want, _ := cond["equals"].(string)
			return pv.Status != nil && pv.Status.Name == want
		case "title":
			want, _ := cond["equals"].(string)
			return plain(pv.Title) == want
		case "rich_text":
			want, _ := cond["equals"].(string)
			return plain(pv.RichText) == want
		case "relation":
			want, _ := cond["contains"].(string)
			for _, rel := range pv.Relation {
				if notion.NormalizeID(rel.ID) == notion.NormalizeID(want) {
					return true
				}
			}
			return false
		}
	}
	return false
}

func plain(rt []notion.RichText) string {
	var parts []string
	for _, r := range rt {
		parts = append(parts, r.PlainText)
	}
	return strings.Join(parts, "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, notion.Error{Object: "error", Status: status, Code: code, Message: message})
}

// Helpers to build stored property values.

// TitleValue returns a stored title value.
func TitleValue(s string) notion.PropertyValue {
	return notion.PropertyValue{Type: "title", Title: []notion.RichText{{Type: "text", Text: &notion.TextContent{Content: s}, PlainText: s}}}
}

// TextValue returns a stored rich text value.
func TextValue(s string) notion.PropertyValue {
	return notion.PropertyValue{Type: "rich_text", RichText: []notion.RichText{{Type: "text", Text: &notion.TextContent{Content: s}, PlainText: s}}}
}

// SelectValue returns a stored select value.
func SelectValue(name string) notion.PropertyValue {
	return notion.PropertyValue{Type: "select", Select: &notion.SelectValue{Name: name}}
}

// StatusValue returns a stored status value.
func StatusValue(name string) notion.PropertyValue {
	return notion.PropertyValue{Type: "status", Status: &notion.SelectValue{Name: name}}
}

// DateValue returns a stored date value.
func DateValue(start string) notion.PropertyValue {
	return notion.PropertyValue{Type: "date", Date: &notion.DateValue{Start: start}}
}

// NumberValue returns a stored number value.
func NumberValue(n float64) notion.PropertyValue {
	return notion.PropertyValue{Type: "number", Number: &n}
}

// RelationValue returns a stored relation value.
func RelationValue(ids ...string) notion.PropertyValue {
	rel := make([]notion.RelationValue, 0, len(ids))
	for _, id := range ids {
		rel = append(rel, notion.RelationValue{ID: id})
	}
	return notion.PropertyValue{Type: "relation", Relation: rel}
}

// RollupDateValue returns a stored rollup value holding a date.
func RollupDateValue(start string) notion.PropertyValue {
	return notion.PropertyValue{Type: "rollup", Rollup: &notion.RollupValue{Type: "date", Date: &notion.DateValue{Start: start}}}
}
