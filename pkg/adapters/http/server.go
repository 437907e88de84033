package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/observability"
	"github.com/aretw0/tradecoin/pkg/registry"
	"github.com/go-chi/chi/v5"
)

// CallerHeader carries the address the operation is executed for.
const CallerHeader = "X-Caller"

// EventSource returns the committed events after a sequence number.
type EventSource interface {
	Events(since uint64) []domain.Event
}

// Server exposes the ledger operations over HTTP.
type Server struct {
	Ops     *registry.Registry
	Events  EventSource
	Streams *observability.Broadcaster
}

// NewHandler creates a new HTTP handler for the ledger. streams may be nil, in which
// case the event stream only replays history.
func NewHandler(ops *registry.Registry, events EventSource, streams *observability.Broadcaster) http.Handler {
	s := &Server{Ops: ops, Events: events, Streams: streams}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/operations", s.ListOperations)
		r.Post("/ops/{op}", s.Call)
		r.Get("/events", s.ListEvents)
		r.Get("/events/stream", s.SubscribeEvents)
		r.Get("/{ledger}/{id}", s.GetAsset)
		r.Get("/{ledger}/{id}/journey", s.GetJourney)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID, "+CallerHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// OperationInfo describes an operation for clients.
type OperationInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Mutating    bool             `json:"mutating"`
	Params      []registry.Param `json:"params"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tradecoin-http",
		"version": strings.TrimSpace(tradecoin.Version),
	})
}

// ListOperations handles GET /v1/operations.
func (s *Server) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops := s.Ops.List()
	out := make([]OperationInfo, len(ops))
	for i, op := range ops {
		out[i] = OperationInfo{Name: op.Name, Description: op.Description, Mutating: op.Mutating, Params: op.Params}
	}
	writeJSON(w, http.StatusOK, out)
}

// Call handles POST /v1/ops/{op}. The body is a JSON object of arguments.
func (s *Server) Call(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "op")
	caller := domain.Address(r.Header.Get(CallerHeader))

	op, ok := s.Ops.Lookup(name)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", registry.ErrUnknownOperation, name))
		return
	}
	if op.Mutating && caller.IsZero() {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing " + CallerHeader + " header", Kind: "authorization"})
		return
	}

	args := map[string]any{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("Call: Invalid request body", "op", name, "error", err)
		writeError(w, fmt.Errorf("%w: %v", registry.ErrInvalidArguments, err))
		return
	}

	result, err := s.Ops.Execute(r.Context(), name, caller, args)
	if err != nil {
		slog.Debug("Call: Operation rejected", "op", name, "caller", caller, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

// ListEvents handles GET /v1/events?since=N.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, err)
		return
	}
	events := s.Events.Events(since)
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

var assetQueries = map[domain.Ledger]string{
	domain.LedgerTokenizer:   "tokenizer.claim",
	domain.LedgerCommodity:   "commodity.get",
	domain.LedgerComposition: "composition.get",
}

// GetAsset handles GET /v1/{ledger}/{id}.
func (s *Server) GetAsset(w http.ResponseWriter, r *http.Request) {
	ledger, id, err := assetParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.Ops.Execute(r.Context(), assetQueries[ledger], "", map[string]any{"id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetJourney handles GET /v1/{ledger}/{id}/journey.
func (s *Server) GetJourney(w http.ResponseWriter, r *http.Request) {
	ledger, id, err := assetParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.Ops.Execute(r.Context(), "ledger.journey", "", map[string]any{"ledger": string(ledger), "id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	if events, ok := result.([]domain.Event); ok && events == nil {
		result = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, result)
}

// SubscribeEvents handles GET /v1/events/stream (SSE). It replays the events after
// ?since (or Last-Event-ID) and then follows new commits.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	from := r.URL.Query().Get("since")
	if id := r.Header.Get("Last-Event-ID"); id != "" {
		from = id
	}
	since, err := parseSince(from)
	if err != nil {
		writeError(w, err)
		return
	}

	// Subscribe before replaying so that nothing committed in between is lost.
	var live <-chan domain.Event
	if s.Streams != nil {
		ch, cancel := s.Streams.Subscribe()
		defer cancel()
		live = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	last := since
	for _, e := range s.Events.Events(since) {
		writeEvent(w, e)
		last = e.Seq
	}
	flusher.Flush()

	if live == nil {
		return
	}
	slog.Info("SSE: Client subscribed", "since", since)
	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE Client Disconnected")
			return
		case e, ok := <-live:
			if !ok {
				return
			}
			if e.Seq <= last {
				continue
			}
			last = e.Seq
			writeEvent(w, e)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func writeEvent(w io.Writer, e domain.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("SSE: Event encode failed", "seq", e.Seq, "error", err)
		return
	}
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Seq, e.Name, data)
}

func assetParams(r *http.Request) (domain.Ledger, uint64, error) {
	ledger, ok := domain.ParseLedger(chi.URLParam(r, "ledger"))
	if !ok {
		return "", 0, fmt.Errorf("%w: unknown ledger %q", registry.ErrUnknownOperation, chi.URLParam(r, "ledger"))
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: id must be a non-negative integer", registry.ErrInvalidArguments)
	}
	return ledger, id, nil
}

func parseSince(v string) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	since, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: since must be a non-negative integer", registry.ErrInvalidArguments)
	}
	return since, nil
}

// StatusOf maps an operation error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, registry.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrInvalidArguments):
		return http.StatusBadRequest
	}
	switch domain.KindOf(err) {
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindEscrow:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	kind := string(domain.KindOf(err))
	switch {
	case errors.Is(err, registry.ErrUnknownOperation):
		kind = string(domain.KindNotFound)
	case errors.Is(err, registry.ErrInvalidArguments):
		kind = string(domain.KindValidation)
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
