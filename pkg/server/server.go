package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/getcreddy/humanhash/pkg/config"
	"github.com/getcreddy/humanhash/pkg/dict"
	"github.com/getcreddy/humanhash/pkg/humanhash"
	"github.com/getcreddy/humanhash/pkg/source"
	"github.com/getcreddy/humanhash/pkg/store"
)

var errUnknownFormat = errors.New("unknown format")

// Config wires a Server.
type Config struct {
	Formats    *config.Config
	Registry   *dict.Registry
	Store      *store.Store // optional, enables recording and lookups
	Logger     hclog.Logger
	AuditTrail bool
}

type Server struct {
	cfg     *config.Config
	reg     *dict.Registry
	store   *store.Store
	logger  hclog.Logger
	audit   bool
	hashers map[string]*humanhash.Hasher
	mu      sync.Mutex
}

func New(c Config) *Server {
	s := &Server{
		cfg:     c.Formats,
		reg:     c.Registry,
		store:   c.Store,
		logger:  c.Logger,
		audit:   c.AuditTrail && c.Store != nil,
		hashers: make(map[string]*humanhash.Hasher),
	}
	if s.cfg == nil {
		s.cfg = &config.Config{}
	}
	if s.reg == nil {
		s.reg = dict.Default()
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Formats
	mux.HandleFunc("GET /v1/formats", s.handleListFormats)
	mux.HandleFunc("GET /v1/formats/{name}", s.handleGetFormat)
	mux.HandleFunc("POST /v1/formats/{name}/encode", s.handleEncode)
	mux.HandleFunc("POST /v1/formats/{name}/decode", s.handleDecode)

	// Issued labels
	mux.HandleFunc("GET /v1/formats/{name}/labels", s.handleListLabels)
	mux.HandleFunc("GET /v1/formats/{name}/labels/{label}", s.handleLookupLabel)

	return s.withMiddleware(mux)
}

// Reset drops the cached hashers so the next request rebinds dictionaries.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashers = make(map[string]*humanhash.Hasher)
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) hasher(name string) (*humanhash.Hasher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.hashers[name]; ok {
		return h, nil
	}
	if _, ok := s.cfg.Format(name); !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownFormat, name)
	}
	h, err := s.cfg.Hasher(name, s.reg, humanhash.WithLogger(s.logger.Named("hasher")))
	if err != nil {
		return nil, err
	}
	s.hashers[name] = h
	return h, nil
}

// FormatInfo describes a format in responses.
type FormatInfo struct {
	Name                 string `json:"name"`
	Template             string `json:"template"`
	Description          string `json:"description,omitempty"`
	Slots                int    `json:"slots"`
	Entropy              string `json:"entropy"`
	EntropyBits          int    `json:"entropy_bits"`
	EntropyDecimalDigits int    `json:"entropy_decimal_digits"`
	ByteLen              int    `json:"byte_len"`
	Unhashable           bool   `json:"unhashable"`
	Reason               string `json:"reason,omitempty"`
	Error                string `json:"error,omitempty"`
}

func (s *Server) describe(name string) FormatInfo {
	f, _ := s.cfg.Format(name)
	info := FormatInfo{Name: name, Template: f.Template, Description: f.Description}

	h, err := s.hasher(name)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Slots = h.Slots()
	info.Entropy = h.Entropy().String()
	info.EntropyBits = h.EntropyBits()
	info.EntropyDecimalDigits = h.EntropyDecimalDigits()
	info.ByteLen = h.ByteLen()
	if err := h.Validate(); err != nil {
		info.Reason = err.Error()
	} else {
		info.Unhashable = true
	}
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	names := s.cfg.FormatNames()
	infos := make([]FormatInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, s.describe(name))
	}
	json.NewEncoder(w).Encode(infos)
}

func (s *Server) handleGetFormat(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := s.cfg.Format(name); !ok {
		writeError(w, http.StatusNotFound, "unknown format: "+name)
		return
	}
	json.NewEncoder(w).Encode(s.describe(name))
}

// EncodeRequest is the body of POST /v1/formats/{name}/encode. Input is read
// as Kind (string, hex, int or uuid); Random ignores Input.
type EncodeRequest struct {
	Input  string `json:"input"`
	Kind   string `json:"kind,omitempty"`
	Random bool   `json:"random,omitempty"`
	Digest string `json:"digest,omitempty"`
	Salt   string `json:"salt,omitempty"`
	Record bool   `json:"record,omitempty"`
	Source string `json:"source,omitempty"`
}

type EncodeResponse struct {
	Format string `json:"format"`
	Label  string `json:"label"`
	Value  string `json:"value"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h, err := s.hasher(name)
	if err != nil {
		writeHasherError(w, err)
		return
	}

	var src *source.Source
	if req.Random {
		src, err = source.Random(h.ByteLen() + 8)
	} else {
		var opts []source.Option
		if req.Digest != "" {
			opts = append(opts, source.WithDigest(req.Digest))
		}
		if req.Salt != "" {
			opts = append(opts, source.WithSalt([]byte(req.Salt)))
		}
		var input any
		if input, err = source.ParseInput(req.Kind, req.Input); err == nil {
			src, err = h.Source(input, opts...)
		}
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	value := new(big.Int).Mod(src.Value(), h.Entropy())
	label, err := h.Encode(src)
	if err != nil {
		writeHasherError(w, err)
		return
	}

	if req.Record {
		if s.store == nil {
			writeError(w, http.StatusNotImplemented, "no label store configured")
			return
		}
		if _, err := s.store.RecordLabel(name, label, value, req.Source); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrCollision) {
				status = http.StatusConflict
			}
			writeError(w, status, err.Error())
			return
		}
	}
	s.logAudit(r, "encode", name, label)

	json.NewEncoder(w).Encode(EncodeResponse{Format: name, Label: label, Value: value.String()})
}

type DecodeRequest struct {
	Label string `json:"label"`
}

type DecodeResponse struct {
	Format string `json:"format"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Hex    string `json:"hex"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h, err := s.hasher(name)
	if err != nil {
		writeHasherError(w, err)
		return
	}

	v, err := h.DecodeInt(req.Label)
	if err != nil {
		writeHasherError(w, err)
		return
	}
	s.logAudit(r, "decode", name, req.Label)

	json.NewEncoder(w).Encode(DecodeResponse{
		Format: name,
		Label:  req.Label,
		Value:  v.String(),
		Hex:    hex.EncodeToString(v.FillBytes(make([]byte, h.ByteLen()))),
	})
}

type LabelResponse struct {
	Format    string `json:"format"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"created_at"`
}

func labelResponse(l *store.Label) LabelResponse {
	return LabelResponse{
		Format:    l.Format,
		Label:     l.Label,
		Value:     l.Value.String(),
		Source:    l.Source,
		CreatedAt: l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "no label store configured")
		return
	}
	labels, err := s.store.ListLabels(r.PathValue("name"), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		resp = append(resp, labelResponse(l))
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleLookupLabel(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "no label store configured")
		return
	}
	name, label := r.PathValue("name"), r.PathValue("label")
	l, err := s.store.LookupLabel(name, label)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logAudit(r, "lookup", name, label)
	json.NewEncoder(w).Encode(labelResponse(l))
}

func (s *Server) logAudit(r *http.Request, action, format, label string) {
	if !s.audit {
		return
	}
	ipAddress := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ipAddress = xff
	}
	if err := s.store.LogAuditEvent(action, format, label, "", ipAddress); err != nil {
		s.logger.Warn("failed to write audit event", "action", action, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeHasherError maps hasher failures to HTTP statuses.
func writeHasherError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errUnknownFormat):
		status = http.StatusNotFound
	case errors.Is(err, humanhash.ErrNotUnhashable):
		status = http.StatusConflict
	case errors.Is(err, humanhash.ErrWordNotFound), errors.Is(err, humanhash.ErrUnparsableInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, humanhash.ErrMalformedTemplate),
		errors.Is(err, humanhash.ErrUnknownDictionary),
		errors.Is(err, humanhash.ErrUnknownTransform),
		errors.Is(err, humanhash.ErrEmptyDictionary),
		errors.Is(err, humanhash.ErrInvalidSize),
		errors.Is(err, humanhash.ErrInvalidSourceType):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}
