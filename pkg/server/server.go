package server

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/youhengchan/mohu/internal/logger"
	"github.com/youhengchan/mohu/pkg/matcher"
)

var log = logger.New("mohu-ipc")

// Server handles the IPC for match and dictionary requests.
type Server struct {
	matcher  matcher.IMatcher
	dec      *msgpack.Decoder
	enc      *msgpack.Encoder
	maxLimit int
}

// New creates a server using stdin/stdout for IPC. maxLimit caps the
// per-request result limit; zero means no cap.
func New(m matcher.IMatcher, maxLimit int) *Server {
	return NewWithIO(m, os.Stdin, os.Stdout, maxLimit)
}

// NewWithIO creates a server over explicit streams.
func NewWithIO(m matcher.IMatcher, r io.Reader, w io.Writer, maxLimit int) *Server {
	return &Server{
		matcher:  m,
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
		maxLimit: maxLimit,
	}
}

// Start processes requests until the input stream closes.
func (s *Server) Start() error {
	log.Debug("Starting match server")
	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		var resp any
		if req.Action != "" {
			resp = s.handleDict(req)
		} else {
			resp = s.handleMatch(req)
		}
		if err := s.enc.Encode(resp); err != nil {
			log.Errorf("Encoding response: %v", err)
			return err
		}
	}
}

func (s *Server) handleMatch(req Request) MatchResponse {
	start := time.Now()

	mode := matcher.Mode(req.Mode)
	if req.Mode == "" {
		mode = matcher.ModeHybrid
	}
	limit := req.Limit
	if s.maxLimit > 0 && (limit <= 0 || limit > s.maxLimit) {
		limit = s.maxLimit
	}

	opts := []matcher.MatchOption{matcher.WithLimit(limit)}
	if req.Threshold != nil {
		opts = append(opts, matcher.WithThreshold(*req.Threshold))
	}
	results, err := s.matcher.Match(req.Query, mode, opts...)
	if err != nil {
		log.Warnf("Match request %s failed: %v", req.ID, err)
		return MatchResponse{ID: req.ID, Error: err.Error()}
	}

	matches := make([]MatchEntry, len(results))
	for i, r := range results {
		matches[i] = MatchEntry{Word: r.Word, Similarity: r.Similarity}
	}
	return MatchResponse{
		ID:        req.ID,
		Matches:   matches,
		Count:     len(matches),
		TimeTaken: time.Since(start).Microseconds(),
	}
}

func (s *Server) handleDict(req Request) DictResponse {
	switch req.Action {
	case "add":
		added, err := s.matcher.AddWord(req.Word)
		if err != nil {
			return DictResponse{ID: req.ID, Status: "error", Error: err.Error()}
		}
		return DictResponse{ID: req.ID, Status: "ok", Changed: added, Count: s.matcher.WordCount()}
	case "remove":
		removed := s.matcher.RemoveWord(req.Word)
		return DictResponse{ID: req.ID, Status: "ok", Changed: removed, Count: s.matcher.WordCount()}
	case "count":
		return DictResponse{ID: req.ID, Status: "ok", Count: s.matcher.WordCount()}
	case "list":
		words := s.matcher.Words()
		return DictResponse{ID: req.ID, Status: "ok", Count: len(words), Words: words}
	default:
		return DictResponse{ID: req.ID, Status: "error", Error: "unknown action: " + req.Action}
	}
}
