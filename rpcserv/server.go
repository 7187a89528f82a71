// Package rpcserv serves committed context state over HTTP, read
// only. Handlers resolve blocks through the persisted block index and
// never touch the replay worker's live staging state, so they are
// safe to run concurrently with replay.
package rpcserv

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/common"
	"github.com/Fidelio-foundation/Fidelio/merkle"
)

var (
	lastCommitKey = []byte("last_commit")
	headBlockKey  = []byte("head_block")
)

// Server exposes committed context state under the
// chains/main/blocks hierarchy.
type Server struct {
	log     *zap.Logger
	db      backend.Backend
	store   *merkle.Store
	metrics bool
}

// New creates a server with its own read view over the backend. When
// metrics is set the process-wide Prometheus registry is exposed
// under /metrics.
func New(log *zap.Logger, db backend.Backend, cacheSize int, metrics bool) (*Server, error) {
	store, err := merkle.NewStore(db, cacheSize)
	if err != nil {
		return nil, err
	}
	return &Server{
		log:     log,
		db:      db,
		store:   store,
		metrics: metrics,
	}, nil
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/chains/main/blocks/{block}", func(r chi.Router) {
		r.Get("/hash", s.handleHash)
		r.Get("/header", s.handleHeader)
		r.Get("/context/merkle_root", s.handleMerkleRoot)
		r.Get("/context/raw/bytes/*", s.handleRawBytes)
	})
	if s.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

type blockHeader struct {
	Block       *common.Hash `json:"block,omitempty"`
	ContextHash common.Hash  `json:"context_hash"`
	MerkleRoot  common.Hash  `json:"merkle_root"`
	Author      string       `json:"author"`
	Message     string       `json:"message"`
	Timestamp   uint64       `json:"timestamp"`
}

func (s *Server) handleHash(w http.ResponseWriter, r *http.Request) {
	contextHash, _, ok := s.resolveBlock(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, contextHash)
}

func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	contextHash, blockHash, ok := s.resolveBlock(w, r)
	if !ok {
		return
	}
	commit, ok := s.readCommit(w, contextHash)
	if !ok {
		return
	}
	s.writeJSON(w, blockHeader{
		Block:       blockHash,
		ContextHash: contextHash,
		MerkleRoot:  commit.Root,
		Author:      commit.Author,
		Message:     commit.Message,
		Timestamp:   commit.Time,
	})
}

func (s *Server) handleMerkleRoot(w http.ResponseWriter, r *http.Request) {
	contextHash, _, ok := s.resolveBlock(w, r)
	if !ok {
		return
	}
	commit, ok := s.readCommit(w, contextHash)
	if !ok {
		return
	}
	s.writeJSON(w, commit.Root)
}

func (s *Server) handleRawBytes(w http.ResponseWriter, r *http.Request) {
	contextHash, _, ok := s.resolveBlock(w, r)
	if !ok {
		return
	}
	commit, ok := s.readCommit(w, contextHash)
	if !ok {
		return
	}

	var path []string
	if raw := chi.URLParam(r, "*"); raw != "" {
		path = strings.Split(raw, "/")
	}
	hash, exists, err := s.store.ResolvePath(commit.Root, path)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		s.writeError(w, http.StatusNotFound, "no such key")
		return
	}
	entry, err := s.store.ReadEntry(hash)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch e := entry.(type) {
	case merkle.Blob:
		s.writeJSON(w, hexutil.Bytes(e))
	case merkle.Directory:
		listing := make(map[string]string, len(e))
		for name, child := range e {
			childEntry, err := s.store.ReadEntry(child)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if _, isDir := childEntry.(merkle.Directory); isDir {
				listing[name] = "dir"
			} else {
				listing[name] = "blob"
			}
		}
		s.writeJSON(w, listing)
	default:
		s.writeError(w, http.StatusNotFound, "no such key")
	}
}

// resolveBlock maps the {block} URL parameter, a hex block hash or
// "head", to the committed context hash of the block.
func (s *Server) resolveBlock(w http.ResponseWriter, r *http.Request) (common.Hash, *common.Hash, bool) {
	param := chi.URLParam(r, "block")

	var blockHash common.Hash
	if param == "head" {
		value, err := s.db.Get(backend.ToDBKey(backend.MetaSpace, headBlockKey).ToBytes())
		if errors.Is(err, backend.ErrNotFound) {
			// no block commit yet; fall back to the last commit hash
			return s.resolveLastCommit(w)
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return common.Hash{}, nil, false
		}
		blockHash = common.HashSerializer{}.FromBytes(value)
	} else {
		parsed, err := common.HashFromHex(param)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid block id")
			return common.Hash{}, nil, false
		}
		blockHash = parsed
	}

	value, err := s.db.Get(backend.ToDBKey(backend.BlockSpace, blockHash[:]).ToBytes())
	if errors.Is(err, backend.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "unknown block")
		return common.Hash{}, nil, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return common.Hash{}, nil, false
	}
	return common.HashSerializer{}.FromBytes(value), &blockHash, true
}

func (s *Server) resolveLastCommit(w http.ResponseWriter) (common.Hash, *common.Hash, bool) {
	value, err := s.db.Get(backend.ToDBKey(backend.MetaSpace, lastCommitKey).ToBytes())
	if errors.Is(err, backend.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no commit yet")
		return common.Hash{}, nil, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return common.Hash{}, nil, false
	}
	return common.HashSerializer{}.FromBytes(value), nil, true
}

func (s *Server) readCommit(w http.ResponseWriter, contextHash common.Hash) (merkle.Commit, bool) {
	entry, err := s.store.ReadEntry(contextHash)
	if errors.Is(err, backend.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "unknown context")
		return merkle.Commit{}, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return merkle.Commit{}, false
	}
	commit, isCommit := entry.(merkle.Commit)
	if !isCommit {
		s.writeError(w, http.StatusInternalServerError, "context hash does not name a commit")
		return merkle.Commit{}, false
	}
	return commit, true
}

func (s *Server) writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
