// Package server exposes a trained tokenizer over HTTP. The tokenizer is
// immutable, so one instance is safely shared across all requests.
package server

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

// Server serves encode/decode and introspection endpoints for one tokenizer.
type Server struct {
	tok *bpetokenizer.Tokenizer
}

// New creates a Server around a trained tokenizer.
func New(tok *bpetokenizer.Tokenizer) *Server {
	return &Server{tok: tok}
}

// Register attaches the API routes to e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/decode", s.handleDecode)
	e.GET("/v1/vocab", s.handleVocab)
	e.GET("/v1/merges", s.handleMerges)
}

// EncodeRequest asks for text to be encoded. AddBOS/AddEOS require the
// tokenizer to have special tokens.
type EncodeRequest struct {
	Text   string `json:"text"`
	AddBOS bool   `json:"add_bos"`
	AddEOS bool   `json:"add_eos"`
}

// EncodeResponse carries the resulting token ids.
type EncodeResponse struct {
	IDs []int `json:"ids"`
}

// DecodeRequest asks for token ids to be decoded.
type DecodeRequest struct {
	IDs []int `json:"ids"`
}

// DecodeResponse carries the decoded text and the per-id symbols.
type DecodeResponse struct {
	Text    string   `json:"text"`
	Symbols []string `json:"symbols"`
}

// VocabResponse lists the token set with ids and scores.
type VocabResponse struct {
	VocabSize int                `json:"vocab_size"`
	Tokens    []string           `json:"tokens"`
	Scores    map[string]float64 `json:"scores"`
}

// MergesResponse lists the merge table in rank order.
type MergesResponse struct {
	Merges []MergeEntry `json:"merges"`
}

// MergeEntry is one merge table row.
type MergeEntry struct {
	Rank  int    `json:"rank"`
	Left  string `json:"left"`
	Right string `json:"right"`
	Freq  int    `json:"freq"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleEncode(c *echo.Context) error {
	req, err := decodeJSON[EncodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ids, err := s.tok.EncodeText(req.Text, req.AddBOS, req.AddEOS)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if ids == nil {
		ids = []int{}
	}
	return c.JSON(http.StatusOK, EncodeResponse{IDs: ids})
}

func (s *Server) handleDecode(c *echo.Context) error {
	req, err := decodeJSON[DecodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	symbols, err := s.tok.DecodeAll(req.IDs)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	text, err := s.tok.DecodeText(req.IDs)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if symbols == nil {
		symbols = []string{}
	}
	return c.JSON(http.StatusOK, DecodeResponse{Text: text, Symbols: symbols})
}

func (s *Server) handleVocab(c *echo.Context) error {
	return c.JSON(http.StatusOK, VocabResponse{
		VocabSize: s.tok.VocabSize(),
		Tokens:    s.tok.Tokens(),
		Scores:    s.tok.Scores(),
	})
}

func (s *Server) handleMerges(c *echo.Context) error {
	merges := s.tok.Merges()
	resp := MergesResponse{Merges: make([]MergeEntry, 0, len(merges))}
	for rank, m := range merges {
		resp.Merges = append(resp.Merges, MergeEntry{
			Rank:  rank,
			Left:  m.Pair.Left,
			Right: m.Pair.Right,
			Freq:  m.Freq,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	err := json.NewDecoder(r).Decode(&v)
	return v, err
}

func writeBadRequest(c *echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
