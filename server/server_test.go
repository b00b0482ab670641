package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	words := []string{"lo", "low", "lower", "newest", "wide", "wider", "widest"}
	tok, _, err := bpetokenizer.Train(words, 6, "</w>", bpetokenizer.WithSpecialTokens())
	if err != nil {
		t.Fatal(err)
	}
	e := echo.New()
	New(tok).Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEncodeEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"text":"lower widest"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("encode status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp EncodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode encode response: %v", err)
	}
	if len(resp.IDs) == 0 {
		t.Fatalf("expected token ids, got %v", resp.IDs)
	}

	// Round trip the ids through the decode endpoint.
	idsJSON, _ := json.Marshal(DecodeRequest{IDs: resp.IDs})
	decRec := doJSON(t, e, http.MethodPost, "/v1/decode", string(idsJSON))
	if decRec.Code != http.StatusOK {
		t.Fatalf("decode status: got %d body=%s", decRec.Code, decRec.Body.String())
	}
	var decResp DecodeResponse
	if err := json.Unmarshal(decRec.Body.Bytes(), &decResp); err != nil {
		t.Fatalf("decode decode response: %v", err)
	}
	if decResp.Text != "lower widest" {
		t.Fatalf("decoded text: got %q, want %q", decResp.Text, "lower widest")
	}
	if len(decResp.Symbols) != len(resp.IDs) {
		t.Fatalf("symbols: got %d, want %d", len(decResp.Symbols), len(resp.IDs))
	}
}

func TestEncodeEndpointEmptyText(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"text":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("encode status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ids":[]`) {
		t.Fatalf("expected empty ids array, got %s", rec.Body.String())
	}
}

func TestEncodeEndpointUnknownSymbol(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"text":"xyzzy"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestEncodeEndpointMalformedBody(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDecodeEndpointOutOfRange(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/decode", `{"ids":[99999]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestVocabEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/v1/vocab", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("vocab status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp VocabResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode vocab response: %v", err)
	}
	if resp.VocabSize != len(resp.Tokens) {
		t.Fatalf("vocab size %d does not match %d tokens", resp.VocabSize, len(resp.Tokens))
	}
	if len(resp.Scores) != resp.VocabSize {
		t.Fatalf("scores: got %d entries, want %d", len(resp.Scores), resp.VocabSize)
	}
}

func TestMergesEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/v1/merges", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("merges status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp MergesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode merges response: %v", err)
	}
	if len(resp.Merges) != 6 {
		t.Fatalf("merges: got %d, want 6", len(resp.Merges))
	}
	for rank, m := range resp.Merges {
		if m.Rank != rank {
			t.Fatalf("merge %d carries rank %d", rank, m.Rank)
		}
	}
}
