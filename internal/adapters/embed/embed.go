// Package embed generates semantic vectors for item text via a local
// Ollama instance
//
// Embeddings are an optional signal. A missing or unreachable embedder
// degrades the pipeline to lexical-only similarity, it never fails a run
package embed

import (
	"bytes"
	"context"
	json "encoding/json/v2"
	"io"
	"net/http"
	"time"

	perr "cintel/internal/platform/errors"
	"cintel/internal/platform/logger"
)

// Embedder generates vectors from text
type Embedder interface {
	// Embed generates a vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the model identifier used for cache keys
	Model() string

	// Available reports whether the backend answered the probe
	Available() bool
}

// Config configures the Ollama client
type Config struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Ollama calls the local Ollama embed API
type Ollama struct {
	cfg       Config
	http      *http.Client
	log       logger.Logger
	available bool
}

// NewOllama builds the client and probes the endpoint once
func NewOllama(ctx context.Context, cfg Config) *Ollama {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	e := &Ollama{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  *logger.Named("embed"),
	}
	e.probe(ctx)
	return e
}

// Model returns the configured model name
func (e *Ollama) Model() string { return e.cfg.Model }

// Available reports whether the probe found the model
func (e *Ollama) Available() bool { return e.available }

func (e *Ollama) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return
	}
	resp, err := e.http.Do(req)
	if err != nil {
		e.log.Warn().Err(err).Msg("embedder unreachable, running lexical only")
		return
	}
	defer resp.Body.Close()

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(b, &result); err != nil {
		return
	}
	for _, m := range result.Models {
		if m.Name == e.cfg.Model || m.Name == e.cfg.Model+":latest" {
			e.available = true
			e.log.Info().Str("model", e.cfg.Model).Msg("embedder available")
			return
		}
	}
	e.log.Warn().Str("model", e.cfg.Model).Msg("embedding model not installed, running lexical only")
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates a vector for one text
func (e *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	if !e.available {
		return nil, perr.Unavailablef("embedder not available")
	}

	body, err := json.Marshal(embedRequest{Model: e.cfg.Model, Input: text})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "marshal embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "embed new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "embed do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "embed status %d body %s", resp.StatusCode, string(tail))
	}

	var result embedResponse
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "embed read body")
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "embed decode")
	}
	if len(result.Embeddings) == 0 {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "no embedding returned")
	}
	return result.Embeddings[0], nil
}

// None is the disabled embedder used when no endpoint is configured
type None struct{}

// Embed always reports unavailable
func (None) Embed(context.Context, string) ([]float32, error) {
	return nil, perr.Unavailablef("embedder disabled")
}

// Model returns the empty model id
func (None) Model() string { return "" }

// Available reports false
func (None) Available() bool { return false }
