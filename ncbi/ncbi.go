// Package ncbi resolves named references (gene symbols, accessions) to
// nucleotide sequences through the NCBI Entrez E-utilities.
package ncbi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zoobzio/bioquery"
	"github.com/zoobzio/capitan"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Signals emitted by the resolver.
const (
	FetchCompleted = capitan.Signal("bioquery.ncbi.fetch.completed")
	FetchFailed    = capitan.Signal("bioquery.ncbi.fetch.failed")
)

// Keys for resolver fields.
var (
	TermKey      = capitan.NewStringKey("bioquery.ncbi.term")
	AccessionKey = capitan.NewStringKey("bioquery.ncbi.accession")
)

// Config holds resolver settings.
type Config struct {
	BaseURL   string        // Optional, defaults to DefaultBaseURL
	APIKey    string        // Optional NCBI API key
	Organism  string        // Optional organism filter, e.g. "Homo sapiens"
	MaxLength int           // Residues fetched per record, defaults to 10000
	Timeout   time.Duration // Optional, defaults to 20s
	Attempts  int           // Tries per request, defaults to 3
}

// Resolver implements bioquery.Resolver with esearch + efetch.
type Resolver struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a resolver.
func New(cfg Config) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 10000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	return &Resolver{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// Resolve searches nuccore for name and fetches the first hit as FASTA.
func (r *Resolver) Resolve(ctx context.Context, name string) (bioquery.ExtractedSequence, error) {
	term := strings.TrimSpace(strings.NewReplacer("_fragment", "", "_", " ").Replace(name))
	if term == "" {
		return bioquery.ExtractedSequence{}, fmt.Errorf("%w: empty name", bioquery.ErrReferenceNotFound)
	}

	id, err := r.search(ctx, term)
	if err != nil {
		capitan.Error(ctx, FetchFailed, TermKey.Field(term), bioquery.ErrorKey.Field(err.Error()))
		return bioquery.ExtractedSequence{}, err
	}

	seq, err := r.fetch(ctx, id)
	if err != nil {
		capitan.Error(ctx, FetchFailed, TermKey.Field(term), AccessionKey.Field(id), bioquery.ErrorKey.Field(err.Error()))
		return bioquery.ExtractedSequence{}, err
	}

	capitan.Info(ctx, FetchCompleted,
		TermKey.Field(term),
		AccessionKey.Field(seq.ID),
		bioquery.SequenceCountKey.Field(1),
	)
	return seq, nil
}

type searchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (r *Resolver) search(ctx context.Context, term string) (string, error) {
	query := term
	if !strings.Contains(term, "[") {
		query = term + "[Gene Name] OR " + term + "[Accession]"
		if r.cfg.Organism != "" {
			query = "(" + query + ") AND " + r.cfg.Organism + "[Organism]"
		}
	}
	params := url.Values{
		"db":      {"nuccore"},
		"term":    {query},
		"retmode": {"json"},
		"retmax":  {"1"},
		"sort":    {"relevance"},
	}
	body, err := r.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return "", err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("esearch: decode: %w", err)
	}
	if len(resp.Result.IDList) == 0 {
		return "", fmt.Errorf("%w: no nuccore record for %q", bioquery.ErrReferenceNotFound, term)
	}
	return resp.Result.IDList[0], nil
}

func (r *Resolver) fetch(ctx context.Context, id string) (bioquery.ExtractedSequence, error) {
	params := url.Values{
		"db":        {"nuccore"},
		"id":        {id},
		"rettype":   {"fasta"},
		"retmode":   {"text"},
		"seq_start": {"1"},
		"seq_stop":  {strconv.Itoa(r.cfg.MaxLength)},
	}
	body, err := r.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return bioquery.ExtractedSequence{}, err
	}
	ext := bioquery.Extractor{}.Extract(string(body))
	for _, seq := range ext.Sequences {
		if seq.Kind == bioquery.KindFASTA && seq.Alphabet == bioquery.Nucleotide {
			seq.Span = bioquery.Span{Start: -1, End: -1}
			return seq, nil
		}
	}
	return bioquery.ExtractedSequence{}, fmt.Errorf("%w: efetch returned no FASTA record for %s", bioquery.ErrReferenceNotFound, id)
}

// get performs a GET with retries on transport errors and 429/5xx replies.
func (r *Resolver) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if r.cfg.APIKey != "" {
		params.Set("api_key", r.cfg.APIKey)
	}
	target := strings.TrimRight(r.cfg.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "bioquery/1.0")

		resp, err := r.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode == http.StatusOK:
				return body, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)
			}
		}

		if attempt < r.cfg.Attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", endpoint, lastErr)
}
