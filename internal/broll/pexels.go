package broll

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mgpai22/cutaway/internal/timeline"
)

const pexelsBaseURL = "https://api.pexels.com"

// implements Searcher with the Pexels video search API
type PexelsSearcher struct {
	apiKey      string
	baseURL     string
	perPage     int
	orientation string
	client      *http.Client
}

// Pexels search options
type PexelsOptions struct {
	PerPage     int
	Orientation string // portrait, landscape or square; empty for any
	BaseURL     string
	HTTPClient  *http.Client
}

type pexelsResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int64             `json:"id"`
	Duration   float64           `json:"duration"`
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsVideoFile struct {
	Link     string `json:"link"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func NewPexelsSearcher(apiKey string, opts PexelsOptions) (*PexelsSearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	s := &PexelsSearcher{
		apiKey:      apiKey,
		baseURL:     opts.BaseURL,
		perPage:     opts.PerPage,
		orientation: opts.Orientation,
		client:      opts.HTTPClient,
	}
	if s.baseURL == "" {
		s.baseURL = pexelsBaseURL
	}
	if s.perPage <= 0 {
		s.perPage = 15
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	return s, nil
}

// searches videos, keeping Pexels' ranking; no results is not an error
func (s *PexelsSearcher) Search(ctx context.Context, query string) ([]timeline.Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(s.perPage))
	if s.orientation != "" {
		params.Set("orientation", s.orientation)
	}

	endpoint := strings.TrimSuffix(s.baseURL, "/") + "/videos/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	var parsed pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	candidates := make([]timeline.Candidate, 0, len(parsed.Videos))
	for _, v := range parsed.Videos {
		// a clip without a length would become an empty interval
		if v.Duration <= 0 {
			continue
		}
		c := timeline.Candidate{Duration: timeline.Seconds(v.Duration)}
		for _, f := range v.VideoFiles {
			if f.Link == "" {
				continue
			}
			c.Files = append(c.Files, timeline.VideoFile{Link: f.Link})
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
