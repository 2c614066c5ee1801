// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/club-leaderboard/scoring"
)

var (
	ErrUnavailable        = errors.New("judge service unavailable")
	ErrRateLimited        = errors.New("judge service rate limited")
	ErrCredentialsExpired = errors.New("judge session credentials expired")
	ErrMalformedPayload   = errors.New("malformed judge payload")
	ErrNoContests         = errors.New("judge returned no contests")
)

const (
	DefaultBaseURL         = "https://vjudge.net"
	DefaultContestListPath = "/contest/data?draw=1&start=0&length=1&sortDir=desc&sortCol=0&category=mine"
	DefaultRankPathFormat  = "/contest/rank/single/%d"
	DefaultTimeout         = 15 * time.Second

	// Bodies are only kept for error reporting.
	maxErrorBody = 512
)

// UpstreamError is a non-2xx answer from the judge.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	RetryAfter string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("judge %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is lets callers match the sentinel errors with errors.Is.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnavailable:
		return true
	}
	return false
}

// Observer is notified once per judge request.
type Observer interface {
	ObserveJudgeRequest(endpoint, status string)
}

// Config carries the judge endpoint and its session credentials.
//
// The session cookie is opaque to this package. When CookieExpiresAt is set and
// has passed, the client stops calling the judge and returns ErrCredentialsExpired
// until an operator provides a new cookie.
type Config struct {
	BaseURL         string
	ContestListPath string
	RankPathFormat  string
	SessionCookie   string
	CookieExpiresAt time.Time
	Timeout         time.Duration
}

type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
	now      func() time.Time
}

// NewClient fills unset Config fields with defaults.
// observer may be nil.
func NewClient(cfg Config, observer Observer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ContestListPath == "" {
		cfg.ContestListPath = DefaultContestListPath
	}
	if cfg.RankPathFormat == "" {
		cfg.RankPathFormat = DefaultRankPathFormat
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		observer: observer,
		now:      time.Now,
	}
}

// Contest is a scored-ready view of one contest's rank payload.
type Contest struct {
	ID              int64
	Title           string
	DurationSeconds int64
	Participants    map[string]scoring.Identity
	Submissions     []scoring.Submission
}

type contestListResponse struct {
	Data [][]json.RawMessage `json:"data"`
}

type rankResponse struct {
	Title        string              `json:"title"`
	Length       json.Number         `json:"length"`
	Participants map[string][]string `json:"participants"`
	Submissions  [][]json.RawMessage `json:"submissions"`
}

// LatestContestID returns the id of the most recent contest in the judge's list.
func (c *Client) LatestContestID(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, "contest_list", c.cfg.ContestListPath)
	if err != nil {
		return 0, err
	}

	var resp contestListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: contest list: %v", ErrMalformedPayload, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0]) == 0 {
		return 0, ErrNoContests
	}

	id, ok := parseInt(resp.Data[0][0])
	if !ok || id <= 0 {
		return 0, fmt.Errorf("%w: contest id %s", ErrMalformedPayload, string(resp.Data[0][0]))
	}

	return id, nil
}

// FetchContest downloads the rank payload for a contest and converts it.
// The judge reports length in milliseconds; DurationSeconds is length/1000.
func (c *Client) FetchContest(ctx context.Context, contestID int64) (*Contest, error) {
	body, err := c.get(ctx, "contest_rank", fmt.Sprintf(c.cfg.RankPathFormat, contestID))
	if err != nil {
		return nil, err
	}

	return ParseRank(contestID, body)
}

// ParseRank converts a raw rank payload.
// Rows with an unreadable participant, problem or offset make the whole payload
// malformed. An unreadable verdict does not: it becomes a rejection.
func ParseRank(contestID int64, body []byte) (*Contest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp rankResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: rank: %v", ErrMalformedPayload, err)
	}

	lengthMs, err := resp.Length.Int64()
	if err != nil {
		// Whole floats like 7.2e6 are fine; anything fractional is not.
		f, ferr := resp.Length.Float64()
		if ferr != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: contest length %q", ErrMalformedPayload, resp.Length)
		}
		lengthMs = int64(f)
	}
	if lengthMs <= 0 {
		return nil, fmt.Errorf("%w: contest length %d", ErrMalformedPayload, lengthMs)
	}

	contest := &Contest{
		ID:              contestID,
		Title:           resp.Title,
		DurationSeconds: lengthMs / 1000,
		Participants:    make(map[string]scoring.Identity, len(resp.Participants)),
		Submissions:     make([]scoring.Submission, 0, len(resp.Submissions)),
	}

	for id, fields := range resp.Participants {
		if len(fields) == 0 || fields[0] == "" {
			return nil, fmt.Errorf("%w: participant %s has no login", ErrMalformedPayload, id)
		}
		identity := scoring.Identity{Login: fields[0]}
		if len(fields) > 1 {
			identity.DisplayName = fields[1]
		}
		if len(fields) > 2 {
			identity.AvatarURL = fields[2]
		}
		contest.Participants[id] = identity
	}

	for i, row := range resp.Submissions {
		if len(row) < 4 {
			return nil, fmt.Errorf("%w: submission %d has %d fields", ErrMalformedPayload, i, len(row))
		}
		participant, ok := parseInt(row[0])
		if !ok {
			return nil, fmt.Errorf("%w: submission %d participant", ErrMalformedPayload, i)
		}
		problem, ok := parseInt(row[1])
		if !ok {
			return nil, fmt.Errorf("%w: submission %d problem", ErrMalformedPayload, i)
		}
		offset, ok := parseInt(row[3])
		if !ok {
			return nil, fmt.Errorf("%w: submission %d offset", ErrMalformedPayload, i)
		}
		verdict, ok := parseInt(row[2])
		if !ok {
			verdict = -1
		}

		contest.Submissions = append(contest.Submissions, scoring.Submission{
			ParticipantID: strconv.FormatInt(participant, 10),
			ProblemID:     int(problem),
			Verdict:       int(verdict),
			Offset:        offset,
		})
	}

	return contest, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	if !c.cfg.CookieExpiresAt.IsZero() && c.now().After(c.cfg.CookieExpiresAt) {
		c.observe(endpoint, "credentials_expired")
		return nil, ErrCredentialsExpired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.SessionCookie != "" {
		req.Header.Set("Cookie", c.cfg.SessionCookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "error")
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(endpoint, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s body: %w", ErrUnavailable, endpoint, err)
	}
	return body, nil
}

func (c *Client) observe(endpoint, status string) {
	if c.observer != nil {
		c.observer.ObserveJudgeRequest(endpoint, status)
	}
}

// parseInt accepts JSON numbers and numeric strings, including zero-padded ones.
func parseInt(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(unquoted)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}
