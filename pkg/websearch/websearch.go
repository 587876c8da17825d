package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"drheal-be/internal/pkg/logger"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.duckduckgo.com"

	ReasonNoResults   = "no_results"
	ReasonUnavailable = "unavailable"

	siteHints = "site:nih.gov OR site:mayoclinic.org OR site:who.int"
)

type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

// Outcome is either a populated result list or an empty list with a Reason.
type Outcome struct {
	Results []Result `json:"results"`
	Reason  string   `json:"reason,omitempty"`
}

func (o Outcome) OK() bool {
	return o.Reason == ""
}

type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) Outcome
}

type Client struct {
	http   *resty.Client
	logger logger.ILogger
}

func NewClient(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)

	return &Client{http: client, logger: log}
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() == 429 || r.StatusCode() >= 500
}

type instantAnswer struct {
	Heading       string  `json:"Heading"`
	AbstractText  string  `json:"AbstractText"`
	AbstractURL   string  `json:"AbstractURL"`
	Results       []topic `json:"Results"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

type topic struct {
	Text     string  `json:"Text"`
	FirstURL string  `json:"FirstURL"`
	Topics   []topic `json:"Topics"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) Outcome {
	if maxResults <= 0 {
		maxResults = 3
	}
	medicalQuery := fmt.Sprintf("%s medical information %s", query, siteHints)

	c.logger.Info("WEB_SEARCH", "Searching web", map[string]interface{}{
		"query":       query,
		"max_results": maxResults,
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":             medicalQuery,
			"format":        "json",
			"no_html":       "1",
			"skip_disambig": "1",
		}).
		Get("/")
	if err != nil {
		c.logger.Warn("WEB_SEARCH", "Web search request failed", map[string]interface{}{"error": err.Error()})
		return Outcome{Results: []Result{}, Reason: ReasonUnavailable}
	}
	if resp.IsError() {
		c.logger.Warn("WEB_SEARCH", "Web search returned an error status", map[string]interface{}{"status": resp.StatusCode()})
		return Outcome{Results: []Result{}, Reason: ReasonUnavailable}
	}

	var answer instantAnswer
	if err := json.Unmarshal(resp.Body(), &answer); err != nil {
		c.logger.Warn("WEB_SEARCH", "Web search response could not be decoded", map[string]interface{}{"error": err.Error()})
		return Outcome{Results: []Result{}, Reason: ReasonUnavailable}
	}

	results := collect(answer, maxResults)
	c.logger.Info("WEB_SEARCH", "Web search complete", map[string]interface{}{"found": len(results)})
	if len(results) == 0 {
		return Outcome{Results: results, Reason: ReasonNoResults}
	}
	return Outcome{Results: results}
}

// collect takes the abstract first, then direct results, then related topics.
func collect(answer instantAnswer, max int) []Result {
	results := []Result{}
	add := func(r Result) bool {
		if len(results) >= max {
			return false
		}
		results = append(results, r)
		return true
	}

	if answer.AbstractText != "" {
		add(Result{
			Title:   answer.Heading,
			Snippet: answer.AbstractText,
			Link:    answer.AbstractURL,
			Source:  Domain(answer.AbstractURL),
		})
	}

	var walk func(topics []topic) bool
	walk = func(topics []topic) bool {
		for _, t := range topics {
			if len(t.Topics) > 0 {
				if !walk(t.Topics) {
					return false
				}
				continue
			}
			if t.Text == "" || t.FirstURL == "" {
				continue
			}
			if !add(topicResult(t)) {
				return false
			}
		}
		return true
	}
	if walk(answer.Results) {
		walk(answer.RelatedTopics)
	}
	return results
}

func topicResult(t topic) Result {
	title := t.Text
	if i := strings.Index(t.Text, " - "); i > 0 {
		title = t.Text[:i]
	}
	return Result{
		Title:   title,
		Snippet: t.Text,
		Link:    t.FirstURL,
		Source:  Domain(t.FirstURL),
	}
}

// Domain returns the host of link, or link itself when it does not parse.
func Domain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return u.Host
}

func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No web search results found."
	}

	var sb strings.Builder
	sb.WriteString("**Latest Medical Information from Web:**\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. **%s**\n", i+1, r.Title)
		fmt.Fprintf(&sb, "   Source: %s\n", r.Source)
		fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		fmt.Fprintf(&sb, "   Link: %s\n\n", r.Link)
	}
	return sb.String()
}
