package webcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/localaudit/localaudit/internal/model"
)

// Checker verifies that a business website's homepage carries the name and
// phone number the profile claims. Address matching is deliberately left
// out: address formatting varies too much for a substring check to be
// trustworthy, while name and phone digits are stable.
type Checker struct {
	httpClient *http.Client
	robots     *robotsChecker
	userAgent  string
	maxBytes   int64
	logger     *zap.Logger
}

// NewChecker creates a homepage NAP checker
func NewChecker(cfg model.HTTPConfig, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		robots:     newRobotsChecker(cfg.UserAgent, cfg.Timeout),
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		logger:     logger,
	}
}

// CheckNAP fetches the homepage and reports whether both the business name
// and the phone number appear in its visible text. The fetch honors the
// site's robots.txt.
func (c *Checker) CheckNAP(ctx context.Context, rawURL, businessName, phone string) (bool, error) {
	if rawURL == "" {
		return false, fmt.Errorf("no website URL")
	}
	pageURL := rawURL
	if !strings.HasPrefix(pageURL, "http") {
		pageURL = "https://" + pageURL
	}

	if !c.robots.allowed(ctx, pageURL) {
		return false, fmt.Errorf("robots.txt disallows fetching %s", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch homepage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("homepage returned status %d", resp.StatusCode)
	}

	text, err := visibleText(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return false, fmt.Errorf("parse homepage: %w", err)
	}

	nameFound := containsName(text, businessName)
	phoneFound := containsPhone(text, phone)
	c.logger.Debug("nap check",
		zap.String("url", pageURL),
		zap.Bool("name", nameFound),
		zap.Bool("phone", phoneFound))
	return nameFound && phoneFound, nil
}

// visibleText extracts the rendered text of an HTML document, skipping
// script and style content.
func visibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return b.String(), nil
}

func containsName(text, businessName string) bool {
	if businessName == "" {
		return false
	}
	return strings.Contains(
		collapseSpaces(strings.ToLower(text)),
		collapseSpaces(strings.ToLower(businessName)),
	)
}

// containsPhone compares digit sequences so "(512) 555-0198" on the
// profile matches "512.555.0198" on the page.
func containsPhone(text, phone string) bool {
	phoneDigits := digits(phone)
	if len(phoneDigits) < 7 {
		return false
	}
	return strings.Contains(digits(text), phoneDigits)
}

func digits(s string) string {
	var b strings.Builder
	prevDigit := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			prevDigit = true
		} else if prevDigit && !isPhoneSeparator(r) {
			// A non-separator breaks the run so digits from unrelated
			// parts of the page never concatenate into a false match.
			b.WriteByte('|')
			prevDigit = false
		}
	}
	return b.String()
}

func isPhoneSeparator(r rune) bool {
	switch r {
	case ' ', '(', ')', '-', '.', '+', '\t', '\n', '\r':
		return true
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
