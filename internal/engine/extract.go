package engine

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/dm/statusbadge/internal/client"
	"github.com/dm/statusbadge/internal/model"
)

const (
	unknownLabel  = "Unknown Service"
	unknownStatus = "Unknown"
)

// Selectors locate service blocks on a status page and the label and status
// inside each block. Label and Status are resolved relative to the item; the
// first match in document order is used.
type Selectors struct {
	Item   string
	Label  string
	Status string
}

// DefaultSelectors match the Material UI accordion layout.
var DefaultSelectors = Selectors{
	Item:   `div[class*="MuiAccordion-root"]`,
	Label:  `.MuiAccordionSummary-content div, .MuiAccordionSummary-content span[class*="MuiTypography"]`,
	Status: `.MuiAccordionSummary-content div:nth-child(2), .MuiAccordionSummary-content span`,
}

// DefaultDetectTerms are searched for in an item's text when it has no
// dedicated status element. Earlier terms win at the same position.
var DefaultDetectTerms = []string{
	"Operational", "Healthy", "OK", "All Systems Operational",
	"Degraded Performance", "Partial Outage", "Major Outage",
	"Under Maintenance", "Investigating", "Monitoring", "Failed",
}

// StatusFetcher returns the label → status mapping published at url.
type StatusFetcher interface {
	FetchStatuses(ctx context.Context, url string) (*model.StatusSet, error)
}

// Extractor implements StatusFetcher by parsing the HTML of a PageSource.
type Extractor struct {
	source    client.PageSource
	selectors Selectors
	detect    *regexp.Regexp // nil when no detect terms are configured
	logger    *log.Logger
}

// NewExtractor returns an Extractor reading pages from source.
func NewExtractor(source client.PageSource, selectors Selectors, detectTerms []string, logger *log.Logger) *Extractor {
	return &Extractor{
		source:    source,
		selectors: selectors,
		detect:    compileDetect(detectTerms),
		logger:    logger,
	}
}

func compileDetect(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// FetchStatuses implements StatusFetcher.
func (e *Extractor) FetchStatuses(ctx context.Context, url string) (*model.StatusSet, error) {
	page, err := e.source.FetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return e.Parse(page)
}

// Parse extracts service statuses from a rendered page. Blocks without a
// resolvable status, and blocks whose status merely repeats the label, are
// skipped. A page without any service blocks yields an empty set.
func (e *Extractor) Parse(page string) (*model.StatusSet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	set := model.NewStatusSet()
	items := doc.Find(e.selectors.Item)
	if items.Length() == 0 {
		e.logger.Printf("no service blocks found (selector=%s)", e.selectors.Item)
		return set, nil
	}

	items.Each(func(_ int, item *goquery.Selection) {
		label := unknownLabel
		if el := item.Find(e.selectors.Label).First(); el.Length() > 0 {
			label = strippedText(el)
		}

		status := unknownStatus
		if el := item.Find(e.selectors.Status).First(); el.Length() > 0 {
			status = strippedText(el)
		}
		if status == unknownStatus && e.detect != nil {
			if m := e.detect.FindString(norm.NFKC.String(item.Text())); m != "" {
				status = m
			}
		}

		if label == "" || status == "" || isUnknown(status) {
			return
		}
		status = strings.Join(strings.Fields(status), " ")
		if strings.EqualFold(status, label) {
			e.logger.Printf("skipping service %q: status text matches service name", label)
			return
		}
		set.Set(label, status)
	})
	return set, nil
}

func isUnknown(status string) bool {
	s := strings.ToLower(status)
	return s == "unknown" || s == "unknown service"
}

// strippedText concatenates the text nodes under sel with each node trimmed,
// so "<b> API </b> Gateway" reads "APIGateway". Text is NFKC-normalized.
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(norm.NFKC.String(n.Data)))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
