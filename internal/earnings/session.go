package earnings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("earningsdump/earnings")

// MakeURL returns the earnings page of `date`: <base>?day=YYYY-MM-DD.
func MakeURL(base string, date time.Time) string {
	return base + "?day=" + date.Format("2006-01-02")
}

// Open downloads and extracts the earnings table of `date`.
// It does not probe for existence, callers should call Exists first.
func Open(ctx context.Context, fetcher DocumentFetcher, base string, date time.Time, layout Layout) (*Session, error) {
	url := MakeURL(base, date)

	ctx, span := tracer.Start(ctx, "Open")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.String("day", date.Format("2006-01-02")),
	)

	page, err := fetcher.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	session, err := Extract(doc, date, layout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract table")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("rows", session.RowCount()),
		attribute.Int("additional_pages", session.AdditionalPages()),
	)
	return session, nil
}
