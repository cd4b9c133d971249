package earnings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	pages map[string]string
	err   error
	urls  []string
}

func (f *staticFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

func (f *staticFetcher) Exists(_ context.Context, url string) bool {
	_, ok := f.pages[url]
	return ok
}

func TestMakeURL(t *testing.T) {
	require.Equal(
		t,
		"https://finance.yahoo.com/calendar/earnings?day=2024-03-09",
		MakeURL("https://finance.yahoo.com/calendar/earnings", time.Date(2024, time.March, 9, 23, 0, 0, 0, time.UTC)),
	)
}

func TestOpen(t *testing.T) {
	base := "https://example.com/calendar/earnings"
	fetcher := &staticFetcher{pages: map[string]string{
		MakeURL(base, testDay): calendarPage(testHeaders, testRows, 250),
	}}

	session, err := Open(context.Background(), fetcher, base, testDay, testLayout)
	require.NoError(t, err)
	require.Equal(t, []string{base + "?day=2024-01-05"}, fetcher.urls)
	require.Equal(t, len(testRows), session.RowCount())
	require.Equal(t, 2, session.AdditionalPages())

	var lines []string
	seq := Select(session, 1, All(NonEmpty, Unique()))
	for seq.Next() {
		line, err := YahooCSVFormatter{}.Format(seq.Row(), session.Date())
		require.NoError(t, err)
		lines = append(lines, line)
	}
	require.NoError(t, seq.Err())
	require.Equal(t, []string{
		"Apple Inc.,AAPL,5-Jan,A,2.10,Add",
		"Walgreens Boots Alliance Inc.,WBA,5-Jan,B,0.66,Add",
	}, lines)
}

func TestOpenPropagatesErrors(t *testing.T) {
	fetchErr := &FetchError{URL: "x", Attempts: 2, Err: errors.New("boom")}
	_, err := Open(context.Background(), &staticFetcher{err: fetchErr}, "x", testDay, testLayout)
	require.ErrorIs(t, err, fetchErr)
	require.False(t, IsFatal(err))

	base := "https://example.com"
	fetcher := &staticFetcher{pages: map[string]string{
		MakeURL(base, testDay): calendarPage([]string{"Ticker", "Name"}, testRows, 0),
	}}
	_, err = Open(context.Background(), fetcher, base, testDay, testLayout)
	require.ErrorAs(t, err, new(*SchemaError))
	require.True(t, IsFatal(err))
}
