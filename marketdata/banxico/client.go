package banxico

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the SIE REST endpoint.
const DefaultBaseURL = "https://www.banxico.org.mx/SieAPIRest/service/v1"

const defaultMaxChunk = 10

// ErrHTTPStatus wraps non-2xx responses from the SIE API.
var ErrHTTPStatus = errors.New("banxico: unexpected HTTP status")

// Client talks to the Banxico SIE API. The zero value is not usable; set at
// least Token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
	// MaxChunk bounds how many series ids go into one request URL. It is
	// halved and the window retried whenever the API answers 413.
	MaxChunk int
}

// Series is one SIE series with its observations.
type Series struct {
	ID    string  `json:"idSerie"`
	Title string  `json:"titulo"`
	Data  []Datum `json:"datos"`
}

// Datum is a single observation. Dates come as DD/MM/YYYY and values as
// strings that may carry thousands commas or the "N.D." no-data marker.
type Datum struct {
	Date  string `json:"fecha"`
	Value string `json:"dato"`
}

type payload struct {
	BMX struct {
		Series []Series `json:"series"`
	} `json:"bmx"`
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// FetchSeries pulls observations for the given series ids over [start, end],
// chunking the id list to keep request URLs short. A 413 response halves the
// chunk size and retries the same window. Ids are deduplicated preserving
// order; the combined series list is returned in request order.
func (c *Client) FetchSeries(ctx context.Context, ids []string, start, end time.Time) ([]Series, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	if len(uniq) == 0 {
		return nil, nil
	}

	chunk := c.MaxChunk
	if chunk <= 0 {
		chunk = defaultMaxChunk
	}

	var out []Series
	for i := 0; i < len(uniq); {
		hi := i + chunk
		if hi > len(uniq) {
			hi = len(uniq)
		}
		part, err := c.fetchChunk(ctx, uniq[i:hi], start, end)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code == http.StatusRequestEntityTooLarge && chunk > 1 {
				chunk /= 2
				c.logger().WithField("chunk", chunk).Warn("SIE request too large; retrying with smaller chunk")
				continue
			}
			return nil, err
		}
		out = append(out, part...)
		i = hi
	}
	return out, nil
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: %d from %s", ErrHTTPStatus, e.code, e.url)
}

func (e *statusError) Unwrap() error { return ErrHTTPStatus }

func (c *Client) fetchChunk(ctx context.Context, ids []string, start, end time.Time) ([]Series, error) {
	url := fmt.Sprintf("%s/series/%s/datos/%s/%s?token=%s",
		c.baseURL(), strings.Join(ids, ","),
		start.Format("2006-01-02"), end.Format("2006-01-02"), c.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("banxico: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("banxico: fetch series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode, url: c.baseURL()}
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("banxico: decode response: %w", err)
	}
	return p.BMX.Series, nil
}

// Point is one flattened observation. Value is nil for no-data markers.
type Point struct {
	Date     time.Time
	SeriesID string
	Value    *float64
}

// Flatten turns raw series into long-form points, dropping observations whose
// date fails to parse.
func Flatten(series []Series) []Point {
	var out []Point
	for _, s := range series {
		for _, d := range s.Data {
			date, err := time.Parse("02/01/2006", strings.TrimSpace(d.Date))
			if err != nil {
				continue
			}
			out = append(out, Point{Date: date, SeriesID: s.ID, Value: coerceValue(d.Value)})
		}
	}
	return out
}

// coerceValue parses a SIE value string, treating "N.D." and friends as
// missing and stripping thousands commas.
func coerceValue(raw string) *float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "n.d.", "na", "nan", "null":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
