package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crewmates/internal/httpx"
	"crewmates/internal/model"
)

var _ Store = (*REST)(nil)

// REST talks to a Supabase project through its PostgREST endpoint.
type REST struct {
	client *httpx.Client
	table  string
	now    func() time.Time
}

type RESTOptions struct {
	// URL is the project URL (https://<ref>.supabase.co). "/rest/v1" is appended
	// unless the URL already ends with it.
	URL   string
	Key   string
	Table string

	HTTPClient *http.Client
	Logger     *slog.Logger
	Retry      *httpx.RetryPolicy
}

func OpenREST(opts RESTOptions) (*REST, error) {
	if strings.TrimSpace(opts.Key) == "" {
		return nil, errors.New("supabase: API key is required")
	}
	if !tableNameRe.MatchString(opts.Table) {
		return nil, fmt.Errorf("supabase: invalid table name %q", opts.Table)
	}
	base := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if base != "" && !strings.HasSuffix(base, "/rest/v1") {
		base += "/rest/v1"
	}

	h := http.Header{}
	h.Set("apikey", opts.Key)
	h.Set("Authorization", "Bearer "+opts.Key)
	h.Set("Accept", "application/json")
	clientOpts := []httpx.Option{httpx.WithHeaders(h), httpx.WithLogger(opts.Logger), httpx.WithHTTPClient(opts.HTTPClient)}
	if opts.Retry != nil {
		clientOpts = append(clientOpts, httpx.WithRetryPolicy(*opts.Retry))
	}
	c, err := httpx.NewClient(base, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("supabase: %w", err)
	}
	return &REST{client: c, table: opts.Table, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *REST) Select(ctx context.Context) ([]model.Crewmate, error) {
	body, _, err := r.client.Do(ctx, &httpx.Request{
		Method: http.MethodGet,
		Path:   r.table,
		Query: url.Values{
			"select": {"*"},
			"order":  {"created_at.desc,id.desc"},
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeRESTRows(body)
}

func (r *REST) Insert(ctx context.Context, f model.Fields) (model.Crewmate, error) {
	f, err := prepare(f, r.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	rows, err := r.write(ctx, http.MethodPost, nil, f)
	if err != nil {
		return model.Crewmate{}, err
	}
	if len(rows) == 0 {
		return model.Crewmate{}, errors.New("supabase: insert returned no rows")
	}
	return rows[0], nil
}

func (r *REST) Update(ctx context.Context, id string, f model.Fields) (model.Crewmate, error) {
	f, err := prepare(f, r.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	rows, err := r.write(ctx, http.MethodPatch, idFilter(id), f)
	if err != nil {
		return model.Crewmate{}, err
	}
	if len(rows) == 0 {
		return model.Crewmate{}, notFound(id)
	}
	return rows[0], nil
}

func (r *REST) Delete(ctx context.Context, id string) error {
	rows, err := r.write(ctx, http.MethodDelete, idFilter(id), nil)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return notFound(id)
	}
	return nil
}

func (r *REST) Close() error { return nil }

func idFilter(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

// write issues a mutating request asking PostgREST to echo the affected rows.
func (r *REST) write(ctx context.Context, method string, q url.Values, f any) ([]model.Crewmate, error) {
	req := &httpx.Request{
		Method: method,
		Path:   r.table,
		Query:  q,
		Header: http.Header{"Prefer": {"return=representation"}},
	}
	if fields, ok := f.(model.Fields); ok {
		body, err := httpx.JSONBody(restRow{
			Name:      fields.Name,
			Speed:     flexFloat(fields.Speed),
			Color:     string(fields.Color),
			CreatedAt: flexTime(fields.CreatedAt),
		})
		if err != nil {
			return nil, err
		}
		req.Body = body
		req.Header.Set("Content-Type", "application/json")
	}
	body, _, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeRESTRows(body)
}

// restRow is the PostgREST wire shape. Supabase tables created in the dashboard
// often use int8 ids and text/numeric speed columns, so both are accepted.
type restRow struct {
	ID        flexString `json:"id,omitempty"`
	Name      string     `json:"name"`
	Speed     flexFloat  `json:"speed"`
	Color     string     `json:"color"`
	CreatedAt flexTime   `json:"created_at"`
}

func decodeRESTRows(body []byte) ([]model.Crewmate, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []model.Crewmate{}, nil
	}
	var rows []restRow
	if body[0] == '{' {
		var one restRow
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, fmt.Errorf("supabase: decode row: %w", err)
		}
		rows = []restRow{one}
	} else if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("supabase: decode rows: %w", err)
	}
	out := make([]model.Crewmate, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Crewmate{
			ID:        string(row.ID),
			Name:      row.Name,
			Speed:     float64(row.Speed),
			Color:     model.Color(row.Color),
			CreatedAt: time.Time(row.CreatedAt),
		})
	}
	return out, nil
}

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type flexFloat float64

func (f flexFloat) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("speed: %w", err)
	}
	*f = flexFloat(v)
	return nil
}

// flexTime accepts timestamptz ("...+00:00") and timestamp (no zone, read as UTC).
type flexTime time.Time

func (t flexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = flexTime(time.Time{})
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999-07:00"} {
		if v, err := time.Parse(layout, s); err == nil {
			*t = flexTime(v.UTC())
			return nil
		}
	}
	return fmt.Errorf("created_at: cannot parse %q", s)
}
