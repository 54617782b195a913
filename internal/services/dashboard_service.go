package services

import (
	"context"
	"encoding/json"
	"sort"

	"golang.org/x/sync/errgroup"

	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/normalize"
	"souqnest/internal/querycache"
	"souqnest/internal/validate"
)

const recentRFQs = 5

type RFQStats struct {
	Pending   int `json:"pending"`
	Responded int `json:"responded"`
	Total     int `json:"total"`
}

// Dashboard is the admin landing page. Sources that failed are listed in
// Unavailable and their sections are left empty.
type Dashboard struct {
	Counts      map[string]int           `json:"counts"`
	Popularity  []domain.PopularityEntry `json:"popularity"`
	RFQs        RFQStats                 `json:"rfqStats"`
	RecentRFQs  []domain.RFQ             `json:"recentRfqs"`
	Unavailable []string                 `json:"unavailable,omitempty"`
}

type DashboardService struct {
	Reads   Source
	Backend func(token string) Backend
	Cache   *querycache.Cache
}

// Summary fetches every dashboard source concurrently. Individual failures
// degrade; Summary itself only fails when ctx is done.
func (s *DashboardService) Summary(ctx context.Context, token string) (Dashboard, error) {
	src := pick(s.Reads, s.Backend, token)
	return querycache.Get(ctx, s.Cache, querycache.Key{"dashboard", "summary"}, func(ctx context.Context) (Dashboard, error) {
		return s.load(ctx, src)
	})
}

func (s *DashboardService) load(ctx context.Context, src Source) (Dashboard, error) {
	var (
		metrics, popularity, analytics any
		recent                         domain.Page[domain.RFQ]
		errs                           [4]error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { metrics, errs[0] = src.Metrics(gctx); return nil })
	g.Go(func() error { popularity, errs[1] = src.ProductPopularity(gctx); return nil })
	g.Go(func() error { analytics, errs[2] = src.RFQAnalytics(gctx); return nil })
	g.Go(func() error {
		recent, errs[3] = src.ListRFQs(gctx, domain.RFQQuery{Page: 1, Limit: recentRFQs})
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{Counts: map[string]int{}, Popularity: []domain.PopularityEntry{}, RecentRFQs: []domain.RFQ{}}
	for i, name := range []string{"metrics", "popularity", "analytics", "recent_rfqs"} {
		if errs[i] != nil {
			applog.Warn(nil, "dashboard.source.fail", errs[i], map[string]any{"source": name})
			d.Unavailable = append(d.Unavailable, name)
		}
	}
	if errs[0] == nil {
		d.Counts = Counts(metrics)
	}
	if errs[1] == nil {
		d.Popularity = Popularity(popularity)
	}
	if errs[2] == nil {
		d.RFQs = Stats(analytics)
	}
	if errs[3] == nil && recent.Data != nil {
		d.RecentRFQs = recent.Data
	}
	return d, nil
}

// Counts reads the totalX counters of the metrics object, keyed without the
// "total" prefix and lower-cased ("totalRfqs" becomes "rfqs").
func Counts(raw any) map[string]int {
	out := map[string]int{}
	for k, v := range normalize.ExtractObject(raw, nil) {
		n, ok := normalize.Int(v)
		if !ok {
			continue
		}
		name := k
		if len(k) > len("total") && k[:len("total")] == "total" {
			name = k[len("total"):]
		}
		out[lowerFirst(name)] = n
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]+'a'-'A') + s[1:]
}

// Popularity accepts the field-name variants different backend versions
// use and returns entries sorted by count, highest first.
func Popularity(raw any) []domain.PopularityEntry {
	rows := normalize.ExtractArray(raw, nil)
	out := make([]domain.PopularityEntry, 0, len(rows))
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		e := domain.PopularityEntry{
			ProductID:   firstString(m, "productId", "id"),
			ProductName: firstString(m, "productName", "name"),
		}
		for _, k := range []string{"count", "requestCount", "rfqCount", "total", "quantity"} {
			if n, ok := normalize.Int(m[k]); ok {
				e.Count = n
				break
			}
		}
		if p, ok := m["product"].(map[string]any); ok {
			if e.ProductID == "" {
				e.ProductID = firstString(p, "id")
			}
			if e.ProductName == "" {
				e.ProductName = firstString(p, "name")
			}
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Stats reads RFQ counts by status. Total falls back to the sum.
func Stats(raw any) RFQStats {
	m := normalize.ExtractObject(raw, nil)
	var st RFQStats
	st.Pending, _ = normalize.Int(firstOf(m, "pending", "pendingCount", "PENDING"))
	st.Responded, _ = normalize.Int(firstOf(m, "responded", "respondedCount", "RESPONDED"))
	total, ok := normalize.Int(firstOf(m, "total", "totalRfqs", "totalCount"))
	if !ok {
		total = st.Pending + st.Responded
	}
	st.Total = total
	return st
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Search runs the admin global search. Sections that do not decode are
// left empty.
func (s *DashboardService) Search(ctx context.Context, token, term string) (domain.SearchResults, error) {
	res := domain.SearchResults{Products: []domain.Product{}, Suppliers: []domain.Supplier{}, Categories: []domain.Category{}}
	term, ok := validate.Q(term)
	if !ok {
		return res, nil
	}
	raw, err := pick(s.Reads, s.Backend, token).Search(ctx, term)
	if err != nil {
		return res, err
	}
	obj := normalize.ExtractObject(raw, nil)
	decodeSection(obj, "products", &res.Products)
	decodeSection(obj, "suppliers", &res.Suppliers)
	decodeSection(obj, "categories", &res.Categories)
	return res, nil
}

func decodeSection[T any](obj map[string]any, key string, dst *[]T) {
	v, ok := obj[key]
	if !ok || v == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return
	}
	list, err := normalize.DecodeList[T](b)
	if err != nil {
		applog.Warn(nil, "dashboard.search.decode", err, map[string]any{"section": key})
		return
	}
	*dst = list
}
