package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/repository"

	"github.com/sirupsen/logrus"
)

type Service struct {
	listings ListingReader
	tags     TagReader
	plans    PlanReader
	cache    TagCache
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(listings ListingReader, tags TagReader, plans PlanReader, cache TagCache, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		listings: listings,
		tags:     tags,
		plans:    plans,
		cache:    cache,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Query returns page (0-based) of the public catalog. A store failure is
// logged and answered with an empty page so the grid degrades to "no
// results" instead of an error.
//
// Tag filtering runs after pagination: the page is loaded with every other
// predicate and then narrowed to listings carrying any requested tag, so a
// tagged page can come back short while later pages still hold matches.
// HasMore reflects the unfiltered page.
func (s *Service) Query(ctx context.Context, f Filters, sort Sort, page int) Page {
	if page < 0 {
		page = 0
	}
	now := s.now()
	empty := Page{Listings: []Card{}, Page: page}
	if page > MaxPage {
		return empty
	}

	rows, err := s.listings.Search(ctx, repository.ListingFilters{
		State:    normalizeState(f.State),
		City:     strings.TrimSpace(f.City),
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		MinAge:   f.MinAge,
		MaxAge:   f.MaxAge,
		Search:   strings.TrimSpace(f.SearchText),
		Sort:     normalizeSort(sort),
		Limit:    PageSize,
		Offset:   page * PageSize,
		Now:      now,
	})
	if err != nil {
		s.queryFailed(err, "search")
		return empty
	}
	hasMore := len(rows) == PageSize

	if tagIDs := compact(f.TagIDs); len(tagIDs) > 0 && len(rows) > 0 {
		ids := make([]string, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		tagged, err := s.listings.TaggedAmong(ctx, ids, tagIDs)
		if err != nil {
			s.queryFailed(err, "tags")
			return empty
		}
		keep := make(map[string]bool, len(tagged))
		for _, id := range tagged {
			keep[id] = true
		}
		filtered := rows[:0]
		for _, r := range rows {
			if keep[r.ID] {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	cards := make([]Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, ProjectCard(r, now))
	}
	Promote(cards)

	return Page{Listings: cards, Page: page, HasMore: hasMore}
}

func (s *Service) queryFailed(err error, phase string) {
	if s.metrics != nil {
		s.metrics.CatalogQueryFailures.Inc()
	}
	s.log.WithFields(logrus.Fields{"phase": phase, "error": err.Error()}).Error("catalog query failed")
}

// GetListing returns the public detail of a visible listing. Listings that
// exist but are not visible are reported as not found.
func (s *Service) GetListing(ctx context.Context, id string) (*Detail, error) {
	l, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	d := projectDetail(*l, s.now())
	return &d, nil
}

func (s *Service) visible(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.PubliclyVisible(s.now()) {
		return nil, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	return l, nil
}

// RecordView counts a detail view. Only publicly visible listings count.
func (s *Service) RecordView(ctx context.Context, id string) error {
	return s.listings.Increment(ctx, id, "views_count", s.now())
}

// RecordContact counts a contact click and returns the deep link for the
// requested channel.
func (s *Service) RecordContact(ctx context.Context, id, channel string) (string, error) {
	l, err := s.visible(ctx, id)
	if err != nil {
		return "", err
	}
	link, err := ContactLink(l.Advertiser, channel)
	if err != nil {
		return "", err
	}
	if err := s.listings.Increment(ctx, id, "contact_clicks", s.now()); err != nil {
		return "", err
	}
	return link, nil
}

// ListTags returns the active vocabulary, read through the cache when one
// is configured. Cache errors only cost a store read.
func (s *Service) ListTags(ctx context.Context) ([]domain.ServiceTag, error) {
	if s.cache != nil {
		tags, ok, err := s.cache.Tags(ctx)
		if err != nil {
			s.log.WithError(err).Warn("tag cache read failed")
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.tags.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTags(ctx, tags); err != nil {
			s.log.WithError(err).Warn("tag cache write failed")
		}
	}
	return tags, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.plans.ListActive(ctx)
}

func normalizeState(state string) string {
	state = strings.TrimSpace(state)
	if strings.EqualFold(state, "all") {
		return ""
	}
	return state
}

func normalizeSort(sort Sort) Sort {
	switch sort {
	case repository.SortRecent, repository.SortPriceAsc, repository.SortPriceDesc, repository.SortViews:
		return sort
	}
	return repository.SortPriority
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
