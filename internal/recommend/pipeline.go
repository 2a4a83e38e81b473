// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend orchestrates a macro-fit search: admission control,
// prompt construction, the upstream call, response normalization, macro
// extraction, scoring, fallback synthesis, and ranking. It also runs the
// refine and coach follow-up flows over compacted prior context.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/feastfit/internal/macro"
	"github.com/pdiddy/feastfit/internal/normalize"
	"github.com/pdiddy/feastfit/internal/prompt"
	"github.com/pdiddy/feastfit/internal/ratelimit"
	"github.com/pdiddy/feastfit/internal/score"
	"github.com/pdiddy/feastfit/pkg/types"
)

const (
	suggestedDishName  = "Suggested macro-friendly option"
	defaultDescription = "Macro-friendly option inferred from Yelp AI."
	refineFallback     = "I adjusted your options based on your request."
	coachFallback      = "I'm sorry, I couldn't generate a response right now."
)

// ChatClient sends a prompt to the upstream and returns its raw JSON reply.
// The production implementation is upstream.Client; tests supply a mock.
type ChatClient interface {
	Chat(ctx context.Context, query string, geo types.GeoContext) ([]byte, error)
}

// Pipeline runs search, refine, and coach flows. It owns its rate limiter
// so separate pipelines never share admission state.
type Pipeline struct {
	chat       ChatClient
	limiter    *ratelimit.Limiter
	scorer     *score.Scorer
	normalizer *normalize.Normalizer
	scoring    types.ScoringConfig
	geo        types.GeoConfig
	log        *zap.Logger
	now        func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithNormalizer replaces the default probe list.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// WithClock overrides the clock used for snapshots and today's logs.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline. A nil limiter is replaced by one built from
// cfg.RateLimit.
func New(chat ChatClient, limiter *ratelimit.Limiter, cfg types.Config, opts ...Option) *Pipeline {
	if limiter == nil {
		limiter = ratelimit.New(cfg.RateLimit)
	}
	p := &Pipeline{
		chat:       chat,
		limiter:    limiter,
		scorer:     score.New(cfg.Scoring),
		normalizer: normalize.New(),
		scoring:    cfg.Scoring,
		geo:        cfg.Upstream.Geo,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Limiter returns the pipeline's admission limiter so the caller can run
// its eviction loop.
func (p *Pipeline) Limiter() *ratelimit.Limiter { return p.limiter }

// Now returns the pipeline clock's current time.
func (p *Pipeline) Now() time.Time { return p.now() }

// Bounds on the optional search hints.
const (
	minPriceLevel   = 1
	maxPriceLevel   = 4
	maxRadiusMeters = 40000
)

// ValidateSearch checks the required fields, fills the meal type default,
// rejects price levels outside 1..4, and clamps the radius to
// [0, 40000] meters. It returns the normalized request.
func ValidateSearch(req types.SearchRequest) (types.SearchRequest, error) {
	req.Location = strings.TrimSpace(req.Location)
	req.Query = strings.TrimSpace(req.Query)
	var missing []string
	if req.Location == "" {
		missing = append(missing, "location")
	}
	if !positive(req.CaloriesTarget) {
		missing = append(missing, "caloriesTarget")
	}
	if !positive(req.ProteinMin) {
		missing = append(missing, "proteinMin")
	}
	if req.Query == "" {
		missing = append(missing, "query")
	}
	if len(missing) > 0 {
		return req, validationError("missing required fields: %s", strings.Join(missing, ", "))
	}

	if req.MealType == "" {
		req.MealType = types.DefaultMealType
	}
	if !req.MealType.Valid() {
		return req, validationError("unknown mealType %q", req.MealType)
	}
	for _, l := range req.PriceLevels {
		if l < minPriceLevel || l > maxPriceLevel {
			return req, validationError("priceLevels must be between %d and %d, got %d", minPriceLevel, maxPriceLevel, l)
		}
	}
	req.RadiusMeters = min(max(req.RadiusMeters, 0), maxRadiusMeters)
	return req, nil
}

// Search runs one macro-fit search for clientID. Results are sorted by
// descending fit score; ties keep upstream order. When the upstream yields
// no usable businesses the single fallback result is returned.
func (p *Pipeline) Search(ctx context.Context, clientID string, req types.SearchRequest) ([]types.RestaurantResult, error) {
	req, err := ValidateSearch(req)
	if err != nil {
		return nil, err
	}
	if !p.limiter.Admit(clientID) {
		p.log.Info("search rate limited", zap.String("client", clientID))
		return nil, ErrRateLimited
	}

	text, geo, err := prompt.BuildSearch(req, p.geo)
	if err != nil {
		return nil, fmt.Errorf("building search prompt: %w", err)
	}

	start := p.now()
	raw, err := p.chat.Chat(ctx, text, geo)
	if err != nil {
		p.log.Warn("upstream search failed", zap.String("client", clientID), zap.Error(err))
		return nil, classifyUpstream(err)
	}

	businesses := p.normalizer.Extract(raw)
	found := len(businesses)
	if limit := p.scoring.MaxCandidates; limit > 0 && len(businesses) > limit {
		businesses = businesses[:limit]
	}

	results := make([]types.RestaurantResult, 0, len(businesses))
	for i, b := range businesses {
		results = append(results, p.candidate(i, b, req))
	}

	if len(results) == 0 {
		p.log.Info("no usable businesses, returning fallback", zap.Int("payload_bytes", len(raw)))
		results = Fallback(p.scorer, req)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FitScore > results[j].FitScore
	})

	p.log.Info("search complete",
		zap.String("client", clientID),
		zap.Int("businesses", found),
		zap.Int("results", len(results)),
		zap.Duration("upstream", p.now().Sub(start)))
	return results, nil
}

// candidate turns one business into a scored result.
func (p *Pipeline) candidate(idx int, b types.RawBusiness, req types.SearchRequest) types.RestaurantResult {
	description := firstNonEmpty(b.SummaryShort, b.SummaryMedium, b.ContextSummary, defaultDescription)
	calories, protein := macro.Extract(description, req.CaloriesTarget, req.ProteinMin)

	name := firstNonEmpty(b.Name, "Unknown")
	breakdown := p.scorer.Score(score.Input{
		Calories:       calories,
		Protein:        protein,
		DistanceMeters: b.Distance,
		Confidence:     p.scoring.DefaultConfidence,
		BusinessName:   name,
		MealType:       req.MealType,
	}, req.Target())

	return types.RestaurantResult{
		ID:             firstNonEmpty(b.ID, "biz-"+strconv.Itoa(idx)),
		Name:           name,
		Rating:         b.Rating,
		Price:          b.Price,
		DistanceMeters: b.Distance,
		URL:            b.URL,
		ImageURL:       b.ImageURL,
		Address:        joinNonEmpty(", ", b.Address1, b.City),
		Dishes: []types.DishEstimate{{
			Name:              suggestedDishName,
			Description:       description,
			EstimatedCalories: calories,
			EstimatedProtein:  protein,
			Confidence:        p.scoring.DefaultConfidence,
		}},
		FitScore:       breakdown.Score,
		FitLabel:       breakdown.Label,
		ScoreBreakdown: breakdown,
		Reason: firstNonEmpty(b.ContextSummary, b.SummaryShort,
			fmt.Sprintf("Matches your ~%s kcal / high-protein request.", prompt.FormatNumber(req.CaloriesTarget))),
	}
}

// Refine asks the upstream to re-explain prior results under a new
// constraint and returns its prose reply. The prompt tells the upstream
// not to invent restaurants; that is best effort, not a guarantee.
func (p *Pipeline) Refine(ctx context.Context, clientID string, req types.RefineRequest) (string, error) {
	if strings.TrimSpace(req.Location) == "" || !positive(req.CaloriesTarget) || !positive(req.ProteinMin) ||
		strings.TrimSpace(req.Query) == "" || strings.TrimSpace(req.RefineMessage) == "" {
		return "", validationError("missing required fields")
	}
	if !p.limiter.Admit(clientID) {
		p.log.Info("refine rate limited", zap.String("client", clientID))
		return "", ErrRateLimited
	}

	restaurants, err := compactJSON(compactResults(req.Restaurants))
	if err != nil {
		return "", fmt.Errorf("compacting restaurants: %w", err)
	}
	text, err := prompt.BuildRefine(prompt.RefineInput{
		Location:    req.Location,
		Calories:    req.CaloriesTarget,
		Protein:     req.ProteinMin,
		Diet:        req.Diet,
		Query:       req.Query,
		Message:     req.RefineMessage,
		Restaurants: restaurants,
	})
	if err != nil {
		return "", err
	}

	raw, err := p.chat.Chat(ctx, text, p.localeOnly())
	if err != nil {
		p.log.Warn("upstream refine failed", zap.String("client", clientID), zap.Error(err))
		return "", classifyUpstream(err)
	}
	return normalize.ReplyText(raw, refineFallback), nil
}

// Coach answers a question using the caller's last search and today's
// logged meals.
func (p *Pipeline) Coach(ctx context.Context, clientID string, req types.CoachRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", validationError("invalid message")
	}
	if !p.limiter.Admit(clientID) {
		p.log.Info("coach rate limited", zap.String("client", clientID))
		return "", ErrRateLimited
	}

	in := prompt.CoachInput{Message: message}
	if s := req.LastSearch; s != nil {
		restaurants, err := compactJSON(compactSnapshot(s.Restaurants))
		if err != nil {
			return "", fmt.Errorf("compacting snapshot: %w", err)
		}
		in.HasSearch = true
		in.Location = s.Location
		in.Calories = s.CaloriesTarget
		in.Protein = s.ProteinMin
		in.Diet = s.Diet
		in.Query = s.Query
		in.Restaurants = restaurants
	}

	_, totals := TodayLogs(req.Logs, p.now())
	in.LogCount = totals.Count
	in.LoggedCalories = totals.Calories
	in.LoggedProtein = totals.Protein

	text, err := prompt.BuildCoach(in)
	if err != nil {
		return "", err
	}

	raw, err := p.chat.Chat(ctx, text, p.localeOnly())
	if err != nil {
		p.log.Warn("upstream coach failed", zap.String("client", clientID), zap.Error(err))
		return "", classifyUpstream(err)
	}
	return normalize.ReplyText(raw, coachFallback), nil
}

// localeOnly is the geo context for follow-up prompts.
func (p *Pipeline) localeOnly() types.GeoContext {
	locale := p.geo.Locale
	if locale == "" {
		locale = "en_US"
	}
	return types.GeoContext{Locale: locale}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
