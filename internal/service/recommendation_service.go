package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"juicedash/internal/models"
	"juicedash/internal/util"

	"go.uber.org/zap"
)

// Sampler yields random indices for the fallback selection. Injected
// so tests can seed it.
type Sampler interface {
	Intn(n int) int
}

type globalSampler struct{}

func (globalSampler) Intn(n int) int { return rand.Intn(n) }

// CatalogStore is the slice of the store the recommendation engine
// depends on.
type CatalogStore interface {
	GetAvailableProducts(ctx context.Context) ([]models.Product, error)
	GetSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error)
}

// CatalogCache is the optional cache in front of the catalog store.
type CatalogCache interface {
	GetCachedCatalog(ctx context.Context) ([]models.Product, error)
	SetCachedCatalog(ctx context.Context, products []models.Product) error
	GetCachedSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error)
	SetCachedSymptomMappings(ctx context.Context, mappings []models.SymptomMapping) error
}

// Scoring weights for the recommendation engine.
const (
	avoidedIngredientPenalty = 10
	matchedIngredientBonus   = 5
	benefitOverlapBonus      = 3
	maxRecommendations       = 3
)

const (
	msgScoredRecommendations   = "Recommendations based on your symptoms"
	msgFallbackRecommendations = "No specific matches for your symptoms, here are some general wellness options"
	reasonGenericChoice        = "Nutritious and refreshing choice"
	reasonGeneralWellness      = "General wellness support"
	reasonNoConflicts          = "No conflicting ingredients"
)

// RecommendationService maps reported symptoms and allergies to a
// ranked shortlist of catalog products.
type RecommendationService struct {
	catalog CatalogStore
	cache   CatalogCache
	sampler Sampler
	logger  *zap.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(catalog CatalogStore, cache CatalogCache) *RecommendationService {
	return &RecommendationService{
		catalog: catalog,
		cache:   cache,
		sampler: globalSampler{},
		logger:  util.GetLogger(),
	}
}

// WithSampler overrides the random source used by the fallback path.
func (s *RecommendationService) WithSampler(sampler Sampler) *RecommendationService {
	s.sampler = sampler
	return s
}

// Recommend fetches the current catalog and symptom mapping table and
// runs the scoring engine over them.
func (s *RecommendationService) Recommend(ctx context.Context, symptoms, allergies []string) (*models.RecommendationReport, error) {
	ctx, span := util.StartSpan(ctx, "RecommendationService.Recommend")
	defer span.End()

	if len(symptoms) == 0 {
		return nil, models.ErrEmptySymptoms
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load catalog", err)
	}

	mappings, err := s.loadSymptomMappings(ctx)
	if err != nil {
		return nil, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load symptom mappings", err)
	}

	report := BuildRecommendations(symptoms, allergies, catalog, mappings, s.sampler)

	util.RecommendationsServedTotal.Inc()
	if report.SymptomMappingsFound == nil {
		util.RecommendationFallbackTotal.Inc()
	}

	s.logger.Info("Recommendations built",
		zap.Strings("symptoms", symptoms),
		zap.Int("results", len(report.Recommendations)),
		zap.Bool("fallback", report.SymptomMappingsFound == nil))

	return report, nil
}

func (s *RecommendationService) loadCatalog(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedCatalog(ctx)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	catalog, err := s.catalog.GetAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCachedCatalog(ctx, catalog); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return catalog, nil
}

func (s *RecommendationService) loadSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedSymptomMappings(ctx)
		if err != nil {
			s.logger.Warn("Symptom mapping cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	mappings, err := s.catalog.GetSymptomMappings(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCachedSymptomMappings(ctx, mappings); err != nil {
			s.logger.Warn("Symptom mapping cache write failed", zap.Error(err))
		}
	}
	return mappings, nil
}

// BuildRecommendations scores every available product against the
// requested symptoms and allergies and returns the top shortlist.
// Pure over its inputs apart from the sampler used on the fallback
// path.
func BuildRecommendations(symptoms, allergies []string, catalog []models.Product, mappings []models.SymptomMapping, sampler Sampler) *models.RecommendationReport {
	foldedSymptoms := foldAll(symptoms)

	// Union recommended/avoid ingredient sets over matched mappings.
	// Allergies are always avoided, whether or not a mapping matched.
	recommended := make(map[string]bool)
	avoided := make(map[string]bool)
	mappingsFound := 0
	for _, m := range mappings {
		if !containsFolded(foldedSymptoms, strings.ToLower(m.Symptom)) {
			continue
		}
		mappingsFound++
		for _, ing := range m.RecommendedIngredients {
			recommended[strings.ToLower(ing)] = true
		}
		for _, ing := range m.AvoidIngredients {
			avoided[strings.ToLower(ing)] = true
		}
	}
	for _, a := range allergies {
		avoided[strings.ToLower(a)] = true
	}

	scored := make([]models.Recommendation, 0, len(catalog))
	for _, product := range catalog {
		rec := scoreProduct(product, foldedSymptoms, recommended, avoided)
		if rec.HasAvoidedIngredients || rec.RecommendationScore <= 0 {
			continue
		}
		scored = append(scored, rec)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RecommendationScore > scored[j].RecommendationScore
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	report := &models.RecommendationReport{
		Recommendations:       scored,
		SymptomsAnalyzed:      symptoms,
		AllergiesConsidered:   allergies,
		TotalProductsAnalyzed: len(catalog),
		Message:               msgScoredRecommendations,
	}

	if len(scored) > 0 {
		found := mappingsFound
		report.SymptomMappingsFound = &found
		return report
	}

	report.Recommendations = fallbackRecommendations(catalog, avoided, sampler)
	report.Message = msgFallbackRecommendations
	return report
}

func scoreProduct(product models.Product, foldedSymptoms []string, recommended, avoided map[string]bool) models.Recommendation {
	score := 0
	flagged := false
	var matchedIngredients []string

	for _, ing := range product.Ingredients {
		folded := strings.ToLower(ing)
		if avoided[folded] {
			score -= avoidedIngredientPenalty
			flagged = true
		}
		if recommended[folded] {
			score += matchedIngredientBonus
			matchedIngredients = append(matchedIngredients, ing)
		}
	}

	var matchedBenefits []string
	for _, benefit := range product.HealthBenefits {
		foldedBenefit := strings.ToLower(benefit)
		overlapped := false
		for _, symptom := range foldedSymptoms {
			if strings.Contains(foldedBenefit, symptom) || strings.Contains(symptom, foldedBenefit) {
				score += benefitOverlapBonus
				overlapped = true
			}
		}
		if overlapped {
			matchedBenefits = append(matchedBenefits, benefit)
		}
	}

	return models.Recommendation{
		Product:               product,
		RecommendationScore:   score,
		MatchedIngredients:    matchedIngredients,
		HasAvoidedIngredients: flagged,
		Reasons:               buildReasons(matchedIngredients, matchedBenefits),
	}
}

func buildReasons(matchedIngredients, matchedBenefits []string) []string {
	var reasons []string
	if len(matchedIngredients) > 0 {
		reasons = append(reasons, fmt.Sprintf("Contains %s recommended for your symptoms", strings.Join(matchedIngredients, ", ")))
	}
	if len(matchedBenefits) > 0 {
		reasons = append(reasons, fmt.Sprintf("Health benefits: %s", strings.Join(matchedBenefits, ", ")))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, reasonGenericChoice)
	}
	return reasons
}

// fallbackRecommendations samples up to three products that contain
// no avoided ingredient. The selection is deliberately random, not
// ranked.
func fallbackRecommendations(catalog []models.Product, avoided map[string]bool, sampler Sampler) []models.Recommendation {
	var candidates []models.Product
	for _, product := range catalog {
		safe := true
		for _, ing := range product.Ingredients {
			if avoided[strings.ToLower(ing)] {
				safe = false
				break
			}
		}
		if safe {
			candidates = append(candidates, product)
		}
	}

	// Partial Fisher-Yates over the candidate slice.
	picks := make([]models.Recommendation, 0, maxRecommendations)
	for i := 0; i < len(candidates) && len(picks) < maxRecommendations; i++ {
		j := i + sampler.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		picks = append(picks, models.Recommendation{
			Product:             candidates[i],
			RecommendationScore: 1,
			MatchedIngredients:  []string{},
			Reasons:             []string{reasonGeneralWellness, reasonNoConflicts},
		})
	}
	return picks
}

func foldAll(values []string) []string {
	folded := make([]string, len(values))
	for i, v := range values {
		folded[i] = strings.ToLower(v)
	}
	return folded
}

func containsFolded(folded []string, value string) bool {
	for _, f := range folded {
		if f == value {
			return true
		}
	}
	return false
}
