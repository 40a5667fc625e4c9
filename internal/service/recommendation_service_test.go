package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"juicedash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalogStore is a mock implementation of CatalogStore.
type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) GetAvailableProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogStore) GetSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SymptomMapping), args.Error(1)
}

func testCatalog() []models.Product {
	return []models.Product{
		{
			ID:             "green-detox",
			Name:           "Green Detox",
			PricePerLitre:  15000,
			Ingredients:    []string{"Spinach", "Ginger", "Apple"},
			HealthBenefits: []string{"Boosts immunity", "Eases digestion"},
			IsAvailable:    true,
		},
		{
			ID:             "citrus-blast",
			Name:           "Citrus Blast",
			PricePerLitre:  18000,
			Ingredients:    []string{"Orange", "Lemon", "Honey"},
			HealthBenefits: []string{"Rich in vitamin C"},
			IsAvailable:    true,
		},
		{
			ID:             "berry-calm",
			Name:           "Berry Calm",
			PricePerLitre:  20000,
			Ingredients:    []string{"Strawberry", "Blueberry", "Milk"},
			HealthBenefits: []string{"Supports restful sleep"},
			IsAvailable:    true,
		},
		{
			ID:             "tropical-kick",
			Name:           "Tropical Kick",
			PricePerLitre:  17000,
			Ingredients:    []string{"Pineapple", "Mango", "Peanut"},
			HealthBenefits: []string{"Energy boost"},
			IsAvailable:    true,
		},
	}
}

func testMappings() []models.SymptomMapping {
	return []models.SymptomMapping{
		{
			Symptom:                "Fatigue",
			RecommendedIngredients: []string{"Ginger", "Orange"},
			AvoidIngredients:       []string{"Milk"},
		},
		{
			Symptom:                "Cold",
			RecommendedIngredients: []string{"Lemon", "Honey", "Ginger"},
			AvoidIngredients:       []string{},
		},
	}
}

func seededSampler() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestRecommendFailsOnEmptySymptoms(t *testing.T) {
	svc := NewRecommendationService(new(MockCatalogStore), nil)

	_, err := svc.Recommend(context.Background(), nil, nil)
	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeInvalidInput, domainErr.Code)
}

func TestRecommendSurfacesStoreFailure(t *testing.T) {
	catalog := new(MockCatalogStore)
	catalog.On("GetAvailableProducts", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := NewRecommendationService(catalog, nil)
	_, err := svc.Recommend(context.Background(), []string{"fatigue"}, nil)

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeStoreUnavailable, domainErr.Code)
}

func TestRecommendScoredPath(t *testing.T) {
	catalog := new(MockCatalogStore)
	catalog.On("GetAvailableProducts", mock.Anything).Return(testCatalog(), nil)
	catalog.On("GetSymptomMappings", mock.Anything).Return(testMappings(), nil)

	svc := NewRecommendationService(catalog, nil).WithSampler(seededSampler())
	report, err := svc.Recommend(context.Background(), []string{"FATIGUE"}, nil)
	require.NoError(t, err)

	require.NotNil(t, report.SymptomMappingsFound)
	assert.Equal(t, 1, *report.SymptomMappingsFound)
	assert.Equal(t, 4, report.TotalProductsAnalyzed)
	assert.Equal(t, []string{"FATIGUE"}, report.SymptomsAnalyzed)

	require.NotEmpty(t, report.Recommendations)
	assert.LessOrEqual(t, len(report.Recommendations), 3)

	// Symptom matching is case-insensitive: Ginger and Orange are
	// recommended, Milk is avoided.
	ids := make([]string, 0, len(report.Recommendations))
	for _, rec := range report.Recommendations {
		ids = append(ids, rec.Product.ID)
		assert.False(t, rec.HasAvoidedIngredients)
		assert.Greater(t, rec.RecommendationScore, 0)
	}
	assert.Contains(t, ids, "green-detox")
	assert.Contains(t, ids, "citrus-blast")
	assert.NotContains(t, ids, "berry-calm")
}

func TestScoreProductWeights(t *testing.T) {
	recommended := map[string]bool{"ginger": true, "orange": true}
	avoided := map[string]bool{"milk": true}

	product := models.Product{
		ID:             "p",
		Ingredients:    []string{"Ginger", "Orange", "Milk"},
		HealthBenefits: []string{"Eases digestion"},
	}

	rec := scoreProduct(product, []string{"digestion"}, recommended, avoided)

	// Two matched ingredients (+5 each), one avoided (-10), one
	// benefit containing the symptom text (+3).
	assert.Equal(t, 3, rec.RecommendationScore)
	assert.True(t, rec.HasAvoidedIngredients)
	assert.Equal(t, []string{"Ginger", "Orange"}, rec.MatchedIngredients)
}

func TestBenefitOverlapIsBidirectionalAndUncapped(t *testing.T) {
	product := models.Product{
		ID:             "p",
		HealthBenefits: []string{"Immunity", "Boosts immunity fast"},
	}

	// Pairs that overlap: ("Immunity","immunity") by symptom-in-benefit,
	// ("Immunity","low immunity days") by benefit-in-symptom, and
	// ("Boosts immunity fast","immunity") by symptom-in-benefit. The
	// fourth pair has no containment either way.
	rec := scoreProduct(product, []string{"immunity", "low immunity days"}, nil, nil)
	assert.Equal(t, 3*benefitOverlapBonus, rec.RecommendationScore)
}

func TestScoreMonotonicInMatchedIngredients(t *testing.T) {
	recommended := map[string]bool{"ginger": true, "orange": true, "lemon": true}

	prev := -1
	for _, ingredients := range [][]string{
		{"Apple"},
		{"Ginger"},
		{"Ginger", "Orange"},
		{"Ginger", "Orange", "Lemon"},
	} {
		rec := scoreProduct(models.Product{Ingredients: ingredients}, nil, recommended, map[string]bool{})
		assert.GreaterOrEqual(t, rec.RecommendationScore, prev)
		prev = rec.RecommendationScore
	}
}

func TestFlaggedProductNeverSurfaced(t *testing.T) {
	// Berry Calm would score highly, but contains milk which the
	// caller is allergic to; it must never appear.
	mappings := []models.SymptomMapping{{
		Symptom:                "insomnia",
		RecommendedIngredients: []string{"Strawberry", "Blueberry", "Milk"},
	}}

	report := BuildRecommendations([]string{"insomnia"}, []string{"milk"}, testCatalog(), mappings, seededSampler())
	for _, rec := range report.Recommendations {
		assert.NotEqual(t, "berry-calm", rec.Product.ID)
		for _, ing := range rec.Product.Ingredients {
			assert.False(t, strings.EqualFold("milk", ing))
		}
	}
}

func TestAllergenExclusionProperty(t *testing.T) {
	symptomSets := [][]string{
		{"fatigue"},
		{"cold", "fatigue"},
		{"unmapped complaint"},
	}
	allergySets := [][]string{
		{"milk"},
		{"peanut", "honey"},
		{"spinach", "orange", "strawberry", "pineapple"},
	}

	for _, symptoms := range symptomSets {
		for _, allergies := range allergySets {
			report := BuildRecommendations(symptoms, allergies, testCatalog(), testMappings(), seededSampler())
			assert.LessOrEqual(t, len(report.Recommendations), 3)
			for _, rec := range report.Recommendations {
				for _, ing := range rec.Product.Ingredients {
					for _, allergy := range allergies {
						assert.False(t, strings.EqualFold(allergy, ing),
							"symptoms=%v allergies=%v surfaced %s", symptoms, allergies, rec.Product.ID)
					}
				}
			}
		}
	}
}

func TestFallbackPath(t *testing.T) {
	// No mapping matches and no benefit overlaps, so the scored pass
	// yields nothing.
	report := BuildRecommendations([]string{"hiccups"}, []string{"milk"}, testCatalog(), testMappings(), seededSampler())

	assert.Nil(t, report.SymptomMappingsFound)
	assert.NotEqual(t, msgScoredRecommendations, report.Message)

	// Three products remain once milk-based Berry Calm is excluded.
	require.Len(t, report.Recommendations, 3)
	for _, rec := range report.Recommendations {
		assert.Equal(t, 1, rec.RecommendationScore)
		assert.Empty(t, rec.MatchedIngredients)
		assert.Equal(t, []string{reasonGeneralWellness, reasonNoConflicts}, rec.Reasons)
		assert.NotEqual(t, "berry-calm", rec.Product.ID)
	}
}

func TestFallbackCountIsBoundedByConflictFreeProducts(t *testing.T) {
	// Allergic to nearly everything: only Citrus Blast is safe.
	allergies := []string{"spinach", "strawberry", "peanut"}
	report := BuildRecommendations([]string{"hiccups"}, allergies, testCatalog(), testMappings(), seededSampler())

	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, "citrus-blast", report.Recommendations[0].Product.ID)
}

func TestScoredResultsSortedByScoreDescending(t *testing.T) {
	report := BuildRecommendations([]string{"cold"}, nil, testCatalog(), testMappings(), seededSampler())

	require.NotNil(t, report.SymptomMappingsFound)
	for i := 1; i < len(report.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			report.Recommendations[i-1].RecommendationScore,
			report.Recommendations[i].RecommendationScore)
	}
}
