package usecase

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/nutribudget/backend/internal/domain"
)

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Token weights for coverage scoring
const (
	weightFood        = 3.0 // Core food terms (milk, chicken, bread)
	weightDescriptive = 2.0 // Descriptive terms (whole, skim, organic)
	weightDefault     = 1.0 // Everything else
	fuzzyWeightFactor = 0.8 // Fuzzy matches get 80% of normal weight
)

// Scoring bonuses
const (
	brandMatchBonus         = 15.0
	substringMatchBonus     = 10.0
	dataTypeSurveyBonus     = 5.0 // Generic survey foods describe receipt items well
	dataTypeFoundationBonus = 3.0
	dataTypeBrandedBonus    = 2.0
)

// foodTerms are the nouns that identify what a grocery item is
var foodTerms = map[string]bool{
	// Proteins
	"chicken": true, "beef": true, "pork": true, "fish": true, "salmon": true,
	"turkey": true, "shrimp": true, "tuna": true, "bacon": true, "sausage": true,
	"ham": true, "tofu": true, "lentils": true, "beans": true, "egg": true, "eggs": true,
	// Dairy
	"milk": true, "cheese": true, "yogurt": true, "butter": true, "cream": true,
	// Grains
	"bread": true, "rice": true, "pasta": true, "cereal": true, "oats": true,
	"oatmeal": true, "flour": true, "noodles": true, "tortilla": true, "bagel": true,
	// Produce
	"apple": true, "apples": true, "banana": true, "bananas": true, "orange": true,
	"lettuce": true, "tomato": true, "potato": true, "onion": true, "carrot": true,
	"carrots": true, "broccoli": true, "spinach": true, "berries": true, "avocado": true,
	"cucumber": true, "pepper": true, "grapes": true,
	// Beverages
	"juice": true, "soda": true, "cola": true, "coffee": true, "tea": true, "water": true,
	// Snacks & sweets
	"chips": true, "crackers": true, "cookies": true, "candy": true, "chocolate": true,
	"cake": true, "popcorn": true, "pretzels": true, "nuts": true, "almonds": true,
	// Prepared
	"pizza": true, "soup": true, "salad": true, "burrito": true,
}

// descriptiveTerms refine what kind of item it is
var descriptiveTerms = map[string]bool{
	"whole": true, "skim": true, "reduced": true, "fat": true, "low": true,
	"nonfat": true, "organic": true, "fresh": true, "frozen": true, "canned": true,
	"dried": true, "raw": true, "cooked": true, "roasted": true, "smoked": true,
	"plain": true, "greek": true, "sweetened": true, "unsweetened": true,
	"salted": true, "unsalted": true, "lean": true, "brown": true, "white": true,
	"wheat": true, "grain": true, "diet": true, "sparkling": true, "instant": true,
}

// extendedStopWords includes basic English stop words plus receipt noise
var extendedStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"in": true, "with": true, "for": true, "by": true, "from": true,
	// Units
	"oz": true, "fl": true, "lb": true, "lbs": true, "ml": true, "gal": true,
	"gallon": true, "qt": true, "kg": true, "ct": true, "pk": true, "ea": true,
	// Packaging and marketing
	"pack": true, "count": true, "box": true, "bag": true, "bottle": true,
	"can": true, "jar": true, "size": true, "value": true, "family": true,
	"each": true, "serving": true, "new": true, "product": true,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinConfidenceThreshold float64
	EnableFuzzyMatching    bool
	FuzzyEditDistance      int
	EnableDebugLogging     bool
}

// MatchingService picks the USDA food that best describes a receipt item name
type MatchingService struct {
	minConfidenceThreshold float64
	enableFuzzyMatching    bool
	fuzzyEditDistance      int
	enableDebugLogging     bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.MinConfidenceThreshold
	if threshold <= 0 {
		threshold = 40.0
	}

	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1
	}

	return &MatchingService{
		minConfidenceThreshold: threshold,
		enableFuzzyMatching:    config.EnableFuzzyMatching,
		fuzzyEditDistance:      fuzzyDist,
		enableDebugLogging:     config.EnableDebugLogging,
	}
}

// FindBestMatch finds the best matching USDA food for a search request.
// When the best score is under the threshold the match is still returned
// together with domain.ErrLowConfidence.
func (s *MatchingService) FindBestMatch(
	ctx context.Context,
	request *domain.SearchRequest,
	usdaFoods []domain.USDAFood,
) (*domain.MatchResult, error) {
	if request == nil || strings.TrimSpace(request.ProductName) == "" {
		return nil, domain.ErrMalformedInput
	}
	if len(usdaFoods) == 0 {
		return nil, domain.ErrProductNotFound
	}

	var bestMatch *domain.MatchResult
	highestScore := -1.0

	for _, food := range usdaFoods {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score, matched := s.calculateMatchScore(request.ProductName, request.Brand, food)

		if s.enableDebugLogging {
			log.Printf("[MATCH] %q vs %q (%s): %.1f %v",
				request.ProductName, food.Description, food.DataType, score, matched)
		}

		if score > highestScore {
			highestScore = score
			bestMatch = &domain.MatchResult{
				FdcID:         strconv.Itoa(food.FdcID),
				Description:   food.Description,
				MatchScore:    score,
				MatchedTokens: matched,
			}
		}
	}

	if bestMatch.MatchScore < s.minConfidenceThreshold {
		return bestMatch, domain.ErrLowConfidence
	}
	return bestMatch, nil
}

// calculateMatchScore scores how well a USDA food describes the product name.
// It combines weighted coverage of the product tokens (70%) with plain
// coverage of the USDA tokens (30%), then adds brand, substring and data type
// bonuses. Returns a score in [0,100] and the matched product tokens.
func (s *MatchingService) calculateMatchScore(productName, brand string, food domain.USDAFood) (float64, []string) {
	productTokens := tokenize(productName)
	usdaTokens := tokenize(food.Description)
	if len(productTokens) == 0 || len(usdaTokens) == 0 {
		return 0, nil
	}

	usdaSet := make(map[string]bool, len(usdaTokens))
	for _, t := range usdaTokens {
		usdaSet[t] = true
	}

	var totalWeight, matchedWeight float64
	var matched []string
	for _, token := range productTokens {
		weight := tokenWeight(token)
		totalWeight += weight

		if usdaSet[token] {
			matchedWeight += weight
			matched = append(matched, token)
			continue
		}
		if s.enableFuzzyMatching {
			for _, candidate := range usdaTokens {
				if fuzzyTokenMatch(token, candidate, s.fuzzyEditDistance) {
					matchedWeight += weight * fuzzyWeightFactor
					matched = append(matched, token)
					break
				}
			}
		}
	}

	usdaMatched, _ := findIntersection(usdaTokens, productTokens)
	productCoverage := matchedWeight / totalWeight
	usdaCoverage := float64(usdaMatched) / float64(len(usdaTokens))

	score := (productCoverage*0.70 + usdaCoverage*0.30) * 100

	usdaLower := strings.ToLower(food.Description + " " + food.BrandOwner)
	if brand != "" && strings.Contains(usdaLower, strings.ToLower(brand)) {
		score += brandMatchBonus
	}

	productJoined := strings.Join(productTokens, " ")
	usdaJoined := strings.Join(usdaTokens, " ")
	if len(productJoined) > 3 && strings.Contains(usdaJoined, productJoined) {
		score += substringMatchBonus
	}

	switch food.DataType {
	case "Survey (FNDDS)":
		score += dataTypeSurveyBonus
	case "Foundation":
		score += dataTypeFoundationBonus
	case "Branded":
		score += dataTypeBrandedBonus
	}

	if score > 100 {
		score = 100
	}
	return score, matched
}

func tokenWeight(token string) float64 {
	switch {
	case foodTerms[token]:
		return weightFood
	case descriptiveTerms[token]:
		return weightDescriptive
	default:
		return weightDefault
	}
}

// tokenize splits a string into normalized lowercase tokens, dropping
// punctuation, stop words, single characters and pure numbers
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 || extendedStopWords[word] || isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are within the edit distance threshold.
// Short tokens never match fuzzily.
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// findIntersection returns the count of distinct tokens of tokens1 found in tokens2
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool, len(tokens2))
	for _, t := range tokens2 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens1 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}
	return len(matched), matched
}
