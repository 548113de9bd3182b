package usecase

import (
	"log"
	"regexp"
	"strings"
)

// QueryPreprocessor turns noisy receipt lines into food search queries
type QueryPreprocessor struct {
	enableDebugLogging bool
}

// Compiled regex patterns for query preprocessing
var (
	// Size/quantity like "128 fl oz", "12oz", "1.5 l", "2 lb", "1gal"
	sizeQuantityPattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(?:fl\s*oz|oz|ounces?|lbs?|pounds?|ml|l|liters?|gal|gallons?|qt|quarts?|pt|pints?|kg|g|grams?)\b`)

	// Pack/count like "12 pk", "6-pack", "24 ct", "pack of 6"
	packCountPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(?:pack|pk|count|ct)\b|\bpack\s*of\s*\d+\b`)

	// Price-look-up and register codes, e.g. "4011" or "PLU 4011"
	registerCodePattern = regexp.MustCompile(`(?i)\bplu\s*\d+\b|\b\d{4,}\b`)

	// Remaining punctuation other than apostrophes
	queryPunctuationPattern = regexp.MustCompile(`[^\w\s']`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// receiptAbbreviations expands the shorthand printed on grocery receipts
var receiptAbbreviations = map[string]string{
	"org": "organic", "orgnc": "organic", "whl": "whole", "wht": "wheat",
	"mlk": "milk", "chkn": "chicken", "chk": "chicken", "brst": "breast",
	"bnls": "boneless", "sknls": "skinless", "grnd": "ground", "bf": "beef",
	"ylw": "yellow", "grn": "green", "brd": "bread", "chs": "cheese",
	"ygrt": "yogurt", "yog": "yogurt", "bnna": "banana", "bnnas": "bananas",
	"strwb": "strawberries", "tom": "tomato", "pot": "potato", "veg": "vegetable",
	"frz": "frozen", "swt": "sweet", "unswt": "unsweetened", "lf": "low fat",
	"ff": "fat free", "rf": "reduced fat", "pb": "peanut butter", "oj": "orange juice",
	"crm": "cream", "bttr": "butter", "sparkl": "sparkling", "wtr": "water",
}

// queryNoiseWords are marketing, packaging and store terms that do not help a food search
var queryNoiseWords = map[string]bool{
	"value": true, "family": true, "bonus": true, "new": true, "improved": true,
	"premium": true, "select": true, "choice": true, "quality": true, "great": true,
	"size": true, "large": true, "medium": true, "small": true, "mini": true,
	"jumbo": true, "snack": true, "single": true, "package": true, "box": true,
	"bag": true, "bottle": true, "can": true, "jar": true, "tub": true,
	"carton": true, "pouch": true, "ea": true, "each": true, "sale": true,
	"bogo": true, "promo": true, "coupon": true, "item": true, "product": true,
	"brand": true, "store": true,
}

// storeBrands are house brands that USDA does not index
var storeBrands = []string{
	"great value", "marketside", "sam's choice", "kirkland signature", "kirkland",
	"365", "good & gather", "simple truth", "market pantry", "signature select",
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool) *QueryPreprocessor {
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
	}
}

// PreprocessQuery cleans a receipt item name for a food database search.
// Sizes, pack counts, register codes, store brands and noise words are
// removed and receipt abbreviations are expanded.
func (p *QueryPreprocessor) PreprocessQuery(productName string) string {
	if strings.TrimSpace(productName) == "" {
		return ""
	}

	original := productName
	cleaned := strings.ToLower(productName)

	for _, brand := range storeBrands {
		if strings.HasPrefix(cleaned, brand+" ") {
			cleaned = cleaned[len(brand):]
			break
		}
	}

	cleaned = sizeQuantityPattern.ReplaceAllString(cleaned, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = registerCodePattern.ReplaceAllString(cleaned, " ")
	cleaned = queryPunctuationPattern.ReplaceAllString(cleaned, " ")

	words := strings.Fields(cleaned)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, "'")
		if word == "" || queryNoiseWords[word] {
			continue
		}
		if expanded, ok := receiptAbbreviations[word]; ok {
			word = expanded
		}
		kept = append(kept, word)
	}

	cleaned = multiSpacePattern.ReplaceAllString(strings.Join(kept, " "), " ")
	cleaned = strings.TrimSpace(cleaned)

	// Keep queries short enough for the USDA search endpoint
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > 50 {
			cleaned = cleaned[:lastSpace]
		}
	}

	if p.enableDebugLogging {
		log.Printf("[PREPROCESS] Input: %q -> Output: %q", original, cleaned)
	}

	return cleaned
}

// ExtractFoodKeywords returns the tokens of text ordered by importance:
// food terms, then descriptive terms, then everything else
func (p *QueryPreprocessor) ExtractFoodKeywords(text string) []string {
	tokens := tokenize(p.PreprocessQuery(text))

	var high, medium, low []string
	for _, token := range tokens {
		switch {
		case foodTerms[token]:
			high = append(high, token)
		case descriptiveTerms[token]:
			medium = append(medium, token)
		default:
			low = append(low, token)
		}
	}

	result := make([]string, 0, len(tokens))
	result = append(result, high...)
	result = append(result, medium...)
	result = append(result, low...)
	return result
}

// CacheKey normalizes a receipt name into a stable cache key component
func (p *QueryPreprocessor) CacheKey(productName string) string {
	return strings.Join(tokenize(p.PreprocessQuery(productName)), " ")
}
