// Package categorizer proposes categories for transactions from keyword matches.
package categorizer

import (
	"sort"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// MatchConfidence is the confidence reported for any keyword match.
const MatchConfidence = 0.95

// DefaultCategories returns the categories the default keywords point at.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: "c_food", Name: "Food", Type: model.CategoryTypeExpense},
		{ID: "c_trans", Name: "Transport", Type: model.CategoryTypeExpense},
		{ID: "c_salary", Name: "Salary", Type: model.CategoryTypeIncome},
	}
}

// DefaultKeywords returns the default keyword to category name mapping.
func DefaultKeywords() map[string]string {
	return map[string]string{
		"eat":    "Food",
		"meal":   "Food",
		"lunch":  "Food",
		"subway": "Transport",
		"bus":    "Transport",
		"salary": "Salary",
	}
}

// SeedDefaults adds each default category that the repository does not
// already hold under the same name, and returns how many were added.
// Categories a user already customized are left untouched.
func SeedDefaults(repo service.CategoryRepository) int {
	added := 0
	for _, c := range DefaultCategories() {
		if repo.FindByName(c.Name) != nil {
			continue
		}
		repo.Save(c)
		added++
	}
	return added
}

type keywordRule struct {
	keyword  string
	category string
}

// KeywordCategorizer matches keyword substrings against a transaction's
// merchant and notes.
type KeywordCategorizer struct {
	lookup service.CategoryLookup
	rules  []keywordRule
}

// New creates a categorizer over keywords, a mapping from keyword substring to
// category name. Keywords are tried in lexical order. Empty keywords are ignored.
func New(lookup service.CategoryLookup, keywords map[string]string) *KeywordCategorizer {
	rules := make([]keywordRule, 0, len(keywords))
	for kw, category := range keywords {
		if kw == "" || category == "" {
			continue
		}
		rules = append(rules, keywordRule{keyword: kw, category: category})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].keyword < rules[j].keyword })

	return &KeywordCategorizer{lookup: lookup, rules: rules}
}

// NewDefault creates a categorizer over DefaultKeywords.
func NewDefault(lookup service.CategoryLookup) *KeywordCategorizer {
	return New(lookup, DefaultKeywords())
}

// Keywords returns the keywords in match order.
func (k *KeywordCategorizer) Keywords() []string {
	out := make([]string, len(k.rules))
	for i, r := range k.rules {
		out[i] = r.keyword
	}
	return out
}

// AutoCategorize returns the category of the first keyword found in the
// merchant or notes, with MatchConfidence. A keyword whose category is not
// in the store is passed over. No match returns (nil, 0).
// Matching is on the raw text; keywords are case-sensitive substrings.
func (k *KeywordCategorizer) AutoCategorize(txn model.Transaction) (*model.Category, float64) {
	for _, r := range k.rules {
		if !strings.Contains(txn.Merchant, r.keyword) && !strings.Contains(txn.Notes, r.keyword) {
			continue
		}
		if c := k.lookup.FindByName(r.category); c != nil {
			return c, MatchConfidence
		}
	}
	return nil, 0
}
