package search

import (
	"sort"

	"chat-search/src/domain"
)

// Rank сортирует результаты по убыванию оценки и оставляет первые topK.
// Порядок равных по оценке результатов сохраняется. Входной срез не изменяется.
func Rank(results []domain.SearchResult, topK int) []domain.SearchResult {
	if topK <= 0 || len(results) == 0 {
		return []domain.SearchResult{}
	}

	ranked := make([]domain.SearchResult, len(results))
	copy(ranked, results)
	sortByScore(ranked)

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Boost умножает оценку результатов беседы conversationID на factor и пересортировывает.
// Набор результатов не меняется, только оценки и порядок.
func Boost(results []domain.SearchResult, conversationID string, factor float64) []domain.SearchResult {
	boosted := make([]domain.SearchResult, len(results))
	copy(boosted, results)

	for i := range boosted {
		if boosted[i].ConversationID == conversationID {
			boosted[i].RelevanceScore *= factor
		}
	}

	sortByScore(boosted)
	return boosted
}

func sortByScore(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
}
