package search

import (
	"strings"
	"unicode/utf8"
)

// Scorer оценивает текст по числу вхождений слов запроса.
// Слова длиной не больше MinTermLength символов не учитываются: это
// упрощённая замена списку стоп-слов.
type Scorer struct {
	MinTermLength int
}

// NewScorer создает оценщик с заданным порогом длины слова
func NewScorer(minTermLength int) Scorer {
	return Scorer{MinTermLength: minTermLength}
}

// Terms возвращает значимые слова запроса в нижнем регистре
func (s Scorer) Terms(query string) []string {
	var terms []string
	for _, word := range strings.Fields(query) {
		if utf8.RuneCountInString(word) <= s.MinTermLength {
			continue
		}
		terms = append(terms, strings.ToLower(word))
	}
	return terms
}

// Score суммирует по всем значимым словам число их вхождений в text без учёта регистра.
// Сопоставление по подстроке: "cat" находится внутри "category".
func (s Scorer) Score(text, query string) int {
	if text == "" {
		return 0
	}
	return s.scoreTerms(strings.ToLower(text), s.Terms(query))
}

func (s Scorer) scoreTerms(lowerText string, terms []string) int {
	score := 0
	for _, term := range terms {
		score += strings.Count(lowerText, term)
	}
	return score
}
