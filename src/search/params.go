package search

// Значения по умолчанию для параметров поиска
const (
	DefaultMinTermLength = 3
	DefaultBoostFactor   = 1.5
	DefaultSearchLimit   = 3
	DefaultAnswerLimit   = 1
	DefaultContextLimit  = 3
)

// Params параметры движка поиска
type Params struct {
	// MinTermLength слова запроса длиной (в символах) не больше этого значения отбрасываются
	MinTermLength int `yaml:"min_term_length" json:"min_term_length"`
	// BoostFactor множитель оценки для результатов текущей беседы
	BoostFactor float64 `yaml:"boost_factor" json:"boost_factor"`
	// SearchLimit размер выдачи Search
	SearchLimit int `yaml:"search_limit" json:"search_limit"`
	// AnswerLimit сколько результатов ранжируется для GetAnswer
	AnswerLimit int `yaml:"answer_limit" json:"answer_limit"`
	// ContextLimit сколько результатов ранжируется до усиления в GetConversationAwareAnswer
	ContextLimit int `yaml:"context_limit" json:"context_limit"`
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		MinTermLength: DefaultMinTermLength,
		BoostFactor:   DefaultBoostFactor,
		SearchLimit:   DefaultSearchLimit,
		AnswerLimit:   DefaultAnswerLimit,
		ContextLimit:  DefaultContextLimit,
	}
}

// WithDefaults заменяет нулевые и некорректные значения значениями по умолчанию
func (p Params) WithDefaults() Params {
	if p.MinTermLength <= 0 {
		p.MinTermLength = DefaultMinTermLength
	}
	if p.BoostFactor <= 0 {
		p.BoostFactor = DefaultBoostFactor
	}
	if p.SearchLimit <= 0 {
		p.SearchLimit = DefaultSearchLimit
	}
	if p.AnswerLimit <= 0 {
		p.AnswerLimit = DefaultAnswerLimit
	}
	if p.ContextLimit <= 0 {
		p.ContextLimit = DefaultContextLimit
	}
	return p
}
