package search

import (
	"encoding/json"

	"chat-search/src/domain"
)

// ExtractText возвращает текстовую поверхность содержимого для сопоставления с запросом.
// Отсутствующие необязательные поля дают пустую строку; функция никогда не паникует.
func ExtractText(content domain.Content) string {
	switch c := content.(type) {
	case domain.TextContent:
		return c.Text
	case domain.CodeContent:
		return c.Code
	case domain.ImageContent:
		return c.Caption
	case domain.AudioContent:
		return c.Transcription
	case domain.SpreadsheetContent:
		if c.Metadata.Summary != "" {
			return c.Metadata.Summary
		}
		return serialize(c.Data)
	case domain.ChartContent:
		return serialize(c.Data)
	case domain.DocumentContent:
		return c.Text
	case domain.DrawingContent:
		return c.Caption
	case domain.DiagramContent:
		return c.Source
	case nil:
		return ""
	default:
		return extractPointer(content)
	}
}

// extractPointer разыменовывает указатели на варианты, которые возвращает domain.NewContent
func extractPointer(content domain.Content) string {
	switch c := content.(type) {
	case *domain.TextContent:
		return derefText(c)
	case *domain.CodeContent:
		return derefText(c)
	case *domain.ImageContent:
		return derefText(c)
	case *domain.AudioContent:
		return derefText(c)
	case *domain.SpreadsheetContent:
		return derefText(c)
	case *domain.ChartContent:
		return derefText(c)
	case *domain.DocumentContent:
		return derefText(c)
	case *domain.DrawingContent:
		return derefText(c)
	case *domain.DiagramContent:
		return derefText(c)
	default:
		return ""
	}
}

func derefText[T domain.Content](p *T) string {
	if p == nil {
		return ""
	}
	return ExtractText(*p)
}

// serialize стабильная строковая форма структуры данных
func serialize(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
