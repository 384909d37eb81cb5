package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownContentType возвращается при декодировании неизвестного варианта содержимого
var ErrUnknownContentType = errors.New("неизвестный тип содержимого")

// ContentType тег варианта содержимого
type ContentType string

const (
	ContentText        ContentType = "text"
	ContentCode        ContentType = "code"
	ContentImage       ContentType = "image"
	ContentAudio       ContentType = "audio"
	ContentSpreadsheet ContentType = "spreadsheet"
	ContentChart       ContentType = "chart"
	ContentDocument    ContentType = "document"
	ContentDrawing     ContentType = "drawing"
	ContentDiagram     ContentType = "diagram"
)

// ContentTypes закрытый набор вариантов. Новый вариант добавляется сюда, в NewContent
// и в извлечение текста.
var ContentTypes = []ContentType{
	ContentText,
	ContentCode,
	ContentImage,
	ContentAudio,
	ContentSpreadsheet,
	ContentChart,
	ContentDocument,
	ContentDrawing,
	ContentDiagram,
}

// Content полезная нагрузка сообщения. Интерфейс закрыт: реализовать его могут
// только типы этого пакета.
type Content interface {
	Type() ContentType
	sealed()
}

// TextContent обычный текст
type TextContent struct {
	Text string `json:"text"`
}

// CodeContent фрагмент кода
type CodeContent struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// ImageContent изображение с необязательной подписью
type ImageContent struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// AudioContent аудиозапись с необязательной расшифровкой
type AudioContent struct {
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Transcription   string  `json:"transcription,omitempty"`
}

// SpreadsheetMetadata метаданные таблицы
type SpreadsheetMetadata struct {
	Summary string `json:"summary,omitempty"`
}

// SpreadsheetData табличные данные
type SpreadsheetData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// SpreadsheetContent таблица
type SpreadsheetContent struct {
	Data     SpreadsheetData     `json:"data"`
	Metadata SpreadsheetMetadata `json:"metadata"`
}

// ChartDataset один ряд значений графика
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData структура данных графика
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartContent график
type ChartContent struct {
	ChartType string    `json:"chart_type"`
	Title     string    `json:"title,omitempty"`
	Data      ChartData `json:"data"`
}

// DocumentContent текстовый документ
type DocumentContent struct {
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
	Text   string `json:"text"`
}

// DrawingContent рисунок с необязательной подписью
type DrawingContent struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// DiagramContent диаграмма в текстовой нотации (mermaid и т.п.)
type DiagramContent struct {
	Notation string `json:"notation,omitempty"`
	Source   string `json:"source"`
}

func (TextContent) Type() ContentType        { return ContentText }
func (CodeContent) Type() ContentType        { return ContentCode }
func (ImageContent) Type() ContentType       { return ContentImage }
func (AudioContent) Type() ContentType       { return ContentAudio }
func (SpreadsheetContent) Type() ContentType { return ContentSpreadsheet }
func (ChartContent) Type() ContentType       { return ContentChart }
func (DocumentContent) Type() ContentType    { return ContentDocument }
func (DrawingContent) Type() ContentType     { return ContentDrawing }
func (DiagramContent) Type() ContentType     { return ContentDiagram }

func (TextContent) sealed()        {}
func (CodeContent) sealed()        {}
func (ImageContent) sealed()       {}
func (AudioContent) sealed()       {}
func (SpreadsheetContent) sealed() {}
func (ChartContent) sealed()       {}
func (DocumentContent) sealed()    {}
func (DrawingContent) sealed()     {}
func (DiagramContent) sealed()     {}

// NewContent возвращает указатель на пустой вариант для декодирования
func NewContent(t ContentType) (Content, error) {
	switch t {
	case ContentText:
		return &TextContent{}, nil
	case ContentCode:
		return &CodeContent{}, nil
	case ContentImage:
		return &ImageContent{}, nil
	case ContentAudio:
		return &AudioContent{}, nil
	case ContentSpreadsheet:
		return &SpreadsheetContent{}, nil
	case ContentChart:
		return &ChartContent{}, nil
	case ContentDocument:
		return &DocumentContent{}, nil
	case ContentDrawing:
		return &DrawingContent{}, nil
	case ContentDiagram:
		return &DiagramContent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, t)
	}
}

// MarshalContent кодирует содержимое в JSON-объект с полем "type"
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}

	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("ошибка маршалинга содержимого %s: %w", c.Type(), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("ошибка маршалинга содержимого %s: %w", c.Type(), err)
	}

	tag, _ := json.Marshal(c.Type())
	fields["type"] = tag

	return json.Marshal(fields)
}

// UnmarshalContent декодирует тегированный JSON-объект в вариант содержимого.
// Возвращаемое значение всегда имеет тип-значение (TextContent, а не *TextContent).
func UnmarshalContent(data []byte) (Content, error) {
	var tagged struct {
		Type ContentType `json:"type"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("ошибка парсинга содержимого: %w", err)
	}

	target, err := NewContent(tagged.Type)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("ошибка парсинга содержимого %s: %w", tagged.Type, err)
	}

	return deref(target), nil
}

func deref(c Content) Content {
	switch v := c.(type) {
	case *TextContent:
		return *v
	case *CodeContent:
		return *v
	case *ImageContent:
		return *v
	case *AudioContent:
		return *v
	case *SpreadsheetContent:
		return *v
	case *ChartContent:
		return *v
	case *DocumentContent:
		return *v
	case *DrawingContent:
		return *v
	case *DiagramContent:
		return *v
	default:
		return c
	}
}
