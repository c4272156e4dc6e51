package genai

import "strings"

// Wire types for the generateContent API. Provider responses are decoded
// into these structs and never flow further as dynamic JSON.

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts,omitempty"`
}

type part struct {
	Text string `json:"text,omitempty"`
	// Both spellings appear in the wild depending on API surface.
	InlineData      *inlineData `json:"inlineData,omitempty"`
	InlineDataSnake *inlineData `json:"inline_data,omitempty"`
}

func (p part) inline() *inlineData {
	if p.InlineData != nil {
		return p.InlineData
	}
	return p.InlineDataSnake
}

type inlineData struct {
	MimeType      string `json:"mimeType,omitempty"`
	MimeTypeSnake string `json:"mime_type,omitempty"`
	Data          string `json:"data,omitempty"`
}

type generationConfig struct {
	Temperature        float64        `json:"temperature,omitempty"`
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseJSONSchema map[string]any `json:"responseJsonSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig   `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
	ImageTokenCount      int `json:"imageTokenCount,omitempty"`
}

type generateContentResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

func (r *generateContentResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if strings.TrimSpace(p.Text) != "" {
			return p.Text
		}
	}
	return ""
}

func (r *generateContentResponse) firstInlineImage() *inlineData {
	if len(r.Candidates) == 0 {
		return nil
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if inline := p.inline(); inline != nil && inline.Data != "" {
			if inline.MimeType == "" {
				inline.MimeType = inline.MimeTypeSnake
			}
			return inline
		}
	}
	return nil
}

// specPayload mirrors the JSON schema sent with the spec request.
type specPayload struct {
	Version   string        `json:"version"`
	Style     string        `json:"style"`
	Bedrooms  *float64      `json:"bedrooms"`
	Bathrooms *float64      `json:"bathrooms"`
	Rooms     []roomPayload `json:"rooms"`
	Notes     []any         `json:"notes"`
}

type roomPayload struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	AreaFt2 *float64 `json:"area_ft2"`
}

func houseSpecSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"version", "style", "bedrooms", "bathrooms", "rooms"},
		"properties": map[string]any{
			"version":   map[string]any{"type": "string"},
			"style":     map[string]any{"type": "string"},
			"bedrooms":  map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
			"bathrooms": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
			"rooms": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"id", "type", "name", "area_ft2"},
					"properties": map[string]any{
						"id":       map[string]any{"type": "string"},
						"type":     map[string]any{"type": "string"},
						"name":     map[string]any{"type": "string"},
						"area_ft2": map[string]any{"type": "number", "minimum": 20, "maximum": 2000},
					},
				},
			},
			"notes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
}
