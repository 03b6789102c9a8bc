package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Suggestion is a drafted set of metadata fields for a mineral. Every
// field is optional; the admin reviews and edits before publishing.
type Suggestion struct {
	Description      string             `json:"description"`
	Family           string             `json:"family"`
	Formula          string             `json:"formula"`
	CrystalSystem    string             `json:"crystal_system"`
	Color            string             `json:"color"`
	Streak           string             `json:"streak"`
	Luster           string             `json:"luster"`
	HardnessMohs     *float64           `json:"hardness_mohs"`
	DensityGCm3      *float64           `json:"density_g_cm3"`
	MajorElementsPct map[string]float64 `json:"major_elements_pct"`
	Notes            string             `json:"notes"`
}

const suggestPromptTemplate = `You are a mineralogy reference assistant. Draft catalog metadata for the mineral named %q.%s

Respond with ONLY a JSON object, no prose, with exactly these keys:
{
  "description": "two or three factual sentences",
  "family": "mineral family, lowercase, e.g. silicate",
  "formula": "chemical formula in plain text",
  "crystal_system": "one of: cubic, tetragonal, orthorhombic, hexagonal, trigonal, monoclinic, triclinic, amorphous",
  "color": "typical colors",
  "streak": "streak color",
  "luster": "luster",
  "hardness_mohs": 7.0,
  "density_g_cm3": 2.65,
  "major_elements_pct": {"Si": 46.7, "O": 53.3},
  "notes": "one sentence of collector-relevant notes, or empty string"
}

Use null for any numeric value you are not confident about.`

// SuggestFields asks the model to draft metadata for a mineral name.
// hint is optional free text from the admin (locality, observations).
func (c *Client) SuggestFields(ctx context.Context, name, hint string) (*Suggestion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("suggest: mineral name is required")
	}

	var hintPart string
	if hint = strings.TrimSpace(hint); hint != "" {
		hintPart = fmt.Sprintf(" Additional context from the curator: %s", hint)
	}

	raw, err := c.complete(ctx, fmt.Sprintf(suggestPromptTemplate, name, hintPart))
	if err != nil {
		return nil, err
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(extractJSON(raw)), &s); err != nil {
		return nil, fmt.Errorf("suggest: model returned unparseable JSON: %w", err)
	}
	return &s, nil
}

// Translation holds the free-text fields of a mineral record rendered in
// another language. Technical attributes are never translated.
type Translation struct {
	CommonName  string `json:"common_name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

const translatePromptTemplate = `Translate the following mineral catalog entry into %s. Keep mineral names, chemical formulas and units unchanged. Respond with ONLY a JSON object with keys "common_name", "description" and "notes".

common_name: %s
description: %s
notes: %s`

// Translate renders a record's free-text fields in the target language.
// languageName is the human-readable name, e.g. "German". Callers fall
// back to the source text when translation fails.
func (c *Client) Translate(ctx context.Context, languageName string, source Translation) (*Translation, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(translatePromptTemplate,
		languageName, source.CommonName, source.Description, source.Notes))
	if err != nil {
		return nil, err
	}

	var t Translation
	if err := json.Unmarshal([]byte(extractJSON(raw)), &t); err != nil {
		return nil, fmt.Errorf("suggest: model returned unparseable JSON: %w", err)
	}
	if t.CommonName == "" {
		t.CommonName = source.CommonName
	}
	return &t, nil
}

// extractJSON pulls the first balanced JSON object out of a response that
// may carry markdown fences or prose despite instructions.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}

	braceCount := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		char := text[i]
		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return text[start:]
}
