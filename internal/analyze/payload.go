package analyze

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/alnah/go-aula/internal/transcript"
)

// PayloadKind tags which shape the model's JSON arrived in.
type PayloadKind int

const (
	// SchemaObject means the JSON validated against the analysis schema.
	SchemaObject PayloadKind = iota + 1
	// RawMapping means the JSON is an object with loosely typed fields.
	RawMapping
)

func (k PayloadKind) String() string {
	switch k {
	case SchemaObject:
		return "schema-object"
	case RawMapping:
		return "raw-mapping"
	default:
		return "unknown"
	}
}

// Payload is the model response resolved once at the parse boundary.
type Payload struct {
	Kind    PayloadKind
	Object  Result         // Set when Kind is SchemaObject.
	Mapping map[string]any // Set when Kind is RawMapping.
}

// stringList is the schema of a list of strings.
func stringList(desc string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Array,
		Description: desc,
		Items:       &jsonschema.Definition{Type: jsonschema.String},
	}
}

// Schema is the JSON schema requested from the model and used to
// validate its answer.
var Schema = jsonschema.Definition{
	Type:        jsonschema.Object,
	Description: "Estrutura completa de análise de conteúdo educacional técnico",
	Properties: map[string]jsonschema.Definition{
		"titulo_sugerido":         {Type: jsonschema.String, Description: "Título descritivo e profissional da aula"},
		"resumo_executivo":        {Type: jsonschema.String, Description: "Resumo conciso em 2-3 parágrafos sobre o conteúdo principal"},
		"pontos_chave":            stringList("Lista de 3-5 pontos mais importantes da aula"),
		"tecnologias_mencionadas": stringList("Tecnologias, frameworks, ferramentas mencionadas"),
		"comandos_codigo":         stringList("Comandos de terminal, código ou scripts mencionados"),
		"conceitos_importantes": {
			Type:        jsonschema.Array,
			Description: "Conceitos técnicos importantes explicados na aula",
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"conceito":  {Type: jsonschema.String, Description: "Nome do conceito técnico"},
					"definicao": {Type: jsonschema.String, Description: "Explicação clara e concisa do conceito"},
				},
				Required: []string{"conceito", "definicao"},
			},
		},
		"nivel_dificuldade": {
			Type:        jsonschema.String,
			Description: "Nível de dificuldade: básico, intermediário ou avançado",
			Enum:        []string{Basic, Intermediate, Advanced},
		},
		"duracao_estimada":      {Type: jsonschema.String, Description: "Duração estimada da aula em minutos"},
		"pre_requisitos":        stringList("Conhecimentos prévios necessários"),
		"objetivos_aprendizado": stringList("O que o aluno aprenderá ao final da aula"),
		"tags":                  stringList("Tags relevantes para categorização e busca"),
	},
	Required: []string{
		"titulo_sugerido", "resumo_executivo", "pontos_chave", "tecnologias_mencionadas",
		"comandos_codigo", "conceitos_importantes", "nivel_dificuldade", "duracao_estimada",
		"pre_requisitos", "objetivos_aprendizado", "tags",
	},
}

// ParsePayload resolves content into a tagged Payload. A schema-valid
// object becomes SchemaObject; any other JSON object becomes RawMapping.
// Markdown code fences around the JSON are tolerated.
func ParsePayload(content string) (Payload, error) {
	body := stripFences(content)
	if body == "" {
		return Payload{}, ErrEmptyPayload
	}

	var obj Result
	if err := jsonschema.VerifySchemaAndUnmarshal(Schema, []byte(body), &obj); err == nil {
		return Payload{Kind: SchemaObject, Object: obj}, nil
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if m == nil {
		return Payload{}, fmt.Errorf("%w: null", ErrInvalidPayload)
	}
	return Payload{Kind: RawMapping, Mapping: m}, nil
}

// stripFences removes a surrounding ```json ... ``` block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Normalize produces the canonical Result from either payload shape.
// Missing values get the same neutral defaults in both branches.
func Normalize(p Payload, tr transcript.Transcript) Result {
	var r Result
	switch p.Kind {
	case SchemaObject:
		r = p.Object
	case RawMapping:
		r = fromMapping(p.Mapping)
	}
	return fill(r, tr)
}

func fromMapping(m map[string]any) Result {
	return Result{
		Title:             stringField(m["titulo_sugerido"]),
		Summary:           stringField(m["resumo_executivo"]),
		KeyPoints:         stringsField(m["pontos_chave"]),
		Technologies:      stringsField(m["tecnologias_mencionadas"]),
		Commands:          stringsField(m["comandos_codigo"]),
		Concepts:          conceptsField(m["conceitos_importantes"]),
		Difficulty:        stringField(m["nivel_dificuldade"]),
		EstimatedDuration: stringField(m["duracao_estimada"]),
		Prerequisites:     stringsField(m["pre_requisitos"]),
		Objectives:        stringsField(m["objetivos_aprendizado"]),
		Tags:              stringsField(m["tags"]),
	}
}

// stringField renders scalars as text; nil and containers become "".
func stringField(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64, bool:
		return fmt.Sprint(x)
	default:
		return ""
	}
}

// stringsField accepts a list or a single string.
func stringsField(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := stringField(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
	}
	return []string{}
}

// conceptsField accepts {conceito, definicao} objects, their English
// spelling, bare strings, or a single {name: definition} mapping.
func conceptsField(v any) []Concept {
	out := []Concept{}
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			switch c := item.(type) {
			case map[string]any:
				name := firstString(c, "conceito", "concept", "nome", "name")
				def := firstString(c, "definicao", "definição", "definition", "descricao")
				if name != "" || def != "" {
					out = append(out, Concept{Name: name, Definition: def})
				}
			case string:
				if s := strings.TrimSpace(c); s != "" {
					out = append(out, Concept{Name: s})
				}
			}
		}
	case map[string]any:
		for name, def := range x {
			out = append(out, Concept{Name: name, Definition: stringField(def)})
		}
		slices.SortFunc(out, func(a, b Concept) int { return strings.Compare(a.Name, b.Name) })
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m[k]); s != "" {
			return s
		}
	}
	return ""
}
