package hscode

import (
	"regexp"
	"sort"
	"strings"
)

const (
	defaultSuggestionLimit   = 5
	defaultAutocompleteLimit = 10
	minAutocompleteQuery     = 2
	lookupSuggestionLimit    = 3
	unknownDescription       = "Unknown HS Code"
)

var codePattern = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// Suggestion representa un código sugerido para una descripción
type Suggestion struct {
	Description string `json:"description"`
	HSCode      string `json:"hs_code"`
}

// LookupResult agrupa la resolución de una descripción con sugerencias
type LookupResult struct {
	Description     string       `json:"description"`
	HSCode          string       `json:"hs_code"`
	IsValid         bool         `json:"is_valid"`
	CodeDescription string       `json:"code_description"`
	Suggestions     []Suggestion `json:"suggestions"`
}

// Resolver asigna códigos HS a descripciones libres sobre una tabla estática.
// Es inmutable y seguro para uso concurrente.
type Resolver struct {
	entries []Entry
	exact   map[string]string
}

// NewResolver crea un resolver sobre la tabla indicada
func NewResolver(entries []Entry) *Resolver {
	r := &Resolver{
		entries: make([]Entry, 0, len(entries)),
		exact:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		e.Keyword = normalize(e.Keyword)
		// La primera aparición de una palabra clave gana
		if _, dup := r.exact[e.Keyword]; dup {
			continue
		}
		r.exact[e.Keyword] = e.Code
		r.entries = append(r.entries, e)
	}
	if _, ok := r.exact[DefaultKeyword]; !ok {
		r.exact[DefaultKeyword] = DefaultCode
		r.entries = append(r.entries, Entry{Keyword: DefaultKeyword, Code: DefaultCode, Category: DefaultKeyword})
	}
	return r
}

var defaultResolver = NewResolver(pakistanTable)

// Default retorna el resolver con la tabla de Pakistán
func Default() *Resolver {
	return defaultResolver
}

// Resolve retorna el código que mejor coincide con la descripción.
//
// Coincidencia exacta primero; si no, cada palabra clave puntúa por contención
// en cualquier dirección (largo de la palabra si la descripción la contiene,
// largo de la descripción si la palabra la contiene). Gana el mayor puntaje y
// ante empate la palabra lexicográficamente menor. Sin coincidencias retorna el
// código por defecto.
func (r *Resolver) Resolve(description string) string {
	text := normalize(description)
	if text == "" {
		return r.fallback()
	}
	if code, ok := r.exact[text]; ok {
		return code
	}

	bestScore := 0
	bestKeyword := ""
	bestCode := ""
	for _, e := range r.entries {
		if e.Keyword == DefaultKeyword {
			continue
		}
		score := matchScore(text, e.Keyword)
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && e.Keyword < bestKeyword) {
			bestScore = score
			bestKeyword = e.Keyword
			bestCode = e.Code
		}
	}
	if bestCode == "" {
		return r.fallback()
	}
	return bestCode
}

// Suggest retorna hasta limit coincidencias ordenadas por relevancia
// (largo de la palabra clave) y luego alfabéticamente.
func (r *Resolver) Suggest(description string, limit int) []Suggestion {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	text := normalize(description)
	if text == "" {
		return []Suggestion{{Description: DefaultKeyword, HSCode: r.fallback()}}
	}

	matches := make([]Entry, 0)
	for _, e := range r.entries {
		if e.Keyword == DefaultKeyword {
			continue
		}
		if matchScore(text, e.Keyword) > 0 {
			matches = append(matches, e)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if len(matches[i].Keyword) != len(matches[j].Keyword) {
			return len(matches[i].Keyword) > len(matches[j].Keyword)
		}
		return matches[i].Keyword < matches[j].Keyword
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	suggestions := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, Suggestion{Description: m.Keyword, HSCode: m.Code})
	}
	return suggestions
}

// IsValidFormat verifica la forma NNNN.NN.NN
func IsValidFormat(code string) bool {
	return codePattern.MatchString(code)
}

// IsValidFormat verifica la forma NNNN.NN.NN
func (r *Resolver) IsValidFormat(code string) bool {
	return IsValidFormat(code)
}

// Describe retorna la primera palabra clave (alfabéticamente) asociada al código
func (r *Resolver) Describe(code string) string {
	best := ""
	for _, e := range r.entries {
		if e.Code != code {
			continue
		}
		if best == "" || e.Keyword < best {
			best = e.Keyword
		}
	}
	if best == "" {
		return unknownDescription
	}
	return best
}

// All retorna la tabla completa o las entradas cuya palabra clave o categoría
// contienen el filtro.
func (r *Resolver) All(category string) []Entry {
	filter := normalize(category)
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter == "" || strings.Contains(e.Keyword, filter) || strings.Contains(e.Category, filter) {
			out = append(out, e)
		}
	}
	return out
}

// Autocomplete retorna palabras clave que empiezan con o contienen la consulta.
// Las coincidencias por prefijo van primero.
func (r *Resolver) Autocomplete(query string, limit int) []Suggestion {
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}
	text := normalize(query)
	if len([]rune(text)) < minAutocompleteQuery {
		return []Suggestion{}
	}

	var prefix, contains []Suggestion
	for _, e := range r.entries {
		if e.Keyword == DefaultKeyword {
			continue
		}
		switch {
		case strings.HasPrefix(e.Keyword, text):
			prefix = append(prefix, Suggestion{Description: e.Keyword, HSCode: e.Code})
		case strings.Contains(e.Keyword, text):
			contains = append(contains, Suggestion{Description: e.Keyword, HSCode: e.Code})
		}
	}
	byDescription := func(s []Suggestion) {
		sort.Slice(s, func(i, j int) bool { return s[i].Description < s[j].Description })
	}
	byDescription(prefix)
	byDescription(contains)

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Suggestion{}
	}
	return out
}

// Lookup resuelve la descripción y agrega sugerencias y la validez del código
func (r *Resolver) Lookup(description string) LookupResult {
	code := r.Resolve(description)
	return LookupResult{
		Description:     description,
		HSCode:          code,
		IsValid:         IsValidFormat(code),
		CodeDescription: r.Describe(code),
		Suggestions:     r.Suggest(description, lookupSuggestionLimit),
	}
}

func (r *Resolver) fallback() string {
	return r.exact[DefaultKeyword]
}

func matchScore(text, keyword string) int {
	score := 0
	if strings.Contains(text, keyword) {
		score = len(keyword)
	}
	if strings.Contains(keyword, text) && len(text) > score {
		score = len(text)
	}
	return score
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
