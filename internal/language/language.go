package language

import "strings"

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2 primary
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string
	// continuations are words that, when they open a cue, usually continue
	// the previous utterance.
	continuations []string
	// clauses are conjunctions a long cue may be split in front of.
	clauses []string
}

var languages = []entry{
	{
		code2: "en", code3: "eng", display: "English",
		continuations: []string{"and", "but", "or", "so", "because", "which", "who", "whom", "whose", "then", "than", "to", "of", "with", "that", "nor", "yet"},
		clauses:       []string{"and", "but", "or", "nor", "so", "yet", "because", "which", "while", "although", "though", "unless", "whereas"},
	},
	{
		code2: "es", code3: "spa", display: "Spanish",
		continuations: []string{"y", "e", "pero", "o", "u", "que", "porque", "pues", "de", "con", "sino", "cuando"},
		clauses:       []string{"y", "e", "pero", "o", "u", "porque", "aunque", "mientras", "sino", "pues"},
	},
	{
		code2: "fr", code3: "fra", alt3: "fre", display: "French",
		continuations: []string{"et", "mais", "ou", "donc", "car", "que", "qui", "de", "avec", "puis", "parce"},
		clauses:       []string{"et", "mais", "ou", "donc", "car", "puisque", "lorsque", "tandis", "parce"},
	},
	{
		code2: "de", code3: "deu", alt3: "ger", display: "German",
		continuations: []string{"und", "aber", "oder", "denn", "sondern", "dass", "weil", "mit", "von", "zu"},
		clauses:       []string{"und", "aber", "oder", "denn", "sondern", "weil", "obwohl", "während", "dass"},
	},
	{
		code2: "it", code3: "ita", display: "Italian",
		continuations: []string{"e", "ma", "o", "perché", "che", "di", "con", "poi", "quindi"},
		clauses:       []string{"e", "ma", "o", "perché", "quindi", "mentre", "sebbene"},
	},
	{
		code2: "pt", code3: "por", display: "Portuguese",
		continuations: []string{"e", "mas", "ou", "porque", "que", "de", "com", "então", "pois"},
		clauses:       []string{"e", "mas", "ou", "porque", "enquanto", "embora", "pois"},
	},
	{
		code2: "nl", code3: "nld", alt3: "dut", display: "Dutch",
		continuations: []string{"en", "maar", "of", "want", "dus", "dat", "die", "met", "van"},
		clauses:       []string{"en", "maar", "of", "want", "dus", "omdat", "terwijl"},
	},
	{code2: "ja", code3: "jpn", display: "Japanese"},
	{code2: "ko", code3: "kor", display: "Korean"},
	{code2: "zh", code3: "zho", alt3: "chi", display: "Chinese"},
	{code2: "ru", code3: "rus", display: "Russian"},
	{code2: "pl", code3: "pol", display: "Polish"},
	{code2: "sv", code3: "swe", display: "Swedish"},
}

var byCode map[string]*entry

func init() {
	byCode = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		byCode[e.code2] = e
		byCode[e.code3] = e
		if e.alt3 != "" {
			byCode[e.alt3] = e
		}
		byCode[strings.ToLower(e.display)] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode[code]; ok {
		return e
	}
	// Region-qualified tags such as en-US or pt_BR.
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return byCode[code[:i]]
	}
	return nil
}

// ToISO2 converts a recognized language code, tag or English name to
// ISO 639-1. Unknown 2-letter codes pass through; anything else yields "".
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// ContinuationWords returns the default cue-continuation words for a
// language, falling back to English.
func ContinuationWords(code string) []string {
	return cloneOrEnglish(code, func(e *entry) []string { return e.continuations })
}

// ClauseWords returns the default clause conjunctions for a language,
// falling back to English.
func ClauseWords(code string) []string {
	return cloneOrEnglish(code, func(e *entry) []string { return e.clauses })
}

func cloneOrEnglish(code string, pick func(*entry) []string) []string {
	words := []string(nil)
	if e := lookup(code); e != nil {
		words = pick(e)
	}
	if len(words) == 0 {
		words = pick(byCode["en"])
	}
	out := make([]string, len(words))
	copy(out, words)
	return out
}

// ExtractFromTags extracts and normalizes the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
