package ats

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Compiled patterns are shared by every Engine; the key is the full expression.
var patternCache sync.Map

func compile(expr string) *regexp.Regexp {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	actual, _ := patternCache.LoadOrStore(expr, re)
	return actual.(*regexp.Regexp)
}

// isWordRune matches RE2's \b, which only knows ASCII word characters.
func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// prefixPattern quotes term and anchors only its leading edge, so inflected
// forms ("APIs", "servers") still match.
func prefixPattern(term string) string {
	first, _ := utf8.DecodeRuneInString(term)
	if isWordRune(first) {
		return `\b` + regexp.QuoteMeta(term)
	}
	return regexp.QuoteMeta(term)
}

// wordPattern quotes term and anchors it on word boundaries. An edge that is
// itself punctuation ("c#", ".net", "angular2+") is left unanchored, because
// \b next to a non-word rune would demand a letter on the other side.
func wordPattern(term string) string {
	quoted := regexp.QuoteMeta(term)
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	var b strings.Builder
	if isWordRune(first) {
		b.WriteString(`\b`)
	}
	b.WriteString(quoted)
	if isWordRune(last) {
		b.WriteString(`\b`)
	}
	return b.String()
}

func variantRegexp(variant string) *regexp.Regexp {
	return compile(`(?i)` + wordPattern(variant))
}

// hasVariant reports whether any variant occurs in text as a whole word.
func hasVariant(text string, variants []string) bool {
	for _, v := range variants {
		if variantRegexp(v).MatchString(text) {
			return true
		}
	}
	return false
}

// countVariant counts whole-word occurrences of variant in text.
func countVariant(text, variant string) int {
	return len(variantRegexp(variant).FindAllStringIndex(text, -1))
}

// firstVariantIndex returns the byte offset of the first whole-word occurrence, or -1.
func firstVariantIndex(text, variant string) int {
	loc := variantRegexp(variant).FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// sameFragment reports whether cue and variant share a sentence fragment,
// i.e. appear in either order with no "." between them.
func sameFragment(text, cue, variant string) bool {
	c := prefixPattern(cue)
	v := wordPattern(variant)
	return compile(`(?i)` + c + `[^.]*` + v + `|` + v + `[^.]*` + c).MatchString(text)
}

var requirementRe = regexp.MustCompile(`(?i)requirement`)

// importanceScore estimates how strongly text asks for a skill, capped at maxImportance.
func importanceScore(text string, variants []string, emphasis []Emphasis) float64 {
	reqIdx := -1
	if loc := requirementRe.FindStringIndex(text); loc != nil {
		reqIdx = loc[0]
	}
	importance := 0.0
	for _, v := range variants {
		n := countVariant(text, v)
		if n == 0 {
			continue
		}
		importance += float64(n) * 0.5
		for _, e := range emphasis {
			if sameFragment(text, e.Word, v) {
				importance += e.Weight
			}
		}
		if reqIdx >= 0 && reqIdx < firstVariantIndex(text, v) {
			importance++
		}
	}
	if importance > maxImportance {
		return maxImportance
	}
	return importance
}

// isRequired reports whether any variant shares a fragment with a mandatory cue.
func isRequired(text string, variants []string, cues []string) bool {
	for _, v := range variants {
		for _, cue := range cues {
			if sameFragment(text, cue, v) {
				return true
			}
		}
	}
	return false
}

const (
	achievementCue = `[^.]*(?:\d+%|improved|increased|reduced|optimized)`
	yearsLead      = `\d+\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience\s*)?(?:with\s*|in\s*)?`
	skillsHeader   = `(?:skills?|technologies?|tools?):*[^\n]*`
)

// contextScore rates how convincingly text demonstrates a skill, from 0.5 up to 1.
func contextScore(text string, variants []string) float64 {
	score := 0.5
	for _, v := range variants {
		p := wordPattern(v)
		if compile(`(?i)` + p + achievementCue).MatchString(text) {
			score += 0.3
		}
		if compile(`(?i)` + yearsLead + p).MatchString(text) {
			score += 0.2
		}
		if compile(`(?i)` + skillsHeader + p).MatchString(text) {
			score += 0.1
		}
	}
	if score > 1 {
		return 1
	}
	return score
}

var (
	yearsOfExperienceRe = regexp.MustCompile(`(?i)(\d+)\s*(?:\+|plus)?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`)
	experienceLabelRe   = regexp.MustCompile(`(?i)experience:\s*(\d+)`)
	yearRangeRe         = regexp.MustCompile(`(?i)(\d{4})\s*[-–]\s*(present|current|\d{4})`)
)

// maxSubmatchInt returns the largest first-group integer matched by re, or 0.
func maxSubmatchInt(re *regexp.Regexp, text string) int {
	best := 0
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}

// minExperience returns the largest "N years experience" figure in text.
func minExperience(text string) int {
	return maxSubmatchInt(yearsOfExperienceRe, text)
}

// longestYearRange returns the longest span of "YYYY - YYYY|present|current" in text.
func longestYearRange(text string, currentYear int) int {
	best := 0
	for _, m := range yearRangeRe.FindAllStringSubmatch(text, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		end := currentYear
		switch strings.ToLower(m[2]) {
		case "present", "current":
		default:
			if end, err = strconv.Atoi(m[2]); err != nil {
				continue
			}
		}
		if d := end - start; d > best {
			best = d
		}
	}
	return best
}

// hasEducationKeyword matches degree keywords on word boundaries, allowing a
// trailing plural or possessive ("masters", "bachelor's"). Keywords of two
// letters or fewer are abbreviations and only match in capitals.
func hasEducationKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		var expr string
		if utf8.RuneCountInString(kw) <= 2 {
			expr = `\b` + regexp.QuoteMeta(strings.ToUpper(kw)) + `\b`
		} else {
			p := wordPattern(kw)
			if strings.HasSuffix(p, `\b`) {
				p = strings.TrimSuffix(p, `\b`) + `(?:'?s)?\b`
			}
			expr = `(?i)` + p
		}
		if compile(expr).MatchString(text) {
			return true
		}
	}
	return false
}
