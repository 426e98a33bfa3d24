package loader

import (
	"strconv"
	"strings"

	"github.com/glorpus-work/romcat/pkg/errutils"
	"golang.org/x/text/language"
)

// SystemLanguage is the console system-language code used to pick localized
// package metadata.
type SystemLanguage int

// System language codes.
const (
	Japanese SystemLanguage = iota
	AmericanEnglish
	French
	German
	Italian
	Spanish
	Chinese
	Korean
	Dutch
	Portuguese
	Russian
	Taiwanese
	BritishEnglish
	CanadianFrench
	LatinAmericanSpanish
	SimplifiedChinese
	TraditionalChinese
	BrazilianPortuguese
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = AmericanEnglish

// titleSlot maps a system language to its slot in the NACP title table.
var titleSlot = map[SystemLanguage]int{
	AmericanEnglish:      0,
	BritishEnglish:       1,
	Japanese:             2,
	French:               3,
	German:               4,
	LatinAmericanSpanish: 5,
	Spanish:              6,
	Italian:              7,
	Dutch:                8,
	CanadianFrench:       9,
	Portuguese:           10,
	Russian:              11,
	Korean:               12,
	Taiwanese:            13,
	TraditionalChinese:   13,
	Chinese:              14,
	SimplifiedChinese:    14,
	BrazilianPortuguese:  15,
}

// languageTags lists the BCP 47 tags accepted for each language. The first
// tag is the matcher's fallback. Chinese and Taiwanese are legacy codes that
// are only reachable by number.
var languageTags = []struct {
	tag  language.Tag
	lang SystemLanguage
}{
	{language.AmericanEnglish, AmericanEnglish},
	{language.Japanese, Japanese},
	{language.French, French},
	{language.German, German},
	{language.Italian, Italian},
	{language.Spanish, Spanish},
	{language.Korean, Korean},
	{language.Dutch, Dutch},
	{language.Portuguese, Portuguese},
	{language.Russian, Russian},
	{language.BritishEnglish, BritishEnglish},
	{language.CanadianFrench, CanadianFrench},
	{language.LatinAmericanSpanish, LatinAmericanSpanish},
	{language.SimplifiedChinese, SimplifiedChinese},
	{language.TraditionalChinese, TraditionalChinese},
	{language.BrazilianPortuguese, BrazilianPortuguese},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(languageTags))
	for i, lt := range languageTags {
		tags[i] = lt.tag
	}
	return language.NewMatcher(tags)
}()

// IsValid reports whether l is a known system language code.
func (l SystemLanguage) IsValid() bool {
	_, ok := titleSlot[l]
	return ok
}

// TitleSlot returns the NACP title table slot for l, falling back to the
// American English slot for unknown codes.
func (l SystemLanguage) TitleSlot() int {
	if slot, ok := titleSlot[l]; ok {
		return slot
	}
	return titleSlot[DefaultLanguage]
}

// ParseSystemLanguage accepts either a numeric system language code or a
// BCP 47 language tag such as "en-GB" or "ja".
func ParseSystemLanguage(value string) (SystemLanguage, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultLanguage, nil
	}

	if n, err := strconv.Atoi(value); err == nil {
		lang := SystemLanguage(n)
		if !lang.IsValid() {
			return 0, errutils.ErrInvalidLanguageWithValue(value)
		}
		return lang, nil
	}

	tag, err := language.Parse(value)
	if err != nil {
		return 0, errutils.ErrInvalidLanguageWithValue(value)
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return 0, errutils.ErrInvalidLanguageWithValue(value)
	}
	return languageTags[index].lang, nil
}
