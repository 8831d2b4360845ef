// Package language verifies that fetched text is written in the language the
// feed asked for.
//
// Archives in one language routinely host translations, parallel texts and
// quotations in another. Preloaded sources are also not always tagged
// reliably, so adapters run their documents through a Detector before
// offering them to the pool.
package language

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Supported maps the ISO 639-1 codes the feed understands to lingua languages.
var Supported = map[string]lingua.Language{
	"en": lingua.English,
	"fr": lingua.French,
	"de": lingua.German,
	"es": lingua.Spanish,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
}

// DefaultMinConfidence is the confidence below which a text is not
// considered to be in the expected language.
const DefaultMinConfidence = 0.5

// sampleSize bounds the amount of text handed to the detector.
const sampleSize = 2000

// Detector identifies the language of a text.
// A Detector is safe for concurrent use; the language models are loaded
// lazily on first use.
type Detector struct {
	minConfidence float64
	once          sync.Once
	detector      lingua.LanguageDetector
}

// NewDetector creates a Detector for the supported languages.
func NewDetector(minConfidence float64) *Detector {
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = DefaultMinConfidence
	}
	return &Detector{minConfidence: minConfidence}
}

func (d *Detector) build() {
	d.once.Do(func() {
		langs := make([]lingua.Language, 0, len(Supported))
		for _, l := range Supported {
			langs = append(langs, l)
		}
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			WithLowAccuracyMode().
			Build()
	})
}

// Detect returns the ISO 639-1 code of text, or ("", false) when the
// language cannot be determined.
func (d *Detector) Detect(text string) (string, bool) {
	d.build()
	lang, ok := d.detector.DetectLanguageOf(sample(text))
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Matches reports whether text is written in the language with the given
// ISO 639-1 code. Unsupported codes and blank texts always match, so callers
// never drop content they cannot judge.
func (d *Detector) Matches(text, code string) bool {
	want, ok := Supported[strings.ToLower(code)]
	if !ok || strings.TrimSpace(text) == "" {
		return true
	}
	d.build()
	return d.detector.ComputeLanguageConfidence(sample(text), want) >= d.minConfidence
}

// IsSupported reports whether code is a supported language.
func IsSupported(code string) bool {
	_, ok := Supported[strings.ToLower(code)]
	return ok
}

func sample(text string) string {
	runes := []rune(text)
	if len(runes) <= sampleSize {
		return text
	}
	return string(runes[:sampleSize])
}
