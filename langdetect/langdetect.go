// Package langdetect identifies the language of transcribed text. It is
// used as a fallback when the transcription provider does not report one.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Languages we try to distinguish. A smaller set keeps the models light
// and the detection accurate for short utterances.
var candidates = []lingua.Language{
	lingua.English,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Russian,
	lingua.Arabic,
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidates...).
			WithLowAccuracyMode().
			Build()
	})
	return detector
}

// Detect returns the ISO-639-1 code and English display name for the
// language of text. Empty strings are returned when nothing can be
// determined.
func Detect(text string) (code, name string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	lang, ok := getDetector().DetectLanguageOf(text)
	if !ok {
		return "", ""
	}

	code = strings.ToLower(lang.IsoCode639_1().String())
	return code, DisplayName(code)
}

// DisplayName returns the English name for an ISO-639-1 code, falling back
// to the code itself when it cannot be resolved.
func DisplayName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
