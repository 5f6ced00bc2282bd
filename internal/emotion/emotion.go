// Package emotion maps classified emotion labels onto themed scene
// configurations and provides the degraded-mode text analysis used
// when the external label service is unreachable.
package emotion

import (
	"sort"
	"strings"
)

// Emotion is one of the fixed set of labels the external classifier
// returns. The strings are the classifier's own Korean vocabulary and
// double as lookup keys everywhere.
type Emotion string

const (
	EmotionPoor        Emotion = "가난한, 불우한"
	EmotionWorried     Emotion = "걱정스러운"
	EmotionIsolated    Emotion = "고립된"
	EmotionSuffering   Emotion = "괴로워하는"
	EmotionEmbarrassed Emotion = "당혹스러운"
	EmotionFearful     Emotion = "두려운"
	EmotionBetrayed    Emotion = "배신당한"
	EmotionAbandoned   Emotion = "버려진"
	EmotionAnxious     Emotion = "불안"
	EmotionHurt        Emotion = "상처"
	EmotionStressed    Emotion = "스트레스 받는"
	EmotionWronged     Emotion = "억울한"
	EmotionCautious    Emotion = "조심스러운"
	EmotionJealous     Emotion = "질투하는"
	EmotionRestless    Emotion = "초조한"
	EmotionShocked     Emotion = "충격 받은"
	EmotionVulnerable  Emotion = "취약한"
	EmotionConfused    Emotion = "혼란스러운"
	EmotionSkeptical   Emotion = "회의적인"
	EmotionSacrificed  Emotion = "희생된"
)

// DefaultEmotion is the hardening decision for labels outside the
// enum: lookups fall back here instead of failing.
const DefaultEmotion = EmotionFearful

// Weights rank emotions when the keyword analyzer detects several
// candidates at once.
var Weights = map[Emotion]float64{
	EmotionPoor:        0.15,
	EmotionWorried:     0.28,
	EmotionIsolated:    0.23,
	EmotionSuffering:   0.24,
	EmotionEmbarrassed: 0.27,
	EmotionFearful:     0.37,
	EmotionBetrayed:    0.29,
	EmotionAbandoned:   0.21,
	EmotionAnxious:     0.26,
	EmotionHurt:        0.17,
	EmotionStressed:    0.34,
	EmotionWronged:     0.22,
	EmotionCautious:    0.26,
	EmotionJealous:     0.37,
	EmotionRestless:    0.23,
	EmotionShocked:     0.33,
	EmotionVulnerable:  0.09,
	EmotionConfused:    0.31,
	EmotionSkeptical:   0.16,
	EmotionSacrificed:  0.14,
}

// Known reports whether the label belongs to the classifier enum.
func Known(e Emotion) bool {
	_, ok := Weights[e]
	return ok
}

var analyzerKeywords = []struct {
	keyword    string
	candidates []Emotion
}{
	{"두려워", []Emotion{EmotionFearful, EmotionAnxious, EmotionRestless}},
	{"무서워", []Emotion{EmotionFearful, EmotionShocked}},
	{"외로워", []Emotion{EmotionIsolated, EmotionAbandoned}},
	{"배신", []Emotion{EmotionBetrayed, EmotionHurt}},
	{"질투", []Emotion{EmotionJealous}},
	{"불안", []Emotion{EmotionAnxious, EmotionWorried}},
	{"스트레스", []Emotion{EmotionStressed}},
	{"혼란", []Emotion{EmotionConfused, EmotionEmbarrassed}},
	{"상처", []Emotion{EmotionHurt, EmotionSuffering}},
	{"취약", []Emotion{EmotionVulnerable}},
	{"희생", []Emotion{EmotionSacrificed}},
	{"가난", []Emotion{EmotionPoor}},
	{"억울", []Emotion{EmotionWronged}},
	{"조심", []Emotion{EmotionCautious}},
	{"회의", []Emotion{EmotionSkeptical}},
}

// AnalyzeText runs the keyword-based classifier over free text and
// returns the heaviest detected emotion, or DefaultEmotion when no
// keyword matches. It is the local stand-in for the remote labeler.
func AnalyzeText(text string) Emotion {
	detected := make([]Emotion, 0, 4)
	for _, entry := range analyzerKeywords {
		if containsKeyword(text, entry.keyword) {
			detected = append(detected, entry.candidates...)
		}
	}
	if len(detected) == 0 {
		return DefaultEmotion
	}
	return HighestWeight(detected)
}

// HighestWeight picks the emotion with the largest configured weight.
// Ties resolve to the lexically smaller label so the result is stable.
func HighestWeight(emotions []Emotion) Emotion {
	if len(emotions) == 0 {
		return DefaultEmotion
	}
	sorted := make([]Emotion, len(emotions))
	copy(sorted, emotions)
	sort.Slice(sorted, func(i, j int) bool {
		wi, wj := Weights[sorted[i]], Weights[sorted[j]]
		if wi != wj {
			return wi > wj
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0]
}

func containsKeyword(text, keyword string) bool {
	return keyword != "" && strings.Contains(text, keyword)
}
