package emotion

import (
	"fmt"
	"math"
	"strconv"
)

// SceneConfig is the themed environment derived from an emotion and
// its reported intensity. It is recomputed on demand, never stored.
type SceneConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Particles   int    `json:"particles"`
	Message     string `json:"message"`
}

var emotionScenes = map[Emotion]SceneConfig{
	EmotionPoor: {
		Name:        "빈곤한 거리",
		Description: "빈곤과 절망이 가득한 어두운 거리",
		Color:       "#2f2f2f",
		Particles:   20,
		Message:     "당신은 이 빈곤을 마주했습니다.",
	},
	EmotionWorried: {
		Name:        "불안의 미로",
		Description: "끝없이 이어지는 걱정의 미로",
		Color:       "#4a4a4a",
		Particles:   35,
		Message:     "당신은 이 걱정을 마주했습니다.",
	},
	EmotionIsolated: {
		Name:        "외톨이의 방",
		Description: "깊은 고립감이 가득한 방",
		Color:       "#1a1a1a",
		Particles:   15,
		Message:     "당신은 이 고립을 마주했습니다.",
	},
	EmotionSuffering: {
		Name:        "고통의 공간",
		Description: "끝없는 괴로움이 가득한 공간",
		Color:       "#3a3a3a",
		Particles:   40,
		Message:     "당신은 이 괴로움을 마주했습니다.",
	},
	EmotionEmbarrassed: {
		Name:        "혼란의 폭풍",
		Description: "갑작스러운 혼란의 폭풍",
		Color:       "#5a5a5a",
		Particles:   60,
		Message:     "당신은 이 당혹을 마주했습니다.",
	},
	EmotionFearful: {
		Name:        "공포의 어둠",
		Description: "깊고 어두운 공포의 공간",
		Color:       "#000000",
		Particles:   80,
		Message:     "당신은 이 공포를 마주했습니다.",
	},
	EmotionBetrayed: {
		Name:        "배신의 상처",
		Description: "깊은 배신감이 가득한 공간",
		Color:       "#8b0000",
		Particles:   50,
		Message:     "당신은 이 배신을 마주했습니다.",
	},
	EmotionAbandoned: {
		Name:        "버림받은 곳",
		Description: "깊은 외로움이 가득한 공간",
		Color:       "#2a2a2a",
		Particles:   25,
		Message:     "당신은 이 버림을 마주했습니다.",
	},
	EmotionAnxious: {
		Name:        "불안의 미로",
		Description: "끝없는 불안이 가득한 미로",
		Color:       "#4a4a4a",
		Particles:   45,
		Message:     "당신은 이 불안을 마주했습니다.",
	},
	EmotionHurt: {
		Name:        "상처의 공간",
		Description: "깊은 상처가 가득한 공간",
		Color:       "#6a6a6a",
		Particles:   30,
		Message:     "당신은 이 상처를 마주했습니다.",
	},
	EmotionStressed: {
		Name:        "압박의 공간",
		Description: "강한 압박감이 가득한 공간",
		Color:       "#5a5a5a",
		Particles:   55,
		Message:     "당신은 이 스트레스를 마주했습니다.",
	},
	EmotionWronged: {
		Name:        "억울함의 공간",
		Description: "깊은 억울함이 가득한 공간",
		Color:       "#7a7a7a",
		Particles:   40,
		Message:     "당신은 이 억울함을 마주했습니다.",
	},
	EmotionCautious: {
		Name:        "경계의 공간",
		Description: "끊임없는 경계심이 가득한 공간",
		Color:       "#4a4a4a",
		Particles:   35,
		Message:     "당신은 이 경계를 마주했습니다.",
	},
	EmotionJealous: {
		Name:        "질투의 불길",
		Description: "녹색 불길이 치솟는 공간",
		Color:       "#228b22",
		Particles:   70,
		Message:     "당신은 이 질투를 마주했습니다.",
	},
	EmotionRestless: {
		Name:        "초조의 공간",
		Description: "끊임없는 초조함이 가득한 공간",
		Color:       "#5a5a5a",
		Particles:   50,
		Message:     "당신은 이 초조를 마주했습니다.",
	},
	EmotionShocked: {
		Name:        "충격의 폭발",
		Description: "갑작스러운 충격의 폭발",
		Color:       "#ff4500",
		Particles:   90,
		Message:     "당신은 이 충격을 마주했습니다.",
	},
	EmotionVulnerable: {
		Name:        "취약함의 공간",
		Description: "깊은 취약함이 가득한 공간",
		Color:       "#3a3a3a",
		Particles:   20,
		Message:     "당신은 이 취약함을 마주했습니다.",
	},
	EmotionConfused: {
		Name:        "혼란의 소용돌이",
		Description: "끊임없이 회전하는 혼란의 소용돌이",
		Color:       "#6a6a6a",
		Particles:   65,
		Message:     "당신은 이 혼란을 마주했습니다.",
	},
	EmotionSkeptical: {
		Name:        "회의의 공간",
		Description: "깊은 회의가 가득한 공간",
		Color:       "#4a4a4a",
		Particles:   30,
		Message:     "당신은 이 회의를 마주했습니다.",
	},
	EmotionSacrificed: {
		Name:        "희생의 공간",
		Description: "깊은 희생이 가득한 공간",
		Color:       "#2a2a2a",
		Particles:   25,
		Message:     "당신은 이 희생을 마주했습니다.",
	},
}

// BaseScene returns the unscaled configuration for an emotion.
// Unknown labels resolve to DefaultEmotion.
func BaseScene(e Emotion) SceneConfig {
	if scene, ok := emotionScenes[e]; ok {
		return scene
	}
	return emotionScenes[DefaultEmotion]
}

// SceneFor derives the scene for an emotion at a reported intensity in
// [1,10]. Particle density scales linearly; the base color darkens
// with intensity but keeps at least 10% of each channel. The function
// is pure: identical inputs always yield identical configs.
func SceneFor(e Emotion, intensity int) SceneConfig {
	if intensity < 1 {
		intensity = 1
	}
	if intensity > 10 {
		intensity = 10
	}

	scene := BaseScene(e)
	scene.Particles = int(math.Round(float64(scene.Particles) * float64(intensity) / 10.0))
	scene.Color = darkenHexColor(scene.Color, intensity)
	return scene
}

// darkenHexColor multiplies each RGB channel by max(0.1, 1-i/10).
// Non-hex inputs pass through untouched.
func darkenHexColor(color string, intensity int) string {
	if len(color) != 7 || color[0] != '#' {
		return color
	}
	r, errR := strconv.ParseUint(color[1:3], 16, 8)
	g, errG := strconv.ParseUint(color[3:5], 16, 8)
	b, errB := strconv.ParseUint(color[5:7], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return color
	}

	factor := math.Max(0.1, 1.0-float64(intensity)/10.0)
	return fmt.Sprintf("#%02x%02x%02x",
		uint8(math.Floor(float64(r)*factor)),
		uint8(math.Floor(float64(g)*factor)),
		uint8(math.Floor(float64(b)*factor)))
}
