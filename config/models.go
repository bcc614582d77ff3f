package config

type ModelQuality string

const (
	StandardQuality ModelQuality = "standard"
	EnhancedQuality ModelQuality = "enhanced"
)

// ModelConfig describes one public model name: its quality tier, the response
// formats it may produce and the mapping from public voice aliases to
// provider voice IDs.
type ModelConfig struct {
	Quality        ModelQuality
	AllowedFormats []string
	VoiceMap       map[string]string
}

func (m *ModelConfig) AllowsFormat(format string) bool {
	for _, f := range m.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (m *ModelConfig) HasVoice(alias string) bool {
	_, ok := m.VoiceMap[alias]
	return ok
}

// ResolveVoice maps a public alias to the provider voice ID. Unknown aliases
// pass through unchanged and are left to the provider catalog check.
func (m *ModelConfig) ResolveVoice(alias string) string {
	if real, ok := m.VoiceMap[alias]; ok {
		return real
	}
	return alias
}

// ClampSpeed bounds the requested speed for the enhanced tier before the
// rate percentage is computed.
func (m *ModelConfig) ClampSpeed(speed float64) float64 {
	if m.Quality != EnhancedQuality {
		return speed
	}
	if speed < 0.8 {
		return 0.8
	}
	if speed > 1.5 {
		return 1.5
	}
	return speed
}

type ModelCatalog map[string]*ModelConfig

func (c ModelCatalog) Lookup(model string) (*ModelConfig, bool) {
	cfg, ok := c[model]
	return cfg, ok
}

// GetModelCatalog returns the static model catalog. It is read-only and safe
// for concurrent lookups.
func GetModelCatalog() ModelCatalog {
	return ModelCatalog{
		"tts-1": {
			Quality:        StandardQuality,
			AllowedFormats: []string{"mp3"},
			VoiceMap: map[string]string{
				"alloy": "en-US-GuyNeural",
				"echo":  "en-US-JennyNeural",
				"nova":  "zh-CN-YunxiNeural",
			},
		},
		"tts-1-hd": {
			Quality:        EnhancedQuality,
			AllowedFormats: []string{"mp3"},
			VoiceMap: map[string]string{
				"alloy": "en-US-AriaNeural",
				"echo":  "en-US-DavisNeural",
				"nova":  "zh-CN-YunjianNeural",
			},
		},
	}
}
