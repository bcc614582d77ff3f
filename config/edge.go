package config

type EdgeConfig struct {
	WSEndpoint         string
	VoiceListURL       string
	TrustedClientToken string
	OutputFormat       string
}

func GetEdgeConfig() *EdgeConfig {
	return &EdgeConfig{
		WSEndpoint:         "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1",
		VoiceListURL:       "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/voices/list",
		TrustedClientToken: "6A5AA1D4EAFF4E9FB37E23D68491D6F4",
		OutputFormat:       "audio-24khz-48kbitrate-mono-mp3",
	}
}
