package dto

// SpeechRequest is the OpenAI-compatible request body of /v1/audio/speech.
// Speed and Volume are pointers so absent fields can default to 1.0.
type SpeechRequest struct {
	Model          string   `json:"model"`
	Input          string   `json:"input" binding:"required"`
	Voice          string   `json:"voice"`
	ResponseFormat string   `json:"response_format"`
	Speed          *float64 `json:"speed" binding:"omitempty,gte=0.5,lte=2.0"`
	Volume         *float64 `json:"volume" binding:"omitempty,gte=0.5,lte=3.0"`
}

func (r *SpeechRequest) ApplyDefaults() {
	if r.Model == "" {
		r.Model = "tts-1"
	}
	if r.Voice == "" {
		r.Voice = "alloy"
	}
	if r.ResponseFormat == "" {
		r.ResponseFormat = "mp3"
	}
}

func (r *SpeechRequest) SpeedValue() float64 {
	if r.Speed == nil {
		return 1.0
	}
	return *r.Speed
}

func (r *SpeechRequest) VolumeValue() float64 {
	if r.Volume == nil {
		return 1.0
	}
	return *r.Volume
}
