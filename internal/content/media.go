package content

import "lamah/internal/models"

type MediaSlot string

const (
	MediaQuestionImage MediaSlot = "question_image"
	MediaQuestionAudio MediaSlot = "question_audio"
	MediaQuestionVideo MediaSlot = "question_video"
	MediaAnswerImage   MediaSlot = "answer_image"
	MediaAnswerAudio   MediaSlot = "answer_audio"
	MediaAnswerVideo   MediaSlot = "answer_video"
)

var MediaSlots = []MediaSlot{
	MediaQuestionImage,
	MediaQuestionAudio,
	MediaQuestionVideo,
	MediaAnswerImage,
	MediaAnswerAudio,
	MediaAnswerVideo,
}

var mediaPrefixes = map[string]MediaSlot{
	"Q":  MediaQuestionImage,
	"QA": MediaQuestionAudio,
	"QV": MediaQuestionVideo,
	"A":  MediaAnswerImage,
	"AA": MediaAnswerAudio,
	"AV": MediaAnswerVideo,
}

// SetMedia stores url in the slot. An empty url clears it.
func SetMedia(m *models.QuestionMedia, slot MediaSlot, url string) {
	value := optional(url)
	switch slot {
	case MediaQuestionImage:
		m.QuestionImageURL = value
	case MediaQuestionAudio:
		m.QuestionAudioURL = value
	case MediaQuestionVideo:
		m.QuestionVideoURL = value
	case MediaAnswerImage:
		m.AnswerImageURL = value
	case MediaAnswerAudio:
		m.AnswerAudioURL = value
	case MediaAnswerVideo:
		m.AnswerVideoURL = value
	}
}

// Kind is the storage folder of a slot.
func (s MediaSlot) Kind() string {
	switch s {
	case MediaQuestionImage, MediaAnswerImage:
		return "images"
	case MediaQuestionAudio, MediaAnswerAudio:
		return "audio"
	default:
		return "video"
	}
}
