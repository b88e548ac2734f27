package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamah/internal/models"
)

func TestParseTextLegacy(t *testing.T) {
	text := "سؤال1؛جواب1؛؛؛؛؛فئة1؛؛سهل\nسؤال2؛جواب2؛q.png؛a.png؛q.mp3؛a.mp3؛فئة2؛🎯؛صعب؛q.mp4؛a.mp4"

	parsed, skipped := ParseText(text, "")
	require.Len(t, parsed, 2)
	assert.Empty(t, skipped)

	first := parsed[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "سؤال1", first.Text)
	assert.Equal(t, "جواب1", first.Answer)
	assert.Equal(t, "فئة1", first.CategoryName)
	assert.Equal(t, models.QuestionEasy, first.Difficulty)
	assert.Empty(t, first.QuestionMedia.URLs())

	second := parsed[1]
	assert.Equal(t, models.QuestionHard, second.Difficulty)
	assert.Equal(t, "🎯", second.CategoryImage)
	require.NotNil(t, second.QuestionImageURL)
	assert.Equal(t, "q.png", *second.QuestionImageURL)
	require.NotNil(t, second.AnswerImageURL)
	assert.Equal(t, "a.png", *second.AnswerImageURL)
	require.NotNil(t, second.QuestionAudioURL)
	assert.Equal(t, "q.mp3", *second.QuestionAudioURL)
	require.NotNil(t, second.AnswerVideoURL)
	assert.Equal(t, "a.mp4", *second.AnswerVideoURL)
}

func TestParseTextInline(t *testing.T) {
	text := "Capital of Italy?؛Rome؛Q:https://cdn/x.png|AA:https://cdn/a.mp3؛Geography؛medium؛Rome|Milan|Turin"

	parsed, skipped := ParseText(text, DefaultDelimiter)
	require.Len(t, parsed, 1)
	assert.Empty(t, skipped)

	pq := parsed[0]
	assert.Equal(t, "Geography", pq.CategoryName)
	assert.Equal(t, models.QuestionMedium, pq.Difficulty)
	assert.Equal(t, []string{"Rome", "Milan", "Turin"}, pq.Options)
	require.NotNil(t, pq.QuestionImageURL)
	assert.Equal(t, "https://cdn/x.png", *pq.QuestionImageURL)
	require.NotNil(t, pq.AnswerAudioURL)
	assert.Equal(t, "https://cdn/a.mp3", *pq.AnswerAudioURL)
	assert.Nil(t, pq.AnswerImageURL)
}

func TestParseTextCustomDelimiter(t *testing.T) {
	parsed, _ := ParseText("2+2;4;;Math;easy", ";")
	require.Len(t, parsed, 1)
	assert.Equal(t, "4", parsed[0].Answer)
	assert.Equal(t, "Math", parsed[0].CategoryName)
}

func TestParseTextSkips(t *testing.T) {
	text := "\n" +
		"only text\n" +
		"؛answer؛؛Cat؛easy\n" +
		"text؛answer؛؛؛easy\n" +
		"text؛answer؛؛Cat؛impossible\n" +
		"   \n" +
		"ok؛fine؛؛Cat\n"

	parsed, skipped := ParseText(text, "")
	require.Len(t, parsed, 1)
	assert.Equal(t, "ok", parsed[0].Text)
	assert.Equal(t, models.QuestionEasy, parsed[0].Difficulty)
	assert.Equal(t, []int{2, 3, 4, 5}, skipped)
}
