package content

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamah/internal/models"
)

const sheet = `question,answer,difficulty,options,question_image,answer_audio
What is 1+1?,2,easy,,one.png,
Largest planet?,Jupiter,hard,Mars|Jupiter|Venus,,https://cdn.example.com/j.mp3
,missing question,easy,,,
Bad difficulty,x,legendary,,,
`

func TestParseRows(t *testing.T) {
	rows, skipped, err := ParseRows(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []int{4, 5}, skipped)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "What is 1+1?", rows[0].Text)
	assert.Equal(t, models.QuestionEasy, rows[0].Difficulty)
	assert.Equal(t, map[MediaSlot]string{MediaQuestionImage: "one.png"}, rows[0].Media)

	assert.Equal(t, models.QuestionHard, rows[1].Difficulty)
	assert.Equal(t, []string{"Mars", "Jupiter", "Venus"}, rows[1].Options)
	assert.True(t, IsURL(rows[1].Media[MediaAnswerAudio]))
}

func TestParseRowsMissingColumns(t *testing.T) {
	_, _, err := ParseRows(strings.NewReader("answer,difficulty\nx,easy\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestReadArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"sheet/questions.csv": sheet,
		"media/one.png":       "png-bytes",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	rows, skipped, media, err := ReadArchive(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Len(t, skipped, 2)
	assert.Equal(t, map[string][]byte{"one.png": []byte("png-bytes")}, media)
}

func TestReadArchiveWithoutSheet(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("one.png")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, _, _, err = ReadArchive(buf.Bytes())
	assert.ErrorIs(t, err, ErrNoSheet)
}
