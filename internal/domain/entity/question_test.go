package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_ImageRelPath(t *testing.T) {
	testCases := []struct {
		name     string
		question Question
		expected string
	}{
		{"jpg renamed to png", Question{Image: "ano5/aula106/e1.jpg", ThemeNumber: 1}, "anos/ano5/tema1/aula106/e1.png"},
		{"png kept", Question{Image: "ano6/aula201/e3.png", ThemeNumber: 4}, "anos/ano6/tema4/aula201/e3.png"},
		{"no image", Question{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.question.ImageRelPath())
		})
	}
}

func TestQuestion_TableName(t *testing.T) {
	assert.Equal(t, "questions", Question{}.TableName())
}

func TestAnswerMap_Scan_Bytes(t *testing.T) {
	var m AnswerMap

	err := m.Scan([]byte(`{"12":["1"],"40":["0"]}`))

	require.NoError(t, err)
	assert.Equal(t, AnswerMap{"12": {"1"}, "40": {"0"}}, m)
}

func TestAnswerMap_Scan_String(t *testing.T) {
	var m AnswerMap

	err := m.Scan(`{"3":["1","2"]}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, m["3"])
}

func TestAnswerMap_Scan_NullAndEmpty(t *testing.T) {
	var m AnswerMap

	require.NoError(t, m.Scan(nil))
	assert.Len(t, m, 0)

	require.NoError(t, m.Scan([]byte{}))
	assert.Len(t, m, 0)
}

func TestAnswerMap_Scan_InvalidType(t *testing.T) {
	var m AnswerMap

	assert.Error(t, m.Scan(42))
}

func TestAnswerMap_Value(t *testing.T) {
	val, err := AnswerMap{"7": {"2"}}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"7":["2"]}`, val)

	val, err = AnswerMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", val)
}
