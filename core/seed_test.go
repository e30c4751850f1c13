package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLectures(t *testing.T) {
	lectures, err := ParseLectures([]byte(`
lectures:
  - title: "Lecture 1: Intro to CI/CD"
    video: https://www.youtube.com/embed/dQw4w9WgXcQ
  - title: "  Lecture 2  "
    video: https://example.org/2
`))
	require.NoError(t, err)
	require.Len(t, lectures, 2)
	assert.Equal(t, &Lecture{Title: "Lecture 1: Intro to CI/CD", VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}, lectures[0])
	assert.Equal(t, "Lecture 2", lectures[1].Title)
}

func TestParseLectures_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no lectures", "lectures: []"},
		{"missing video", "lectures:\n  - title: x\n"},
		{"missing title", "lectures:\n  - video: x\n"},
		{"malformed", "lectures: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLectures([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadLectures(t *testing.T) {
	lectures, err := LoadLectures("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLectures, lectures)

	var path = filepath.Join(t.TempDir(), "lectures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lectures:\n  - title: One\n    video: v1\n"), 0o600))
	lectures, err = LoadLectures(path)
	require.NoError(t, err)
	require.Len(t, lectures, 1)
	assert.Equal(t, "One", lectures[0].Title)

	_, err = LoadLectures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
