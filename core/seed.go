package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLectures are inserted if no lectures file is given.
var DefaultLectures = []*Lecture{
	{Title: "Lecture 1: Intro to CI/CD", VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
	{Title: "Lecture 2: Docker Basics", VideoURL: "https://www.youtube.com/embed/g8f0bF-0z2k"},
}

type lecturesFile struct {
	Lectures []struct {
		Title string `yaml:"title"`
		Video string `yaml:"video"`
	} `yaml:"lectures"`
}

// ParseLectures parses a YAML document like:
//
//     lectures:
//       - title: "Lecture 1: Intro to CI/CD"
//         video: https://www.youtube.com/embed/dQw4w9WgXcQ
func ParseLectures(data []byte) ([]*Lecture, error) {

	var file lecturesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing lectures: %w", err)
	}

	var lectures = make([]*Lecture, 0, len(file.Lectures))
	for i, l := range file.Lectures {
		var title = strings.TrimSpace(l.Title)
		var video = strings.TrimSpace(l.Video)
		if title == "" || video == "" {
			return nil, fmt.Errorf("lecture %d: title and video are required", i+1)
		}
		lectures = append(lectures, &Lecture{Title: title, VideoURL: video})
	}

	if len(lectures) == 0 {
		return nil, errors.New("no lectures found")
	}

	return lectures, nil
}

// LoadLectures reads lectures from a YAML file. If path is empty, it returns DefaultLectures.
func LoadLectures(path string) ([]*Lecture, error) {
	if path == "" {
		return DefaultLectures, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLectures(data)
}

// SeedLectures inserts lectures if the catalog is empty. It returns the number of inserted lectures.
func (c *CoreDB) SeedLectures(ctx context.Context, lectures []*Lecture) (int, error) {

	count, err := c.LectureDB.CountLectures(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	// copy, so DefaultLectures don't get IDs
	var inserted = make([]*Lecture, len(lectures))
	for i, l := range lectures {
		inserted[i] = &Lecture{Title: l.Title, VideoURL: l.VideoURL}
	}

	if err := c.LectureDB.InsertLectures(ctx, inserted); err != nil {
		return 0, err
	}
	return len(inserted), nil
}
