// Package albums scans the photo albums directory into album metadata with
// generated thumbnails.
package albums

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuma-shin/y-shin.net/models"
)

// info.json sits beside an album's photos and overrides derived metadata.
type albumInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
	Date        string `json:"date"`
}

// Scanner walks the albums root directory.
type Scanner struct {
	dir       string
	thumbsDir string
}

// NewScanner creates a scanner over the given albums root, writing thumbnails
// under thumbsDir.
func NewScanner(dir, thumbsDir string) *Scanner {
	return &Scanner{dir: dir, thumbsDir: thumbsDir}
}

// ScanAll discovers every album directory under the root, newest first.
func (s *Scanner) ScanAll() ([]models.Album, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read albums directory: %w", err)
	}

	var albums []models.Album
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		album, err := s.Scan(entry.Name())
		if err != nil {
			log.Printf("Skipping album %s: %v", entry.Name(), err)
			continue
		}
		albums = append(albums, *album)
	}

	sort.Slice(albums, func(i, j int) bool {
		return albums[i].Date.After(albums[j].Date)
	})
	return albums, nil
}

// Scan builds one album from its directory.
func (s *Scanner) Scan(name string) (*models.Album, error) {
	dir := filepath.Join(s.dir, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	album := &models.Album{
		Name:  name,
		Title: strings.ReplaceAll(name, "-", " "),
	}

	if info, err := s.readInfo(dir); err == nil {
		if info.Title != "" {
			album.Title = info.Title
		}
		album.Description = info.Description
		album.Cover = info.Cover
		if t, parseErr := time.Parse("2006-01-02", info.Date); parseErr == nil {
			album.Date = t
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		width, height, err := imageDimensions(path)
		if err != nil {
			log.Printf("Skipping unreadable image %s: %v", path, err)
			continue
		}

		photo := models.Photo{
			Filename: entry.Name(),
			Width:    width,
			Height:   height,
		}

		thumb, err := s.ensureThumbnail(name, path)
		if err != nil {
			log.Printf("Thumbnail generation failed for %s: %v", path, err)
		} else {
			photo.Thumb = thumb
		}

		album.Photos = append(album.Photos, photo)
	}

	sort.Slice(album.Photos, func(i, j int) bool {
		return album.Photos[i].Filename < album.Photos[j].Filename
	})

	if album.Date.IsZero() {
		if stat, err := os.Stat(dir); err == nil {
			album.Date = stat.ModTime()
		}
	}
	if album.Cover == "" && len(album.Photos) > 0 {
		album.Cover = album.Photos[0].Filename
	}

	return album, nil
}

func (s *Scanner) readInfo(dir string) (*albumInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, "info.json"))
	if err != nil {
		return nil, err
	}
	var info albumInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}
