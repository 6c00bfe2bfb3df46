package models

import "time"

// Photo is a single image inside an album.
type Photo struct {
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Thumb    string `json:"thumb,omitempty"`
}

// Album is one photo album directory under the albums root.
type Album struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Date        time.Time `json:"date"`
	Photos      []Photo   `json:"photos"`
}
