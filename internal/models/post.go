package models

import (
	"fmt"
	"time"
)

type Post struct {
	ID          int64      `json:"id" example:"42"`
	PublishedAt time.Time  `json:"published_at"`
	PublishedBy Author     `json:"published_by"`
	Description string     `json:"description" example:"Sunset over the bay"`
	Image       string     `json:"image" example:"sunset.jpg"`
	ImageKey    string     `json:"-"`
	ContentType string     `json:"-"`
	Width       int        `json:"width" example:"1920"`
	Height      int        `json:"height" example:"1080"`
	Categories  []Category `json:"categories"`
	Tags        []string   `json:"tags"`
	Views       int64      `json:"views" example:"10"`
	Downloads   int64      `json:"downloads" example:"5"`
}

// Dimensions reports the image size as "{height}x{width}".
func (p *Post) Dimensions() string {
	return fmt.Sprintf("%dx%d", p.Height, p.Width)
}
