package models

import "time"

// Video describes an uploaded media item. VideoFile and Thumbnail hold
// delivery URLs of objects in external storage; both are replaced and
// cleaned up through the asset layer. Title is globally unique.
type Video struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Duration    float64
	VideoFile   string
	Thumbnail   string
	Views       int64
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VideoView is the JSON projection returned to clients.
type VideoView struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Duration    float64   `json:"duration"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Views       int64     `json:"views"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (v *Video) View() VideoView {
	return VideoView{
		ID:          v.ID,
		OwnerID:     v.OwnerID,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Views:       v.Views,
		Published:   v.Published,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
