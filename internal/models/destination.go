package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Destination struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Location    string   `json:"location" yaml:"location"`
	BestSeason  string   `json:"best_season" yaml:"best_season"`
	Description string   `json:"description" yaml:"description"`
	Images      []string `json:"images" yaml:"images"`
	Videos      []string `json:"videos" yaml:"videos"`
	// ImageURL and VideoURL mirror the legacy singular columns. On input they
	// are used only when the plural list is absent or empty and was not sent
	// explicitly; on output they hold the first element of the list.
	ImageURL  string    `json:"image_url,omitempty" yaml:"image_url"`
	VideoURL  string    `json:"video_url,omitempty" yaml:"video_url"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`

	// imagesSent and videosSent record that a JSON body carried the plural key.
	imagesSent bool
	videosSent bool
}

// UnmarshalJSON remembers whether "images" and "videos" were present, so an
// explicit empty list clears the media instead of falling back to the legacy
// singular field.
func (d *Destination) UnmarshalJSON(data []byte) error {
	type plain Destination
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*d = Destination(out)
	d.imagesSent = sentKey(keys, "images")
	d.videosSent = sentKey(keys, "videos")
	return nil
}

// sentKey reports a non-null value under key, matched case-insensitively
// like encoding/json matches struct fields.
func sentKey(keys map[string]json.RawMessage, key string) bool {
	for k, v := range keys {
		if strings.EqualFold(k, key) && string(v) != "null" {
			return true
		}
	}
	return false
}

// ImageList returns Images, or the legacy ImageURL as a one-element list
// when Images is empty and was not sent. Editing and rendering both read
// media through it.
func (d *Destination) ImageList() []string {
	return mediaList(d.Images, d.ImageURL, d.imagesSent)
}

func (d *Destination) VideoList() []string {
	return mediaList(d.Videos, d.VideoURL, d.videosSent)
}

// MainImage returns the first image or an empty string.
func (d *Destination) MainImage() string {
	if images := d.ImageList(); len(images) > 0 {
		return images[0]
	}
	return ""
}

func mediaList(list []string, legacy string, explicit bool) []string {
	if len(list) > 0 || explicit {
		return append([]string{}, list...)
	}
	if legacy = strings.TrimSpace(legacy); legacy != "" {
		return []string{legacy}
	}
	return []string{}
}
