package media

import (
	"encoding/hex"
	"net/http"
	"sort"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/crypto/sha3"
)

// Category groups EXIF tags by what they reveal about the image's origin.
type Category string

// EXIF tag categories.
const (
	CategoryLocation Category = "location"
	CategoryDevice   Category = "device"
	CategorySoftware Category = "software"
	CategoryAuthor   Category = "author"
	CategoryTime     Category = "time"
)

// tagCategories maps the EXIF tags worth reporting to their category.
var tagCategories = map[string]Category{
	"GPSLatitude":        CategoryLocation,
	"GPSLongitude":       CategoryLocation,
	"GPSLatitudeRef":     CategoryLocation,
	"GPSLongitudeRef":    CategoryLocation,
	"GPSAltitude":        CategoryLocation,
	"Make":               CategoryDevice,
	"Model":              CategoryDevice,
	"SerialNumber":       CategoryDevice,
	"CameraSerialNumber": CategoryDevice,
	"BodySerialNumber":   CategoryDevice,
	"LensSerialNumber":   CategoryDevice,
	"HostComputer":       CategoryDevice,
	"Software":           CategorySoftware,
	"ProcessingSoftware": CategorySoftware,
	"Artist":             CategoryAuthor,
	"Author":             CategoryAuthor,
	"Copyright":          CategoryAuthor,
	"XPAuthor":           CategoryAuthor,
	"DateTimeOriginal":   CategoryTime,
	"DateTimeDigitized":  CategoryTime,
	"DateTime":           CategoryTime,
}

// Tag is one reported EXIF entry.
type Tag struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Value    string   `json:"value"`
}

// Summary describes a file about to be scanned.
type Summary struct {
	// Name is the file name as given by the caller.
	Name string `json:"name"`

	// Size is the length of the data in bytes.
	Size int `json:"size"`

	// ContentType is the sniffed MIME type.
	ContentType string `json:"contentType"`

	// Digest is the hex SHA3-256 of the data.
	Digest string `json:"digest"`

	// Tags lists reportable EXIF entries sorted by category and name.
	// It is empty for files without EXIF data.
	Tags []Tag `json:"tags,omitempty"`
}

// HasLocation reports whether the image carries GPS coordinates.
func (s Summary) HasLocation() bool {
	for _, t := range s.Tags {
		if t.Category == CategoryLocation {
			return true
		}
	}
	return false
}

// Digest returns the hex-encoded SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Inspect summarizes data. It never fails: files that are not images or
// carry no EXIF block simply have no tags.
func Inspect(name string, data []byte) Summary {
	return Summary{
		Name:        name,
		Size:        len(data),
		ContentType: http.DetectContentType(data),
		Digest:      Digest(data),
		Tags:        exifTags(data),
	}
}

// exifTags extracts the categorized EXIF entries from image bytes.
func exifTags(data []byte) []Tag {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var tags []Tag
	for _, entry := range entries {
		category, ok := tagCategories[entry.TagName]
		if !ok || seen[entry.TagName] {
			continue
		}
		seen[entry.TagName] = true
		tags = append(tags, Tag{Category: category, Name: entry.TagName, Value: entry.Formatted})
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Category != tags[j].Category {
			return tags[i].Category < tags[j].Category
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}
