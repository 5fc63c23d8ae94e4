// Package media inspects file and image bytes before they are submitted to
// the scan backend.
//
// It computes the SHA3-256 digest stored in the scan history and extracts
// a summary of privacy-relevant EXIF metadata (location, device, author)
// with go-exif. Nothing here is sent to the backend; the summary is shown
// to the user by the inspect command and next to image scan results.
package media
