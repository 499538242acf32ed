// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package polycam mirrors Polycam captures into the site tree.
//
// It fetches the public profile page, extracts capture IDs, names,
// thumbnails and orbit videos from the capture cards, downloads the media
// into static/polycam and writes a JSON manifest that the PolycamGallery
// widget consumes at build time.
package polycam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.astrophena.name/base/request"

	"github.com/PuerkitoBio/goquery"
)

// Capture is a single entry of the gallery manifest.
type Capture struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PolyURL   string `json:"polyUrl"`
	Video     string `json:"video,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Config represents a sync configuration.
type Config struct {
	// Username is the Polycam username, without the @.
	Username string
	// ProfileURL is the base URL of the Polycam site. Defaults to
	// https://poly.cam; overridden in tests.
	ProfileURL string
	// OutDir is a directory where videos and thumbnails are downloaded.
	OutDir string
	// Manifest is a path where the JSON manifest is written.
	Manifest string
	// Logf is a logger to use. If nil, log.Printf is used.
	Logf func(format string, args ...any)
	// HTTPClient is a HTTP client for making requests.
	HTTPClient *http.Client
}

func (c *Config) setDefaults() {
	if c.Username == "" {
		c.Username = "Felipegalind0"
	}
	if c.ProfileURL == "" {
		c.ProfileURL = "https://poly.cam"
	}
	if c.OutDir == "" {
		c.OutDir = filepath.Join("static", "polycam")
	}
	if c.Manifest == "" {
		c.Manifest = filepath.Join("data", "polycam.json")
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	if c.HTTPClient == nil {
		c.HTTPClient = request.DefaultClient
	}
}

var captureIDRe = regexp.MustCompile(`(?i)capture/([A-F0-9-]+)`)

// Sync fetches the profile page, downloads capture media that isn't on disk
// yet and rewrites the manifest.
//
// Failing to download a single video or thumbnail is not fatal: the entry
// stays in the manifest without that field, so one moved CDN file can't
// break the whole gallery refresh.
func Sync(ctx context.Context, c *Config) error {
	c.setDefaults()

	captures, err := scrape(ctx, c)
	if err != nil {
		return err
	}
	if len(captures) == 0 {
		return fmt.Errorf("no captures found for @%s", c.Username)
	}
	c.Logf("Extracted %d captures.", len(captures))

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Manifest), 0o755); err != nil {
		return err
	}

	manifest := make([]Capture, 0, len(captures))
	for i, raw := range captures {
		entry := Capture{
			ID:      raw.id,
			Name:    raw.name,
			PolyURL: "https://poly.cam/capture/" + raw.id,
		}
		if entry.Name == "" {
			entry.Name = fmt.Sprintf("capture-%d", i)
		}

		if raw.video != "" {
			name := raw.id + ".mp4"
			if err := c.download(ctx, raw.video, filepath.Join(c.OutDir, name)); err == nil {
				entry.Video = "/polycam/" + name
			}
		}
		if raw.thumbnail != "" {
			name := raw.id + "_thumb.jpg"
			if err := c.download(ctx, raw.thumbnail, filepath.Join(c.OutDir, name)); err == nil {
				entry.Thumbnail = "/polycam/" + name
			}
		}

		manifest = append(manifest, entry)
	}

	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Manifest, b, 0o644)
}

// capture holds raw data extracted from a capture card, before any
// downloads happened.
type capture struct {
	id, name, thumbnail, video string
}

func scrape(ctx context.Context, c *Config) ([]capture, error) {
	profile := c.ProfileURL + "/@" + c.Username
	c.Logf("Scraping %s...", profile)

	base, err := url.Parse(profile)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profile, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: wanted 200, got %d", profile, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, err
	}

	var captures []capture
	doc.Find(`a[href*="/capture/"]`).Each(func(_ int, s *goquery.Selection) {
		m := captureIDRe.FindStringSubmatch(s.AttrOr("href", ""))
		if m == nil {
			return
		}
		raw := capture{id: m[1]}

		img := s.Find("img").First()
		if alt := img.AttrOr("alt", ""); alt != "" {
			raw.name = strings.TrimSpace(strings.TrimSuffix(alt, " 3D Model"))
		}
		raw.thumbnail = resolve(base, img.AttrOr("src", ""))

		// The orbit video lives either on a <source> inside the card's
		// <video> or on the <video> itself.
		video := s.Find("video source").AttrOr("src", "")
		if video == "" {
			video = s.Find("video").AttrOr("src", "")
		}
		raw.video = resolve(base, video)

		captures = append(captures, raw)
	})

	return captures, nil
}

// resolve makes a possibly relative media URL absolute.
func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// download fetches url into dest, unless dest already exists.
func (c *Config) download(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		c.Logf("  skip (exists): %s", filepath.Base(dest))
		return nil
	}
	c.Logf("  downloading: %s", filepath.Base(dest))

	err := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		res, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("wanted 200, got %d", res.StatusCode)
		}

		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, res.Body); err != nil {
			f.Close()
			os.Remove(dest)
			return err
		}
		return f.Close()
	}()
	if err != nil {
		c.Logf("  FAILED: %v", err)
	}
	return err
}

// ReadManifest loads the capture manifest from path.
func ReadManifest(path string) ([]Capture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var captures []Capture
	if err := json.Unmarshal(b, &captures); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return captures, nil
}
