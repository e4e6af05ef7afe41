package image

import (
	"bufio"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

// Gallery hands out random celebration image URLs for winning rounds
type Gallery struct {
	urls []string
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewGallery creates a gallery over urls, skipping blank entries
func NewGallery(urls []string) *Gallery {
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			kept = append(kept, u)
		}
	}
	return &Gallery{
		urls: kept,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoadGallery reads one image URL per line from path
func LoadGallery(path string) (*Gallery, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		urls = append(urls, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewGallery(urls), nil
}

// Len is the number of images
func (g *Gallery) Len() int {
	if g == nil {
		return 0
	}
	return len(g.urls)
}

// Random returns a random image URL, or "" when the gallery is empty
func (g *Gallery) Random() string {
	if g.Len() == 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.urls[g.rng.Intn(len(g.urls))]
}
