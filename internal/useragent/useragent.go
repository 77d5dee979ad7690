// Package useragent provides a fixed pool of browser User-Agent strings
// for request rotation.
package useragent

import (
	"math/rand"
	"net/http"
)

var pool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

// Random returns one User-Agent from the pool, chosen fresh per call.
func Random() string {
	return pool[rand.Intn(len(pool))]
}

// SetHeaders applies a randomized User-Agent and common browser headers
// to the request.
func SetHeaders(req *http.Request) {
	req.Header.Set("User-Agent", Random())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}
