package quoteservice

import (
	"context"
	"strings"
	"sync"

	"github.com/Black-And-White-Club/quote-bot/app/platform"
)

// FakeDirectory is a programmable platform.Directory.
type FakeDirectory struct {
	mu      sync.Mutex
	queries []string

	Members        map[string]string // display name -> member id
	SearchByNameFn func(ctx context.Context, query string) ([]string, error)
}

func (f *FakeDirectory) SearchByName(ctx context.Context, query string) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.SearchByNameFn != nil {
		return f.SearchByNameFn(ctx, query)
	}
	var ids []string
	for name, id := range f.Members {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(query)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Queries returns every query the fake received.
func (f *FakeDirectory) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

// staticDirectories hands out the same directory for every guild.
type staticDirectories struct {
	directory platform.Directory
}

func (s staticDirectories) Directory(string) platform.Directory {
	return s.directory
}
