package client

import (
	"sync"

	"github.com/pkg/errors"
)

// The registry indexes opened services by caller-chosen name and by
// service URL, so code holding only a continuation URL or a feed name
// can find the client that owns it.

var (
	registryMu sync.RWMutex
	byName     = map[string]*Client{}
	byURL      = map[string]*Client{}
)

// Open builds a client from conf and registers it under the given name
// and its service URL. Reopening an existing name replaces the entry.
func Open(name string, conf Config) (*Client, error) {
	c, err := New(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open service %q", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if old, ok := byName[name]; ok {
		delete(byURL, old.ServiceURL())
	}
	byName[name] = c
	byURL[c.ServiceURL()] = c
	return c, nil
}

// Lookup finds an opened service by name.
func Lookup(name string) (*Client, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := byName[name]
	return c, ok
}

// LookupURL finds an opened service by its service root URL.
func LookupURL(url string) (*Client, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := byURL[url]
	return c, ok
}

// Close removes a service from the registry.
func Close(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if c, ok := byName[name]; ok {
		delete(byURL, c.ServiceURL())
		delete(byName, name)
	}
}
