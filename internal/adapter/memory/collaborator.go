package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/pkg/errors"
)

// Collaborator keeps published variants in memory, indexed by slug. A
// variant published twice under the same slug replaces the previous one.
type Collaborator struct {
	name     string
	mutex    sync.RWMutex
	variants map[string]*model.Variant
	order    []string
}

// Publish implements [port.Collaborator].
func (c *Collaborator) Publish(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(port.ErrCanceled, err.Error())
	}

	slug := variant.Metadata.Slug
	if slug == "" {
		return nil, errors.Wrap(port.ErrRejected, "missing slug")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.variants[slug]; !exists {
		c.order = append(c.order, slug)
	}

	stored := *variant
	c.variants[slug] = &stored

	return &model.PublishedRef{
		ID:  slug,
		URL: fmt.Sprintf("memory://%s/%s", c.name, slug),
	}, nil
}

func (c *Collaborator) Get(slug string) (*model.Variant, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	variant, exists := c.variants[slug]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return variant, nil
}

// Slugs returns the published slugs in order of first publication.
func (c *Collaborator) Slugs() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return slices.Clone(c.order)
}

func NewCollaborator(name string) *Collaborator {
	return &Collaborator{
		name:     name,
		variants: make(map[string]*model.Variant),
	}
}

var _ port.Collaborator = &Collaborator{}

var (
	namedMutex         sync.Mutex
	namedCollaborators = map[string]*Collaborator{}
)

// Named returns the collaborator registered under the given name, creating
// it if needed.
func Named(name string) *Collaborator {
	namedMutex.Lock()
	defer namedMutex.Unlock()

	c, exists := namedCollaborators[name]
	if !exists {
		c = NewCollaborator(name)
		namedCollaborators[name] = c
	}

	return c
}
