// Package usercache is the local mirror of managed user emails. The whole
// list is one JSON array stored under metadata.KeyManagedUsers and is
// rewritten on every change; concurrent writers are not coordinated and the
// last write wins.
package usercache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/client/repositories/metadata"
)

type Cache struct {
	repo metadata.Repository
}

func New(repo metadata.Repository) *Cache {
	return &Cache{repo: repo}
}

// Load returns the cached emails, lower-cased, newest first. A missing or
// unreadable blob reads as an empty list.
func (c *Cache) Load(ctx context.Context) ([]string, error) {
	blob, err := c.repo.Get(ctx, metadata.KeyManagedUsers)
	if err != nil {
		return nil, fmt.Errorf("load user cache: %w", err)
	}

	var raw []any
	if blob != nil {
		// a blob that is not a JSON array is ignored
		_ = json.Unmarshal(blob, &raw)
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = policy.NormalizeEmail(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Add puts email at the front of the list unless it is already there.
func (c *Cache) Add(ctx context.Context, email string) error {
	email = policy.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	list, err := c.Load(ctx)
	if err != nil {
		return err
	}
	for _, e := range list {
		if e == email {
			return nil
		}
	}

	list = append([]string{email}, list...)
	return c.save(ctx, list)
}

// Remove drops every case-insensitive match of email.
func (c *Cache) Remove(ctx context.Context, email string) error {
	email = policy.NormalizeEmail(email)

	list, err := c.Load(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, e := range list {
		if e != email {
			kept = append(kept, e)
		}
	}
	return c.save(ctx, kept)
}

func (c *Cache) save(ctx context.Context, list []string) error {
	if err := metadata.SetJSON(ctx, c.repo, metadata.KeyManagedUsers, list); err != nil {
		return fmt.Errorf("save user cache: %w", err)
	}
	return nil
}
