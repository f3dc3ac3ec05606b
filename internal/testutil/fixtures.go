package testutil

import (
	"context"
	"testing"

	"github.com/roach88/qparam/internal/store"
)

func strPtr(s string) *string { return &s }

// ContentFixtures returns a small content set with ids 1..6. Records 3 and 6
// have no body.
func ContentFixtures() []store.Content {
	return []store.Content{
		{ID: 1, ContentType: "pages", Slug: "about", Title: "About", Username: "fred", Email: "fred@example.com", Status: "published", OwnerID: 1, Body: strPtr("About us"), DatePublish: "2016-01-01"},
		{ID: 2, ContentType: "pages", Slug: "contact", Title: "Contact", Username: "pete", Email: "pete@example.com", Status: "published", OwnerID: 2, Body: strPtr("Write to us"), DatePublish: "2016-02-01"},
		{ID: 3, ContentType: "pages", Slug: "draft-page", Title: "Draft", Username: "fred", Email: "fred@example.com", Status: "draft", OwnerID: 1, DatePublish: "2016-03-01"},
		{ID: 4, ContentType: "entries", Slug: "hello-world", Title: "Hello world", Username: "bob", Email: "bob@example.com", Status: "published", OwnerID: 3, Body: strPtr("First post"), DatePublish: "2016-04-01"},
		{ID: 5, ContentType: "entries", Slug: "second", Title: "Second", Username: "pete", Email: "pete@example.com", Status: "held", OwnerID: 2, Body: strPtr("Second post"), DatePublish: "2016-05-01"},
		{ID: 6, ContentType: "entries", Slug: "third", Title: "Third", Username: "alice", Email: "alice@example.com", Status: "published", OwnerID: 4, DatePublish: "2016-06-01"},
	}
}

// OpenFixtureStore opens an in-memory store loaded with ContentFixtures and
// closes it when the test ends.
func OpenFixtureStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.InsertContents(context.Background(), ContentFixtures()); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return s
}
