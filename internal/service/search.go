package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dtroode/connectflow/internal/model"
)

// Search ranks directory entries against a query under privacy
// constraints. It is a pure function of current store state.
type Search struct {
	identities model.IdentityStore
}

func NewSearch(identities model.IdentityStore) *Search {
	return &Search{identities: identities}
}

type scoredUser struct {
	user      *model.User
	relevance int
}

// Relevance weights. They are additive: an exact handle match also
// satisfies the prefix and contains tests and totals 18.
const (
	weightHandleExact    = 10
	weightHandlePrefix   = 5
	weightHandleContains = 3
	weightNameContains   = 2
	weightBioContains    = 1
)

// Search returns every visible user matching query, highest relevance
// first; ties keep directory insertion order. A blank query yields an
// empty result set, not an error: the caller falls back to an unranked
// listing.
func (s *Search) Search(ctx context.Context, viewer, query string) ([]*model.User, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []*model.User{}, nil
	}

	users, err := s.identities.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var matches []scoredUser
	for _, user := range users {
		if user.Handle == viewer {
			continue
		}
		if !CanViewProfile(user, viewer) {
			continue
		}

		relevance := relevanceOf(user, term)
		if relevance == 0 {
			continue
		}
		matches = append(matches, scoredUser{user: user, relevance: relevance})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].relevance > matches[j].relevance
	})

	result := make([]*model.User, len(matches))
	for i, m := range matches {
		result[i] = m.user
	}
	return result, nil
}

func relevanceOf(user *model.User, term string) int {
	handle := strings.ToLower(user.Handle)
	name := strings.ToLower(user.DisplayName)
	bio := strings.ToLower(user.Bio)

	relevance := 0
	if handle == term {
		relevance += weightHandleExact
	}
	if strings.HasPrefix(handle, term) {
		relevance += weightHandlePrefix
	}
	if strings.Contains(handle, term) {
		relevance += weightHandleContains
	}
	if strings.Contains(name, term) {
		relevance += weightNameContains
	}
	if strings.Contains(bio, term) {
		relevance += weightBioContains
	}
	return relevance
}
