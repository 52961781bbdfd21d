// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "strings"

// Defaults bounding the cost of a local lookup.
const (
	defaultMaxStreetCandidates = 10
	defaultMaxReferenceFetch   = 200
)

// LocalMatch is a usable prior geocode found in the local store.
type LocalMatch struct {
	Address *Address
	// Distance is the absolute house-number delta between the input and the
	// reference. Nil when the match was made by block code.
	Distance *int
}

// LocalMatcher searches the local address store for a prior geocode on the
// same street segment as the input.
type LocalMatcher struct {
	repo       AddressRepository
	maxStreets int
	maxRefs    int
}

// NewLocalMatcher creates a matcher with the default candidate caps.
func NewLocalMatcher(repo AddressRepository) *LocalMatcher {
	return &LocalMatcher{
		repo:       repo,
		maxStreets: defaultMaxStreetCandidates,
		maxRefs:    defaultMaxReferenceFetch,
	}
}

// Find returns a reference address usable for the given components, or nil
// when the store has nothing on the same street segment. A numeric house
// number only ever matches within its own hundred-block; numbers of a
// different block are worse than no answer, so the matcher never falls back
// across blocks.
func (m *LocalMatcher) Find(components Components) (*LocalMatch, error) {
	name := strings.TrimSpace(components.StreetName)
	if name == "" {
		return nil, nil
	}

	streets, err := m.repo.SearchStreets(name, m.maxStreets)
	if err != nil {
		return nil, err
	}

	if len(streets) == 0 {
		return nil, nil
	}

	streetIDs := make([]int64, len(streets))
	for i, s := range streets {
		streetIDs[i] = s.ID
	}

	refs, err := m.repo.ReferenceAddresses(streetIDs, m.maxRefs)
	if err != nil {
		return nil, err
	}

	if number, ok := components.HouseNumberValue(); ok {
		return matchByNumber(refs, number), nil
	}

	if components.Block != "" {
		return matchByBlock(refs, components.Block), nil
	}

	return nil, nil
}

// matchByNumber picks the reference with the minimum house-number distance
// within the input's hundred-block. Equal distances resolve to the lowest
// address id; fetch order is not a contract.
func matchByNumber(refs []*Address, number int) *LocalMatch {
	inputBlock := number / 100

	var best *Address

	bestDistance := 0

	for _, ref := range refs {
		c := Components{HouseNumber: ref.Number}

		refNumber, ok := c.HouseNumberValue()
		if !ok || refNumber/100 != inputBlock {
			continue
		}

		distance := refNumber - number
		if distance < 0 {
			distance = -distance
		}

		switch {
		case best == nil, distance < bestDistance:
			best, bestDistance = ref, distance
		case distance == bestDistance && ref.ID < best.ID:
			best = ref
		}
	}

	if best == nil {
		return nil
	}

	return &LocalMatch{Address: best, Distance: &bestDistance}
}

// matchByBlock picks the lowest-id reference sharing the Manzana code.
func matchByBlock(refs []*Address, block string) *LocalMatch {
	var best *Address

	for _, ref := range refs {
		if !strings.EqualFold(ref.Block, block) {
			continue
		}

		if best == nil || ref.ID < best.ID {
			best = ref
		}
	}

	if best == nil {
		return nil
	}

	return &LocalMatch{Address: best}
}
