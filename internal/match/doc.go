// Package match resolves IMDb list entries to Plex library items.
//
// The cascade runs three tiers, terminal on the first hit: exact IMDb ID
// lookup, fuzzy title comparison restricted to year-matching candidates,
// and fuzzy title comparison with no year filter. The year-filtered tier
// accepts at a lower similarity threshold because the year already
// disambiguates; the unfiltered tier demands a higher score and vetoes
// candidates whose year is far from the entry's, so a remake or sequel
// sharing a title is never miscredited.
package match
