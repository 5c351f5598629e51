// Package imdb turns IMDb list exports into source entries for the
// reconciler. Both input forms are supported: the CSV export IMDb offers
// on every list, and the public list page itself (scraped). Entries keep
// their list order; parsing never reorders or drops rows.
package imdb
