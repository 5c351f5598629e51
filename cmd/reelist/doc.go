// Command reelist reconciles an ordered IMDb list of movies against a
// Plex library and keeps a named Plex collection in sync with it.
package main
