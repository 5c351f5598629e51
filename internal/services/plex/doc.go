// Package plex implements the HTTP client for the Plex Media Server
// endpoints reelist needs: listing library sections and their items,
// enumerating collections and their members, and tagging items into a
// collection. Remote objects are reduced to the fixed-shape Item at this
// boundary; nothing above this package sees Plex wire formats.
package plex
