package subsonic

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Optional endpoints outside the core reliability engine. They ride the
// same scheduler/breaker/retry path as catalog calls.

// Search runs a library search across artists, albums, and tracks.
// limit caps each category; 0 uses the server default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	params := url.Values{"query": {query}}
	if limit > 0 {
		n := strconv.Itoa(limit)
		params.Set("artistCount", n)
		params.Set("albumCount", n)
		params.Set("songCount", n)
	}
	resp, err := c.call(ctx, PriorityBulk, "search3", params)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{}
	if resp.SearchResult3 != nil {
		for _, a := range resp.SearchResult3.Artist {
			result.Artists = append(result.Artists, normalizeArtist(a))
		}
		for _, a := range resp.SearchResult3.Album {
			result.Albums = append(result.Albums, normalizeAlbum(a))
		}
		for _, s := range resp.SearchResult3.Song {
			result.Tracks = append(result.Tracks, normalizeSong(s))
		}
	}
	return result, nil
}

// Playlists lists the playlists visible to the session user.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	resp, err := c.call(ctx, PriorityBulk, "getPlaylists", nil)
	if err != nil {
		return nil, err
	}
	var playlists []Playlist
	if resp.Playlists != nil {
		for _, p := range resp.Playlists.Playlist {
			playlists = append(playlists, normalizePlaylist(p))
		}
	}
	return playlists, nil
}

// Playlist fetches one playlist and its entries.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*Playlist, []TrackRecord, error) {
	resp, err := c.call(ctx, PriorityBulk, "getPlaylist", url.Values{"id": {playlistID}})
	if err != nil {
		return nil, nil, err
	}
	if resp.Playlist == nil {
		return nil, nil, &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "playlist missing from response"}
	}
	p := normalizePlaylist(*resp.Playlist)
	var entries []TrackRecord
	for _, s := range resp.Playlist.Entry {
		entries = append(entries, normalizeSong(s))
	}
	return &p, entries, nil
}

// MusicFolders lists the server's top-level media folders.
func (c *Client) MusicFolders(ctx context.Context) ([]MusicFolder, error) {
	resp, err := c.call(ctx, PriorityBulk, "getMusicFolders", nil)
	if err != nil {
		return nil, err
	}
	var folders []MusicFolder
	if resp.MusicFolders != nil {
		for _, f := range resp.MusicFolders.MusicFolder {
			folders = append(folders, MusicFolder{ID: f.ID, Name: f.Name})
		}
	}
	return folders, nil
}

// Genres lists the genres known to the server with usage counts.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	resp, err := c.call(ctx, PriorityBulk, "getGenres", nil)
	if err != nil {
		return nil, err
	}
	var genres []Genre
	if resp.Genres != nil {
		for _, g := range resp.Genres.Genre {
			genres = append(genres, Genre{Name: g.Value, SongCount: g.SongCount, AlbumCount: g.AlbumCount})
		}
	}
	return genres, nil
}

// ScanStatus reports whether the server is currently scanning its media
// folders. Dispatched at health priority so it is not stuck behind bulk
// enumeration traffic.
func (c *Client) ScanStatus(ctx context.Context) (*ScanStatus, error) {
	resp, err := c.call(ctx, PriorityHealth, "getScanStatus", nil)
	if err != nil {
		return nil, err
	}
	if resp.ScanStatus == nil {
		return &ScanStatus{}, nil
	}
	return &ScanStatus{Scanning: resp.ScanStatus.Scanning, Count: resp.ScanStatus.Count}, nil
}

// Star marks a track, album, or artist as a favorite.
func (c *Client) Star(ctx context.Context, id string) error {
	_, err := c.call(ctx, PriorityBulk, "star", url.Values{"id": {id}})
	return err
}

// Unstar removes a favorite mark.
func (c *Client) Unstar(ctx context.Context, id string) error {
	_, err := c.call(ctx, PriorityBulk, "unstar", url.Values{"id": {id}})
	return err
}

// Scrobble notifies the server of a play event for a track. submission
// false registers a "now playing" notification instead of a play.
func (c *Client) Scrobble(ctx context.Context, trackID string, playedAt time.Time, submission bool) error {
	params := url.Values{
		"id":         {trackID},
		"time":       {strconv.FormatInt(playedAt.UnixMilli(), 10)},
		"submission": {strconv.FormatBool(submission)},
	}
	_, err := c.call(ctx, PriorityBulk, "scrobble", params)
	return err
}

func normalizePlaylist(w wirePlaylist) Playlist {
	return Playlist{
		ID:        w.ID,
		Name:      w.Name,
		Owner:     w.Owner,
		SongCount: w.SongCount,
		Duration:  w.Duration,
		Public:    w.Public,
	}
}
