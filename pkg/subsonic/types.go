package subsonic

// Artist is one entry in the top-level library index.
type Artist struct {
	ID         string // Server-assigned artist ID
	Name       string // Display name
	AlbumCount int    // Number of albums under this artist
}

// Album is one album belonging to an artist.
type Album struct {
	ID        string // Server-assigned album ID
	Name      string // Album title
	ArtistID  string // Owning artist ID
	Artist    string // Owning artist name
	SongCount int    // Number of tracks on the album
	Duration  int    // Total duration in seconds
	Year      int    // Release year (0 if unknown)
	Genre     string // Genre string as reported by the server
}

// TrackRecord is a single playable track from the catalog.
type TrackRecord struct {
	ID          string // Server-assigned track ID
	Title       string // Track title
	Artist      string // Artist name
	Album       string // Album name
	AlbumID     string // Owning album ID
	ArtistID    string // Owning artist ID
	Parent      string // Parent container ID
	Duration    int    // Duration in seconds
	Suffix      string // File suffix (e.g. "flac", "mp3")
	IsDir       bool   // True for directory entries, excluded from enumeration
	IsVideo     bool   // True for video entries, excluded from enumeration
	MediaType   string // Media type tag (e.g. "music")
	Genre       string // Genre string (optional)
	Year        int    // Release year (optional)
	MusicBrainz string // External recording ID (optional)
	BitRate     int    // Bit rate in kbps (optional)
	ContentType string // MIME type (optional)
}

// Playlist is a server-side playlist summary.
type Playlist struct {
	ID        string // Server-assigned playlist ID
	Name      string // Playlist name
	Owner     string // Owning username
	SongCount int    // Number of entries
	Duration  int    // Total duration in seconds
	Public    bool   // Whether the playlist is visible to other users
}

// SearchResult holds the three result categories from a library search.
type SearchResult struct {
	Artists []Artist
	Albums  []Album
	Tracks  []TrackRecord
}

// MusicFolder is a top-level media folder on the server.
type MusicFolder struct {
	ID   int
	Name string
}

// Genre is one genre with its usage counts.
type Genre struct {
	Name       string
	SongCount  int
	AlbumCount int
}

// ScanStatus reports the server's media scan state.
type ScanStatus struct {
	Scanning bool  // Whether a scan is currently running
	Count    int64 // Number of items scanned so far
}

// Wire-format response types. The Subsonic JSON envelope nests everything
// under a "subsonic-response" object with status/version attributes and,
// on failure, an {code, message} error object.

type envelope struct {
	Response subsonicResponse `json:"subsonic-response"`
}

type subsonicResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Type          string         `json:"type,omitempty"`
	ServerVersion string         `json:"serverVersion,omitempty"`
	OpenSubsonic  bool           `json:"openSubsonic,omitempty"`
	Error         *wireError     `json:"error,omitempty"`
	Artists       *wireIndexes   `json:"artists,omitempty"`
	Artist        *wireArtist    `json:"artist,omitempty"`
	Album         *wireAlbum     `json:"album,omitempty"`
	SearchResult3 *wireSearch3   `json:"searchResult3,omitempty"`
	Playlists     *wirePlaylists `json:"playlists,omitempty"`
	Playlist      *wirePlaylist  `json:"playlist,omitempty"`
	MusicFolders  *wireFolders   `json:"musicFolders,omitempty"`
	Genres        *wireGenres    `json:"genres,omitempty"`
	ScanStatus    *wireScan      `json:"scanStatus,omitempty"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wireIndexes struct {
	Index []struct {
		Name   string       `json:"name"`
		Artist []wireArtist `json:"artist"`
	} `json:"index"`
}

type wireArtist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	AlbumCount int         `json:"albumCount"`
	Album      []wireAlbum `json:"album,omitempty"`
}

type wireAlbum struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ArtistID  string     `json:"artistId"`
	Artist    string     `json:"artist"`
	SongCount int        `json:"songCount"`
	Duration  int        `json:"duration"`
	Year      int        `json:"year,omitempty"`
	Genre     string     `json:"genre,omitempty"`
	Song      []wireSong `json:"song,omitempty"`
}

type wireSong struct {
	ID            string `json:"id"`
	Parent        string `json:"parent,omitempty"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	ArtistID      string `json:"artistId,omitempty"`
	Album         string `json:"album"`
	AlbumID       string `json:"albumId,omitempty"`
	Duration      int    `json:"duration"`
	Suffix        string `json:"suffix,omitempty"`
	IsDir         bool   `json:"isDir"`
	IsVideo       bool   `json:"isVideo"`
	Type          string `json:"type,omitempty"`
	Genre         string `json:"genre,omitempty"`
	Year          int    `json:"year,omitempty"`
	MusicBrainzID string `json:"musicBrainzId,omitempty"`
	BitRate       int    `json:"bitRate,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
}

type wireSearch3 struct {
	Artist []wireArtist `json:"artist"`
	Album  []wireAlbum  `json:"album"`
	Song   []wireSong   `json:"song"`
}

type wirePlaylists struct {
	Playlist []wirePlaylist `json:"playlist"`
}

type wirePlaylist struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Owner     string     `json:"owner,omitempty"`
	SongCount int        `json:"songCount"`
	Duration  int        `json:"duration"`
	Public    bool       `json:"public"`
	Entry     []wireSong `json:"entry,omitempty"`
}

type wireFolders struct {
	MusicFolder []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"musicFolder"`
}

type wireGenres struct {
	Genre []struct {
		Value      string `json:"value"`
		SongCount  int    `json:"songCount"`
		AlbumCount int    `json:"albumCount"`
	} `json:"genre"`
}

type wireScan struct {
	Scanning bool  `json:"scanning"`
	Count    int64 `json:"count"`
}

// normalizeArtist converts a wire artist to the exported record.
func normalizeArtist(w wireArtist) Artist {
	return Artist{ID: w.ID, Name: w.Name, AlbumCount: w.AlbumCount}
}

// normalizeAlbum converts a wire album to the exported record.
func normalizeAlbum(w wireAlbum) Album {
	return Album{
		ID:        w.ID,
		Name:      w.Name,
		ArtistID:  w.ArtistID,
		Artist:    w.Artist,
		SongCount: w.SongCount,
		Duration:  w.Duration,
		Year:      w.Year,
		Genre:     w.Genre,
	}
}

// normalizeSong converts a wire song to the exported track record.
func normalizeSong(w wireSong) TrackRecord {
	return TrackRecord{
		ID:          w.ID,
		Title:       w.Title,
		Artist:      w.Artist,
		Album:       w.Album,
		AlbumID:     w.AlbumID,
		ArtistID:    w.ArtistID,
		Parent:      w.Parent,
		Duration:    w.Duration,
		Suffix:      w.Suffix,
		IsDir:       w.IsDir,
		IsVideo:     w.IsVideo,
		MediaType:   w.Type,
		Genre:       w.Genre,
		Year:        w.Year,
		MusicBrainz: w.MusicBrainzID,
		BitRate:     w.BitRate,
		ContentType: w.ContentType,
	}
}
