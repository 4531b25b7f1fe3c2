package subsonic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fixtureLibrary is an in-memory artist/album/track tree served by the
// fake server.
type fixtureLibrary struct {
	artists map[string]fixtureArtist // keyed by artist ID
	order   []string                 // artist IDs in index order
}

type fixtureArtist struct {
	id     string
	name   string
	albums []fixtureAlbum
}

type fixtureAlbum struct {
	id     string
	name   string
	tracks []wireSong
}

// fakeServer simulates a Subsonic-compatible server for tests.
type fakeServer struct {
	t       *testing.T
	lib     fixtureLibrary
	latency time.Duration

	// rejectTokenAuth makes the server answer 41 to token-auth requests
	// until the client sends a plain password.
	rejectTokenAuth bool
	// errOn maps an endpoint+id ("getAlbum/al-3") to a wire error code
	// returned for that call. An empty id matches every call to the
	// endpoint.
	errOn map[string]int
	// mediaEnvelope makes the stream endpoint answer 200 + JSON error.
	mediaEnvelope bool

	mu    sync.Mutex
	calls map[string]int

	srv *httptest.Server
}

func newFakeServer(t *testing.T, lib fixtureLibrary) *fakeServer {
	t.Helper()
	f := &fakeServer{
		t:     t,
		lib:   lib,
		errOn: map[string]int{},
		calls: map[string]int{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) URL() string { return f.srv.URL }

// callCount returns how many times an endpoint was hit.
func (f *fakeServer) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/rest/")
	q := r.URL.Query()

	f.mu.Lock()
	f.calls[endpoint]++
	f.mu.Unlock()

	if f.latency > 0 {
		time.Sleep(f.latency)
	}

	if f.rejectTokenAuth && q.Get("p") == "" {
		writeFail(w, CodeTokenAuthNotSupport, "Token authentication not supported for LDAP users.")
		return
	}

	if code, ok := f.errOn[endpoint+"/"+q.Get("id")]; ok {
		writeFail(w, code, fmt.Sprintf("injected error %d", code))
		return
	}
	if code, ok := f.errOn[endpoint+"/"]; ok {
		writeFail(w, code, fmt.Sprintf("injected error %d", code))
		return
	}

	switch endpoint {
	case "ping":
		writeOK(w, map[string]any{
			"type":          "navidrome",
			"serverVersion": "0.52.0",
			"openSubsonic":  true,
		})
	case "getArtists":
		var artists []map[string]any
		for _, id := range f.lib.order {
			a := f.lib.artists[id]
			artists = append(artists, map[string]any{
				"id": a.id, "name": a.name, "albumCount": len(a.albums),
			})
		}
		writeOK(w, map[string]any{
			"artists": map[string]any{
				"index": []map[string]any{{"name": "A-Z", "artist": artists}},
			},
		})
	case "getArtist":
		a, ok := f.lib.artists[q.Get("id")]
		if !ok {
			writeFail(w, CodeNotFound, "Artist not found")
			return
		}
		var albums []map[string]any
		for _, al := range a.albums {
			albums = append(albums, map[string]any{
				"id": al.id, "name": al.name, "artistId": a.id, "artist": a.name,
				"songCount": len(al.tracks),
			})
		}
		writeOK(w, map[string]any{
			"artist": map[string]any{
				"id": a.id, "name": a.name, "albumCount": len(a.albums), "album": albums,
			},
		})
	case "getAlbum":
		for _, a := range f.lib.artists {
			for _, al := range a.albums {
				if al.id != q.Get("id") {
					continue
				}
				writeOK(w, map[string]any{
					"album": map[string]any{
						"id": al.id, "name": al.name, "artistId": a.id, "artist": a.name,
						"songCount": len(al.tracks), "song": al.tracks,
					},
				})
				return
			}
		}
		writeFail(w, CodeNotFound, "Album not found")
	case "stream", "download":
		if f.mediaEnvelope {
			writeFail(w, CodeNotFound, "Media file not found")
			return
		}
		w.Header().Set("Content-Type", "audio/flac")
		_, _ = w.Write([]byte("FLACBYTES"))
	default:
		writeFail(w, CodeGeneric, "unhandled endpoint "+endpoint)
	}
}

// writeOK writes a success envelope with extra top-level fields merged in.
func writeOK(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"status": "ok", "version": "1.16.1"}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"subsonic-response": body})
}

// writeFail writes a failed envelope carrying an error object.
func writeFail(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"subsonic-response": map[string]any{
			"status":  "failed",
			"version": "1.16.1",
			"error":   map[string]any{"code": code, "message": message},
		},
	})
}

// song builds a plain audio wire track.
func song(id, title, artist, album string) wireSong {
	return wireSong{ID: id, Title: title, Artist: artist, Album: album, Duration: 180, Suffix: "flac", Type: "music"}
}

// smallLibrary is two artists with albums and tracks, including a video,
// a directory entry, and a cross-album duplicate.
func smallLibrary() fixtureLibrary {
	dup := song("tr-b1", "Same Song", "Artist B", "Duplicated")
	dup2 := song("tr-b2", "Same Song", "Artist B", "Duplicated")

	video := song("tr-a3", "Tour Film", "Artist A", "First")
	video.IsVideo = true
	video.Type = "video"

	dir := song("dir-1", "Disc 1", "Artist A", "First")
	dir.IsDir = true

	return fixtureLibrary{
		order: []string{"ar-a", "ar-b"},
		artists: map[string]fixtureArtist{
			"ar-a": {
				id: "ar-a", name: "Artist A",
				albums: []fixtureAlbum{
					{id: "al-a1", name: "First", tracks: []wireSong{
						song("tr-a1", "Opener", "Artist A", "First"),
						song("tr-a2", "Closer", "Artist A", "First"),
						video,
						dir,
					}},
					{id: "al-a2", name: "Second", tracks: []wireSong{
						song("tr-a4", "Single", "Artist A", "Second"),
					}},
				},
			},
			"ar-b": {
				id: "ar-b", name: "Artist B",
				albums: []fixtureAlbum{
					{id: "al-b1", name: "Duplicated", tracks: []wireSong{dup, dup2}},
					{id: "al-b2", name: "Covers", tracks: []wireSong{
						song("tr-b3", "Cover One", "Artist B", "Covers"),
					}},
				},
			},
		},
	}
}

// newTestClient builds a client against the fake server with fast retry
// timing so tests do not sleep through real backoff.
func newTestClient(t *testing.T, f *fakeServer, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:        f.URL(),
		Username:       "alice",
		Password:       "secret",
		Concurrency:    4,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}
