package subsonic

import (
	"context"
	"net/url"
	"sync"
)

// Artists fetches the full artist index in one call.
func (c *Client) Artists(ctx context.Context) ([]Artist, error) {
	resp, err := c.call(ctx, PriorityBulk, "getArtists", nil)
	if err != nil {
		return nil, err
	}
	var artists []Artist
	if resp.Artists != nil {
		for _, idx := range resp.Artists.Index {
			for _, a := range idx.Artist {
				artists = append(artists, normalizeArtist(a))
			}
		}
	}
	return artists, nil
}

// ArtistAlbums fetches one artist's complete album list. The protocol
// returns the full children list with no offset/limit; an artist with an
// extremely large album count is therefore a capacity limit of the
// protocol itself, not something this client truncates.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string) ([]Album, error) {
	params := url.Values{"id": {artistID}}
	resp, err := c.call(ctx, PriorityBulk, "getArtist", params)
	if err != nil {
		return nil, err
	}
	var albums []Album
	if resp.Artist != nil {
		for _, a := range resp.Artist.Album {
			albums = append(albums, normalizeAlbum(a))
		}
	}
	return albums, nil
}

// AlbumTracks fetches one album's complete track list.
func (c *Client) AlbumTracks(ctx context.Context, albumID string) ([]TrackRecord, error) {
	params := url.Values{"id": {albumID}}
	resp, err := c.call(ctx, PriorityBulk, "getAlbum", params)
	if err != nil {
		return nil, err
	}
	var tracks []TrackRecord
	if resp.Album != nil {
		for _, s := range resp.Album.Song {
			tracks = append(tracks, normalizeSong(s))
		}
	}
	return tracks, nil
}

// TrackStream is a lazy, finite stream of track records produced by a
// library enumeration. It is not restartable: a fresh call to
// EnumerateLibrary restarts from the top.
//
// The caller loops on Next until it returns false, then must check Err.
// A non-nil Err means the traversal aborted and any records already
// received must be discarded (the all-or-nothing contract). A caller
// that abandons the stream early must call Close to release the
// producer goroutines.
type TrackStream struct {
	records chan TrackRecord
	cancel  context.CancelFunc

	mu      sync.Mutex
	err     error
	skipped int
}

// Next returns the next track record. ok is false once the stream is
// exhausted or aborted.
func (s *TrackStream) Next() (rec TrackRecord, ok bool) {
	rec, ok = <-s.records
	return rec, ok
}

// Err returns the terminal error that aborted the stream, or nil for a
// complete traversal. Only meaningful after Next has returned false.
func (s *TrackStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Skipped reports how many artists or albums were skipped because the
// server answered "not found" for them mid-traversal.
func (s *TrackStream) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Close aborts the enumeration. In-flight calls finish or abort on their
// transport timeout; no new sub-fetches are issued.
func (s *TrackStream) Close() {
	s.cancel()
}

// fail records the first terminal error and stops the traversal.
func (s *TrackStream) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *TrackStream) skip() {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
}

// EnumerateLibrary walks the artist -> album -> track hierarchy and
// streams every audio track through the returned TrackStream.
//
// The traversal fans out on the client's worker pool: one call for the
// artist index, then bounded-concurrency fetches of each artist's albums
// and each album's tracks. Records are filtered and deduplicated as they
// are yielded, so memory holds in-flight pages rather than the whole
// library. Directory and video entries are dropped; two records with the
// same (title, artist, album) collapse to the first seen.
//
// "Not found" on an individual artist or album skips that item. Any
// other terminal error aborts the whole traversal: the stream ends and
// Err reports the cause.
func (c *Client) EnumerateLibrary(ctx context.Context) *TrackStream {
	ctx, cancel := context.WithCancel(ctx)
	stream := &TrackStream{
		records: make(chan TrackRecord),
		cancel:  cancel,
	}

	go c.enumerate(ctx, stream)
	return stream
}

// enumerate drives the three-level traversal pipeline.
func (c *Client) enumerate(ctx context.Context, stream *TrackStream) {
	defer close(stream.records)
	defer stream.cancel()

	artists, err := c.Artists(ctx)
	if err != nil {
		stream.fail(err)
		return
	}

	// Feed artists to a bounded set of album fetchers, and albums to a
	// bounded set of track fetchers. The fetcher counts match the worker
	// pool, so parallelism is bounded by the scheduler either way and no
	// goroutine is spawned per item.
	artistCh := make(chan Artist)
	albumCh := make(chan Album)
	batchCh := make(chan []TrackRecord)

	fetchers := c.cfg.Concurrency

	go func() {
		defer close(artistCh)
		for _, a := range artists {
			select {
			case artistCh <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	var albumWG sync.WaitGroup
	albumWG.Add(fetchers)
	for i := 0; i < fetchers; i++ {
		go func() {
			defer albumWG.Done()
			for artist := range artistCh {
				albums, err := c.ArtistAlbums(ctx, artist.ID)
				if err != nil {
					if isSkip(err) {
						c.logDebugf("subsonic: artist %s vanished mid-enumeration, skipping", artist.ID)
						stream.skip()
						continue
					}
					stream.fail(err)
					return
				}
				for _, album := range albums {
					select {
					case albumCh <- album:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
	go func() {
		albumWG.Wait()
		close(albumCh)
	}()

	var trackWG sync.WaitGroup
	trackWG.Add(fetchers)
	for i := 0; i < fetchers; i++ {
		go func() {
			defer trackWG.Done()
			for album := range albumCh {
				tracks, err := c.AlbumTracks(ctx, album.ID)
				if err != nil {
					if isSkip(err) {
						c.logDebugf("subsonic: album %s vanished mid-enumeration, skipping", album.ID)
						stream.skip()
						continue
					}
					stream.fail(err)
					return
				}
				select {
				case batchCh <- tracks:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		trackWG.Wait()
		close(batchCh)
	}()

	// Single collector applies the audio filter and duplicate
	// suppression, then yields in demand order.
	seen := make(map[trackKey]struct{})
	for batch := range batchCh {
		for _, rec := range batch {
			if rec.IsDir || rec.IsVideo {
				continue
			}
			key := trackKey{rec.Title, rec.Artist, rec.Album}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			select {
			case stream.records <- rec:
				if ctx.Err() != nil {
					stream.fail(ctx.Err())
					return
				}
			case <-ctx.Done():
				stream.fail(ctx.Err())
				return
			}
		}
	}

	if err := ctx.Err(); err != nil {
		stream.fail(err)
	}
}

// trackKey identifies a track for duplicate suppression.
type trackKey struct {
	title  string
	artist string
	album  string
}

// Library enumerates the full library and materializes it, enforcing the
// all-or-nothing contract: if any sub-fetch terminates in a fatal or
// retry-exhausted error, no records are returned and the error reports
// how many were discarded.
func (c *Client) Library(ctx context.Context) ([]TrackRecord, error) {
	stream := c.EnumerateLibrary(ctx)
	defer stream.Close()

	var records []TrackRecord
	for {
		rec, ok := stream.Next()
		if !ok {
			break
		}
		records = append(records, rec)
	}

	if err := stream.Err(); err != nil {
		return nil, &EnumerationError{Discarded: len(records), Cause: err}
	}
	return records, nil
}
