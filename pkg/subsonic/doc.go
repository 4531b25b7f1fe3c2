// Package subsonic provides a client library for Subsonic-compatible
// media servers (Navidrome, Airsonic, Gonic, and friends).
//
// # Overview
//
// The package covers authenticated access to a remote music catalog:
// salted-token authentication, hierarchical library browsing
// (artists -> albums -> tracks), media retrieval, and a reliability
// layer (typed error classification, retry with exponential backoff,
// and a circuit breaker) tuned for servers that are slow, intermittently
// unreachable, or subtly non-conformant.
//
// # Quick Start
//
//	client, err := subsonic.NewClient(subsonic.Config{
//	    BaseURL:  "https://music.example.com",
//	    Username: "alice",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	caps, err := client.Ping(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("server speaks protocol %s", caps.ProtocolVersion)
//
// # Authentication
//
// Requests are authenticated with the Subsonic salted-token scheme: a
// fresh random salt per request and a token of md5(password + salt), so
// the plaintext password never travels on the wire. MD5 is mandated by
// the protocol; it obfuscates the password rather than protecting it
// cryptographically, so confidentiality still relies on HTTPS. Servers
// that reject token authentication (wire codes 41/42) trigger an
// automatic one-time fallback to legacy password authentication for the
// rest of the session.
//
// # Browsing
//
// The full catalog can be enumerated lazily:
//
//	stream := client.EnumerateLibrary(ctx)
//	defer stream.Close()
//	for {
//	    track, ok := stream.Next()
//	    if !ok {
//	        break
//	    }
//	    use(track)
//	}
//	if err := stream.Err(); err != nil {
//	    // discard everything received; the traversal was incomplete
//	}
//
// or materialized with an all-or-nothing guarantee:
//
//	tracks, err := client.Library(ctx)
//
// Library never returns a truncated catalog: if any sub-fetch fails
// terminally the call returns zero records and an *EnumerationError.
//
// # Reliability
//
// Every call is dispatched through a bounded worker pool in which
// health-check and authentication calls preempt bulk catalog fetches.
// Wire errors are classified into a typed taxonomy (see ErrorKind) with
// a per-kind disposition: transient failures retry with exponential
// backoff, "not found" during enumeration skips the item, and
// everything else surfaces immediately as a typed error. A circuit
// breaker short-circuits calls after repeated consecutive failures and
// admits a single probe once its recovery timeout elapses.
//
// # Errors
//
//	tracks, err := client.Library(ctx)
//	if err != nil {
//	    var perr *subsonic.Error
//	    if errors.As(err, &perr) && perr.Kind == subsonic.KindAuthentication {
//	        // bad credentials
//	    }
//	}
//
// # Context Support
//
// All methods accept a context.Context. Cancelling the context stops an
// enumeration from issuing new sub-fetches; in-flight requests finish or
// abort on the transport timeout, and accumulated partial data is
// discarded.
package subsonic
