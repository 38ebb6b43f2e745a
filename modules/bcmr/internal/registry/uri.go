package registry

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type URIKind string

const (
	URIKindHTTPS URIKind = "https"
	URIKindIPFS  URIKind = "ipfs"
)

const (
	httpsScheme = "https://"
	ipfsScheme  = "ipfs://"
)

// URI is a normalized registry location.
type URI struct {
	Kind URIKind
	// Raw is the entry as published on chain.
	Raw string
	// Normalized carries the scheme, e.g. https://example.com/bcmr.json or ipfs://<cid>.
	Normalized string
}

// ParseURI classifies a published uri. An explicit ipfs:// entry is IPFS, otherwise
// an entry containing a '.' is an HTTPS location and anything else is an IPFS content id.
// The scheme is prepended when missing; an explicit http(s) scheme is kept.
func ParseURI(raw string) URI {
	uri := URI{Raw: raw}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, ipfsScheme):
		uri.Kind = URIKindIPFS
		uri.Normalized = raw
	case strings.Contains(raw, "."):
		uri.Kind = URIKindHTTPS
		uri.Normalized = raw
		if !strings.HasPrefix(lower, httpsScheme) && !strings.HasPrefix(lower, "http://") {
			uri.Normalized = httpsScheme + raw
		}
	default:
		uri.Kind = URIKindIPFS
		uri.Normalized = ipfsScheme + raw
	}
	return uri
}

// ParseURIs parses every published entry, keeping their order.
func ParseURIs(raws []string) []URI {
	uris := make([]URI, 0, len(raws))
	for _, raw := range raws {
		uris = append(uris, ParseURI(raw))
	}
	return uris
}

// IPFSPath returns the content path of an IPFS uri, e.g. <cid>/bcmr.json.
func (u URI) IPFSPath() string {
	if u.Kind != URIKindIPFS {
		return ""
	}
	return u.Normalized[len(ipfsScheme):]
}

// ContentHash returns the lowercase hex sha256 of a registry document, the hash committed on chain.
func ContentHash(body []byte) string {
	return hex.EncodeToString(chainhash.HashB(body))
}
