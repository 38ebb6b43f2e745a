package registry

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const category = "abcd000000000000000000000000000000000000000000000000000000000000"

func TestParseURI(t *testing.T) {
	type testcase struct {
		raw        string
		kind       URIKind
		normalized string
	}
	testcases := []testcase{
		{raw: "example.com/.well-known/bitcoin-cash-metadata-registry.json", kind: URIKindHTTPS, normalized: "https://example.com/.well-known/bitcoin-cash-metadata-registry.json"},
		{raw: "https://example.com/bcmr.json", kind: URIKindHTTPS, normalized: "https://example.com/bcmr.json"},
		{raw: "http://example.com/bcmr.json", kind: URIKindHTTPS, normalized: "http://example.com/bcmr.json"},
		{raw: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", kind: URIKindIPFS, normalized: "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"},
		{raw: "ipfs://bafybeigdyrzt", kind: URIKindIPFS, normalized: "ipfs://bafybeigdyrzt"},
		{raw: "ipfs://bafybeigdyrzt/bcmr.json", kind: URIKindIPFS, normalized: "ipfs://bafybeigdyrzt/bcmr.json"},
	}
	for _, tc := range testcases {
		t.Run(tc.raw, func(t *testing.T) {
			uri := ParseURI(tc.raw)
			assert.Equal(t, tc.kind, uri.Kind)
			assert.Equal(t, tc.normalized, uri.Normalized)
			assert.Equal(t, tc.raw, uri.Raw)
		})
	}

	assert.Equal(t, "bafybeigdyrzt/bcmr.json", ParseURI("ipfs://bafybeigdyrzt/bcmr.json").IPFSPath())
	assert.Empty(t, ParseURI("example.com").IPFSPath())
}

func TestContentHash(t *testing.T) {
	// sha256("")
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash([]byte{}))
}

const document = `{
  "$schema": "https://cashtokens.org/bcmr-v2.schema.json",
  "version": {"major": 1, "minor": 2, "patch": 0},
  "latestRevision": "2023-06-01T00:00:00.000Z",
  "registryIdentity": {"name": "Example Registry"},
  "identities": {
    "abcd000000000000000000000000000000000000000000000000000000000000": {
      "2022-01-01T00:00:00Z": {
        "name": "Old Name",
        "token": {"category": "abcd000000000000000000000000000000000000000000000000000000000000", "symbol": "OLD", "decimals": 0}
      },
      "2023-06-01T00:00:00Z": {
        "name": "New Name",
        "description": "Latest revision",
        "token": {
          "category": "abcd000000000000000000000000000000000000000000000000000000000000",
          "symbol": "NEW",
          "decimals": 8,
          "nfts": {
            "parse": {
              "types": {
                "01": {"name": "Ticket #1", "uris": {"icon": "https://example.com/1.png"}},
                "": {"name": "Blank"}
              }
            }
          }
        },
        "uris": {"icon": "https://example.com/icon.png", "web": "https://example.com"}
      }
    },
    "ef00000000000000000000000000000000000000000000000000000000000000": {
      "name": "Legacy shape",
      "description": "not timestamp keyed"
    }
  }
}`

func TestLatestSnapshots(t *testing.T) {
	doc, err := Decode([]byte(document))
	require.NoError(t, err)

	snapshots := LatestSnapshots(doc)
	require.Len(t, snapshots, 1, "legacy identity must be skipped")

	s := snapshots[0]
	assert.Equal(t, category, s.Category)
	assert.Equal(t, "2023-06-01T00:00:00Z", s.Revision)
	assert.Equal(t, "New Name", s.Name)
	assert.Equal(t, "Latest revision", s.Description)
	assert.Equal(t, "NEW", s.Symbol)
	assert.Equal(t, 8, s.Decimals)
	assert.Equal(t, "https://example.com/icon.png", s.Icon)

	require.Len(t, s.NFTs, 2)
	assert.Equal(t, "", s.NFTs[0].Commitment)
	assert.Equal(t, "Blank", s.NFTs[0].Name)
	assert.Equal(t, "01", s.NFTs[1].Commitment)
	assert.Equal(t, "Ticket #1", s.NFTs[1].Name)
	assert.Equal(t, "https://example.com/1.png", s.NFTs[1].Icon)
}

func TestLatestSnapshotsChronologicalOrder(t *testing.T) {
	// the later revision sorts first lexicographically because of the offset
	doc, err := Decode([]byte(`{
	  "version": {"major": 0, "minor": 1, "patch": 0},
	  "latestRevision": "2023-01-01T00:00:00Z",
	  "registryIdentity": "` + category + `",
	  "identities": {"` + category + `": {
	    "2023-01-01T10:00:00+09:00": {"name": "earlier"},
	    "2023-01-01T02:00:00Z": {"name": "later"}
	  }}
	}`))
	require.NoError(t, err)

	snapshots := LatestSnapshots(doc)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "later", snapshots[0].Name)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		doc, err := Decode([]byte(document))
		require.NoError(t, err)
		// the legacy identity fails the schema
		assert.True(t, errors.Is(Validate(doc), errs.InvalidArgument))

		delete(doc.Identities, "ef00000000000000000000000000000000000000000000000000000000000000")
		assert.NoError(t, Validate(doc))
	})
	t.Run("missing version", func(t *testing.T) {
		doc, err := Decode([]byte(`{"latestRevision": "2023-01-01T00:00:00Z", "registryIdentity": "x"}`))
		require.NoError(t, err)
		assert.True(t, errors.Is(Validate(doc), errs.InvalidArgument))
	})
	t.Run("bad revision", func(t *testing.T) {
		doc, err := Decode([]byte(`{"version": {"major": 0, "minor": 0, "patch": 0}, "latestRevision": "yesterday", "registryIdentity": "x"}`))
		require.NoError(t, err)
		assert.Error(t, Validate(doc))
	})
	t.Run("empty token symbol", func(t *testing.T) {
		doc, err := Decode([]byte(strings.ReplaceAll(document, `"symbol": "NEW"`, `"symbol": ""`)))
		require.NoError(t, err)
		delete(doc.Identities, "ef00000000000000000000000000000000000000000000000000000000000000")
		assert.Error(t, Validate(doc))
	})
	t.Run("not json", func(t *testing.T) {
		_, err := Decode([]byte("<html>404</html>"))
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
}
