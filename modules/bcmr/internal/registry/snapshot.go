package registry

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/samber/lo"
)

type revisionEntry struct {
	key string
	at  time.Time
	raw json.RawMessage
}

// CategorySnapshot is the latest revision of one identity, flattened for lookups.
type CategorySnapshot struct {
	Category    string            `json:"category"`
	Revision    string            `json:"revision"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Symbol      string            `json:"symbol,omitempty"`
	Decimals    int               `json:"decimals"`
	Icon        string            `json:"icon,omitempty"`
	URIs        map[string]string `json:"uris,omitempty"`

	NFTs []NFTSnapshot `json:"-"`
}

// NFTSnapshot is the metadata of one NFT commitment of a category.
type NFTSnapshot struct {
	Category    string            `json:"category"`
	Commitment  string            `json:"commitment"`
	Revision    string            `json:"revision"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	URIs        map[string]string `json:"uris,omitempty"`
}

func parseRevision(key string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, key); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// decodeHistory decodes a timestamp-keyed identity history. Keys that aren't timestamps are ignored;
// it returns false for legacy shapes without any timestamp-keyed object.
func decodeHistory(raw json.RawMessage) (map[string]revisionEntry, bool) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	history := make(map[string]revisionEntry, len(entries))
	for key, value := range entries {
		at, ok := parseRevision(key)
		if !ok {
			continue
		}
		var object map[string]json.RawMessage
		if err := json.Unmarshal(value, &object); err != nil {
			continue
		}
		history[key] = revisionEntry{key: key, at: at, raw: value}
	}
	return history, len(history) > 0
}

// latestRevision returns the chronologically latest revision, ties broken by key order.
func latestRevision(history map[string]revisionEntry) revisionEntry {
	entries := lo.Values(history)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.Before(entries[j].at)
		}
		return entries[i].key < entries[j].key
	})
	return entries[len(entries)-1]
}

// LatestSnapshots selects the latest revision of every identity of the document.
// Identities with a legacy or malformed shape are skipped.
func LatestSnapshots(doc *Document) []CategorySnapshot {
	keys := lo.Keys(doc.Identities)
	sort.Strings(keys)

	snapshots := make([]CategorySnapshot, 0, len(keys))
	for _, key := range keys {
		history, ok := decodeHistory(doc.Identities[key])
		if !ok {
			continue
		}
		latest := latestRevision(history)

		var identity IdentitySnapshot
		if err := json.Unmarshal(latest.raw, &identity); err != nil {
			continue
		}
		snapshot := CategorySnapshot{
			Category:    key,
			Revision:    latest.key,
			Name:        identity.Name,
			Description: identity.Description,
			Icon:        identity.URIs["icon"],
			URIs:        identity.URIs,
		}
		if identity.Token != nil {
			if identity.Token.Category != "" {
				snapshot.Category = identity.Token.Category
			}
			snapshot.Symbol = identity.Token.Symbol
			snapshot.Decimals = identity.Token.Decimals
			snapshot.NFTs = parseNFTs(snapshot.Category, latest.key, identity.Token.NFTs)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

// parseNFTs reads NFT types from token.nfts.parse.types, or from a plain commitment map.
func parseNFTs(category, revision string, raw json.RawMessage) []NFTSnapshot {
	if len(raw) == 0 {
		return nil
	}
	types := map[string]json.RawMessage{}
	var nftCategory NFTCategory
	if err := json.Unmarshal(raw, &nftCategory); err == nil && nftCategory.Parse != nil {
		types = nftCategory.Parse.Types
	} else if err := json.Unmarshal(raw, &types); err != nil {
		return nil
	}

	commitments := lo.Keys(types)
	sort.Strings(commitments)
	nfts := make([]NFTSnapshot, 0, len(commitments))
	for _, commitment := range commitments {
		var nftType NFTType
		if err := json.Unmarshal(types[commitment], &nftType); err != nil {
			continue
		}
		nfts = append(nfts, NFTSnapshot{
			Category:    category,
			Commitment:  commitment,
			Revision:    revision,
			Name:        nftType.Name,
			Description: nftType.Description,
			Icon:        nftType.URIs["icon"],
			URIs:        nftType.URIs,
		})
	}
	return nfts
}
