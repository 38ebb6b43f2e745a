package registry

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common/errs"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is the top level of a registry document.
type Document struct {
	Schema           string                     `json:"$schema,omitempty"`
	Version          *Version                   `json:"version" validate:"required"`
	LatestRevision   string                     `json:"latestRevision" validate:"required"`
	RegistryIdentity json.RawMessage            `json:"registryIdentity" validate:"required"`
	Identities       map[string]json.RawMessage `json:"identities,omitempty"`
}

type Version struct {
	Major int `json:"major" validate:"gte=0"`
	Minor int `json:"minor" validate:"gte=0"`
	Patch int `json:"patch" validate:"gte=0"`
}

// IdentitySnapshot is one revision of an identity's metadata.
type IdentitySnapshot struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Token       *TokenCategory    `json:"token,omitempty"`
	URIs        map[string]string `json:"uris,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
}

type TokenCategory struct {
	Category string          `json:"category" validate:"required,len=64,hexadecimal"`
	Symbol   string          `json:"symbol" validate:"required"`
	Decimals int             `json:"decimals" validate:"gte=0,lte=18"`
	NFTs     json.RawMessage `json:"nfts,omitempty"`
}

type NFTCategory struct {
	Description string          `json:"description,omitempty"`
	Parse       *NFTParse       `json:"parse,omitempty"`
	Fields      json.RawMessage `json:"fields,omitempty"`
}

type NFTParse struct {
	Bytecode string                     `json:"bytecode,omitempty"`
	Types    map[string]json.RawMessage `json:"types"`
}

type NFTType struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	URIs        map[string]string `json:"uris,omitempty"`
}

// Decode parses a registry document body. Returns errs.InvalidArgument if the body isn't a JSON object.
func Decode(body []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid registry document: %v", err)
	}
	return &doc, nil
}

// Validate checks the document against the registry schema. Identity entries are validated
// revision by revision; legacy identity shapes are not schema-valid.
func Validate(doc *Document) error {
	if err := validate.Struct(doc); err != nil {
		return errors.Wrap(errs.InvalidArgument, err.Error())
	}
	if _, ok := parseRevision(doc.LatestRevision); !ok {
		return errors.Wrapf(errs.InvalidArgument, "latestRevision %q is not a timestamp", doc.LatestRevision)
	}
	for key, raw := range doc.Identities {
		history, ok := decodeHistory(raw)
		if !ok {
			return errors.Wrapf(errs.InvalidArgument, "identity %s is not a revision history", key)
		}
		for revision, entry := range history {
			var snapshot IdentitySnapshot
			if err := json.Unmarshal(entry.raw, &snapshot); err != nil {
				return errors.Wrapf(errs.InvalidArgument, "identity %s revision %s: %v", key, revision, err)
			}
			if err := validate.Struct(snapshot); err != nil {
				return errors.Wrapf(errs.InvalidArgument, "identity %s revision %s: %v", key, revision, err)
			}
		}
	}
	return nil
}
