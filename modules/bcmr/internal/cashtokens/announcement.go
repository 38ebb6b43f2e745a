package cashtokens

import (
	"bytes"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/bcmr-indexer/core/types"
	"github.com/samber/lo"
)

// ProtocolTag is the ASCII literal pushed after OP_RETURN by registry announcements.
var ProtocolTag = []byte("BCMR")

// Node ASM renders the 4-byte tag push either as a script number or as hex.
const (
	protocolTagASMNumber = "1380795202"
	protocolTagASMHex    = "42434d52"
)

// Announcement is an on-chain registry publication: OP_RETURN <tag> <content-hash> <uri-list>.
type Announcement struct {
	OutputIndex uint32

	// OpReturn is the ASM of the announcement script.
	OpReturn string

	// ContentHash is the lowercase hex of the published content hash.
	ContentHash string

	// URIs are the raw ';'-separated entries of the uri list, in published order.
	URIs []string
}

// ParseAnnouncement parses a nulldata script, or returns nil if it isn't a registry announcement.
// The serialized script is preferred; the ASM is used when the hex is missing or unparseable.
func ParseAnnouncement(index uint32, script types.Script) *Announcement {
	if a := parseAnnouncementScript(script.Hex); a != nil {
		a.OutputIndex = index
		a.OpReturn = script.Asm
		return a
	}
	if a := parseAnnouncementASM(script.Asm); a != nil {
		a.OutputIndex = index
		return a
	}
	return nil
}

// ParseAnnouncementASM parses a stored announcement ASM.
func ParseAnnouncementASM(asm string) *Announcement {
	return parseAnnouncementASM(asm)
}

func parseAnnouncementScript(scriptHex string) *Announcement {
	script, err := hex.DecodeString(scriptHex)
	if err != nil || len(script) == 0 || script[0] != txscript.OP_RETURN {
		return nil
	}

	pushes := make([][]byte, 0, 3)
	tokenizer := txscript.MakeScriptTokenizer(0, script[1:])
	for tokenizer.Next() && len(pushes) < 3 {
		if tokenizer.Opcode() > txscript.OP_PUSHDATA4 {
			return nil
		}
		pushes = append(pushes, tokenizer.Data())
	}
	if tokenizer.Err() != nil || len(pushes) < 3 {
		return nil
	}
	if !bytes.Equal(pushes[0], ProtocolTag) {
		return nil
	}
	uris, ok := parseURIList(pushes[2])
	if !ok {
		return nil
	}
	return &Announcement{
		ContentHash: hex.EncodeToString(pushes[1]),
		URIs:        uris,
	}
}

func parseAnnouncementASM(asm string) *Announcement {
	fields := strings.Fields(asm)
	if len(fields) < 4 || fields[0] != "OP_RETURN" {
		return nil
	}
	if fields[1] != protocolTagASMNumber && !strings.EqualFold(fields[1], protocolTagASMHex) {
		return nil
	}
	rawURIs, err := hex.DecodeString(fields[3])
	if err != nil {
		return nil
	}
	uris, ok := parseURIList(rawURIs)
	if !ok {
		return nil
	}
	return &Announcement{
		OpReturn:    asm,
		ContentHash: strings.ToLower(fields[2]),
		URIs:        uris,
	}
}

func parseURIList(raw []byte) ([]string, bool) {
	if !utf8.Valid(raw) {
		return nil, false
	}
	uris := lo.FilterMap(strings.Split(string(raw), ";"), func(uri string, _ int) (string, bool) {
		uri = strings.TrimSpace(uri)
		return uri, uri != ""
	})
	return uris, len(uris) > 0
}
