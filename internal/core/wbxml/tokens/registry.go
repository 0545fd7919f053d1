package tokens

import (
	"bytes"
	"sort"
	"strings"
)

// Document types known by public identifier only: no token tables, so their
// content renders numerically.
var (
	WML10     = &Map{Name: "WML 1.0", FormalID: "-//WAPFORUM//DTD WML 1.0//EN"}
	WTA10     = &Map{Name: "WTA 1.0", FormalID: "-//WAPFORUM//DTD WTA 1.0//EN"}
	Channel11 = &Map{Name: "CHANNEL 1.1", FormalID: "-//WAPFORUM//DTD CHANNEL 1.1//EN"}
	WTAWML12  = &Map{Name: "WTA-WML 1.2", FormalID: "-//WAPFORUM//DTD WTA-WML 1.2//EN"}
)

type publicIDEntry struct {
	id uint32
	m  *Map
}

// Well-known public identifiers from the WAP WBXML assignment and the SyncML
// registrations.
var publicIDs = []publicIDEntry{
	{0x02, WML10},
	{0x03, WTA10},
	{0x04, WML11},
	{0x05, SI},
	{0x06, SL},
	{0x07, CO},
	{0x08, Channel11},
	{0x09, WML12},
	{0x0a, WML13},
	{0x0b, PROV},
	{0x0c, WTAWML12},
	{0x0d, EMN},
	{0x0e, DRMREL},
	{0x0f, CSP10},
	{0x10, CSP11},
	{0x0fd1, SyncML10},
	{0x0fd2, DevInf10},
	{0x0fd3, SyncML11},
	{0x0fd4, DevInf11},
	{0x1201, SyncML12},
}

// Discriminator inspects the document body to pick a map when the content type
// alone is ambiguous. A nil result keeps the static choice.
type Discriminator func(buf []byte, off int) *Map

type contentTypeEntry struct {
	contentType string
	m           *Map
	discr       Discriminator
}

var contentTypes = []contentTypeEntry{
	{"application/vnd.wap.wmlc", WML13, nil},
	{"application/vnd.wap.sic", SI, nil},
	{"application/vnd.wap.slc", SL, nil},
	{"application/vnd.wap.coc", CO, nil},
	{"application/vnd.wap.connectivity-wbxml", PROV, nil},
	{"application/vnd.wap.emn+wbxml", EMN, nil},
	{"application/vnd.oma.drm.rights+wbxml", DRMREL, nil},
	{"application/vnd.syncml+wbxml", SyncML11, nil},
	{"application/vnd.syncml.dm+wbxml", SyncML12, nil},
	{"application/vnd.syncml.devinf+wbxml", DevInf11, nil},
	{"application/vnd.wv.csp.wbxml", CSP11, cspDiscriminator},
}

var (
	csp10Magic = []byte{0xfe, 0x05, 0x03, '1', '.', '0'}
	// TODO: add a CSP 1.2 map selected by C9 08 03 "1.2"; it currently falls back to 1.1.
	csp11Magic = []byte{0xc9, 0x05, 0x03, '1', '.', '1'}
)

// cspDiscriminator peeks at the first six body octets, which carry the
// WV-CSP-Message version attribute.
func cspDiscriminator(buf []byte, off int) *Map {
	if off < 0 || off+len(csp10Magic) > len(buf) {
		return CSP11
	}
	head := buf[off : off+len(csp10Magic)]
	switch {
	case bytes.Equal(head, csp10Magic):
		return CSP10
	case bytes.Equal(head, csp11Magic):
		return CSP11
	}
	return CSP11
}

// ByPublicID returns the map registered for a numeric public identifier.
func ByPublicID(id uint32) *Map {
	for _, e := range publicIDs {
		if e.id == id {
			return e.m
		}
	}
	return nil
}

// ByFormalID returns the map whose formal public identifier equals id.
func ByFormalID(id string) *Map {
	id = strings.TrimSpace(id)
	for _, e := range publicIDs {
		if e.m.FormalID == id {
			return e.m
		}
	}
	return nil
}

// ByContentType returns the map for a media type, ignoring parameters and case.
// buf and bodyOff locate the document body for discriminators.
func ByContentType(contentType string, buf []byte, bodyOff int) *Map {
	ct := normalizeContentType(contentType)
	if ct == "" {
		return nil
	}
	for _, e := range contentTypes {
		if e.contentType != ct {
			continue
		}
		if e.discr != nil {
			if m := e.discr(buf, bodyOff); m != nil {
				return m
			}
		}
		return e.m
	}
	return nil
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Selection describes how a document's token map was chosen.
type Selection struct {
	PublicID    uint32
	FormalID    string
	ContentType string
	BodyOffset  int
}

// Select picks a token map: the numeric public identifier first, then the literal
// formal identifier, then the content type. It returns nil when nothing matches,
// in which case tokens render numerically.
func Select(s Selection, buf []byte) *Map {
	if s.PublicID != 0 {
		if m := ByPublicID(s.PublicID); m != nil {
			return m
		}
	}
	if s.FormalID != "" {
		if m := ByFormalID(s.FormalID); m != nil {
			return m
		}
	}
	return ByContentType(s.ContentType, buf, s.BodyOffset)
}

// PublicIDName returns the formal identifier of a well-known public id, or "".
func PublicIDName(id uint32) string {
	if id == 1 {
		return "Unknown or missing public identifier"
	}
	if m := ByPublicID(id); m != nil {
		return m.FormalID
	}
	return ""
}

// Entry is one row of the registry listing.
type Entry struct {
	PublicID     uint32
	Name         string
	FormalID     string
	ContentTypes []string
	HasTables    bool
}

// Entries lists every registered map ordered by public identifier.
func Entries() []Entry {
	out := make([]Entry, 0, len(publicIDs))
	for _, e := range publicIDs {
		row := Entry{
			PublicID:  e.id,
			Name:      e.m.Name,
			FormalID:  e.m.FormalID,
			HasTables: e.m.HasTables(),
		}
		for _, ct := range contentTypes {
			if ct.m == e.m {
				row.ContentTypes = append(row.ContentTypes, ct.contentType)
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublicID < out[j].PublicID })
	return out
}
