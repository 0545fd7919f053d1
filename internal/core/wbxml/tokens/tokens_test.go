package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wapdec/internal/core"
)

func TestLookupSentinels(t *testing.T) {
	var nilMap *Map
	assert.Equal(t, NoMap, nilMap.Lookup(Tag, 0, 0x05))
	assert.Equal(t, NoMap, SL.Lookup(Global, 0, 0x40))
	assert.Equal(t, NoCodePage, SL.Lookup(Tag, 3, 0x05))
	assert.Equal(t, NoToken, SL.Lookup(Tag, 0, 0x3f))
	assert.Equal(t, "sl", SL.Lookup(Tag, 0, 0x05))

	// distinct sentinels
	assert.NotEqual(t, NoMap, NoCodePage)
	assert.NotEqual(t, NoCodePage, NoToken)
}

func TestLookupTagIgnoresContentAndAttrBits(t *testing.T) {
	for _, tok := range []byte{0x3f, 0x7f, 0xbf, 0xff} {
		assert.Equal(t, "wml", WML13.Lookup(Tag, 0, tok), "token 0x%02x", tok)
	}
}

func TestLookupIsIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, NoToken, WML13.Lookup(AttrValue, 0, 0xfe))
		assert.Equal(t, NoMap, (*Map)(nil).Lookup(AttrStart, 9, 9))
	}
}

func TestVersionedTablesExtendTheirBase(t *testing.T) {
	_, ok := WML11.Resolve(Tag, 0, 0x1b)
	assert.False(t, ok)
	name, ok := WML12.Resolve(Tag, 0, 0x1b)
	require.True(t, ok)
	assert.Equal(t, "pre", name)

	assert.Equal(t, NoToken, WML12.Lookup(AttrStart, 0, 0x62))
	assert.Equal(t, "xml:space='preserve'", WML13.Lookup(AttrStart, 0, 0x62))

	assert.Equal(t, NoToken, SyncML10.Lookup(Tag, 0, 0x33))
	assert.Equal(t, "NumberOfChanges", SyncML11.Lookup(Tag, 0, 0x33))
	assert.Equal(t, "MaxObjSize", SyncML12.Lookup(Tag, 1, 0x15))
	assert.Equal(t, "Correlator", SyncML12.Lookup(Tag, 0, 0x3c))
	assert.Equal(t, "SupportLargeObjs", DevInf11.Lookup(Tag, 0, 0x2a))

	// merge must not leak into the base table
	assert.Equal(t, NoToken, SyncML10.Lookup(Tag, 1, 0x15))
}

func TestByPublicID(t *testing.T) {
	tests := []struct {
		id   uint32
		want *Map
	}{
		{0x04, WML11},
		{0x05, SI},
		{0x0a, WML13},
		{0x0b, PROV},
		{0x0f, CSP10},
		{0x0fd3, SyncML11},
		{0x1201, SyncML12},
		{0x01, nil},
		{0x7777, nil},
	}
	for _, tt := range tests {
		assert.Same(t, tt.want, ByPublicID(tt.id), "public id 0x%x", tt.id)
	}
}

func TestByFormalID(t *testing.T) {
	assert.Same(t, SI, ByFormalID("-//WAPFORUM//DTD SI 1.0//EN"))
	assert.Same(t, SyncML12, ByFormalID(" -//SYNCML//DTD SyncML 1.2//EN "))
	assert.Nil(t, ByFormalID("-//W3C//DTD XHTML 1.0//EN"))
}

func TestByContentType(t *testing.T) {
	assert.Same(t, WML13, ByContentType("application/vnd.wap.wmlc", nil, 0))
	assert.Same(t, SI, ByContentType("Application/VND.WAP.SIC; charset=utf-8", nil, 0))
	assert.Same(t, PROV, ByContentType("application/vnd.wap.connectivity-wbxml", nil, 0))
	assert.Nil(t, ByContentType("text/plain", nil, 0))
	assert.Nil(t, ByContentType("", nil, 0))
}

func TestCSPDiscriminator(t *testing.T) {
	const ct = "application/vnd.wv.csp.wbxml"
	tests := []struct {
		name string
		body []byte
		want *Map
	}{
		{"csp 1.0 magic", []byte{0xfe, 0x05, 0x03, '1', '.', '0', 0x01}, CSP10},
		{"csp 1.1 magic", []byte{0xc9, 0x05, 0x03, '1', '.', '1'}, CSP11},
		{"csp 1.2 falls back", []byte{0xc9, 0x08, 0x03, '1', '.', '2'}, CSP11},
		{"unrecognized magic", []byte{0x45, 0x05, 0x03, '9', '.', '9'}, CSP11},
		{"short body", []byte{0xfe, 0x05}, CSP11},
		{"no body", nil, CSP11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, ByContentType(ct, tt.body, 0))
		})
	}

	// the discriminator honours the body offset
	buf := append([]byte{0xaa, 0xbb}, csp10Magic...)
	assert.Same(t, CSP10, ByContentType(ct, buf, 2))
}

func TestSelectPrecedence(t *testing.T) {
	assert.Same(t, SL, Select(Selection{PublicID: 0x06, ContentType: "application/vnd.wap.sic"}, nil))
	assert.Same(t, CO, Select(Selection{PublicID: 0x01, FormalID: "-//WAPFORUM//DTD CO 1.0//EN"}, nil))
	assert.Same(t, SI, Select(Selection{PublicID: 0x01, ContentType: "application/vnd.wap.sic"}, nil))
	assert.Nil(t, Select(Selection{PublicID: 0x01}, nil))
}

func TestPublicIDName(t *testing.T) {
	assert.Equal(t, "-//WAPFORUM//DTD WML 1.1//EN", PublicIDName(0x04))
	assert.Equal(t, "Unknown or missing public identifier", PublicIDName(0x01))
	assert.Empty(t, PublicIDName(0x99))
}

func TestEntries(t *testing.T) {
	entries := Entries()
	require.Len(t, entries, len(publicIDs))
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].PublicID, entries[i].PublicID)
	}
	for _, e := range entries {
		if e.PublicID == 0x05 {
			assert.Equal(t, []string{"application/vnd.wap.sic"}, e.ContentTypes)
			assert.True(t, e.HasTables)
		}
		if e.PublicID == 0x02 {
			assert.False(t, e.HasTables)
		}
	}
}

func TestStringTableAt(t *testing.T) {
	st := StringTable("abc\x00Enter name: \x00tail")
	s, err := st.At(0)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	s, err = st.At(4)
	require.NoError(t, err)
	assert.Equal(t, "Enter name: ", s)

	s, err = st.At(1)
	require.NoError(t, err)
	assert.Equal(t, "bc", s)

	s, err = st.At(uint32(len(st) - 4))
	require.NoError(t, err)
	assert.Equal(t, "tail", s)

	_, err = st.At(uint32(len(st)))
	assert.ErrorIs(t, err, core.ErrBadStringIndex)
}

func TestGenericCodec(t *testing.T) {
	st := StringTable("name\x00")
	assert.Equal(t, "EXT_I_1: 'x'", Generic.ExtI(nil, 0, 1, "x"))
	assert.Equal(t, "EXT_T_2: 'name'", Generic.ExtT(nil, 0, 2, 0, st))
	assert.Equal(t, "EXT_T_0: index 9", Generic.ExtT(nil, 0, 0, 9, st))
	assert.Equal(t, "EXT_0", Generic.Ext(nil, 0, 0))

	f := Generic.OpaqueBinaryTag(nil, 0, 0x05, []byte{0xde, 0xad})
	assert.Equal(t, core.KindBytes, f.Kind)
	assert.Equal(t, "dead", f.Text)
}

func TestWMLCodec(t *testing.T) {
	st := StringTable("x\x00var\x00")
	c := WML13.TokenCodec()
	assert.Equal(t, "$(user:e)", c.ExtI(WML13, 0, 0, "user"))
	assert.Equal(t, "$(user:u)", c.ExtI(WML13, 0, 1, "user"))
	assert.Equal(t, "$(user)", c.ExtI(WML13, 0, 2, "user"))
	assert.Equal(t, "$(var:e)", c.ExtT(WML13, 0, 0, 2, st))
	assert.Equal(t, "Reserved", c.Ext(WML13, 0, 0))
}

func TestPackedDate(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want time.Time
	}{
		{"full", []byte{0x20, 0x02, 0x06, 0x18, 0x15, 0x30, 0x45}, time.Date(2002, 6, 18, 15, 30, 45, 0, time.UTC)},
		{"trailing zeros omitted", []byte{0x19, 0x99, 0x12, 0x31}, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"year only", []byte{0x20, 0x10}, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PackedDate(tt.data)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := PackedDate(nil)
	assert.ErrorIs(t, err, core.ErrValueRange)
	_, err = PackedDate(make([]byte, 8))
	assert.ErrorIs(t, err, core.ErrValueRange)
	_, err = PackedDate([]byte{0x20, 0x02, 0x13})
	assert.ErrorIs(t, err, core.ErrValueRange)
}

func TestSIDateAttribute(t *testing.T) {
	c := SI.TokenCodec()
	// 0x0a is created
	f := c.OpaqueBinaryAttr(SI, 0, 0x0a, []byte{0x20, 0x02, 0x06, 0x18})
	assert.Equal(t, core.KindTime, f.Kind)
	assert.Equal(t, "2002-06-18T00:00:00Z", f.Text)

	// 0x0b is href, left alone
	f = c.OpaqueBinaryAttr(SI, 0, 0x0b, []byte{0x20})
	assert.Equal(t, core.KindBytes, f.Kind)
}

func TestCSPCodec(t *testing.T) {
	c := CSP11.TokenCodec()
	assert.Equal(t, "text/plain", c.ExtT(CSP11, 0, 0, 0x28, nil))
	assert.Equal(t, "(unknown common value 0x7f)", c.ExtT(CSP11, 0, 0, 0x7f, nil))

	// 0x0b is Code
	f := c.OpaqueBinaryTag(CSP11, 0, 0x0b, []byte{0x00, 0xc8})
	assert.Equal(t, core.KindUint, f.Kind)
	assert.Equal(t, uint64(200), f.Value)

	f = c.OpaqueBinaryTag(CSP11, 0, 0x0b, []byte{1, 2, 3, 4, 5})
	assert.ErrorIs(t, f.Err, core.ErrValueRange)

	// 2004-05-06T07:08:09Z packed into 6 octets
	var v uint64 = 2004<<26 | 5<<22 | 6<<17 | 7<<12 | 8<<6 | 9
	data := []byte{byte(v >> 32), byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v), 'Z'}
	f = c.OpaqueBinaryTag(CSP11, 0, 0x11, data)
	assert.Equal(t, "2004-05-06T07:08:09Z", f.Text)
}

func TestDRMAndSyncMLCodecs(t *testing.T) {
	f := DRMREL.TokenCodec().OpaqueBinaryTag(DRMREL, 0, 0x0c, []byte("key"))
	assert.Equal(t, "a2V5", f.Text)

	f = SyncML12.TokenCodec().OpaqueBinaryTag(SyncML12, 0, 0x0f, []byte("BEGIN:VCARD\r\n"))
	assert.Equal(t, core.KindString, f.Kind)
	f = SyncML12.TokenCodec().OpaqueBinaryTag(SyncML12, 0, 0x0f, []byte{0x00, 0x01})
	assert.Equal(t, core.KindBytes, f.Kind)
}
