package wap

import "fmt"

// Well-known content types, WSP Table 40 and the OMNA registry, indexed by assigned number.
var contentTypes = []string{
	"*/*", "text/*", "text/html", "text/plain",
	"text/x-hdml", "text/x-ttml", "text/x-vCalendar",
	"text/x-vCard", "text/vnd.wap.wml",
	"text/vnd.wap.wmlscript", "text/vnd.wap.wta-event",
	"multipart/*", "multipart/mixed", "multipart/form-data",
	"multipart/byteranges", "multipart/alternative",
	"application/*", "application/java-vm",
	"application/x-www-form-urlencoded",
	"application/x-hdmlc", "application/vnd.wap.wmlc",
	"application/vnd.wap.wmlscriptc",
	"application/vnd.wap.wta-eventc",
	"application/vnd.wap.uaprof",
	"application/vnd.wap.wtls-ca-certificate",
	"application/vnd.wap.wtls-user-certificate",
	"application/x-x509-ca-cert",
	"application/x-x509-user-cert",
	"image/*", "image/gif", "image/jpeg", "image/tiff",
	"image/png", "image/vnd.wap.wbmp",
	"application/vnd.wap.multipart.*",
	"application/vnd.wap.multipart.mixed",
	"application/vnd.wap.multipart.form-data",
	"application/vnd.wap.multipart.byteranges",
	"application/vnd.wap.multipart.alternative",
	"application/xml", "text/xml",
	"application/vnd.wap.wbxml",
	"application/x-x968-cross-cert",
	"application/x-x968-ca-cert",
	"application/x-x968-user-cert",
	"text/vnd.wap.si",
	"application/vnd.wap.sic",
	"text/vnd.wap.sl",
	"application/vnd.wap.slc",
	"text/vnd.wap.co",
	"application/vnd.wap.coc",
	"application/vnd.wap.multipart.related",
	"application/vnd.wap.sia",
	"text/vnd.wap.connectivity-xml",
	"application/vnd.wap.connectivity-wbxml",
	"application/pkcs7-mime",
	"application/vnd.wap.hashed-certificate",
	"application/vnd.wap.signed-certificate",
	"application/vnd.wap.cert-response",
	"application/xhtml+xml",
	"application/wml+xml",
	"text/css",
	"application/vnd.wap.mms-message",
	"application/vnd.wap.rollover-certificate",
	"application/vnd.wap.locc+wbxml",
	"application/vnd.wap.loc+xml",
	"application/vnd.syncml.dm+wbxml",
	"application/vnd.syncml.dm+xml",
	"application/vnd.syncml.notification",
	"application/vnd.wap.xhtml+xml",
	"application/vnd.wv.csp.cir",
	"application/vnd.oma.dd+xml",
	"application/vnd.oma.drm.message",
	"application/vnd.oma.drm.content",
	"application/vnd.oma.drm.rights+xml",
	"application/vnd.oma.drm.rights+wbxml",
}

// Registered content types outside the short-integer range.
var extendedContentTypes = map[uint32]string{
	0x0201: "application/vnd.uplanet.cacheop-wbxml",
	0x0202: "application/vnd.uplanet.signal",
	0x0203: "application/vnd.uplanet.alert-wbxml",
	0x0204: "application/vnd.uplanet.list-wbxml",
	0x0205: "application/vnd.uplanet.listcmd-wbxml",
	0x0206: "application/vnd.uplanet.channel-wbxml",
	0x0207: "application/vnd.uplanet.provisioning-status-uri",
	0x0208: "x-wap.multipart/vnd.uplanet.header-set",
	0x0209: "application/vnd.uplanet.bearer-choice-wbxml",
	0x020A: "application/vnd.phonecom.mmc-wbxml",
	0x020B: "application/vnd.nokia.syncset+wbxml",
	0x020C: "image/x-up-wpng",
	0x0300: "application/iota.mmc-wbxml",
	0x0301: "application/iota.mmc-xml",
	0x0302: "application/vnd.syncml+xml",
	0x0303: "application/vnd.syncml+wbxml",
	0x0304: "text/vnd.wap.emn+xml",
	0x0305: "text/calendar",
	0x0306: "application/vnd.omads-email+xml",
	0x0307: "application/vnd.omads-file+xml",
	0x0308: "application/vnd.omads-folder+xml",
	0x0309: "text/directory;profile=vCard",
	0x030A: "application/vnd.wap.emn+wbxml",
}

// ContentTypeName returns the registered name of a well-known content type.
func ContentTypeName(id uint32) (string, bool) {
	if int(id) < len(contentTypes) {
		return contentTypes[id], true
	}
	name, ok := extendedContentTypes[id]
	return name, ok
}

// ContentTypeID returns the assigned number of a registered content type name.
func ContentTypeID(name string) (uint32, bool) {
	for i, n := range contentTypes {
		if n == name {
			return uint32(i), true
		}
	}
	for id, n := range extendedContentTypes {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// Character sets by IANA MIBenum.
var charsets = map[uint32]string{
	0x00:   "*",
	0x03:   "us-ascii",
	0x04:   "iso-8859-1",
	0x05:   "iso-8859-2",
	0x06:   "iso-8859-3",
	0x07:   "iso-8859-4",
	0x08:   "iso-8859-5",
	0x09:   "iso-8859-6",
	0x0A:   "iso-8859-7",
	0x0B:   "iso-8859-8",
	0x0C:   "iso-8859-9",
	0x0D:   "iso-8859-10",
	0x11:   "shift_JIS",
	0x12:   "euc-jp",
	0x26:   "euc-kr",
	0x27:   "iso-2022-jp",
	0x6A:   "utf-8",
	0x6D:   "iso-8859-13",
	0x6E:   "iso-8859-14",
	0x6F:   "iso-8859-15",
	0x71:   "gbk",
	0x03E8: "iso-10646-ucs-2",
	0x03F7: "utf-16",
	0x07E9: "gb2312",
	0x07EA: "big5",
}

// CharsetName returns the name of a MIBenum, or "charset 0x.." for unregistered values.
func CharsetName(mib uint32) string {
	if name, ok := charsets[mib]; ok {
		return name
	}
	return fmt.Sprintf("charset 0x%x", mib)
}

// Well-known parameter tokens, WSP Table 38.
const (
	ParamQ                = 0x00
	ParamCharset          = 0x01
	ParamLevel            = 0x02
	ParamType             = 0x03
	ParamNameDefunct      = 0x05
	ParamFilenameDefunct  = 0x06
	ParamDifferences      = 0x07
	ParamPadding          = 0x08
	ParamContentType      = 0x09
	ParamStartDefunct     = 0x0A
	ParamStartInfoDefunct = 0x0B
	ParamCommentDefunct   = 0x0C
	ParamDomainDefunct    = 0x0D
	ParamMaxAge           = 0x0E
	ParamPathDefunct      = 0x0F
	ParamSecure           = 0x10
	ParamSec              = 0x11
	ParamMAC              = 0x12
	ParamCreationDate     = 0x13
	ParamModificationDate = 0x14
	ParamReadDate         = 0x15
	ParamSize             = 0x16
	ParamName             = 0x17
	ParamFilename         = 0x18
	ParamStart            = 0x19
	ParamStartInfo        = 0x1A
	ParamComment          = 0x1B
	ParamDomain           = 0x1C
	ParamPath             = 0x1D
)

var paramNames = map[uint64]string{
	ParamQ:                "q",
	ParamCharset:          "charset",
	ParamLevel:            "level",
	ParamType:             "type",
	ParamNameDefunct:      "name",
	ParamFilenameDefunct:  "filename",
	ParamDifferences:      "differences",
	ParamPadding:          "padding",
	ParamContentType:      "type",
	ParamStartDefunct:     "start",
	ParamStartInfoDefunct: "start-info",
	ParamCommentDefunct:   "comment",
	ParamDomainDefunct:    "domain",
	ParamMaxAge:           "max-age",
	ParamPathDefunct:      "path",
	ParamSecure:           "secure",
	ParamSec:              "sec",
	ParamMAC:              "mac",
	ParamCreationDate:     "creation-date",
	ParamModificationDate: "modification-date",
	ParamReadDate:         "read-date",
	ParamSize:             "size",
	ParamName:             "name",
	ParamFilename:         "filename",
	ParamStart:            "start",
	ParamStartInfo:        "start-info",
	ParamComment:          "comment",
	ParamDomain:           "domain",
	ParamPath:             "path",
}

// ParameterName returns the name of a well-known parameter token.
func ParameterName(token uint64) string {
	if name, ok := paramNames[token]; ok {
		return name
	}
	return fmt.Sprintf("param 0x%02x", token)
}
