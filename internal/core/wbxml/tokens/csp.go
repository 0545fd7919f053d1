package tokens

// Wireless Village client-server protocol. Code page 0 holds the common tags,
// page 1 the access service, page 3 the presence primitives.
var csp10Tags = Table{
	0: {
		0x05: "Acceptance",
		0x06: "AddList",
		0x07: "AddNickList",
		0x08: "SName",
		0x09: "WV-CSP-Message",
		0x0a: "ClientID",
		0x0b: "Code",
		0x0c: "ContactList",
		0x0d: "ContentData",
		0x0e: "ContentEncoding",
		0x0f: "ContentSize",
		0x10: "ContentType",
		0x11: "DateTime",
		0x12: "Description",
		0x13: "DetailedResult",
		0x14: "EntityList",
		0x15: "Group",
		0x16: "GroupID",
		0x17: "GroupList",
		0x18: "InUse",
		0x19: "Logo",
		0x1a: "MessageCount",
		0x1b: "MessageID",
		0x1c: "MessageURI",
		0x1d: "MSISDN",
		0x1e: "Name",
		0x1f: "NickList",
		0x20: "NickName",
		0x21: "Poll",
		0x22: "Presence",
		0x23: "PresenceSubList",
		0x24: "PresenceValue",
		0x25: "Property",
		0x26: "Qualifier",
		0x27: "Recipient",
		0x28: "RemoveList",
		0x29: "RemoveNickList",
		0x2a: "Result",
		0x2b: "ScreenName",
		0x2c: "Sender",
		0x2d: "Session",
		0x2e: "SessionDescriptor",
		0x2f: "SessionID",
		0x30: "SessionType",
		0x31: "Status",
		0x32: "Transaction",
		0x33: "TransactionContent",
		0x34: "TransactionDescriptor",
		0x35: "TransactionID",
		0x36: "TransactionMode",
		0x37: "URL",
		0x38: "URLList",
		0x39: "User",
		0x3a: "UserID",
		0x3b: "UserList",
		0x3c: "Validity",
		0x3d: "Value",
		0x3e: "WV-CSP-NSDiscriminator",
	},
	1: {
		0x05: "AllFunctions",
		0x06: "AllFunctionsRequest",
		0x07: "CancelInvite-Request",
		0x08: "CancelInviteUser-Request",
		0x09: "Capability",
		0x0a: "CapabilityList",
		0x0b: "CapabilityRequest",
		0x0c: "ClientCapability-Request",
		0x0d: "ClientCapability-Response",
		0x0e: "DigestBytes",
		0x0f: "DigestSchema",
		0x10: "Disconnect",
		0x11: "Functions",
		0x12: "GetSPInfo-Request",
		0x13: "GetSPInfo-Response",
		0x14: "InviteID",
		0x15: "InviteNote",
		0x16: "Invite-Request",
		0x17: "Invite-Response",
		0x18: "InviteType",
		0x19: "InviteUser-Request",
		0x1a: "InviteUser-Response",
		0x1b: "KeepAlive-Request",
		0x1c: "KeepAliveTime",
		0x1d: "Login-Request",
		0x1e: "Login-Response",
		0x1f: "Logout-Request",
		0x20: "Nonce",
		0x21: "Password",
		0x22: "Polling-Request",
		0x23: "ResponseNote",
		0x24: "SearchElement",
		0x25: "SearchFindings",
		0x26: "SearchID",
		0x27: "SearchIndex",
		0x28: "SearchLimit",
		0x29: "KeepAlive-Response",
		0x2a: "SearchPairList",
		0x2b: "Search-Request",
		0x2c: "Search-Response",
		0x2d: "SearchResult",
		0x2e: "Service-Request",
		0x2f: "Service-Response",
		0x30: "SessionCookie",
		0x31: "StopSearch-Request",
		0x32: "TimeToLive",
	},
	3: {
		0x05: "Accuracy",
		0x06: "Address",
		0x07: "AddrPref",
		0x08: "Alias",
		0x09: "Altitude",
		0x0a: "Building",
		0x0b: "Caddr",
		0x0c: "City",
		0x0d: "ClientInfo",
		0x0e: "ClientProducer",
		0x0f: "ClientType",
		0x10: "ClientVersion",
		0x11: "CommC",
		0x12: "CommCap",
		0x13: "ContactInfo",
		0x14: "ContainedvCard",
		0x15: "Country",
		0x16: "Crossing1",
		0x17: "Crossing2",
		0x18: "DevManufacturer",
		0x19: "DirectContent",
		0x1a: "FreeTextLocation",
		0x1b: "GeoLocation",
		0x1c: "Language",
		0x1d: "Latitude",
		0x1e: "Longitude",
		0x1f: "Model",
		0x20: "NamedArea",
		0x21: "OnlineStatus",
		0x22: "PLMN",
		0x23: "PrefC",
		0x24: "PreferredContacts",
		0x25: "PreferredLanguage",
		0x26: "PreferredContent",
		0x27: "PreferredvCard",
		0x28: "Registration",
		0x29: "StatusContent",
		0x2a: "StatusMood",
		0x2b: "StatusText",
		0x2c: "Street",
		0x2d: "TimeZone",
		0x2e: "UserAvailability",
	},
}

// 1.1 extends the common and access pages.
var csp11Tags = merge(csp10Tags, Table{
	0: {
		0x3f: "Variant",
		0x40: "Verifykey",
	},
	1: {
		0x33: "SearchString",
		0x34: "CompletionFlag",
		0x38: "ReceiveList",
		0x39: "VerifyID-Request",
		0x3a: "Extended-Request",
		0x3b: "Extended-Response",
		0x3c: "AgreedCapabilityList",
		0x3d: "Extended-Data",
		0x3e: "OtherServer",
		0x3f: "PresenceAttributeNSName",
		0x40: "SessionNSName",
		0x41: "TransactionNSName",
	},
})

var cspAttrStart = Table{0: {
	0x05: "xmlns='http://www.wireless-village.org/CSP'",
	0x06: "xmlns='http://www.wireless-village.org/PA'",
	0x07: "xmlns='http://www.wireless-village.org/TRC'",
}}

var cspAttrValue = Table{0: {
	0x85: "http://www.wireless-village.org/CSP",
	0x86: "http://www.wireless-village.org/PA",
	0x87: "http://www.wireless-village.org/TRC",
}}

// Values addressed by EXT_T_0 in CSP documents.
var cspCommonValues = map[uint32]string{
	0x00: "AccessType",
	0x01: "ActiveUsers",
	0x02: "Admin",
	0x03: "application/",
	0x04: "application/vnd.wap.mms-message",
	0x05: "application/x-sms",
	0x06: "AutoJoin",
	0x07: "BASE64",
	0x08: "Closed",
	0x09: "Default",
	0x0a: "DisplayName",
	0x0b: "F",
	0x0c: "G",
	0x0d: "GR",
	0x0e: "http://",
	0x0f: "https://",
	0x10: "image/",
	0x11: "Inband",
	0x12: "IM",
	0x13: "MaxActiveUsers",
	0x14: "Mod",
	0x15: "Name",
	0x16: "None",
	0x17: "N",
	0x18: "Open",
	0x19: "Outband",
	0x1a: "PR",
	0x1b: "Private",
	0x1c: "PrivateMessaging",
	0x1d: "PrivilegeLevel",
	0x1e: "Public",
	0x1f: "P",
	0x20: "Request",
	0x21: "Response",
	0x22: "Restricted",
	0x23: "ScreenName",
	0x24: "Searchable",
	0x25: "S",
	0x26: "SC",
	0x27: "text/",
	0x28: "text/plain",
	0x29: "text/x-vCalendar",
	0x2a: "text/x-vCard",
	0x2b: "Topic",
	0x2c: "T",
	0x2d: "Type",
	0x2e: "U",
	0x2f: "US",
	0x30: "www.wireless-village.org",
}

// Elements whose OPAQUE content is a big-endian integer.
var cspIntegerTags = map[string]bool{
	"Code":           true,
	"ContentSize":    true,
	"MessageCount":   true,
	"Validity":       true,
	"KeepAliveTime":  true,
	"TimeToLive":     true,
	"SearchFindings": true,
	"SearchIndex":    true,
	"SearchLimit":    true,
	"Accuracy":       true,
	"Altitude":       true,
}

var (
	CSP10 = &Map{
		Name:      "WV-CSP 1.0",
		FormalID:  "-//WIRELESSVILLAGE//DTD CSP 1.0//EN",
		Tags:      csp10Tags,
		AttrStart: cspAttrStart,
		AttrValue: cspAttrValue,
		Codec:     cspCodec{},
	}
	CSP11 = &Map{
		Name:      "WV-CSP 1.1",
		FormalID:  "-//OMA//DTD WV-CSP 1.1//EN",
		Tags:      csp11Tags,
		AttrStart: cspAttrStart,
		AttrValue: cspAttrValue,
		Codec:     cspCodec{},
	}
)
