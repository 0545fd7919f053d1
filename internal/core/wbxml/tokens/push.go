package tokens

// Service Indication 1.0
var SI = &Map{
	Name:     "SI 1.0",
	FormalID: "-//WAPFORUM//DTD SI 1.0//EN",
	Tags: Table{0: {
		0x05: "si",
		0x06: "indication",
		0x07: "info",
		0x08: "item",
	}},
	AttrStart: Table{0: {
		0x05: "action='signal-none'",
		0x06: "action='signal-low'",
		0x07: "action='signal-medium'",
		0x08: "action='signal-high'",
		0x09: "action='delete'",
		0x0a: "created",
		0x0b: "href",
		0x0c: "href='http://'",
		0x0d: "href='http://www.'",
		0x0e: "href='https://'",
		0x0f: "href='https://www.'",
		0x10: "si-expires",
		0x11: "si-id",
		0x12: "class",
	}},
	AttrValue: Table{0: domainValues},
	Codec:     dateCodec{attrs: map[string]bool{"created": true, "si-expires": true}},
}

// Service Loading 1.0
var SL = &Map{
	Name:     "SL 1.0",
	FormalID: "-//WAPFORUM//DTD SL 1.0//EN",
	Tags: Table{0: {
		0x05: "sl",
	}},
	AttrStart: Table{0: {
		0x05: "action='execute-low'",
		0x06: "action='execute-high'",
		0x07: "action='cache'",
		0x08: "href",
		0x09: "href='http://'",
		0x0a: "href='http://www.'",
		0x0b: "href='https://'",
		0x0c: "href='https://www.'",
	}},
	AttrValue: Table{0: domainValues},
}

// Cache Operation 1.0
var CO = &Map{
	Name:     "CO 1.0",
	FormalID: "-//WAPFORUM//DTD CO 1.0//EN",
	Tags: Table{0: {
		0x05: "co",
		0x06: "invalidate-object",
		0x07: "invalidate-service",
	}},
	AttrStart: Table{0: {
		0x05: "uri",
		0x06: "uri='http://'",
		0x07: "uri='http://www.'",
		0x08: "uri='https://'",
		0x09: "uri='https://www.'",
	}},
	AttrValue: Table{0: domainValues},
}

// E-mail Notification 1.0
var EMN = &Map{
	Name:     "EMN 1.0",
	FormalID: "-//WAPFORUM//DTD EMN 1.0//EN",
	Tags: Table{0: {
		0x05: "emn",
	}},
	AttrStart: Table{0: {
		0x05: "timestamp",
		0x06: "mailbox",
		0x07: "mailbox='mailat:'",
		0x08: "mailbox='pop://'",
		0x09: "mailbox='imap://'",
		0x0a: "mailbox='http://'",
		0x0b: "mailbox='http://www.'",
		0x0c: "mailbox='https://'",
		0x0d: "mailbox='https://www.'",
	}},
	AttrValue: Table{0: domainValues},
	Codec:     dateCodec{attrs: map[string]bool{"timestamp": true}},
}

// OMA DRM Rights Expression Language 1.0
var DRMREL = &Map{
	Name:     "DRMREL 1.0",
	FormalID: "-//OMA//DTD DRMREL 1.0//EN",
	Tags: Table{0: {
		0x05: "o-ex:rights",
		0x06: "o-ex:context",
		0x07: "o-dd:version",
		0x08: "o-dd:uid",
		0x09: "o-ex:agreement",
		0x0a: "o-ex:asset",
		0x0b: "ds:KeyInfo",
		0x0c: "ds:KeyValue",
		0x0d: "o-ex:permission",
		0x0e: "o-dd:play",
		0x0f: "o-dd:display",
		0x10: "o-dd:execute",
		0x11: "o-dd:print",
		0x12: "o-ex:constraint",
		0x13: "o-dd:count",
		0x14: "o-dd:datetime",
		0x15: "o-dd:start",
		0x16: "o-dd:end",
		0x17: "o-dd:interval",
	}},
	AttrStart: Table{0: {
		0x05: "xmlns:o-ex",
		0x06: "xmlns:o-dd",
		0x07: "xmlns:ds",
	}},
	AttrValue: Table{0: {
		0x85: "http://odrl.net/1.1/ODRL-EX",
		0x86: "http://odrl.net/1.1/ODRL-DD",
		0x87: "http://www.w3.org/2000/09/xmldsig#/",
	}},
	Codec: drmCodec{},
}
