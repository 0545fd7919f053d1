// Package core defines core types.
package core

// Labels represents key-value metadata attached by parsers and processors.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	// WSP connectionless push envelope
	LabelWSPTID         = "wsp.tid"
	LabelWSPPDUType     = "wsp.pdu_type"
	LabelWSPContentType = "wsp.content_type"
	LabelWSPAppID       = "wsp.app_id" // X-Wap-Application-Id, when present

	// MMS encapsulation
	LabelMMSMessageType   = "mms.message_type"
	LabelMMSTransactionID = "mms.transaction_id"
	LabelMMSVersion       = "mms.version"
	LabelMMSMessageID     = "mms.message_id"
	LabelMMSFrom          = "mms.from"
	LabelMMSTo            = "mms.to"
	LabelMMSStatus        = "mms.status"         // Response/Retrieve/Status value, whichever the PDU carries
	LabelMMSContentType   = "mms.content_type"   // Content-Type of the message body
	LabelMMSContentLoc    = "mms.content_location"
	LabelMMSCorrelated    = "mms.correlated_with" // Message type of the earlier PDU with the same Transaction-Id

	// WBXML
	LabelWBXMLVersion  = "wbxml.version"
	LabelWBXMLPublicID = "wbxml.public_id"
	LabelWBXMLCharset  = "wbxml.charset"
	LabelWBXMLRoot     = "wbxml.root" // Name of the first element
	LabelWBXMLMap      = "wbxml.map"  // Token map used for names

	// Decode diagnostics
	LabelDecodeError  = "decode.error"
	LabelDecodeFields = "decode.fields"
)
