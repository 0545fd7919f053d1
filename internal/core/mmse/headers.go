package mmse

import "fmt"

// Header field tags of the MMS encapsulation, OMA-MMS-ENC 1.0 to 1.3.
const (
	TagBcc                          byte = 0x81
	TagCc                           byte = 0x82
	TagContentLocation              byte = 0x83
	TagContentType                  byte = 0x84
	TagDate                         byte = 0x85
	TagDeliveryReport               byte = 0x86
	TagDeliveryTime                 byte = 0x87
	TagExpiry                       byte = 0x88
	TagFrom                         byte = 0x89
	TagMessageClass                 byte = 0x8a
	TagMessageID                    byte = 0x8b
	TagMessageType                  byte = 0x8c
	TagMMSVersion                   byte = 0x8d
	TagMessageSize                  byte = 0x8e
	TagPriority                     byte = 0x8f
	TagReadReply                    byte = 0x90 // X-Mms-Read-Report from MMS 1.1
	TagReportAllowed                byte = 0x91
	TagResponseStatus               byte = 0x92
	TagResponseText                 byte = 0x93
	TagSenderVisibility             byte = 0x94
	TagStatus                       byte = 0x95
	TagSubject                      byte = 0x96
	TagTo                           byte = 0x97
	TagTransactionID                byte = 0x98
	TagRetrieveStatus               byte = 0x99
	TagRetrieveText                 byte = 0x9a
	TagReadStatus                   byte = 0x9b
	TagReplyCharging                byte = 0x9c
	TagReplyChargingDeadline        byte = 0x9d
	TagReplyChargingID              byte = 0x9e
	TagReplyChargingSize            byte = 0x9f
	TagPreviouslySentBy             byte = 0xa0
	TagPreviouslySentDate           byte = 0xa1
	TagStore                        byte = 0xa2
	TagMMState                      byte = 0xa3
	TagMMFlags                      byte = 0xa4
	TagStoreStatus                  byte = 0xa5
	TagStoreStatusText              byte = 0xa6
	TagStored                       byte = 0xa7
	TagAttributes                   byte = 0xa8
	TagTotals                       byte = 0xa9
	TagMboxTotals                   byte = 0xaa
	TagQuotas                       byte = 0xab
	TagMboxQuotas                   byte = 0xac
	TagMessageCount                 byte = 0xad
	TagContent                      byte = 0xae
	TagStart                        byte = 0xaf
	TagAdditionalHeaders            byte = 0xb0
	TagDistributionIndicator        byte = 0xb1
	TagElementDescriptor            byte = 0xb2
	TagLimit                        byte = 0xb3
	TagRecommendedRetrievalMode     byte = 0xb4
	TagRecommendedRetrievalModeText byte = 0xb5
	TagStatusText                   byte = 0xb6
	TagApplicID                     byte = 0xb7
	TagReplyApplicID                byte = 0xb8
	TagAuxApplicInfo                byte = 0xb9
	TagContentClass                 byte = 0xba
	TagDRMContent                   byte = 0xbb
	TagAdaptationAllowed            byte = 0xbc
	TagReplaceID                    byte = 0xbd
	TagCancelID                     byte = 0xbe
	TagCancelStatus                 byte = 0xbf
)

// X-Mms-MMS-Version values, short-integer encoded.
const (
	Version10 byte = 0x90
	Version11 byte = 0x91
	Version12 byte = 0x92
	Version13 byte = 0x93

	// DefaultVersion is assumed until an X-Mms-MMS-Version header is seen. It sorts
	// below every real version and is treated as MMS 1.0.
	DefaultVersion byte = 0x80
)

// PDU types carried by X-Mms-Message-Type.
const (
	SendReq         byte = 0x80
	SendConf        byte = 0x81
	NotificationInd byte = 0x82
	NotifyRespInd   byte = 0x83
	RetrieveConf    byte = 0x84
	AcknowledgeInd  byte = 0x85
	DeliveryInd     byte = 0x86
	ReadRecInd      byte = 0x87
	ReadOrigInd     byte = 0x88
	ForwardReq      byte = 0x89
	ForwardConf     byte = 0x8a
	MboxStoreReq    byte = 0x8b
	MboxStoreConf   byte = 0x8c
	MboxViewReq     byte = 0x8d
	MboxViewConf    byte = 0x8e
	MboxUploadReq   byte = 0x8f
	MboxUploadConf  byte = 0x90
	MboxDeleteReq   byte = 0x91
	MboxDeleteConf  byte = 0x92
	MboxDescr       byte = 0x93
	DeleteReq       byte = 0x94
	DeleteConf      byte = 0x95
	CancelReq       byte = 0x96
	CancelConf      byte = 0x97
)

var messageTypes = map[byte]string{
	SendReq:         "m-send-req",
	SendConf:        "m-send-conf",
	NotificationInd: "m-notification-ind",
	NotifyRespInd:   "m-notifyresp-ind",
	RetrieveConf:    "m-retrieve-conf",
	AcknowledgeInd:  "m-acknowledge-ind",
	DeliveryInd:     "m-delivery-ind",
	ReadRecInd:      "m-read-rec-ind",
	ReadOrigInd:     "m-read-orig-ind",
	ForwardReq:      "m-forward-req",
	ForwardConf:     "m-forward-conf",
	MboxStoreReq:    "m-mbox-store-req",
	MboxStoreConf:   "m-mbox-store-conf",
	MboxViewReq:     "m-mbox-view-req",
	MboxViewConf:    "m-mbox-view-conf",
	MboxUploadReq:   "m-mbox-upload-req",
	MboxUploadConf:  "m-mbox-upload-conf",
	MboxDeleteReq:   "m-mbox-delete-req",
	MboxDeleteConf:  "m-mbox-delete-conf",
	MboxDescr:       "m-mbox-descr",
	DeleteReq:       "m-delete-req",
	DeleteConf:      "m-delete-conf",
	CancelReq:       "m-cancel-req",
	CancelConf:      "m-cancel-conf",
}

// MessageTypeName returns the PDU type name, or "Unknown type N".
func MessageTypeName(t byte) string {
	if name, ok := messageTypes[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown type %d", t)
}

var (
	yesNo = map[byte]string{0x80: "Yes", 0x81: "No"}

	messageClasses = map[byte]string{
		0x80: "Personal",
		0x81: "Advertisement",
		0x82: "Informational",
		0x83: "Auto",
	}

	priorities = map[byte]string{0x80: "Low", 0x81: "Normal", 0x82: "High"}

	senderVisibilities = map[byte]string{0x80: "Hide", 0x81: "Show"}

	responseStatuses = map[byte]string{
		0x80: "Ok",
		0x81: "Error-unspecified",
		0x82: "Error-service-denied",
		0x83: "Error-message-format-corrupt",
		0x84: "Error-sending-address-unresolved",
		0x85: "Error-message-not-found",
		0x86: "Error-network-problem",
		0x87: "Error-content-not-accepted",
		0x88: "Error-unsupported-message",
		0xc0: "Error-transient-failure",
		0xc1: "Error-transient-sending-address-unresolved",
		0xc2: "Error-transient-message-not-found",
		0xc3: "Error-transient-network-problem",
		0xc4: "Error-transient-partial-success",
		0xe0: "Error-permanent-failure",
		0xe1: "Error-permanent-service-denied",
		0xe2: "Error-permanent-message-format-corrupt",
		0xe3: "Error-permanent-sending-address-unresolved",
		0xe4: "Error-permanent-message-not-found",
		0xe5: "Error-permanent-content-not-accepted",
		0xe6: "Error-permanent-reply-charging-limitations-not-met",
		0xe7: "Error-permanent-reply-charging-request-not-accepted",
		0xe8: "Error-permanent-reply-charging-forwarding-denied",
		0xe9: "Error-permanent-reply-charging-not-supported",
		0xea: "Error-permanent-address-hiding-not-supported",
		0xeb: "Error-permanent-lack-of-prepaid",
	}

	statuses = map[byte]string{
		0x80: "Expired",
		0x81: "Retrieved",
		0x82: "Rejected",
		0x83: "Deferred",
		0x84: "Unrecognised",
		0x85: "Indeterminate",
		0x86: "Forwarded",
		0x87: "Unreachable",
	}

	retrieveStatuses = map[byte]string{
		0x80: "Ok",
		0xc0: "Error-transient-failure",
		0xc1: "Error-transient-message-not-found",
		0xc2: "Error-transient-network-problem",
		0xe0: "Error-permanent-failure",
		0xe1: "Error-permanent-service-denied",
		0xe2: "Error-permanent-message-not-found",
		0xe3: "Error-permanent-content-unsupported",
	}

	readStatuses = map[byte]string{0x80: "Read", 0x81: "Deleted without being read"}

	replyChargings = map[byte]string{
		0x80: "Requested",
		0x81: "Requested text only",
		0x82: "Accepted",
		0x83: "Accepted text only",
	}

	mmStates = map[byte]string{
		0x80: "Draft",
		0x81: "Sent",
		0x82: "New",
		0x83: "Retrieved",
		0x84: "Forwarded",
	}

	storeStatuses = map[byte]string{
		0x80: "Success",
		0xc0: "Error-transient-failure",
		0xc1: "Error-transient-network-problem",
		0xe0: "Error-permanent-failure",
		0xe1: "Error-permanent-service-denied",
		0xe2: "Error-permanent-message-format-corrupt",
		0xe3: "Error-permanent-message-not-found",
		0xe4: "Error-permanent-mmbox-full",
	}

	retrievalModes = map[byte]string{0x80: "Manual"}

	contentClasses = map[byte]string{
		0x80: "text",
		0x81: "image-basic",
		0x82: "image-rich",
		0x83: "video-basic",
		0x84: "video-rich",
		0x85: "megapixel",
		0x86: "content-basic",
		0x87: "content-rich",
	}

	cancelStatuses = map[byte]string{
		0x80: "Cancel request successfully received",
		0x81: "Cancel request corrupted",
	}

	flagActions = map[byte]string{0x80: "Add", 0x81: "Remove", 0x82: "Filter"}

	mboxUnits = map[byte]string{0x80: "messages", 0x81: "bytes"}

	timeTokens = map[byte]string{absoluteToken: "Absolute", 0x81: "Relative"}
)

// absoluteToken marks a date in time headers; every other token is relative.
const absoluteToken byte = 0x80
