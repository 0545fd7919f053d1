package mmse

import (
	"fmt"
	"time"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
)

// HeaderFieldGrammar decodes the value of one header field.
//
// DecodeValue reads the value starting at off and returns it as a field (name and byte
// range are filled in by the caller) together with the number of value bytes. Recoverable
// problems are reported on the returned field's Err. A non-nil error means the value could
// not be decoded at all; n then covers the bytes that can safely be skipped.
type HeaderFieldGrammar interface {
	DecodeValue(buf []byte, off int) (f core.Field, n int, err error)
}

// headerDef binds a tag to its field name, display name and grammar.
type headerDef struct {
	name    string
	display string
	grammar HeaderFieldGrammar
}

var headerDefs = map[byte]headerDef{
	TagBcc:                          {"bcc", "Bcc", encodedString{}},
	TagCc:                           {"cc", "Cc", encodedString{}},
	TagContentLocation:              {"content_location", "X-Mms-Content-Location", textString{}},
	TagDate:                         {"date", "Date", dateValue{}},
	TagDeliveryReport:               {"delivery_report", "X-Mms-Delivery-Report", enum(yesNo)},
	TagDeliveryTime:                 {"delivery_time", "X-Mms-Delivery-Time", timeValue{}},
	TagExpiry:                       {"expiry", "X-Mms-Expiry", timeValue{}},
	TagFrom:                         {"from", "From", fromValue{}},
	TagMessageClass:                 {"message_class", "X-Mms-Message-Class", enumOrText(messageClasses)},
	TagMessageID:                    {"message_id", "Message-ID", textString{}},
	TagMessageType:                  {"message_type", "X-Mms-Message-Type", enum(messageTypes)},
	TagMMSVersion:                   {"mms_version", "X-Mms-MMS-Version", versionValue{}},
	TagMessageSize:                  {"message_size", "X-Mms-Message-Size", longInteger{}},
	TagPriority:                     {"priority", "X-Mms-Priority", enum(priorities)},
	TagReadReply:                    {"read_reply", "X-Mms-Read-Reply", enum(yesNo)},
	TagReportAllowed:                {"report_allowed", "X-Mms-Report-Allowed", enum(yesNo)},
	TagResponseStatus:               {"response_status", "X-Mms-Response-Status", enum(responseStatuses)},
	TagResponseText:                 {"response_text", "X-Mms-Response-Text", encodedString{}},
	TagSenderVisibility:             {"sender_visibility", "X-Mms-Sender-Visibility", enum(senderVisibilities)},
	TagStatus:                       {"status", "X-Mms-Status", enum(statuses)},
	TagSubject:                      {"subject", "Subject", encodedString{}},
	TagTo:                           {"to", "To", encodedString{}},
	TagTransactionID:                {"transaction_id", "X-Mms-Transaction-Id", textString{}},
	TagRetrieveStatus:               {"retrieve_status", "X-Mms-Retrieve-Status", enum(retrieveStatuses)},
	TagRetrieveText:                 {"retrieve_text", "X-Mms-Retrieve-Text", encodedString{}},
	TagReadStatus:                   {"read_status", "X-Mms-Read-Status", enum(readStatuses)},
	TagReplyCharging:                {"reply_charging", "X-Mms-Reply-Charging", enum(replyChargings)},
	TagReplyChargingDeadline:        {"reply_charging_deadline", "X-Mms-Reply-Charging-Deadline", timeValue{}},
	TagReplyChargingID:              {"reply_charging_id", "X-Mms-Reply-Charging-ID", textString{}},
	TagReplyChargingSize:            {"reply_charging_size", "X-Mms-Reply-Charging-Size", longInteger{}},
	TagPreviouslySentBy:             {"previously_sent_by", "X-Mms-Previously-Sent-By", previouslySentBy{}},
	TagPreviouslySentDate:           {"previously_sent_date", "X-Mms-Previously-Sent-Date", previouslySentDate{}},
	TagStore:                        {"store", "X-Mms-Store", enum(yesNo)},
	TagMMState:                      {"mm_state", "X-Mms-MM-State", enum(mmStates)},
	TagMMFlags:                      {"mm_flags", "X-Mms-MM-Flags", mmFlags{}},
	TagStoreStatus:                  {"store_status", "X-Mms-Store-Status", enum(storeStatuses)},
	TagStoreStatusText:              {"store_status_text", "X-Mms-Store-Status-Text", encodedString{}},
	TagStored:                       {"stored", "X-Mms-Stored", enum(yesNo)},
	TagAttributes:                   {"attributes", "X-Mms-Attributes", attributeName{}},
	TagTotals:                       {"totals", "X-Mms-Totals", enum(yesNo)},
	TagMboxTotals:                   {"mbox_totals", "X-Mms-Mbox-Totals", mboxCount{}},
	TagQuotas:                       {"quotas", "X-Mms-Quotas", enum(yesNo)},
	TagMboxQuotas:                   {"mbox_quotas", "X-Mms-Mbox-Quotas", mboxCount{}},
	TagMessageCount:                 {"message_count", "X-Mms-Message-Count", integerValue{}},
	TagStart:                        {"start", "X-Mms-Start", integerValue{}},
	TagDistributionIndicator:        {"distribution_indicator", "X-Mms-Distribution-Indicator", enum(yesNo)},
	TagElementDescriptor:            {"element_descriptor", "X-Mms-Element-Descriptor", elementDescriptor{}},
	TagLimit:                        {"limit", "X-Mms-Limit", integerValue{}},
	TagRecommendedRetrievalMode:     {"recommended_retrieval_mode", "X-Mms-Recommended-Retrieval-Mode", enum(retrievalModes)},
	TagRecommendedRetrievalModeText: {"recommended_retrieval_mode_text", "X-Mms-Recommended-Retrieval-Mode-Text", encodedString{}},
	TagStatusText:                   {"status_text", "X-Mms-Status-Text", encodedString{}},
	TagApplicID:                     {"applic_id", "X-Mms-Applic-ID", textString{}},
	TagReplyApplicID:                {"reply_applic_id", "X-Mms-Reply-Applic-ID", textString{}},
	TagAuxApplicInfo:                {"aux_applic_info", "X-Mms-Aux-Applic-Info", textString{}},
	TagContentClass:                 {"content_class", "X-Mms-Content-Class", enum(contentClasses)},
	TagDRMContent:                   {"drm_content", "X-Mms-DRM-Content", enum(yesNo)},
	TagAdaptationAllowed:            {"adaptation_allowed", "X-Mms-Adaptation-Allowed", enum(yesNo)},
	TagReplaceID:                    {"replace_id", "X-Mms-Replace-ID", textString{}},
	TagCancelID:                     {"cancel_id", "X-Mms-Cancel-ID", textString{}},
	TagCancelStatus:                 {"cancel_status", "X-Mms-Cancel-Status", enum(cancelStatuses)},
}

var readReport = headerDef{"read_report", "X-Mms-Read-Report", enum(yesNo)}

// grammarFor returns the definition of tag under the given MMS version. It is the only
// place where the protocol version changes what a tag means.
func grammarFor(tag, version byte) (headerDef, bool) {
	if tag == TagReadReply && version >= Version11 {
		return readReport, true
	}
	d, ok := headerDefs[tag]
	return d, ok
}

// HeaderName returns the display name of tag under version, or "" for unassigned tags.
func HeaderName(tag, version byte) string {
	d, ok := grammarFor(tag, version)
	if !ok {
		if tag == TagContentType {
			return "Content-Type"
		}
		return ""
	}
	return d.display
}

// textString is a Text-string.
type textString struct{}

func (textString) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	s, n, err := wap.ReadTextString(buf, off)
	if err != nil {
		return core.Field{}, n, err
	}
	return core.NewString("", off, n, s), n, nil
}

// encodedString is an Encoded-string-value. A charset other than the default is kept
// as a child field.
type encodedString struct{}

func (encodedString) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	es, n, err := wap.ReadEncodedStringValue(buf, off)
	if err != nil {
		return core.Field{}, n, err
	}
	f := core.NewString("", off, n, es.Text)
	if es.Charset != 0 {
		// The charset octet follows the Value-length.
		_, ln, _ := wap.ReadValueLength(buf, off)
		f.Children = []core.Field{core.NewEnum("charset", off+ln, 1, uint64(es.Charset), wap.CharsetName(es.Charset))}
	}
	return f, n, nil
}

// longInteger is a Long-integer.
type longInteger struct{}

func (longInteger) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	v, n, err := wap.ReadLongInteger(buf, off)
	if err != nil && !isFieldLocal(err) {
		return core.Field{}, n, err
	}
	return core.NewUint("", off, n, v).WithErr(err), n, nil
}

// integerValue is a Short-integer or Long-integer.
type integerValue struct{}

func (integerValue) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	v, n, err := wap.ReadIntegerValue(buf, off)
	if err != nil && !isFieldLocal(err) {
		return core.Field{}, n, err
	}
	return core.NewUint("", off, n, v).WithErr(err), n, nil
}

// dateValue is a Long-integer of seconds since the Unix epoch.
type dateValue struct{}

func (dateValue) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	v, n, err := wap.ReadLongInteger(buf, off)
	if err != nil {
		if isFieldLocal(err) {
			return core.NewUint("", off, n, v).WithErr(err), n, nil
		}
		return core.Field{}, n, err
	}
	return core.NewTime("", off, n, time.Unix(int64(v), 0)), n, nil
}

// enumGrammar is a single octet looked up in a value table.
type enumGrammar struct {
	values    map[byte]string
	allowText bool
}

func enum(values map[byte]string) HeaderFieldGrammar { return enumGrammar{values: values} }

// enumOrText also accepts a Token-text in place of the octet.
func enumOrText(values map[byte]string) HeaderFieldGrammar {
	return enumGrammar{values: values, allowText: true}
}

func (g enumGrammar) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	if off >= len(buf) {
		return core.Field{}, 0, core.ErrTruncated
	}
	b := buf[off]
	if g.allowText && b >= 0x20 && b < 0x80 {
		return textString{}.DecodeValue(buf, off)
	}
	name, ok := g.values[b]
	if !ok {
		name = fmt.Sprintf("Unknown value 0x%02x", b)
	}
	f := core.NewEnum("", off, 1, uint64(b), name)
	if b&0x80 == 0 {
		f = f.WithErr(core.ErrMalformedHeader)
	}
	return f, 1, nil
}

// versionValue is a Version-value, rendered as "major.minor".
type versionValue struct{}

func (versionValue) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	s, n, err := wap.ReadVersionValue(buf, off)
	if err != nil {
		return core.Field{}, n, err
	}
	if buf[off]&0x80 != 0 {
		return core.NewEnum("", off, n, uint64(buf[off]), s), n, nil
	}
	return core.NewString("", off, n, s), n, nil
}

// attributeName is a Short-integer naming another header field.
type attributeName struct{}

func (attributeName) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	v, n, err := wap.ReadShortInteger(buf, off)
	if err != nil {
		return core.Field{}, n, err
	}
	tag := v | 0x80
	name := HeaderName(tag, Version13)
	if name == "" {
		name = fmt.Sprintf("Unknown field 0x%02x", tag)
	}
	return core.NewEnum("", off, n, uint64(tag), name), n, nil
}

// lengthPrefixed reads a Value-length and returns the bounds of the value that follows.
// The returned buffer ends where the value ends, so sub-readers cannot overrun it.
func lengthPrefixed(buf []byte, off int) (bounded []byte, body, end int, err error) {
	l, ln, err := wap.ReadValueLength(buf, off)
	if err != nil {
		return nil, off + ln, off + ln, err
	}
	end = off + ln + int(l)
	if end > len(buf) || end < off {
		return nil, off + ln, len(buf), core.ErrTruncated
	}
	return buf[:end], off + ln, end, nil
}

// timeValue is Value-length, an absolute (0x80) or relative (any other) token and
// a Long-integer: a Unix date or a number of seconds.
type timeValue struct{}

func (timeValue) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	if body >= end {
		return core.Field{}, end - off, core.ErrMalformedHeader
	}
	token := b[body]
	v, n, err := wap.ReadLongInteger(b, body+1)
	if err != nil && !isFieldLocal(err) {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	var f core.Field
	if token == absoluteToken {
		f = core.NewTime("", off, end-off, time.Unix(int64(v), 0))
		f.Children = []core.Field{
			core.NewEnum("token", body, 1, uint64(token), timeTokens[token]),
			core.NewTime("absolute", body+1, n, time.Unix(int64(v), 0)),
		}
		return f.WithErr(err), end - off, nil
	}
	// Any other token is relative.
	name, ok := timeTokens[token]
	if !ok {
		name = fmt.Sprintf("Relative (0x%02x)", token)
	}
	f = core.NewUint("", off, end-off, v).WithText(fmt.Sprintf("%d seconds", v))
	f.Children = []core.Field{
		core.NewEnum("token", body, 1, uint64(token), name),
		core.NewUint("relative", body+1, n, v),
	}
	return f.WithErr(err), end - off, nil
}

// fromValue is Value-length followed by Address-present-token (0x80) and an
// Encoded-string-value, or Insert-address-token (0x81).
type fromValue struct{}

func (fromValue) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	if body >= end {
		return core.Field{}, end - off, core.ErrMalformedHeader
	}
	switch b[body] {
	case 0x80:
		es, n, err := wap.ReadEncodedStringValue(b, body+1)
		if err != nil {
			return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
		}
		f := core.NewString("", off, end-off, es.Text)
		f.Children = []core.Field{
			core.NewEnum("token", body, 1, 0x80, "Address-present"),
			core.NewString("address", body+1, n, es.Text),
		}
		return f, end - off, nil
	case 0x81:
		f := core.NewString("", off, end-off, "").WithText("<insert-address>")
		f.Children = []core.Field{core.NewEnum("token", body, 1, 0x81, "Insert-address")}
		return f, end - off, nil
	}
	return core.Field{}, end - off, core.ErrMalformedHeader
}

// previouslySentBy is Value-length, a forwarded count Integer-value and an
// Encoded-string-value address.
type previouslySentBy struct{}

func (previouslySentBy) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	count, cn, err := wap.ReadIntegerValue(b, body)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	es, an, err := wap.ReadEncodedStringValue(b, body+cn)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	f := core.NewString("", off, end-off, es.Text).WithText(fmt.Sprintf("%s (%d)", es.Text, count))
	f.Children = []core.Field{
		core.NewUint("forwarded_count", body, cn, count),
		core.NewString("address", body+cn, an, es.Text),
	}
	return f, end - off, nil
}

// previouslySentDate is Value-length, a forwarded count Integer-value and a date.
type previouslySentDate struct{}

func (previouslySentDate) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	count, cn, err := wap.ReadIntegerValue(b, body)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	v, dn, err := wap.ReadLongInteger(b, body+cn)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	date := time.Unix(int64(v), 0)
	f := core.NewTime("", off, end-off, date)
	f.Children = []core.Field{
		core.NewUint("forwarded_count", body, cn, count),
		core.NewTime("date", body+cn, dn, date),
	}
	return f, end - off, nil
}

// mmFlags is Value-length, an add/remove/filter token and an Encoded-string-value keyword.
type mmFlags struct{}

func (mmFlags) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	if body >= end {
		return core.Field{}, end - off, core.ErrMalformedHeader
	}
	action, ok := flagActions[b[body]]
	if !ok {
		return core.Field{}, end - off, core.ErrMalformedHeader
	}
	es, n, err := wap.ReadEncodedStringValue(b, body+1)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	f := core.NewString("", off, end-off, es.Text).WithText(action + ": " + es.Text)
	f.Children = []core.Field{
		core.NewEnum("action", body, 1, uint64(b[body]), action),
		core.NewString("keyword", body+1, n, es.Text),
	}
	return f, end - off, nil
}

// mboxCount is Value-length, a messages (0x80) or bytes (0x81) token and an Integer-value.
type mboxCount struct{}

func (mboxCount) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	if body >= end {
		return core.Field{}, end - off, core.ErrMalformedHeader
	}
	unit, ok := mboxUnits[b[body]]
	if !ok {
		return core.Field{}, end - off, core.ErrMalformedHeader
	}
	v, n, err := wap.ReadIntegerValue(b, body+1)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	f := core.NewUint("", off, end-off, v).WithText(fmt.Sprintf("%d %s", v, unit))
	f.Children = []core.Field{
		core.NewEnum("unit", body, 1, uint64(b[body]), unit),
		core.NewUint("count", body+1, n, v),
	}
	return f, end - off, nil
}

// elementDescriptor is Value-length, a content reference Text-string and parameters
// whose only registered name is type (0x89) with a constrained media type value.
type elementDescriptor struct{}

func (elementDescriptor) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	b, body, end, err := lengthPrefixed(buf, off)
	if err != nil {
		return core.Field{}, end - off, err
	}
	ref, rn, err := wap.ReadTextString(b, body)
	if err != nil {
		return core.Field{}, end - off, fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)
	}
	f := core.NewString("", off, end-off, ref)
	f.Children = []core.Field{core.NewString("content_reference", body, rn, ref)}
	text := ref
	for pos := body + rn; pos < end; {
		start := pos
		var name string
		if b[pos]&0x80 != 0 {
			if b[pos] == 0x89 {
				name = "type"
			} else {
				name = fmt.Sprintf("param 0x%02x", b[pos]&0x7f)
			}
			pos++
		} else {
			s, n, err := wap.ReadTextString(b, pos)
			if err != nil {
				f.Children = append(f.Children, core.NewBytes("parameter", start, end-start, b[start:end]).WithErr(core.ErrMalformedHeader))
				break
			}
			name = s
			pos += n
		}
		var value string
		if pos < end && b[pos]&0x80 != 0 {
			id := uint32(b[pos] & 0x7f)
			if mt, ok := wap.ContentTypeName(id); ok {
				value = mt
			} else {
				value = fmt.Sprintf("0x%02x", id)
			}
			pos++
		} else {
			s, n, err := wap.ReadTextString(b, pos)
			if err != nil {
				f.Children = append(f.Children, core.NewBytes("parameter", start, end-start, b[start:end]).WithErr(core.ErrMalformedHeader))
				break
			}
			value = s
			pos += n
		}
		f.Children = append(f.Children, core.NewString(name, start, pos-start, value))
		text += "; " + name + "=" + value
	}
	return f.WithText(text), end - off, nil
}

// generic renders a value for a tag with no known grammar: a short-integer, a
// Value-length-prefixed block or a Text-string.
type generic struct{}

func (generic) DecodeValue(buf []byte, off int) (core.Field, int, error) {
	if off >= len(buf) {
		return core.Field{}, 0, core.ErrTruncated
	}
	b := buf[off]
	switch {
	case b&0x80 != 0:
		return core.NewUint("", off, 1, uint64(b&0x7f)), 1, nil
	case b < 0x20:
		_, body, end, err := lengthPrefixed(buf, off)
		if err != nil {
			return core.Field{}, end - off, err
		}
		return core.NewBytes("", off, end-off, buf[body:end]), end - off, nil
	}
	return textString{}.DecodeValue(buf, off)
}

func isFieldLocal(err error) bool {
	return err != nil && !core.IsFatal(err)
}
