// Package wap implements the WAP push parser.
// Unwraps connectionless WSP Push PDUs and decodes their MMSE or WBXML payloads into a
// field tree. Correlates MMS PDUs that share a Transaction-Id.
package wap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/patrickmn/go-cache"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/mmse"
	corewap "firestige.xyz/wapdec/internal/core/wap"
	"firestige.xyz/wapdec/internal/core/wbxml"
	"firestige.xyz/wapdec/internal/core/wbxml/tokens"
	"firestige.xyz/wapdec/internal/core/wsp"
	"firestige.xyz/wapdec/internal/metrics"
	"firestige.xyz/wapdec/pkg/plugin"
)

const (
	pluginName = "wap"

	defaultCorrelationTTL = 10 * time.Minute
	defaultCleanup        = time.Minute

	mediaMMS = "application/vnd.wap.mms-message"
)

// Config represents wap parser configuration.
type Config struct {
	Ports              []int         `mapstructure:"ports"`                // UDP ports carrying connectionless WSP, default 2948/2949
	SkipTokenMapping   bool          `mapstructure:"skip_token_mapping"`   // Render WBXML tokens numerically
	DisableBodyParsing bool          `mapstructure:"disable_body_parsing"` // Emit WBXML bodies as opaque bytes
	MaxBodyBytes       int           `mapstructure:"max_body_bytes"`       // Cap on MMS body bytes copied into the tree, 0 = unlimited
	CorrelationTTL     time.Duration `mapstructure:"correlation_ttl"`      // How long a Transaction-Id is remembered
}

// Parser decodes WAP push traffic.
type Parser struct {
	name   string
	config Config
	ports  map[uint16]struct{}

	wsp   *wsp.Decoder
	wbxml *wbxml.Decoder
	mmse  *mmse.Decoder

	transactions *cache.Cache // Transaction-Id → message type name
}

// NewWAPParser creates a new WAP parser with default configuration.
func NewWAPParser() plugin.Parser {
	p := &Parser{name: pluginName}
	if err := p.Init(nil); err != nil {
		panic(err)
	}
	return p
}

// Name returns the plugin name.
func (p *Parser) Name() string {
	return p.name
}

// Init initializes the parser with configuration.
func (p *Parser) Init(cfg map[string]any) error {
	c := Config{
		Ports:          []int{2948, 2949},
		CorrelationTTL: defaultCorrelationTTL,
	}
	if cfg != nil {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			Result:           &c,
		})
		if err != nil {
			return err
		}
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("wap: invalid config: %w", err)
		}
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("wap: max_body_bytes must not be negative")
	}
	if c.CorrelationTTL <= 0 {
		c.CorrelationTTL = defaultCorrelationTTL
	}

	ports := make(map[uint16]struct{}, len(c.Ports))
	for _, port := range c.Ports {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("wap: invalid port %d", port)
		}
		ports[uint16(port)] = struct{}{}
	}

	p.config = c
	p.ports = ports
	p.wsp = wsp.New(wsp.Config{Connectionless: true})
	p.wbxml = wbxml.New(wbxml.Config{
		SkipTokenMapping:   c.SkipTokenMapping,
		DisableBodyParsing: c.DisableBodyParsing,
	})
	p.mmse = mmse.New(mmse.Config{Body: mmse.BodyHandlerFunc(p.mmsBody)})
	p.transactions = cache.New(c.CorrelationTTL, defaultCleanup)
	return nil
}

// Start starts the parser.
func (p *Parser) Start(ctx context.Context) error {
	return nil
}

// Stop stops the parser.
func (p *Parser) Stop(ctx context.Context) error {
	p.transactions.Flush()
	metrics.CorrelationEntries.Set(0)
	return nil
}

// CanHandle checks if this packet is likely WAP push or a bare MMS PDU.
func (p *Parser) CanHandle(pkt *core.DecodedPacket) bool {
	if pkt.Transport.Protocol != 17 || len(pkt.Payload) == 0 {
		return false
	}
	if _, ok := p.ports[pkt.Transport.DstPort]; ok {
		return true
	}
	if _, ok := p.ports[pkt.Transport.SrcPort]; ok {
		return true
	}
	return len(pkt.Payload) > 2 && pkt.Payload[0] == mmse.TagMessageType
}

// Handle decodes the payload. The payload returned is the field tree ([]core.Field).
// On failure the fields and labels decoded so far are returned along with the error.
func (p *Parser) Handle(pkt *core.DecodedPacket) (any, core.Labels, error) {
	labels := make(core.Labels)
	var tree core.Tree

	err := p.decode(pkt.Payload, &tree, labels)

	labels[core.LabelDecodeFields] = strconv.Itoa(tree.Len())
	for _, d := range tree.Diagnostics() {
		metrics.DiagnosticsTotal.WithLabelValues(protocolOf(labels), metrics.ErrorKind(d.Err)).Inc()
	}
	metrics.FieldsTotal.WithLabelValues(protocolOf(labels)).Add(float64(tree.Len()))

	if err != nil {
		labels[core.LabelDecodeError] = err.Error()
		return tree.Fields(), labels, fmt.Errorf("wap parse failed: %w", err)
	}
	return tree.Fields(), labels, nil
}

func (p *Parser) decode(payload []byte, tree *core.Tree, labels core.Labels) error {
	push, err := p.wsp.Decode(payload, 0, tree)
	if errors.Is(err, core.ErrNotWSPPush) && payload[0] == mmse.TagMessageType {
		tree.Reset()
		return p.decodeMMS(payload, 0, tree, labels)
	}
	record("wsp", err)
	if err != nil {
		return err
	}

	labels[core.LabelWSPTID] = strconv.Itoa(int(push.TID))
	labels[core.LabelWSPPDUType] = wsp.PDUTypeName(push.Type)
	labels[core.LabelWSPContentType] = push.ContentType.Media()
	if push.ApplicationID != "" {
		labels[core.LabelWSPAppID] = push.ApplicationID
	}
	if push.BodyLen == 0 {
		return nil
	}

	media := strings.ToLower(push.ContentType.Media())
	switch {
	case media == mediaMMS:
		return p.decodeMMS(payload, push.Body, tree, labels)
	case isWBXML(media, payload, push.Body):
		return p.decodeWBXML(payload, push.Body, media, tree, labels)
	}
	tree.Emit(core.NewBytes("body", push.Body, push.BodyLen, p.capped(payload[push.Body:])))
	return nil
}

func (p *Parser) decodeMMS(buf []byte, off int, tree *core.Tree, labels core.Labels) error {
	g := tree.BeginGroup(core.NewGroup("mms", off, ""))
	n, err := p.mmse.Decode(buf, off, tree)
	tree.EndGroup(g, off+n)
	record("mmse", err)

	// The summary is re-read from the tree so a failed decode still labels what it saw.
	if f, ok := tree.Find("message_type"); ok {
		labels[core.LabelMMSMessageType] = f.Text
	}
	if f, ok := tree.Find("mms_version"); ok && f.Err == nil {
		labels[core.LabelMMSVersion] = f.Text
	}
	for _, l := range []struct{ field, label string }{
		{"transaction_id", core.LabelMMSTransactionID},
		{"message_id", core.LabelMMSMessageID},
		{"from", core.LabelMMSFrom},
		{"content_location", core.LabelMMSContentLoc},
		{"response_status", core.LabelMMSStatus},
		{"retrieve_status", core.LabelMMSStatus},
		{"status", core.LabelMMSStatus},
	} {
		if f, ok := tree.Find(l.field); ok && f.Err == nil {
			labels[l.label] = f.Text
		}
	}
	if to := tree.All("to"); len(to) > 0 {
		addrs := make([]string, 0, len(to))
		for _, f := range to {
			addrs = append(addrs, f.Text)
		}
		labels[core.LabelMMSTo] = strings.Join(addrs, ",")
	}
	for _, f := range tree.All("content_type") {
		if f.Start >= off {
			labels[core.LabelMMSContentType] = f.Text
		}
	}
	p.correlate(labels)
	return err
}

// correlate remembers the message type of each Transaction-Id and labels a PDU with the
// type of the earlier PDU of the same transaction.
func (p *Parser) correlate(labels core.Labels) {
	tid, ok := labels[core.LabelMMSTransactionID]
	if !ok || tid == "" {
		return
	}
	if prev, found := p.transactions.Get(tid); found {
		labels[core.LabelMMSCorrelated] = prev.(string)
	}
	p.transactions.SetDefault(tid, labels[core.LabelMMSMessageType])
	metrics.CorrelationEntries.Set(float64(p.transactions.ItemCount()))
}

func (p *Parser) decodeWBXML(buf []byte, off int, media string, tree *core.Tree, labels core.Labels) error {
	g := tree.BeginGroup(core.NewGroup("wbxml", off, media))
	n, err := p.wbxml.Decode(buf, off, media, tree)
	tree.EndGroup(g, off+n)
	record("wbxml", err)

	if f, ok := tree.Find("version"); ok {
		labels[core.LabelWBXMLVersion] = f.Text
	}
	if f, ok := tree.Find("public_id"); ok && f.Err == nil {
		labels[core.LabelWBXMLPublicID] = f.Text
	}
	if f, ok := tree.Find("charset"); ok {
		labels[core.LabelWBXMLCharset] = f.Text
	}
	if f, ok := tree.Find("token_map"); ok {
		labels[core.LabelWBXMLMap] = f.Text
	}
	if f, ok := tree.Find("element"); ok {
		labels[core.LabelWBXMLRoot] = f.Text
	}
	return err
}

// mmsBody receives the MMS message body after Content-Type.
func (p *Parser) mmsBody(buf []byte, off int, ct corewap.ContentType, sink core.Sink) (int, error) {
	media := strings.ToLower(ct.Media())
	if isWBXML(media, buf, off) {
		g := sink.BeginGroup(core.NewGroup("wbxml", off, media))
		n, err := p.wbxml.Decode(buf, off, media, sink)
		sink.EndGroup(g, off+n)
		record("wbxml", err)
		return n, err
	}
	sink.Emit(core.NewBytes("message_body", off, len(buf)-off, p.capped(buf[off:])))
	return len(buf) - off, nil
}

func (p *Parser) capped(b []byte) []byte {
	if p.config.MaxBodyBytes > 0 && len(b) > p.config.MaxBodyBytes {
		return b[:p.config.MaxBodyBytes]
	}
	return b
}

// isWBXML reports whether a body of the given media type should go to the WBXML decoder.
func isWBXML(media string, buf []byte, off int) bool {
	if tokens.ByContentType(media, buf, off) != nil {
		return true
	}
	return strings.HasSuffix(media, "wbxml") || slices.Contains(wbxmlMedia, media)
}

var wbxmlMedia = []string{
	"application/vnd.wap.wbxml",
	"application/vnd.wap.wmlscriptc",
	"application/vnd.wap.cec",
	"application/vnd.wap.sic",
	"application/vnd.wap.slc",
	"application/vnd.wap.coc",
}

func record(protocol string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		metrics.DiagnosticsTotal.WithLabelValues(protocol, metrics.ErrorKind(err)).Inc()
	}
	metrics.DecodeTotal.WithLabelValues(protocol, result).Inc()
}

func protocolOf(labels core.Labels) string {
	switch {
	case labels[core.LabelMMSMessageType] != "":
		return "mmse"
	case labels[core.LabelWBXMLVersion] != "":
		return "wbxml"
	}
	return "wsp"
}
