package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/mmse"
	"firestige.xyz/wapdec/internal/core/wap"
	"firestige.xyz/wapdec/internal/core/wbxml"
	"firestige.xyz/wapdec/internal/core/wbxml/tokens"
	"firestige.xyz/wapdec/internal/render"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode one WBXML document or MMS PDU",
	Long: `Decode a single buffer read from a file, stdin or a hex string.

Examples:
  wapdec decode wbxml -f si.wbxml
  wapdec decode wbxml --hex "02 05 6a 00 05" -o json
  wapdec decode wbxml -f body.bin --content-type application/vnd.wv.csp.wbxml
  wapdec decode mms -f notification.mms
  cat pdu.bin | wapdec decode mms -f -`,
}

// decodeOptions holds the flags shared by the decode subcommands.
type decodeOptions struct {
	file        string
	hex         string
	offset      int
	contentType string
	skipMapping bool
	noBody      bool
}

var decodeOpts decodeOptions

var decodeWBXMLCmd = &cobra.Command{
	Use:   "wbxml",
	Short: "Decode a WBXML document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cmd.OutOrStdout(), cmd.InOrStdin(), "wbxml", decodeOpts)
	},
}

var decodeMMSCmd = &cobra.Command{
	Use:   "mms",
	Short: "Decode an MMS encapsulated PDU",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cmd.OutOrStdout(), cmd.InOrStdin(), "mms", decodeOpts)
	},
}

func init() {
	for _, c := range []*cobra.Command{decodeWBXMLCmd, decodeMMSCmd} {
		c.Flags().StringVarP(&decodeOpts.file, "file", "f", "", "input file, - for stdin")
		c.Flags().StringVar(&decodeOpts.hex, "hex", "", "input as hex digits")
		c.Flags().IntVar(&decodeOpts.offset, "offset", 0, "offset of the first byte to decode")
		c.Flags().BoolVar(&decodeOpts.skipMapping, "skip-token-mapping", false, "render WBXML tokens numerically")
		c.Flags().BoolVar(&decodeOpts.noBody, "no-body", false, "do not parse WBXML bodies")
		decodeCmd.AddCommand(c)
	}
	decodeWBXMLCmd.Flags().StringVar(&decodeOpts.contentType, "content-type", "",
		"media type the document was delivered with, used when the public identifier is unknown")
}

// runDecode decodes one buffer and renders it to w. A decode error is rendered with the
// fields decoded up to that point and then returned.
func runDecode(w io.Writer, stdin io.Reader, kind string, opts decodeOptions) error {
	data, source, err := readInput(opts.file, opts.hex, stdin)
	if err != nil {
		return err
	}
	if opts.offset < 0 || opts.offset > len(data) {
		return fmt.Errorf("offset %d outside input of %d bytes", opts.offset, len(data))
	}

	dcfg := wbxml.Config{SkipTokenMapping: opts.skipMapping, DisableBodyParsing: opts.noBody}
	if cfg != nil {
		dcfg.SkipTokenMapping = dcfg.SkipTokenMapping || cfg.Decoder.SkipTokenMapping
		dcfg.DisableBodyParsing = dcfg.DisableBodyParsing || cfg.Decoder.DisableBodyParsing
	}
	wd := wbxml.New(dcfg)

	var tree core.Tree
	switch kind {
	case "wbxml":
		_, err = wd.Decode(data, opts.offset, opts.contentType, &tree)
	case "mms":
		_, err = mmse.New(mmse.Config{Body: wbxmlBody(wd)}).Decode(data, opts.offset, &tree)
	default:
		return fmt.Errorf("unknown decoder %q", kind)
	}

	rec := render.Record{
		Source:      source,
		PayloadType: kind,
		PayloadLen:  len(data) - opts.offset,
		Fields:      render.Nodes(tree.Fields()),
	}
	if err != nil {
		rec.Error = err.Error()
	}

	format := "text"
	if cfg != nil {
		format = cfg.Output.Format
	}
	r, rerr := render.New(format)
	if rerr != nil {
		return rerr
	}
	if rerr := r.Render(w, rec); rerr != nil {
		return rerr
	}
	if err != nil {
		return fmt.Errorf("%s decode failed: %w", kind, err)
	}
	return nil
}

// wbxmlBody hands MMS bodies with a WBXML media type to wd and emits anything else as
// opaque bytes.
func wbxmlBody(wd *wbxml.Decoder) mmse.BodyHandler {
	return mmse.BodyHandlerFunc(func(buf []byte, off int, ct wap.ContentType, sink core.Sink) (int, error) {
		media := ct.Media()
		if tokens.ByContentType(media, buf, off) == nil {
			sink.Emit(core.NewBytes("message_body", off, len(buf)-off, buf[off:]))
			return len(buf) - off, nil
		}
		g := sink.BeginGroup(core.NewGroup("wbxml", off, media))
		n, err := wd.Decode(buf, off, media, sink)
		sink.EndGroup(g, off+n)
		return n, err
	})
}
