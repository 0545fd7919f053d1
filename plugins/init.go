// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/wapdec/pkg/plugin"
	"firestige.xyz/wapdec/plugins/capture/pcapfile"
	"firestige.xyz/wapdec/plugins/parser/wap"
	"firestige.xyz/wapdec/plugins/processor/labelfilter"
	"firestige.xyz/wapdec/plugins/reporter/console"
)

func init() {
	plugin.RegisterCapturer("pcapfile", pcapfile.NewPcapFileCapturer)

	plugin.RegisterParser("wap", wap.NewWAPParser)

	plugin.RegisterProcessor("labelfilter", labelfilter.NewLabelFilter)

	plugin.RegisterReporter("console", console.NewConsoleReporter)
}
