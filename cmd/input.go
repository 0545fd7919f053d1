package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// readInput returns the bytes named by a file path ("-" for stdin) or a hex string.
// Exactly one of file and hexStr must be set.
func readInput(file, hexStr string, stdin io.Reader) ([]byte, string, error) {
	switch {
	case file != "" && hexStr != "":
		return nil, "", fmt.Errorf("--file and --hex are mutually exclusive")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin", nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return data, file, nil
	case hexStr != "":
		data, err := parseHex(hexStr)
		if err != nil {
			return nil, "", err
		}
		return data, "hex", nil
	}
	return nil, "", fmt.Errorf("one of --file or --hex is required")
}

// parseHex accepts hex digits separated by whitespace, colons or commas, with an optional
// 0x prefix per octet group.
func parseHex(s string) ([]byte, error) {
	var b strings.Builder
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ':' || r == ','
	}) {
		tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
		b.WriteString(tok)
	}
	data, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}
