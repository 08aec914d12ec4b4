package semantic

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// metaCharsetPattern finds <meta charset=...> and the http-equiv form.
	metaCharsetPattern = regexp.MustCompile(`(?i)<meta\s[^>]*charset\s*=`)
)

// prescanLimit matches the window x/net/html/charset inspects.
const prescanLimit = 1024

// DecodeBytes turns raw markup into UTF-8 text and reports the charset
// used. A BOM, a charset in contentType, or a <meta> declaration selects
// the decoder; anything else is read as UTF-8. Decoding never fails:
// invalid sequences are dropped.
func DecodeBytes(data []byte, contentType string) (string, string) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && !declaresCharset(data) {
		name = "utf-8"
	}

	if name == "utf-8" {
		return strings.ToValidUTF8(string(bytes.TrimPrefix(data, utf8BOM)), ""), name
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), ""), "utf-8"
	}
	return strings.ToValidUTF8(string(out), ""), name
}

func declaresCharset(data []byte) bool {
	if len(data) > prescanLimit {
		data = data[:prescanLimit]
	}
	return metaCharsetPattern.Match(data)
}
