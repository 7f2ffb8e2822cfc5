package util

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeKorean wraps r with an EUC-KR decoder when contentType declares a Korean legacy charset.
// Anything else is assumed to be UTF-8 and returned unchanged.
func DecodeKorean(r io.Reader, contentType string) io.Reader {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "euc-kr") || strings.Contains(ct, "cp949") || strings.Contains(ct, "ks_c_5601") {
		return transform.NewReader(r, korean.EUCKR.NewDecoder())
	}
	return r
}
