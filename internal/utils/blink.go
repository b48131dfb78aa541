package utils

import (
	"net/url"
	"strings"

	"blink-builder-sol/internal/consts"
)

// ActionURL 拼接对外可访问的 action 地址：base + path + query
func ActionURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// DialBlinkURL 把 action 地址包装成 dial.to 的分享链接
func DialBlinkURL(actionURL string) string {
	q := url.Values{}
	q.Set("action", consts.ActionURLScheme+actionURL)
	return consts.DialBlinkBase + "?" + q.Encode()
}
