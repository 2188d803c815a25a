package httputil

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// NewHTTPRequest performs an http call and returns the response status code
// and body. Only the verbs needed by the esplora API are supported.
func NewHTTPRequest(
	ctx context.Context, method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	switch method {
	case "GET":
		return do(ctx, "GET", url, "", header)
	case "POST":
		return do(ctx, "POST", url, bodyString, header)
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}
}

func do(
	ctx context.Context, method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	var body *strings.Reader
	if bodyString != "" {
		body = strings.NewReader(bodyString)
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := ioutil.ReadAll(rs.Body)
	if err != nil {
		return 0, "", err
	}

	return rs.StatusCode, string(bodyBytes), nil
}
