package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var hqStrRe = regexp.MustCompile(`hq_str_(\w+)="([^"]*)"`)

// NameLookup resolves stock codes to display names via the sina hq API.
// Responses are GBK-encoded.
type NameLookup struct {
	client *http.Client
}

func NewNameLookup() *NameLookup {
	return &NameLookup{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Names returns a code->name map for the given stock codes. Codes that
// the API does not know are absent from the result.
func (n *NameLookup) Names(codes []string) (map[string]string, error) {
	if len(codes) == 0 {
		return map[string]string{}, nil
	}

	url := "https://hq.sinajs.cn/list=" + strings.Join(codes, ",")
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", "https://finance.sina.com.cn")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch names: %w", err)
	}
	defer resp.Body.Close()

	reader := transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(codes))
	for _, m := range hqStrRe.FindAllStringSubmatch(string(body), -1) {
		code, payload := m[1], m[2]
		if payload == "" {
			continue
		}
		fields := strings.Split(payload, ",")
		if len(fields) > 0 && fields[0] != "" {
			names[code] = fields[0]
		}
	}
	return names, nil
}
