package directorytest

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// Transport answers discordgo REST calls without a network. Respond picks the
// status and JSON body, the default is 200 with "{}".
type Transport struct {
	mu       sync.Mutex
	Requests []Request

	Respond func(r Request) (int, string)
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	r := Request{
		Method: req.Method,
		Path:   strings.TrimPrefix(req.URL.Path, "/api/v"+discordgo.APIVersion),
		Query:  req.URL.Query(),
		Body:   string(body),
	}

	t.mu.Lock()
	t.Requests = append(t.Requests, r)
	respond := t.Respond
	t.mu.Unlock()

	status, resp := http.StatusOK, "{}"
	if respond != nil {
		status, resp = respond(r)
	}

	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(resp)),
		Request:    req,
	}, nil
}

// Recorded returns the requests seen so far, in order
func (t *Transport) Recorded() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Request(nil), t.Requests...)
}

// NewSession returns a discordgo session whose REST calls go to t
func NewSession(t *Transport) *discordgo.Session {
	s, _ := discordgo.New("Bot test")
	s.Client = &http.Client{Transport: t}
	s.MaxRestRetries = 0
	return s
}
