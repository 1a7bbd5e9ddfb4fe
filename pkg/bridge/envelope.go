// Package bridge exchanges single HTTP requests with an external analyzer
// process over stdin/stdout JSON envelopes. Each invocation is one
// spawn/collect cycle with no state, retries, or pooling; cancelling the
// request context kills the child.
package bridge

// Request is the envelope written to the analyzer's standard input.
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	Path                  string            `json:"path"`
	Headers               map[string]string `json:"headers"`
	Body                  string            `json:"body"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
}

// Response is the envelope read back from the analyzer's standard output.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}
