package flickr

import (
	"fmt"
	"strings"

	"github.com/ccfrost/albumdrop/internal/lib"
	"gopkg.in/masci/flickr.v3"
)

// APIError is a failure reported in a Flickr API response body.
type APIError struct {
	Method  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: flickr API error: %s", e.Method, e.Message)
}

// Unwrap reports credential and permission failures as lib.ErrTerminalAuth.
func (e *APIError) Unwrap() error {
	if isAuthMessage(e.Message) {
		return lib.ErrTerminalAuth
	}
	return nil
}

// authMessages are the Flickr error messages for bad keys, tokens or permissions.
var authMessages = []string{
	"invalid api key",
	"invalid auth token",
	"insufficient permissions",
	"invalid signature",
	"invalid oauth",
	"user not logged in",
	"permission denied",
	"oauth_problem",
}

func isAuthMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range authMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// responseError returns the API error in resp if there is one, else err.
func responseError(method string, resp *flickr.BasicResponse, err error) error {
	if resp != nil && resp.HasErrors() {
		return &APIError{Method: method, Message: resp.ErrorMsg()}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp == nil {
		return fmt.Errorf("%s: empty response", method)
	}
	return nil
}
