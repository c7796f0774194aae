package crawling

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveLink turns a link returned by the model into an absolute URL that can
// be fetched. Relative links are resolved against baseURL. Only http and https
// targets are accepted; the fragment is dropped.
func ResolveLink(baseURL, link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", &LinkResolutionError{Link: link, Message: "empty URL"}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", &LinkResolutionError{
			Link:    link,
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return "", &LinkResolutionError{
			Link:    link,
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	// Parse the link URL (could be relative or absolute)
	linkURL, err := url.Parse(link)
	if err != nil {
		return "", &LinkResolutionError{
			Link:    link,
			Message: "malformed URL",
			Cause:   err,
		}
	}

	absoluteURL := base.ResolveReference(linkURL)
	switch absoluteURL.Scheme {
	case "http", "https":
	default:
		return "", &LinkResolutionError{
			Link:    link,
			Message: fmt.Sprintf("unsupported scheme %q", absoluteURL.Scheme),
		}
	}
	if absoluteURL.Host == "" {
		return "", &LinkResolutionError{Link: link, Message: "missing host"}
	}

	absoluteURL.Fragment = ""
	return absoluteURL.String(), nil
}
